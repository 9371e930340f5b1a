package billing

import (
	"context"
	"errors"
	"sync"
)

// memStore is an in-memory PaymentStore and SubscriptionStore for engine tests.
type memStore struct {
	mu       sync.Mutex
	balances map[string]Balance
	subs     map[string]Subscription
	payments map[string]PaymentUpdate
	renewals []RenewalUpdate

	loadErr error
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{
		balances: map[string]Balance{},
		subs:     map[string]Subscription{},
		payments: map[string]PaymentUpdate{},
	}
}

func key(kind RecordKind, id string) string { return string(kind) + "/" + id }

func (m *memStore) LoadBalance(_ context.Context, kind RecordKind, id string) (Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return Balance{}, m.loadErr
	}
	b, ok := m.balances[key(kind, id)]
	if !ok {
		return Balance{}, NotFound("%s record not found", kind)
	}
	return b, nil
}

func (m *memStore) SavePayment(_ context.Context, kind RecordKind, id string, update PaymentUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	k := key(kind, id)
	b := m.balances[k]
	b.PaidAmount = update.PaidAmount
	b.Paid = update.Paid
	m.balances[k] = b
	m.payments[k] = update
	return nil
}

func (m *memStore) LoadSubscription(_ context.Context, id string) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return Subscription{}, m.loadErr
	}
	s, ok := m.subs[id]
	if !ok {
		return Subscription{}, NotFound("vehicle not found")
	}
	return s, nil
}

func (m *memStore) SaveRenewal(_ context.Context, id string, update RenewalUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	s, ok := m.subs[id]
	if !ok {
		return NotFound("vehicle not found")
	}
	s.RegisterDate = update.RegisterDate
	s.ExpiresAt = update.ExpiresAt
	m.subs[id] = s
	if update.Payment != nil {
		b := m.balances[key(KindVehicle, id)]
		b.Total = s.Price
		b.PaidAmount = update.Payment.PaidAmount
		b.Paid = update.Payment.Paid
		m.balances[key(KindVehicle, id)] = b
	}
	m.renewals = append(m.renewals, update)
	return nil
}

var errDisk = errors.New("disk on fire")
