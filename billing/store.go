package billing

import (
	"context"
	"time"
)

// RecordKind names the collection a payable record lives in.
type RecordKind string

const (
	KindHourly  RecordKind = "hourly"
	KindNight   RecordKind = "night"
	KindVehicle RecordKind = "vehicle"
)

func (k RecordKind) Valid() bool {
	switch k {
	case KindHourly, KindNight, KindVehicle:
		return true
	}
	return false
}

// Balance is the payment-relevant view of a record: its total (totalPrice for hourly
// sessions, price otherwise) and what has been paid so far.
type Balance struct {
	Total      float64
	PaidAmount float64
	Paid       bool
}

// PaymentUpdate is written in a single update. Paid is always derived from PaidAmount by the
// ledger, never supplied by a caller.
type PaymentUpdate struct {
	PaidAmount float64
	Paid       bool
	UpdatedAt  time.Time
}

// PaymentStore reads and writes payment state. LoadBalance returns an ErrNotFound error for
// missing records and ErrStorage for infrastructure failures.
type PaymentStore interface {
	LoadBalance(ctx context.Context, kind RecordKind, id string) (Balance, error)
	SavePayment(ctx context.Context, kind RecordKind, id string, update PaymentUpdate) error
}

// Subscription is the renewal-relevant view of a subscription vehicle.
type Subscription struct {
	ID           string
	PlanType     PlanType
	Price        float64
	RegisterDate time.Time
	ExpiresAt    time.Time
}

// CurrentExpiry is ExpiresAt, or RegisterDate for records that never had an expiry stored.
func (s Subscription) CurrentExpiry() time.Time {
	if s.ExpiresAt.IsZero() {
		return s.RegisterDate
	}
	return s.ExpiresAt
}

// RenewalEntry is one append-only history item.
type RenewalEntry struct {
	RenewedAt      time.Time
	PreviousExpiry time.Time
	NewExpiry      time.Time
	PaymentAmount  *float64
	RenewedBy      string
}

// RenewalUpdate moves the validity window, optionally resets payment, and appends Entry.
type RenewalUpdate struct {
	RegisterDate time.Time
	ExpiresAt    time.Time
	Payment      *PaymentUpdate
	Entry        RenewalEntry
	RenewedBy    string
	UpdatedAt    time.Time
}

// SubscriptionStore reads subscriptions and applies renewals atomically.
type SubscriptionStore interface {
	LoadSubscription(ctx context.Context, id string) (Subscription, error)
	SaveRenewal(ctx context.Context, id string, update RenewalUpdate) error
}
