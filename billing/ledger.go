package billing

import (
	"context"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// PaymentResult is what a payment operation leaves on the record.
type PaymentResult struct {
	PaidAmount float64 `json:"paidAmount"`
	Paid       bool    `json:"paid"`
}

// Settle derives the paid flag from an amount and a total. It is the only place the flag is computed.
func Settle(paidAmount, total float64) PaymentResult {
	paidAmount = roundAmount(paidAmount)
	return PaymentResult{
		PaidAmount: paidAmount,
		Paid:       paidAmount >= roundAmount(total),
	}
}

// Observer is notified after a payment has been written.
type Observer interface {
	PaymentRecorded(kind RecordKind, mode string, amount float64)
}

// Ledger applies payments to stored records.
//
// Two admins paying the same record at once are not serialised: each call is one read then
// one write and the last write wins.
type Ledger struct {
	store    PaymentStore
	clock    clockwork.Clock
	log      *logrus.Logger
	observer Observer
}

// NewLedger builds a Ledger. A nil clock means the real clock, a nil logger means logrus defaults.
func NewLedger(store PaymentStore, clock clockwork.Clock, log *logrus.Logger, observer Observer) *Ledger {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logrus.New()
	}
	return &Ledger{store: store, clock: clock, log: log, observer: observer}
}

// RecordPayment adds delta to the paid amount. The result never goes below zero.
func (l *Ledger) RecordPayment(ctx context.Context, kind RecordKind, id string, delta float64) (PaymentResult, error) {
	if err := checkTarget(kind, id); err != nil {
		return PaymentResult{}, err
	}
	if !isFinite(delta) {
		return PaymentResult{}, Validation("invalid payment amount")
	}

	balance, err := l.store.LoadBalance(ctx, kind, id)
	if err != nil {
		return PaymentResult{}, err
	}

	newPaid := addAmounts(balance.PaidAmount, delta)
	if newPaid < 0 {
		newPaid = 0
	}
	result := Settle(newPaid, balance.Total)

	if err := l.save(ctx, kind, id, result); err != nil {
		return PaymentResult{}, err
	}

	l.log.WithFields(logrus.Fields{
		"kind":        kind,
		"id":          id,
		"delta":       FormatAmount(delta),
		"paid_amount": FormatAmount(result.PaidAmount),
		"paid":        result.Paid,
	}).Info("payment recorded")
	if l.observer != nil {
		l.observer.PaymentRecorded(kind, "delta", delta)
	}
	return result, nil
}

// SetPayment replaces the paid amount with amount.
func (l *Ledger) SetPayment(ctx context.Context, kind RecordKind, id string, amount float64) (PaymentResult, error) {
	if err := checkTarget(kind, id); err != nil {
		return PaymentResult{}, err
	}
	if !isFinite(amount) || amount < 0 {
		return PaymentResult{}, Validation("invalid payment amount")
	}

	balance, err := l.store.LoadBalance(ctx, kind, id)
	if err != nil {
		return PaymentResult{}, err
	}

	result := Settle(amount, balance.Total)
	if err := l.save(ctx, kind, id, result); err != nil {
		return PaymentResult{}, err
	}

	l.log.WithFields(logrus.Fields{
		"kind":        kind,
		"id":          id,
		"paid_amount": FormatAmount(result.PaidAmount),
		"paid":        result.Paid,
	}).Info("payment set")
	if l.observer != nil {
		l.observer.PaymentRecorded(kind, "absolute", amount)
	}
	return result, nil
}

func (l *Ledger) save(ctx context.Context, kind RecordKind, id string, result PaymentResult) error {
	return l.store.SavePayment(ctx, kind, id, PaymentUpdate{
		PaidAmount: result.PaidAmount,
		Paid:       result.Paid,
		UpdatedAt:  l.clock.Now(),
	})
}

func checkTarget(kind RecordKind, id string) error {
	if !kind.Valid() {
		return Validation("unknown record kind %q", kind)
	}
	if strings.TrimSpace(id) == "" {
		return Validation("record id is required")
	}
	return nil
}
