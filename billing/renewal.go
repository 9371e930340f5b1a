package billing

import (
	"context"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// RenewalResult is the new validity window of a renewed subscription.
type RenewalResult struct {
	RegisterDate time.Time `json:"registerDate"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// PaidRenewalResult is returned by RenewWithPayment.
type PaidRenewalResult struct {
	RenewalResult
	PaymentResult
}

// RenewalObserver is notified after a renewal has been written.
type RenewalObserver interface {
	Renewed(withPayment bool)
	PlanFallback(plan PlanType)
}

// Renewer moves subscription validity windows forward.
type Renewer struct {
	store    SubscriptionStore
	clock    clockwork.Clock
	loc      *time.Location
	log      *logrus.Logger
	observer RenewalObserver
}

// NewRenewer builds a Renewer. loc is the calendar new periods are counted on; nil means time.Local.
func NewRenewer(store SubscriptionStore, clock clockwork.Clock, loc *time.Location, log *logrus.Logger, observer RenewalObserver) *Renewer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logrus.New()
	}
	return &Renewer{store: store, clock: clock, loc: loc, log: log, observer: observer}
}

// Renew starts a new period at the current expiry. Only expired subscriptions can be renewed
// this way; RenewWithPayment allows early renewal.
func (r *Renewer) Renew(ctx context.Context, id, actor string) (RenewalResult, error) {
	sub, err := r.load(ctx, id)
	if err != nil {
		return RenewalResult{}, err
	}

	now := r.clock.Now()
	currentExpiry := sub.CurrentExpiry()
	if currentExpiry.After(now) {
		return RenewalResult{}, State("vehicle has not expired yet")
	}

	newExpiry, err := r.expiry(sub, currentExpiry)
	if err != nil {
		return RenewalResult{}, err
	}

	update := RenewalUpdate{
		RegisterDate: currentExpiry,
		ExpiresAt:    newExpiry,
		Entry: RenewalEntry{
			RenewedAt:      now,
			PreviousExpiry: currentExpiry,
			NewExpiry:      newExpiry,
			RenewedBy:      actor,
		},
		RenewedBy: actor,
		UpdatedAt: now,
	}
	if err := r.store.SaveRenewal(ctx, sub.ID, update); err != nil {
		return RenewalResult{}, err
	}

	r.log.WithFields(logrus.Fields{
		"id":              sub.ID,
		"previous_expiry": currentExpiry.Format(time.RFC3339),
		"expires_at":      newExpiry.Format(time.RFC3339),
		"renewed_by":      actor,
	}).Info("vehicle renewed")
	if r.observer != nil {
		r.observer.Renewed(false)
	}
	return RenewalResult{RegisterDate: currentExpiry, ExpiresAt: newExpiry}, nil
}

// RenewWithPayment starts a new period at the later of the current expiry and now, and resets
// the paid amount to amount. The previous period's payments do not carry over.
func (r *Renewer) RenewWithPayment(ctx context.Context, id string, amount float64, actor string) (PaidRenewalResult, error) {
	if !isFinite(amount) || amount <= 0 {
		return PaidRenewalResult{}, Validation("invalid payment amount")
	}

	sub, err := r.load(ctx, id)
	if err != nil {
		return PaidRenewalResult{}, err
	}

	now := r.clock.Now()
	currentExpiry := sub.CurrentExpiry()
	registerDate := now
	if currentExpiry.After(now) {
		registerDate = currentExpiry
	}

	newExpiry, err := r.expiry(sub, registerDate)
	if err != nil {
		return PaidRenewalResult{}, err
	}

	payment := Settle(amount, sub.Price)
	paymentAmount := payment.PaidAmount
	update := RenewalUpdate{
		RegisterDate: registerDate,
		ExpiresAt:    newExpiry,
		Payment: &PaymentUpdate{
			PaidAmount: payment.PaidAmount,
			Paid:       payment.Paid,
			UpdatedAt:  now,
		},
		Entry: RenewalEntry{
			RenewedAt:      now,
			PreviousExpiry: currentExpiry,
			NewExpiry:      newExpiry,
			PaymentAmount:  &paymentAmount,
			RenewedBy:      actor,
		},
		RenewedBy: actor,
		UpdatedAt: now,
	}
	if err := r.store.SaveRenewal(ctx, sub.ID, update); err != nil {
		return PaidRenewalResult{}, err
	}

	r.log.WithFields(logrus.Fields{
		"id":          sub.ID,
		"expires_at":  newExpiry.Format(time.RFC3339),
		"paid_amount": FormatAmount(payment.PaidAmount),
		"paid":        payment.Paid,
		"renewed_by":  actor,
	}).Info("vehicle renewed with payment")
	if r.observer != nil {
		r.observer.Renewed(true)
	}
	return PaidRenewalResult{
		RenewalResult: RenewalResult{RegisterDate: registerDate, ExpiresAt: newExpiry},
		PaymentResult: payment,
	}, nil
}

func (r *Renewer) load(ctx context.Context, id string) (Subscription, error) {
	if strings.TrimSpace(id) == "" {
		return Subscription{}, Validation("vehicle id is required")
	}
	sub, err := r.store.LoadSubscription(ctx, id)
	if err != nil {
		return Subscription{}, err
	}
	if sub.ID == "" {
		sub.ID = id
	}
	return sub, nil
}

func (r *Renewer) expiry(sub Subscription, anchor time.Time) (time.Time, error) {
	if !sub.PlanType.Known() {
		r.log.WithFields(logrus.Fields{
			"id":        sub.ID,
			"plan_type": sub.PlanType,
		}).Warn("unrecognised plan type, renewing as monthly")
		if r.observer != nil {
			r.observer.PlanFallback(sub.PlanType)
		}
	}
	return ComputeExpiry(anchor, sub.PlanType, r.loc)
}
