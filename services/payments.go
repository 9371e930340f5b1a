package services

import (
	"context"

	"parkdesk/billing"
)

// RecordPayment adds amount (which may be negative, as a correction) to a record's paid amount.
func (s *Service) RecordPayment(ctx context.Context, kind billing.RecordKind, id string, amount float64) (billing.PaymentResult, error) {
	return s.ledger.RecordPayment(ctx, kind, id, amount)
}

// SetPayment overwrites a record's paid amount.
func (s *Service) SetPayment(ctx context.Context, kind billing.RecordKind, id string, amount float64) (billing.PaymentResult, error) {
	return s.ledger.SetPayment(ctx, kind, id, amount)
}

// RenewVehicle renews an expired subscription for one more period.
func (s *Service) RenewVehicle(ctx context.Context, id, actor string) (billing.RenewalResult, error) {
	return s.renewer.Renew(ctx, id, actor)
}

// RenewVehicleWithPayment renews, early if need be, and records amount as the new period's payment.
func (s *Service) RenewVehicleWithPayment(ctx context.Context, id string, amount float64, actor string) (billing.PaidRenewalResult, error) {
	return s.renewer.RenewWithPayment(ctx, id, amount, actor)
}
