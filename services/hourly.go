package services

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"parkdesk/billing"
	"parkdesk/database"
	"parkdesk/models"
)

// HourlyInput is a manually entered hourly session. Billing fields are always computed here.
type HourlyInput struct {
	VehicleNumber string
	HourlyRate    *float64
	StartTime     time.Time
	// EndTime defaults to now.
	EndTime *time.Time
	Paid    bool
}

// HourlyPatch edits the billing result of a session. Nil fields are left alone.
type HourlyPatch struct {
	TotalPrice    *float64
	BillableHours *int
}

func (s *Service) CreateHourlySession(ctx context.Context, in HourlyInput, actor string) (*models.HourlySessionResponse, error) {
	number, err := requireVehicleNumber(in.VehicleNumber)
	if err != nil {
		return nil, err
	}
	rate := s.defaultHourlyRate
	if in.HourlyRate != nil {
		rate = *in.HourlyRate
	}
	if err := billing.ValidateRate(rate); err != nil {
		return nil, err
	}
	if in.StartTime.IsZero() {
		return nil, billing.Validation("start time is required")
	}
	end := s.clock.Now()
	if in.EndTime != nil {
		end = *in.EndTime
	}
	if end.Before(in.StartTime) {
		return nil, billing.Validation("end time cannot be before start time")
	}

	fee := billing.ComputeHourlyFee(in.StartTime, end, rate)
	session := &models.HourlySession{
		VehicleNumber: number,
		HourlyRate:    rate,
		StartTime:     in.StartTime,
		EndTime:       end,
		CreatedBy:     actor,
	}
	session.ApplyFee(fee)
	paidAmount := 0.0
	if in.Paid {
		paidAmount = fee.TotalPrice
	}
	settled := billing.Settle(paidAmount, fee.TotalPrice)
	session.PaidAmount, session.Paid = settled.PaidAmount, settled.Paid

	if err := s.store.CreateHourlySession(ctx, session); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"session_id":     session.ID,
		"vehicle_number": number,
		"total_price":    billing.FormatAmount(session.TotalPrice),
		"created_by":     actor,
	}).Info("hourly session recorded")
	s.recorder.SessionSettled("manual")

	resp := session.ToResponse()
	return &resp, nil
}

func (s *Service) GetHourlySession(ctx context.Context, id string) (*models.HourlySessionResponse, error) {
	h, err := s.store.GetHourlySession(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := h.ToResponse()
	return &resp, nil
}

func (s *Service) ListHourlySessions(ctx context.Context, q database.ListQuery) (database.Page[models.HourlySessionResponse], error) {
	page, err := s.store.ListHourlySessions(ctx, s.listQuery(q))
	if err != nil {
		return database.Page[models.HourlySessionResponse]{}, err
	}
	return mapPage(page, func(h models.HourlySession) models.HourlySessionResponse { return h.ToResponse() }), nil
}

func (s *Service) HourlyPaidTotal(ctx context.Context) (float64, error) {
	return s.store.SumHourlyPaid(ctx)
}

// UpdateHourlySession applies a super-admin edit. A new total re-derives the paid flag in the
// same update.
func (s *Service) UpdateHourlySession(ctx context.Context, id string, patch HourlyPatch, actor string) (*models.HourlySessionResponse, error) {
	if patch.TotalPrice == nil && patch.BillableHours == nil {
		return nil, billing.Validation("no valid fields to update")
	}
	fields := map[string]any{"updated_at": s.clock.Now()}

	if patch.BillableHours != nil {
		if *patch.BillableHours < 1 {
			return nil, billing.Validation("billable hours must be at least 1")
		}
		fields["billable_hours"] = *patch.BillableHours
	}

	if patch.TotalPrice != nil {
		if err := checkPrice(*patch.TotalPrice); err != nil {
			return nil, err
		}
		current, err := s.store.LoadBalance(ctx, billing.KindHourly, id)
		if err != nil {
			return nil, err
		}
		settled := billing.Settle(current.PaidAmount, *patch.TotalPrice)
		fields["total_price"] = billing.Round(*patch.TotalPrice)
		fields["paid"] = settled.Paid
	}

	if err := s.store.UpdateHourlySession(ctx, id, fields); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"session_id": id, "updated_by": actor}).Info("hourly session updated")
	return s.GetHourlySession(ctx, id)
}

func (s *Service) DeleteHourlySession(ctx context.Context, id, actor string) error {
	if err := s.store.DeleteHourlySession(ctx, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"session_id": id, "deleted_by": actor}).Info("hourly session deleted")
	return nil
}

func checkPrice(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return billing.Validation("price must be a non-negative number")
	}
	return nil
}

func mapPage[T, R any](p database.Page[T], fn func(T) R) database.Page[R] {
	items := make([]R, len(p.Items))
	for i, it := range p.Items {
		items[i] = fn(it)
	}
	return database.Page[R]{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		PagePaid:   p.PagePaid,
	}
}
