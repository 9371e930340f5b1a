package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"parkdesk/billing"
	"parkdesk/database"
	"parkdesk/models"
)

type NightInput struct {
	VehicleNumber string
	// Timestamp defaults to now.
	Timestamp *time.Time
	// Price defaults to the configured night rate.
	Price *float64
	Paid  bool
}

type NightPatch struct {
	Price     *float64
	Timestamp *time.Time
}

func (s *Service) CreateNightSession(ctx context.Context, in NightInput, actor string) (*models.NightSessionResponse, error) {
	number, err := requireVehicleNumber(in.VehicleNumber)
	if err != nil {
		return nil, err
	}
	price, err := billing.NightPrice(in.Price, s.nightRate)
	if err != nil {
		return nil, err
	}
	ts := s.clock.Now()
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}

	paidAmount := 0.0
	if in.Paid {
		paidAmount = price
	}
	settled := billing.Settle(paidAmount, price)
	night := &models.NightSession{
		VehicleNumber: number,
		Timestamp:     ts,
		Price:         price,
		PaidAmount:    settled.PaidAmount,
		Paid:          settled.Paid,
		CreatedBy:     actor,
	}
	if err := s.store.CreateNightSession(ctx, night); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"session_id":     night.ID,
		"vehicle_number": number,
		"price":          billing.FormatAmount(price),
		"created_by":     actor,
	}).Info("night session recorded")

	resp := night.ToResponse()
	return &resp, nil
}

func (s *Service) GetNightSession(ctx context.Context, id string) (*models.NightSessionResponse, error) {
	n, err := s.store.GetNightSession(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := n.ToResponse()
	return &resp, nil
}

func (s *Service) ListNightSessions(ctx context.Context, q database.ListQuery) (database.Page[models.NightSessionResponse], error) {
	page, err := s.store.ListNightSessions(ctx, s.listQuery(q))
	if err != nil {
		return database.Page[models.NightSessionResponse]{}, err
	}
	return mapPage(page, func(n models.NightSession) models.NightSessionResponse { return n.ToResponse() }), nil
}

func (s *Service) NightPaidTotal(ctx context.Context) (float64, error) {
	return s.store.SumNightPaid(ctx)
}

// UpdateNightSession applies a super-admin edit. A new price re-derives the paid flag.
func (s *Service) UpdateNightSession(ctx context.Context, id string, patch NightPatch, actor string) (*models.NightSessionResponse, error) {
	if patch.Price == nil && patch.Timestamp == nil {
		return nil, billing.Validation("no valid fields to update")
	}
	fields := map[string]any{"updated_at": s.clock.Now()}

	if patch.Timestamp != nil {
		if patch.Timestamp.IsZero() {
			return nil, billing.Validation("invalid timestamp")
		}
		fields["parked_at"] = *patch.Timestamp
	}
	if patch.Price != nil {
		if err := checkPrice(*patch.Price); err != nil {
			return nil, err
		}
		current, err := s.store.LoadBalance(ctx, billing.KindNight, id)
		if err != nil {
			return nil, err
		}
		fields["price"] = billing.Round(*patch.Price)
		fields["paid"] = billing.Settle(current.PaidAmount, *patch.Price).Paid
	}

	if err := s.store.UpdateNightSession(ctx, id, fields); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"session_id": id, "updated_by": actor}).Info("night session updated")
	return s.GetNightSession(ctx, id)
}

func (s *Service) DeleteNightSession(ctx context.Context, id, actor string) error {
	if err := s.store.DeleteNightSession(ctx, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"session_id": id, "deleted_by": actor}).Info("night session deleted")
	return nil
}
