package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"parkdesk/billing"
	"parkdesk/models"
)

type StartTimerInput struct {
	VehicleNumber string
	// HourlyRate defaults to the configured rate when nil.
	HourlyRate *float64
}

// StartTimer opens an hourly timer for a vehicle that has none running.
func (s *Service) StartTimer(ctx context.Context, in StartTimerInput, actor string) (*models.ActiveVehicleResponse, error) {
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

	active := &models.ActiveVehicle{
		VehicleNumber: number,
		HourlyRate:    rate,
		StartTime:     s.clock.Now(),
		CreatedBy:     actor,
	}
	if err := s.store.CreateActiveVehicle(ctx, active); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"id":             active.ID,
		"vehicle_number": number,
		"hourly_rate":    billing.FormatAmount(rate),
		"created_by":     actor,
	}).Info("timer started")
	s.recorder.TimerStarted()

	resp := active.ToResponse(billing.ComputeLiveFee(s.clock, active.StartTime, active.HourlyRate))
	return &resp, nil
}

// ListTimers returns every running timer with its fee as of now.
func (s *Service) ListTimers(ctx context.Context) ([]models.ActiveVehicleResponse, error) {
	list, err := s.store.ListActiveVehicles(ctx)
	if err != nil {
		return nil, err
	}
	s.recorder.SetActiveTimers(len(list))

	out := make([]models.ActiveVehicleResponse, len(list))
	for i := range list {
		out[i] = list[i].ToResponse(billing.ComputeLiveFee(s.clock, list[i].StartTime, list[i].HourlyRate))
	}
	return out, nil
}

// StopTimer settles a timer into an hourly session and removes it.
//
// The session is written first and the timer deleted second. If the delete fails the session
// still stands; stopping the same timer again returns that session, and the sweep removes the
// timer eventually.
func (s *Service) StopTimer(ctx context.Context, id string, paid bool, actor string) (*models.HourlySessionResponse, error) {
	active, err := s.store.GetActiveVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	logger := s.log.WithFields(logrus.Fields{
		"active_id":      active.ID,
		"vehicle_number": active.VehicleNumber,
	})

	session, err := s.store.FindSessionForTimer(ctx, active.ID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		logger.WithField("session_id", session.ID).Warn("timer already settled, completing stop")
	} else {
		session, err = s.settleTimer(ctx, active, paid, actor)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"session_id":     session.ID,
			"billable_hours": session.BillableHours,
			"total_price":    billing.FormatAmount(session.TotalPrice),
			"paid":           session.Paid,
		}).Info("timer stopped")
		s.recorder.SessionSettled("timer")
	}

	if err := s.store.DeleteActiveVehicle(ctx, active.ID); err != nil && !errors.Is(err, billing.ErrNotFound) {
		logger.WithError(err).Error("failed to remove stopped timer, leaving it to the sweep")
	}

	resp := session.ToResponse()
	return &resp, nil
}

func (s *Service) settleTimer(ctx context.Context, active *models.ActiveVehicle, paid bool, actor string) (*models.HourlySession, error) {
	end := s.clock.Now()
	fee := billing.ComputeHourlyFee(active.StartTime, end, active.HourlyRate)

	activeID := active.ID
	session := &models.HourlySession{
		ActiveVehicleID: &activeID,
		VehicleNumber:   active.VehicleNumber,
		HourlyRate:      active.HourlyRate,
		StartTime:       active.StartTime,
		EndTime:         end,
		CreatedBy:       actor,
	}
	session.ApplyFee(fee)

	paidAmount := 0.0
	if paid {
		paidAmount = fee.TotalPrice
	}
	settled := billing.Settle(paidAmount, fee.TotalPrice)
	session.PaidAmount = settled.PaidAmount
	session.Paid = settled.Paid

	err := s.store.CreateHourlySession(ctx, session)
	if errors.Is(err, billing.ErrState) {
		// A concurrent stop won the unique index; use its session.
		existing, findErr := s.store.FindSessionForTimer(ctx, activeID)
		if findErr != nil {
			return nil, findErr
		}
		if existing != nil {
			return existing, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CancelTimer discards a timer without billing it.
func (s *Service) CancelTimer(ctx context.Context, id, actor string) error {
	if err := s.store.DeleteActiveVehicle(ctx, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"active_id": id, "cancelled_by": actor}).Info("timer cancelled")
	return nil
}

// SweepSettledTimers removes timers left behind by interrupted stops.
func (s *Service) SweepSettledTimers(ctx context.Context) (int64, error) {
	n, err := s.store.SweepSettledTimers(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.WithField("count", n).Warn("removed timers that were already settled")
		s.recorder.OrphansSwept(int(n))
	}
	if count, err := s.store.CountActiveVehicles(ctx); err == nil {
		s.recorder.SetActiveTimers(int(count))
	}
	return n, nil
}
