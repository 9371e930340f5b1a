package services

import (
	"context"
	"time"

	"parkdesk/billing"
	"parkdesk/database"
	"parkdesk/models"
)

const recentVehicleLimit = 50

type Dashboard struct {
	MonthStart   time.Time                `json:"monthStart"`
	Plans        []database.PlanStat      `json:"plans"`
	GrandCount   int64                    `json:"grandCount"`
	GrandTotal   float64                  `json:"grandTotal"`
	HourlyPaid   float64                  `json:"hourlyPaid"`
	NightPaid    float64                  `json:"nightPaid"`
	ActiveTimers int64                    `json:"activeTimers"`
	Recent       []models.VehicleResponse `json:"recentVehicles"`
}

// Dashboard summarises vehicles registered in the current calendar month by plan, alongside
// session revenue and running timers.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)

	plans, err := s.store.PlanStats(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	d := &Dashboard{MonthStart: monthStart, Plans: plans}
	if d.Plans == nil {
		d.Plans = []database.PlanStat{}
	}
	for _, p := range plans {
		d.GrandCount += p.Count
		d.GrandTotal += p.Amount
	}
	d.GrandTotal = billing.Round(d.GrandTotal)

	if d.HourlyPaid, err = s.store.SumHourlyPaid(ctx); err != nil {
		return nil, err
	}
	if d.NightPaid, err = s.store.SumNightPaid(ctx); err != nil {
		return nil, err
	}
	if d.ActiveTimers, err = s.store.CountActiveVehicles(ctx); err != nil {
		return nil, err
	}

	recent, err := s.store.RecentVehicles(ctx, recentVehicleLimit)
	if err != nil {
		return nil, err
	}
	d.Recent = make([]models.VehicleResponse, len(recent))
	for i := range recent {
		d.Recent[i] = recent[i].ToResponse(now)
	}
	return d, nil
}
