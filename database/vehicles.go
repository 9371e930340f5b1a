package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"parkdesk/billing"
	"parkdesk/models"
)

func (s *Store) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	if err := s.db.WithContext(ctx).Create(v).Error; err != nil {
		return billing.Storage("failed to register vehicle", err)
	}
	return nil
}

// GetVehicle loads a vehicle with its renewal history, oldest entry first.
func (s *Store) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	var v models.Vehicle
	err := s.db.WithContext(ctx).
		Preload("Renewals", func(db *gorm.DB) *gorm.DB {
			return db.Order("renewed_at ASC").Order("id")
		}).
		Where("id = ?", id).
		Take(&v).Error
	if err != nil {
		return nil, notFoundOr(err, "vehicle")
	}
	return &v, nil
}

// ListVehicles returns one page, newest first. Status "active" keeps vehicles whose expiry is
// after q.Now, "expired" the rest.
func (s *Store) ListVehicles(ctx context.Context, q ListQuery) (Page[models.Vehicle], error) {
	q = q.normalized()
	base := s.db.WithContext(ctx).Model(&models.Vehicle{}).Scopes(scopeList(q, "price"))
	switch q.Status {
	case "active":
		base = base.Where("expires_at > ?", q.Now)
	case "expired":
		base = base.Where("expires_at <= ?", q.Now)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page[models.Vehicle]{}, billing.Storage("failed to count vehicles", err)
	}

	var items []models.Vehicle
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC").Order("id").
		Offset(q.offset()).Limit(q.PageSize).
		Find(&items).Error
	if err != nil {
		return Page[models.Vehicle]{}, billing.Storage("failed to list vehicles", err)
	}
	return newPage(items, total, q, func(v models.Vehicle) float64 { return v.PaidAmount }), nil
}

func (s *Store) UpdateVehicle(ctx context.Context, id string, fields map[string]any) error {
	return s.update(ctx, &models.Vehicle{}, "vehicle", id, fields)
}

// DeleteVehicle removes a vehicle and its renewal history.
func (s *Store) DeleteVehicle(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("vehicle_id = ?", id).Delete(&models.Renewal{}).Error; err != nil {
			return billing.Storage("failed to delete renewal history", err)
		}
		return NewStore(tx).delete(ctx, &models.Vehicle{}, "vehicle", id)
	})
}

// RecentVehicles returns the latest registrations.
func (s *Store) RecentVehicles(ctx context.Context, limit int) ([]models.Vehicle, error) {
	var list []models.Vehicle
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, billing.Storage("failed to list vehicles", err)
	}
	return list, nil
}

// PlanStat aggregates vehicles of one plan type.
type PlanStat struct {
	PlanType string  `json:"planType"`
	Count    int64   `json:"count"`
	Amount   float64 `json:"amount"`
}

// PlanStats groups vehicles registered in [from, to) by plan type.
func (s *Store) PlanStats(ctx context.Context, from, to time.Time) ([]PlanStat, error) {
	var stats []PlanStat
	err := s.db.WithContext(ctx).Model(&models.Vehicle{}).
		Select("plan_type, COUNT(*) AS count, COALESCE(SUM(price), 0) AS amount").
		Where("register_date >= ? AND register_date < ?", from, to).
		Group("plan_type").
		Order("plan_type").
		Scan(&stats).Error
	if err != nil {
		return nil, billing.Storage("failed to aggregate vehicles", err)
	}
	return stats, nil
}
