package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"parkdesk/billing"
	"parkdesk/models"
)

// CreateActiveVehicle inserts a running timer. A second timer for the same vehicle number is a
// state error, caught by the lookup first and by the unique index under a race.
func (s *Store) CreateActiveVehicle(ctx context.Context, a *models.ActiveVehicle) error {
	db := s.db.WithContext(ctx)

	var existing models.ActiveVehicle
	err := db.Select("id").Where("vehicle_number = ?", a.VehicleNumber).Take(&existing).Error
	switch {
	case err == nil:
		return billing.State("vehicle already active")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return billing.Storage("failed to check active vehicle", err)
	}

	if err := db.Create(a).Error; err != nil {
		if isDuplicateKey(err) {
			return &billing.Error{Kind: billing.ErrState, Message: "vehicle already active", Err: err}
		}
		return billing.Storage("failed to start timer", err)
	}
	return nil
}

func (s *Store) GetActiveVehicle(ctx context.Context, id string) (*models.ActiveVehicle, error) {
	var a models.ActiveVehicle
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&a).Error; err != nil {
		return nil, notFoundOr(err, "active vehicle")
	}
	return &a, nil
}

// ListActiveVehicles returns all running timers, newest first.
func (s *Store) ListActiveVehicles(ctx context.Context) ([]models.ActiveVehicle, error) {
	var list []models.ActiveVehicle
	if err := s.db.WithContext(ctx).Order("start_time DESC").Find(&list).Error; err != nil {
		return nil, billing.Storage("failed to list active vehicles", err)
	}
	return list, nil
}

func (s *Store) CountActiveVehicles(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.ActiveVehicle{}).Count(&n).Error; err != nil {
		return 0, billing.Storage("failed to count active vehicles", err)
	}
	return n, nil
}

// DeleteActiveVehicle removes a timer. Deleting one that is already gone is a NotFound error.
func (s *Store) DeleteActiveVehicle(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ActiveVehicle{})
	if res.Error != nil {
		return billing.Storage("failed to delete active vehicle", res.Error)
	}
	if res.RowsAffected == 0 {
		return &billing.Error{Kind: billing.ErrNotFound, Message: "active vehicle not found", Err: gorm.ErrRecordNotFound}
	}
	return nil
}

// FindSessionForTimer returns the hourly session already written for a timer, or nil.
func (s *Store) FindSessionForTimer(ctx context.Context, activeID string) (*models.HourlySession, error) {
	var h models.HourlySession
	err := s.db.WithContext(ctx).Where("active_vehicle_id = ?", activeID).Take(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, billing.Storage("failed to load hourly session", err)
	}
	return &h, nil
}

// SweepSettledTimers deletes timers whose hourly session has already been written, the leftover
// of a stop that failed after inserting the session.
func (s *Store) SweepSettledTimers(ctx context.Context) (int64, error) {
	db := s.db.WithContext(ctx)
	settled := db.Model(&models.HourlySession{}).
		Select("active_vehicle_id").
		Where("active_vehicle_id IS NOT NULL")
	res := db.Where("id IN (?)", settled).Delete(&models.ActiveVehicle{})
	if res.Error != nil {
		return 0, billing.Storage("failed to sweep active vehicles", res.Error)
	}
	return res.RowsAffected, nil
}
