package database

import (
	"context"

	"gorm.io/gorm"

	"parkdesk/billing"
	"parkdesk/models"
)

func (s *Store) CreateHourlySession(ctx context.Context, h *models.HourlySession) error {
	if err := s.db.WithContext(ctx).Create(h).Error; err != nil {
		if isDuplicateKey(err) {
			return &billing.Error{Kind: billing.ErrState, Message: "timer already settled", Err: err}
		}
		return billing.Storage("failed to create hourly session", err)
	}
	return nil
}

func (s *Store) GetHourlySession(ctx context.Context, id string) (*models.HourlySession, error) {
	var h models.HourlySession
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&h).Error; err != nil {
		return nil, notFoundOr(err, "hourly session")
	}
	return &h, nil
}

// ListHourlySessions returns one page, newest first.
func (s *Store) ListHourlySessions(ctx context.Context, q ListQuery) (Page[models.HourlySession], error) {
	q = q.normalized()
	base := s.db.WithContext(ctx).Model(&models.HourlySession{}).Scopes(scopeList(q, "total_price"))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page[models.HourlySession]{}, billing.Storage("failed to count hourly sessions", err)
	}

	var items []models.HourlySession
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC").Order("id").
		Offset(q.offset()).Limit(q.PageSize).
		Find(&items).Error
	if err != nil {
		return Page[models.HourlySession]{}, billing.Storage("failed to list hourly sessions", err)
	}
	return newPage(items, total, q, func(h models.HourlySession) float64 { return h.PaidAmount }), nil
}

// UpdateHourlySession writes the given columns of one session.
func (s *Store) UpdateHourlySession(ctx context.Context, id string, fields map[string]any) error {
	return s.update(ctx, &models.HourlySession{}, "hourly session", id, fields)
}

func (s *Store) DeleteHourlySession(ctx context.Context, id string) error {
	return s.delete(ctx, &models.HourlySession{}, "hourly session", id)
}

// SumHourlyPaid is the paid amount across all hourly sessions.
func (s *Store) SumHourlyPaid(ctx context.Context) (float64, error) {
	return s.sumPaid(ctx, &models.HourlySession{}, "hourly sessions")
}

func (s *Store) sumPaid(ctx context.Context, model any, what string) (float64, error) {
	var sum float64
	err := s.db.WithContext(ctx).Model(model).
		Select("COALESCE(SUM(paid_amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, billing.Storage("failed to sum "+what, err)
	}
	return billing.Round(sum), nil
}

func (s *Store) update(ctx context.Context, model any, what, id string, fields map[string]any) error {
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return billing.Storage("failed to update "+what, res.Error)
	}
	if res.RowsAffected == 0 {
		return s.ensureExists(ctx, payable{model: model, name: what}, id)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, model any, what, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return billing.Storage("failed to delete "+what, res.Error)
	}
	if res.RowsAffected == 0 {
		return &billing.Error{Kind: billing.ErrNotFound, Message: what + " not found", Err: gorm.ErrRecordNotFound}
	}
	return nil
}
