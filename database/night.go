package database

import (
	"context"

	"gorm.io/gorm"

	"parkdesk/billing"
	"parkdesk/models"
)

func (s *Store) CreateNightSession(ctx context.Context, n *models.NightSession) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return billing.Storage("failed to create night session", err)
	}
	return nil
}

func (s *Store) GetNightSession(ctx context.Context, id string) (*models.NightSession, error) {
	var n models.NightSession
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&n).Error; err != nil {
		return nil, notFoundOr(err, "night session")
	}
	return &n, nil
}

func (s *Store) ListNightSessions(ctx context.Context, q ListQuery) (Page[models.NightSession], error) {
	q = q.normalized()
	base := s.db.WithContext(ctx).Model(&models.NightSession{}).Scopes(scopeList(q, "price"))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page[models.NightSession]{}, billing.Storage("failed to count night sessions", err)
	}

	var items []models.NightSession
	err := base.Session(&gorm.Session{}).
		Order("parked_at DESC").Order("id").
		Offset(q.offset()).Limit(q.PageSize).
		Find(&items).Error
	if err != nil {
		return Page[models.NightSession]{}, billing.Storage("failed to list night sessions", err)
	}
	return newPage(items, total, q, func(n models.NightSession) float64 { return n.PaidAmount }), nil
}

func (s *Store) UpdateNightSession(ctx context.Context, id string, fields map[string]any) error {
	return s.update(ctx, &models.NightSession{}, "night session", id, fields)
}

func (s *Store) DeleteNightSession(ctx context.Context, id string) error {
	return s.delete(ctx, &models.NightSession{}, "night session", id)
}

func (s *Store) SumNightPaid(ctx context.Context) (float64, error) {
	return s.sumPaid(ctx, &models.NightSession{}, "night sessions")
}
