package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"parkdesk/billing"
	"parkdesk/models"
)

// payable describes where a record kind keeps its total.
type payable struct {
	model       any
	totalColumn string
	name        string
}

func payableFor(kind billing.RecordKind) (payable, error) {
	switch kind {
	case billing.KindHourly:
		return payable{&models.HourlySession{}, "total_price", "hourly session"}, nil
	case billing.KindNight:
		return payable{&models.NightSession{}, "price", "night session"}, nil
	case billing.KindVehicle:
		return payable{&models.Vehicle{}, "price", "vehicle"}, nil
	}
	return payable{}, billing.Validation("unknown record kind %q", kind)
}

type balanceRow struct {
	Total      float64
	PaidAmount float64
	Paid       bool
}

func (s *Store) LoadBalance(ctx context.Context, kind billing.RecordKind, id string) (billing.Balance, error) {
	p, err := payableFor(kind)
	if err != nil {
		return billing.Balance{}, err
	}

	var row balanceRow
	err = s.db.WithContext(ctx).Model(p.model).
		Select(fmt.Sprintf("%s AS total, paid_amount, paid", p.totalColumn)).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return billing.Balance{}, notFoundOr(err, p.name)
	}
	return billing.Balance{Total: row.Total, PaidAmount: row.PaidAmount, Paid: row.Paid}, nil
}

// SavePayment writes paid_amount, paid and updated_at in one statement.
func (s *Store) SavePayment(ctx context.Context, kind billing.RecordKind, id string, update billing.PaymentUpdate) error {
	p, err := payableFor(kind)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(p.model).
		Where("id = ?", id).
		Updates(map[string]any{
			"paid_amount": update.PaidAmount,
			"paid":        update.Paid,
			"updated_at":  update.UpdatedAt,
		})
	if res.Error != nil {
		return billing.Storage("failed to update payment", res.Error)
	}
	if res.RowsAffected == 0 {
		return s.ensureExists(ctx, p, id)
	}
	return nil
}

// ensureExists tells a missing row apart from an update that changed nothing, which MySQL also
// reports as zero affected rows.
func (s *Store) ensureExists(ctx context.Context, p payable, id string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(p.model).Where("id = ?", id).Count(&count).Error; err != nil {
		return billing.Storage("failed to load "+p.name, err)
	}
	if count == 0 {
		return &billing.Error{Kind: billing.ErrNotFound, Message: p.name + " not found", Err: gorm.ErrRecordNotFound}
	}
	return nil
}
