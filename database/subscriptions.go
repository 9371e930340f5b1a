package database

import (
	"context"

	"gorm.io/gorm"

	"parkdesk/billing"
	"parkdesk/models"
)

func (s *Store) LoadSubscription(ctx context.Context, id string) (billing.Subscription, error) {
	var v models.Vehicle
	err := s.db.WithContext(ctx).
		Select("id", "plan_type", "price", "register_date", "expires_at").
		Where("id = ?", id).
		Take(&v).Error
	if err != nil {
		return billing.Subscription{}, notFoundOr(err, "vehicle")
	}
	return v.Subscription(), nil
}

// SaveRenewal moves the validity window, optionally resets payment and appends the history
// entry in one transaction.
func (s *Store) SaveRenewal(ctx context.Context, id string, update billing.RenewalUpdate) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{
			"register_date": update.RegisterDate,
			"expires_at":    update.ExpiresAt,
			"renewed_by":    update.RenewedBy,
			"updated_at":    update.UpdatedAt,
		}
		if update.Payment != nil {
			fields["paid_amount"] = update.Payment.PaidAmount
			fields["paid"] = update.Payment.Paid
		}

		res := tx.Model(&models.Vehicle{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return billing.Storage("failed to renew vehicle", res.Error)
		}
		if res.RowsAffected == 0 {
			return &billing.Error{Kind: billing.ErrNotFound, Message: "vehicle not found", Err: gorm.ErrRecordNotFound}
		}

		renewal := models.NewRenewal(id, update.Entry)
		if err := tx.Create(&renewal).Error; err != nil {
			return billing.Storage("failed to record renewal", err)
		}
		return nil
	})
}
