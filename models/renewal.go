package models

import (
	"time"

	"gorm.io/gorm"

	"parkdesk/billing"
)

// Renewal is one entry of a vehicle's renewal history. Rows are only ever inserted.
type Renewal struct {
	ID             string    `gorm:"primaryKey;size:36;column:id" json:"id"`
	VehicleID      string    `gorm:"size:36;index;not null;column:vehicle_id" json:"vehicleId"`
	RenewedAt      time.Time `gorm:"not null;column:renewed_at" json:"renewedAt"`
	PreviousExpiry time.Time `gorm:"column:previous_expiry" json:"previousExpiry"`
	NewExpiry      time.Time `gorm:"column:new_expiry" json:"newExpiry"`
	PaymentAmount  *float64  `gorm:"type:decimal(10,2);column:payment_amount" json:"paymentAmount,omitempty"`
	RenewedBy      string    `gorm:"size:255;column:renewed_by" json:"renewedBy,omitempty"`
}

func (Renewal) TableName() string {
	return "vehicle_renewals"
}

func (r *Renewal) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

func NewRenewal(vehicleID string, entry billing.RenewalEntry) Renewal {
	return Renewal{
		VehicleID:      vehicleID,
		RenewedAt:      entry.RenewedAt,
		PreviousExpiry: entry.PreviousExpiry,
		NewExpiry:      entry.NewExpiry,
		PaymentAmount:  entry.PaymentAmount,
		RenewedBy:      entry.RenewedBy,
	}
}
