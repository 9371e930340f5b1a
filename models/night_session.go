package models

import (
	"time"

	"gorm.io/gorm"

	"parkdesk/billing"
)

// NightSession is a flat-rate overnight record.
type NightSession struct {
	ID            string    `gorm:"primaryKey;size:36;column:id" json:"id"`
	VehicleNumber string    `gorm:"size:32;index;not null;column:vehicle_number" json:"vehicleNumber"`
	Timestamp     time.Time `gorm:"not null;column:parked_at" json:"timestamp"`
	Price         float64   `gorm:"type:decimal(10,2);not null;default:0;column:price" json:"price"`
	PaidAmount    float64   `gorm:"type:decimal(10,2);not null;default:0;column:paid_amount" json:"paidAmount"`
	Paid          bool      `gorm:"not null;default:false;column:paid" json:"paid"`
	CreatedBy     string    `gorm:"size:255;column:created_by" json:"createdBy,omitempty"`
	CreatedAt     time.Time `gorm:"index;column:created_at" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (NightSession) TableName() string {
	return "night_sessions"
}

func (n *NightSession) BeforeCreate(tx *gorm.DB) error {
	assignID(&n.ID)
	return nil
}

type NightSessionResponse struct {
	NightSession
	Payment billing.StatusView `json:"payment"`
}

func (n *NightSession) ToResponse() NightSessionResponse {
	return NightSessionResponse{
		NightSession: *n,
		Payment:      billing.DeriveStatus(n.Paid, n.PaidAmount, n.Price),
	}
}
