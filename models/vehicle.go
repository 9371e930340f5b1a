package models

import (
	"time"

	"gorm.io/gorm"

	"parkdesk/billing"
)

// Vehicle is a subscription vehicle on a monthly, weekly or bi-weekly plan.
type Vehicle struct {
	ID            string    `gorm:"primaryKey;size:36;column:id" json:"id"`
	Name          string    `gorm:"size:100;not null;column:name" json:"name"`
	VehicleNumber string    `gorm:"size:32;index;not null;column:vehicle_number" json:"vehicleNumber"`
	Phone         string    `gorm:"size:32;column:phone" json:"phone"`
	PlanType      string    `gorm:"size:20;not null;default:monthly;column:plan_type" json:"planType"`
	RegisterDate  time.Time `gorm:"not null;index;column:register_date" json:"registerDate"`
	ExpiresAt     time.Time `gorm:"index;column:expires_at" json:"expiresAt"`
	Price         float64   `gorm:"type:decimal(10,2);not null;default:0;column:price" json:"price"`
	PaidAmount    float64   `gorm:"type:decimal(10,2);not null;default:0;column:paid_amount" json:"paidAmount"`
	Paid          bool      `gorm:"not null;default:false;column:paid" json:"paid"`
	Notes         string    `gorm:"type:text;column:notes" json:"notes,omitempty"`
	CreatedBy     string    `gorm:"size:255;column:created_by" json:"createdBy,omitempty"`
	RenewedBy     string    `gorm:"size:255;column:renewed_by" json:"renewedBy,omitempty"`

	// Append-only renewal history, oldest first when preloaded.
	Renewals []Renewal `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE" json:"renewals,omitempty"`

	CreatedAt time.Time `gorm:"index;column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	assignID(&v.ID)
	return nil
}

// Subscription is the view the renewal processor works on.
func (v *Vehicle) Subscription() billing.Subscription {
	return billing.Subscription{
		ID:           v.ID,
		PlanType:     billing.ParsePlanType(v.PlanType),
		Price:        v.Price,
		RegisterDate: v.RegisterDate,
		ExpiresAt:    v.ExpiresAt,
	}
}

type VehicleResponse struct {
	Vehicle
	Expired bool               `json:"expired"`
	Payment billing.StatusView `json:"payment"`
}

// ToResponse derives the expired flag against now and the payment status.
func (v *Vehicle) ToResponse(now time.Time) VehicleResponse {
	return VehicleResponse{
		Vehicle: *v,
		Expired: !v.Subscription().CurrentExpiry().After(now),
		Payment: billing.DeriveStatus(v.Paid, v.PaidAmount, v.Price),
	}
}
