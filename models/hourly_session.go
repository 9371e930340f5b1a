package models

import (
	"time"

	"gorm.io/gorm"

	"parkdesk/billing"
)

// HourlySession is a settled (or manually entered) hourly parking session.
//
// ActiveVehicleID points back to the timer it was stopped from, so a stop that failed between
// inserting the session and deleting the timer can be completed later.
type HourlySession struct {
	ID              string    `gorm:"primaryKey;size:36;column:id" json:"id"`
	ActiveVehicleID *string   `gorm:"size:36;uniqueIndex;column:active_vehicle_id" json:"activeVehicleId,omitempty"`
	VehicleNumber   string    `gorm:"size:32;index;not null;column:vehicle_number" json:"vehicleNumber"`
	HourlyRate      float64   `gorm:"type:decimal(10,2);not null;column:hourly_rate" json:"hourlyRate"`
	StartTime       time.Time `gorm:"not null;column:start_time" json:"startTime"`
	EndTime         time.Time `gorm:"not null;column:end_time" json:"endTime"`
	ElapsedMinutes  int       `gorm:"not null;default:0;column:elapsed_minutes" json:"elapsedMinutes"`
	BillableMinutes int       `gorm:"not null;default:0;column:billable_minutes" json:"billableMinutes"`
	BillableHours   int       `gorm:"not null;default:1;column:billable_hours" json:"billableHours"`
	BufferApplied   bool      `gorm:"not null;default:false;column:buffer_applied" json:"bufferApplied"`
	TotalPrice      float64   `gorm:"type:decimal(10,2);not null;default:0;column:total_price" json:"totalPrice"`
	PaidAmount      float64   `gorm:"type:decimal(10,2);not null;default:0;column:paid_amount" json:"paidAmount"`
	Paid            bool      `gorm:"not null;default:false;column:paid" json:"paid"`
	CreatedBy       string    `gorm:"size:255;column:created_by" json:"createdBy,omitempty"`
	CreatedAt       time.Time `gorm:"index;column:created_at" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (HourlySession) TableName() string {
	return "hourly_sessions"
}

func (h *HourlySession) BeforeCreate(tx *gorm.DB) error {
	assignID(&h.ID)
	return nil
}

// ApplyFee copies a tariff breakdown onto the session.
func (h *HourlySession) ApplyFee(fee billing.HourlyFee) {
	h.ElapsedMinutes = fee.ElapsedMinutes
	h.BillableMinutes = fee.BillableMinutes
	h.BillableHours = fee.BillableHours
	h.BufferApplied = fee.BufferApplied
	h.TotalPrice = fee.TotalPrice
}

type HourlySessionResponse struct {
	HourlySession
	Payment billing.StatusView `json:"payment"`
}

func (h *HourlySession) ToResponse() HourlySessionResponse {
	return HourlySessionResponse{
		HourlySession: *h,
		Payment:       billing.DeriveStatus(h.Paid, h.PaidAmount, h.TotalPrice),
	}
}
