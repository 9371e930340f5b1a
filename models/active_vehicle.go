package models

import (
	"time"

	"gorm.io/gorm"

	"parkdesk/billing"
)

// ActiveVehicle is a running hourly timer. At most one exists per vehicle number.
type ActiveVehicle struct {
	ID            string    `gorm:"primaryKey;size:36;column:id" json:"id"`
	VehicleNumber string    `gorm:"size:32;uniqueIndex;not null;column:vehicle_number" json:"vehicleNumber"`
	HourlyRate    float64   `gorm:"type:decimal(10,2);not null;column:hourly_rate" json:"hourlyRate"`
	StartTime     time.Time `gorm:"not null;column:start_time" json:"startTime"`
	CreatedBy     string    `gorm:"size:255;column:created_by" json:"createdBy,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (ActiveVehicle) TableName() string {
	return "active_hourly_vehicles"
}

func (a *ActiveVehicle) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// ActiveVehicleResponse carries the live fee next to the timer.
type ActiveVehicleResponse struct {
	ID            string            `json:"id"`
	VehicleNumber string            `json:"vehicleNumber"`
	HourlyRate    float64           `json:"hourlyRate"`
	StartTime     time.Time         `json:"startTime"`
	CreatedBy     string            `json:"createdBy,omitempty"`
	Live          billing.HourlyFee `json:"live"`
}

func (a *ActiveVehicle) ToResponse(live billing.HourlyFee) ActiveVehicleResponse {
	return ActiveVehicleResponse{
		ID:            a.ID,
		VehicleNumber: a.VehicleNumber,
		HourlyRate:    a.HourlyRate,
		StartTime:     a.StartTime,
		CreatedBy:     a.CreatedBy,
		Live:          live,
	}
}
