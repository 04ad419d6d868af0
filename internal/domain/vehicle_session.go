package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type VehicleSessionStatus string

const (
	SessionActive     VehicleSessionStatus = "active"
	SessionCompleted  VehicleSessionStatus = "completed"
	SessionIncomplete VehicleSessionStatus = "incomplete" // exit observed without a matching entry
)

type VehicleSession struct {
	ID              int                  `json:"id"`
	PlateNumber     string               `json:"plate_number"`
	EntryTime       null.Time            `json:"entry_time"`
	ExitTime        null.Time            `json:"exit_time"`
	MemberStatus    MemberStatus         `json:"member_status"`
	DurationMinutes null.Int             `json:"duration_minutes"`
	Status          VehicleSessionStatus `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

type VehicleSessionFilterDTO struct {
	Status *string `form:"status"`
	Plate  *string `form:"plate"`
	Limit  *int    `form:"limit"`
}
