package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a single GPS ping for a vehicle. Locations are immutable
// after creation; RecordedAt is stamped by the service at write time and
// never trusted from the caller.
type Location struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	VehicleID  uuid.UUID  `json:"vehicle_id" db:"vehicle_id"`
	Latitude   float64    `json:"latitude" db:"latitude"`
	Longitude  float64    `json:"longitude" db:"longitude"`
	Speed      *float64   `json:"speed" db:"speed"`
	RecordedAt time.Time  `json:"recorded_at" db:"recorded_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at" db:"updated_at"`
	IsDeleted  bool       `json:"is_deleted" db:"is_deleted"`
}
