package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VehicleStatus is the operational state of a vehicle. Transitions are
// unrestricted: any defined status may follow any other.
type VehicleStatus int

const (
	StatusActive      VehicleStatus = 1
	StatusProtected   VehicleStatus = 2
	StatusStolen      VehicleStatus = 3
	StatusMaintenance VehicleStatus = 4
)

var statusNames = map[VehicleStatus]string{
	StatusActive:      "Active",
	StatusProtected:   "Protected",
	StatusStolen:      "Stolen",
	StatusMaintenance: "Maintenance",
}

func (s VehicleStatus) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s VehicleStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// ParseVehicleStatus accepts either the numeric code or the status name,
// case-insensitive.
func ParseVehicleStatus(value string) (VehicleStatus, error) {
	value = strings.TrimSpace(value)
	if code, err := strconv.Atoi(value); err == nil {
		status := VehicleStatus(code)
		if !status.IsValid() {
			return 0, fmt.Errorf("invalid vehicle status code %d", code)
		}
		return status, nil
	}
	for status, name := range statusNames {
		if strings.EqualFold(name, value) {
			return status, nil
		}
	}
	return 0, fmt.Errorf("invalid vehicle status %q", value)
}

// VehicleBrand is the closed set of supported manufacturers.
type VehicleBrand int

const (
	BrandToyota VehicleBrand = iota + 1
	BrandVolkswagen
	BrandChevrolet
	BrandFord
	BrandFiat
	BrandHonda
	BrandHyundai
	BrandRenault
	BrandNissan
	BrandJeep
)

var brandNames = map[VehicleBrand]string{
	BrandToyota:     "Toyota",
	BrandVolkswagen: "Volkswagen",
	BrandChevrolet:  "Chevrolet",
	BrandFord:       "Ford",
	BrandFiat:       "Fiat",
	BrandHonda:      "Honda",
	BrandHyundai:    "Hyundai",
	BrandRenault:    "Renault",
	BrandNissan:     "Nissan",
	BrandJeep:       "Jeep",
}

func (b VehicleBrand) IsValid() bool {
	_, ok := brandNames[b]
	return ok
}

func (b VehicleBrand) String() string {
	if name, ok := brandNames[b]; ok {
		return name
	}
	return "Unknown"
}

// Vehicle is a registered fleet vehicle. Plates are stored
// uppercase-normalized and are unique among non-deleted rows.
type Vehicle struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	Plate     string        `json:"plate" db:"plate"`
	Brand     VehicleBrand  `json:"brand" db:"brand"`
	Model     string        `json:"model" db:"model"`
	Year      int           `json:"year" db:"year"`
	Status    VehicleStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time    `json:"updated_at" db:"updated_at"`
	IsDeleted bool          `json:"is_deleted" db:"is_deleted"`
}
