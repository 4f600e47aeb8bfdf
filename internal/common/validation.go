package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Accepts the older ABC-1234 style (hyphen optional) and the Mercosul
// ABC1D23 style.
var platePattern = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z0-9][0-9]{2}$|^[A-Z]{3}-?[0-9]{4}$`)

const (
	MinVehicleYear = 1980
	MaxModelLength = 100
	MaxPlateLength = 8
	MaxSpeedKmh    = 300.0
)

// NormalizePlate uppercases and trims a plate so comparisons and storage
// are case-insensitive.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// ValidatePlate expects an already-normalized plate.
func ValidatePlate(plate string) error {
	if plate == "" {
		return fmt.Errorf("plate is required")
	}
	if len(plate) > MaxPlateLength {
		return fmt.Errorf("plate cannot exceed %d characters", MaxPlateLength)
	}
	if !platePattern.MatchString(plate) {
		return fmt.Errorf("plate must be in a valid format (ABC-1234 or ABC1D23)")
	}
	return nil
}

func ValidateModel(model string) error {
	if strings.TrimSpace(model) == "" {
		return fmt.Errorf("model is required")
	}
	if len(model) > MaxModelLength {
		return fmt.Errorf("model cannot exceed %d characters", MaxModelLength)
	}
	return nil
}

func ValidateYear(year int) error {
	maxYear := time.Now().Year() + 1
	if year < MinVehicleYear {
		return fmt.Errorf("year must be %d or later", MinVehicleYear)
	}
	if year > maxYear {
		return fmt.Errorf("year cannot be greater than %d", maxYear)
	}
	return nil
}

// Coordinate and speed bounds are inclusive.

func ValidateLatitude(latitude float64) error {
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 degrees")
	}
	return nil
}

func ValidateLongitude(longitude float64) error {
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 degrees")
	}
	return nil
}

func ValidateSpeed(speed *float64) error {
	if speed == nil {
		return nil // speed is optional
	}
	if *speed < 0 {
		return fmt.Errorf("speed cannot be negative")
	}
	if *speed > MaxSpeedKmh {
		return fmt.Errorf("speed cannot exceed %.0f km/h", MaxSpeedKmh)
	}
	return nil
}

// ValidateUUID parses a path or query id and names the field in the error.
func ValidateUUID(idStr, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID", fieldName)
	}
	return id, nil
}

// ParseDate accepts RFC3339 timestamps or bare YYYY-MM-DD dates. Empty
// input yields a nil bound.
func ParseDate(value, fieldName string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("%s must be an RFC3339 timestamp or YYYY-MM-DD date", fieldName)
	}
	return &t, nil
}

// NormalizePageParams applies the pagination contract: page below 1 is
// treated as 1, a page size outside [1,100] falls back to the caller's
// default.
func NormalizePageParams(page, pageSize, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = defaultSize
	}
	return page, pageSize
}
