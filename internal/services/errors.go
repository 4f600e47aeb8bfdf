package services

import "errors"

// Domain outcomes the HTTP boundary maps to status codes. Anything else
// bubbling out of a service is a store failure and is not translated.
var (
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrLocationNotFound = errors.New("location not found")
	ErrPlateTaken       = errors.New("vehicle with this plate already exists")
)
