package service

import (
	"errors"
	"fmt"
)

var (
	// ErrWeatherService marks failures that are neither a missing city nor an unavailable location.
	ErrWeatherService = errors.New("weather service error")
	// ErrDemoModeLocked is returned when leaving demo mode without a usable credential.
	ErrDemoModeLocked = errors.New("demo mode cannot be disabled without a weather API key")
)

// Messages shown when no position can be obtained.
const (
	ReasonLookupFailed      = "Unable to retrieve weather for your location"
	ReasonPermissionDenied  = "Unable to retrieve your location"
	ReasonGeolocationAbsent = "Geolocation is not supported by your browser"
)

// CityNotFoundError is a failed live lookup by city name.
type CityNotFoundError struct {
	City string
	Err  error
}

func (e *CityNotFoundError) Error() string {
	return fmt.Sprintf("city not found: %s", e.City)
}

func (e *CityNotFoundError) Unwrap() error {
	return e.Err
}

// LocationUnavailableError is a failed lookup by position, or no position at all.
type LocationUnavailableError struct {
	Reason string
	Err    error
}

func (e *LocationUnavailableError) Error() string {
	return e.Reason
}

func (e *LocationUnavailableError) Unwrap() error {
	return e.Err
}
