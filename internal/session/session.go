// Package session holds the single result slot the UI renders from. Every
// request overwrites the slot when it finishes; nothing is canceled, so a slow
// response can replace a newer one.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/fakhrymubarak/weather-lookup/internal/config"
	"github.com/fakhrymubarak/weather-lookup/internal/model"
	"github.com/fakhrymubarak/weather-lookup/internal/service"
)

type State int

const (
	StatePending State = iota
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "pending"
	}
}

// ErrorKind names the failures that reach the UI.
type ErrorKind string

const (
	KindNone                ErrorKind = ""
	KindCityNotFound        ErrorKind = "CityNotFound"
	KindLocationUnavailable ErrorKind = "LocationUnavailable"
)

type Result struct {
	State     State
	Reading   *model.WeatherReading
	Err       error
	Kind      ErrorKind
	RequestID string
}

// Classify maps a service error onto the kind shown to the user.
func Classify(err error) ErrorKind {
	var notFound *service.CityNotFoundError
	var unavailable *service.LocationUnavailableError
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &notFound):
		return KindCityNotFound
	case errors.As(err, &unavailable):
		return KindLocationUnavailable
	default:
		return KindNone
	}
}

type Session struct {
	svc service.WeatherServiceInterface

	mu      sync.Mutex
	current Result
}

func New(svc service.WeatherServiceInterface) *Session {
	return &Session{svc: svc, current: Result{State: StatePending}}
}

func (s *Session) Service() service.WeatherServiceInterface {
	return s.svc
}

// Current returns the slot as last written.
func (s *Session) Current() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) begin() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.current = Result{State: StatePending, RequestID: id}
	s.mu.Unlock()
	return id
}

func (s *Session) finish(id string, reading *model.WeatherReading, err error) Result {
	r := Result{State: StateSuccess, Reading: reading, RequestID: id}
	if err != nil {
		r = Result{State: StateFailure, Err: err, Kind: Classify(err), RequestID: id}
	}
	s.mu.Lock()
	if s.current.RequestID != id {
		config.GetLogger().Debugw("Overwriting newer result", "request_id", id, "newer_request_id", s.current.RequestID)
	}
	s.current = r
	s.mu.Unlock()
	return r
}

// SearchCity looks up city and stores the outcome.
func (s *Session) SearchCity(ctx context.Context, city string) Result {
	id := s.begin()
	reading, err := s.svc.GetByCity(ctx, city)
	return s.finish(id, reading, err)
}

// Locate looks up the reading for coords. A nil coords means the caller has
// no geolocation capability; demo mode still answers with the default city.
func (s *Session) Locate(ctx context.Context, coords *model.Coordinates) Result {
	return s.locate(ctx, coords, service.ReasonGeolocationAbsent)
}

// LocateDenied records a location request the user refused to share a
// position for.
func (s *Session) LocateDenied(ctx context.Context) Result {
	return s.locate(ctx, nil, service.ReasonPermissionDenied)
}

func (s *Session) locate(ctx context.Context, coords *model.Coordinates, reason string) Result {
	id := s.begin()
	if coords == nil {
		if s.svc.Mode() == service.ModeMock {
			reading, err := s.svc.GetByCoordinates(ctx, 0, 0)
			return s.finish(id, reading, err)
		}
		return s.finish(id, nil, &service.LocationUnavailableError{Reason: reason})
	}
	reading, err := s.svc.GetByCoordinates(ctx, coords.Lat, coords.Lon)
	return s.finish(id, reading, err)
}

// ToggleDemoMode flips demo mode and resets the slot to pending. History is kept.
func (s *Session) ToggleDemoMode() error {
	if _, err := s.svc.ToggleDemoMode(); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = Result{State: StatePending}
	s.mu.Unlock()
	return nil
}
