package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fakhrymubarak/weather-lookup/internal/config"
	"github.com/fakhrymubarak/weather-lookup/internal/history"
	"github.com/fakhrymubarak/weather-lookup/internal/mock"
	"github.com/fakhrymubarak/weather-lookup/internal/model"
	"github.com/fakhrymubarak/weather-lookup/internal/repository"
)

// Mode is the data source used for a single request.
type Mode int

const (
	ModeMock Mode = iota
	ModeLive
)

func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "mock"
}

// Credential values that ship in sample configs and never reach the live API.
var placeholderCredentials = []string{"demo", "your_api_key_here"}

// IsValidCredential reports whether key can be used against the live API.
func IsValidCredential(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	for _, p := range placeholderCredentials {
		if key == p {
			return false
		}
	}
	return true
}

// Settings is the mode configuration threaded into the service.
type Settings struct {
	Credential string
	DemoMode   bool
}

type WeatherServiceInterface interface {
	GetByCity(ctx context.Context, city string) (*model.WeatherReading, error)
	GetByCoordinates(ctx context.Context, lat, lon float64) (*model.WeatherReading, error)
	IsLiveModeAvailable() bool
	DemoMode() bool
	SetDemoMode(on bool) error
	ToggleDemoMode() (bool, error)
	Mode() Mode
}

// WeatherService picks mock or live data per request and records successful
// live city searches in the history store.
type WeatherService struct {
	WeatherRepo repository.WeatherRepository
	Mock        *mock.Resolver
	History     *history.Store

	credential string
	mu         sync.RWMutex
	demoMode   bool
}

// NewWeatherService builds the service. Demo mode is forced on when the
// credential is unusable.
func NewWeatherService(settings Settings, repo repository.WeatherRepository, store *history.Store) *WeatherService {
	if repo == nil {
		repo = repository.NewWeatherRepository(settings.Credential)
	}
	if store == nil {
		store = history.NewStore(nil)
	}
	s := &WeatherService{
		WeatherRepo: repo,
		Mock:        mock.NewResolver(),
		History:     store,
		credential:  settings.Credential,
		demoMode:    settings.DemoMode,
	}
	if !s.IsLiveModeAvailable() {
		s.demoMode = true
	}
	return s
}

func (s *WeatherService) IsLiveModeAvailable() bool {
	return IsValidCredential(s.credential)
}

func (s *WeatherService) DemoMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.demoMode
}

// SetDemoMode switches between mock and live data. Leaving demo mode requires
// a usable credential.
func (s *WeatherService) SetDemoMode(on bool) error {
	if !on && !s.IsLiveModeAvailable() {
		return ErrDemoModeLocked
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.demoMode = on
	return nil
}

// ToggleDemoMode flips demo mode in one step and returns the new value.
func (s *WeatherService) ToggleDemoMode() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.demoMode && !s.IsLiveModeAvailable() {
		return s.demoMode, ErrDemoModeLocked
	}
	s.demoMode = !s.demoMode
	return s.demoMode, nil
}

// Mode is evaluated from the current flags on every call.
func (s *WeatherService) Mode() Mode {
	if s.IsLiveModeAvailable() && !s.DemoMode() {
		return ModeLive
	}
	return ModeMock
}

// GetByCity returns the reading for city. Mock lookups are not recorded in
// history; a failed live lookup is a *CityNotFoundError.
func (s *WeatherService) GetByCity(ctx context.Context, city string) (*model.WeatherReading, error) {
	logger := config.GetLogger()
	if s.Mode() == ModeMock {
		reading := s.Mock.Resolve(city)
		logger.Debugw("Serving demo weather", "city", city, "resolved", reading.CityName)
		return &reading, nil
	}

	reading, err := s.WeatherRepo.GetByCity(ctx, city)
	if err != nil {
		logger.Infow("Live city lookup failed", "city", city, "error", err)
		return nil, &CityNotFoundError{City: city, Err: err}
	}
	if reading == nil {
		return nil, fmt.Errorf("%w: empty reading for %q", ErrWeatherService, city)
	}
	s.History.Add(ctx, city)
	return reading, nil
}

// GetByCoordinates returns the reading for a position. Demo mode always serves
// the default city; coordinate lookups never touch history.
func (s *WeatherService) GetByCoordinates(ctx context.Context, lat, lon float64) (*model.WeatherReading, error) {
	if s.Mode() == ModeMock {
		reading := s.Mock.Resolve("")
		return &reading, nil
	}

	reading, err := s.WeatherRepo.GetByCoordinates(ctx, lat, lon)
	if err != nil {
		config.GetLogger().Infow("Live coordinate lookup failed", "lat", lat, "lon", lon, "error", err)
		return nil, &LocationUnavailableError{Reason: ReasonLookupFailed, Err: err}
	}
	if reading == nil {
		return nil, fmt.Errorf("%w: empty reading for %g,%g", ErrWeatherService, lat, lon)
	}
	return reading, nil
}
