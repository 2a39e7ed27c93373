package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/config"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/repository"
)

// MaxDays is the furthest ahead the provider forecasts.
const MaxDays = 5

var (
	ErrInvalidLocation = errors.New("location must not be empty")
	ErrInvalidUnits    = errors.New("units must be one of metric, imperial, standard")
	ErrInvalidDays     = fmt.Errorf("days must be between 1 and %d", MaxDays)
)

var supportedUnits = map[string]bool{
	"metric":   true,
	"imperial": true,
	"standard": true,
}

// ForecastServiceInterface is what the handlers depend on.
type ForecastServiceInterface interface {
	GetForecast(ctx context.Context, location, units string, days int) (*model.WeatherForecastResponse, error)
}

type ForecastService struct {
	ForecastRepo repository.ForecastRepository
	DefaultUnits string
	DefaultDays  int
}

// NewForecastService builds a service over the given repository, or the
// default redis-backed one when none (or nil) is passed.
func NewForecastService(repo ...repository.ForecastRepository) *ForecastService {
	var forecastRepo repository.ForecastRepository
	if len(repo) > 0 && repo[0] != nil {
		forecastRepo = repo[0]
	} else {
		forecastRepo = repository.NewForecastRepository()
	}
	return &ForecastService{
		ForecastRepo: forecastRepo,
		DefaultUnits: config.GetDefaultUnits(),
		DefaultDays:  config.GetDefaultDays(),
	}
}

// GetForecast normalizes the request and delegates to the repository.
// Empty units and zero days fall back to the configured defaults.
func (s *ForecastService) GetForecast(ctx context.Context, location, units string, days int) (*model.WeatherForecastResponse, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrInvalidLocation
	}

	units = strings.ToLower(strings.TrimSpace(units))
	if units == "" {
		units = s.DefaultUnits
	}
	if !supportedUnits[units] {
		return nil, ErrInvalidUnits
	}

	if days == 0 {
		days = s.DefaultDays
	}
	if days < 1 || days > MaxDays {
		return nil, ErrInvalidDays
	}

	forecast, err := s.ForecastRepo.GetForecast(ctx, location, units, days)
	if err != nil {
		return nil, err
	}
	return forecast, nil
}

// IsInvalidInput reports whether err came from request validation.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidLocation) || errors.Is(err, ErrInvalidUnits) || errors.Is(err, ErrInvalidDays)
}
