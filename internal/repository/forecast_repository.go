package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/config"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/redis"
)

// ForecastRepository defines the interface for forecast data access
type ForecastRepository interface {
	GetForecast(ctx context.Context, location, units string, days int) (*model.WeatherForecastResponse, error)
}

// Cache is the subset of the redis client the repository uses.
type Cache interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd
}

// Recorder receives cache and upstream observations.
type Recorder interface {
	ObserveCache(operation, result string)
	ObserveUpstream(status string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCache(string, string) {}

func (nopRecorder) ObserveUpstream(string, time.Duration) {}

// forecastRepository implements ForecastRepository
type forecastRepository struct {
	redisClient Cache
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
	recorder    Recorder
	apiURL      string
	cacheTTL    time.Duration
}

type Option func(*forecastRepository)

func WithHTTPClient(c *http.Client) Option {
	return func(r *forecastRepository) {
		if c != nil {
			r.httpClient = c
		}
	}
}

func WithCache(c Cache) Option {
	return func(r *forecastRepository) {
		if c != nil {
			r.redisClient = c
		}
	}
}

func WithRecorder(rec Recorder) Option {
	return func(r *forecastRepository) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

func WithBreaker(cfg config.BreakerConfig) Option {
	return func(r *forecastRepository) {
		r.breaker = newBreaker(cfg)
	}
}

// NewForecastRepository creates a new forecast repository instance. Without
// options it uses the shared redis client and settings from config.
func NewForecastRepository(opts ...Option) ForecastRepository {
	r := &forecastRepository{
		httpClient: &http.Client{Timeout: config.GetUpstreamTimeout()},
		recorder:   nopRecorder{},
		apiURL:     config.GetOpenWeatherApiUrl(),
		cacheTTL:   config.GetCacheTTL(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.redisClient == nil {
		r.redisClient = redis.GetClient()
	}
	if r.breaker == nil {
		r.breaker = newBreaker(config.GetBreakerConfig())
	}
	return r
}

func newBreaker(cfg config.BreakerConfig) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		// an unknown city or a caller that went away says nothing about provider health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrLocationNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			config.GetLogger().Warnw("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

func cacheKey(location, units string, days int) string {
	return "forecast:" + units + ":" + strconv.Itoa(days) + ":" + strings.ToLower(location)
}

// GetForecast retrieves forecast data, checking cache first, then the external API
func (r *forecastRepository) GetForecast(ctx context.Context, location, units string, days int) (*model.WeatherForecastResponse, error) {
	if cached, err := r.getFromCache(ctx, location, units, days); err == nil {
		return cached, nil
	}

	forecast, err := r.fetchFromExternalAPI(ctx, location, units, days)
	if err != nil {
		return nil, err
	}

	r.cacheForecast(ctx, location, units, days, forecast)

	return forecast, nil
}

// getFromCache retrieves forecast data from Redis cache
func (r *forecastRepository) getFromCache(ctx context.Context, location, units string, days int) (*model.WeatherForecastResponse, error) {
	val, err := r.redisClient.Get(ctx, cacheKey(location, units, days)).Result()
	if err != nil {
		if errors.Is(err, redisv9.Nil) {
			r.recorder.ObserveCache("get", "miss")
		} else {
			r.recorder.ObserveCache("get", "error")
		}
		return nil, err
	}

	var forecast model.WeatherForecastResponse
	if err := json.Unmarshal([]byte(val), &forecast); err != nil {
		r.recorder.ObserveCache("get", "corrupt")
		return nil, err
	}

	r.recorder.ObserveCache("get", "hit")
	forecast.Cached = true
	return &forecast, nil
}

// fetchFromExternalAPI retrieves forecast data from the OpenWeatherMap API
func (r *forecastRepository) fetchFromExternalAPI(ctx context.Context, location, units string, days int) (*model.WeatherForecastResponse, error) {
	apiKey := config.GetOpenWeatherMapAPIKey()
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.callProvider(ctx, location, units, apiKey)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	data := result.(*model.OpenWeatherMapForecastResponse)

	forecast := model.NewWeatherForecastResponse()
	if data.City.Name != "" {
		forecast.SetLocation(data.City.Name)
	} else {
		forecast.SetLocation(location)
	}
	forecast.SetUnits(units)
	forecast.SetDailyForecast(aggregateDaily(data.List, data.City.Timezone, days))

	return forecast, nil
}

func (r *forecastRepository) callProvider(ctx context.Context, location, units, apiKey string) (*model.OpenWeatherMapForecastResponse, error) {
	u, err := url.Parse(r.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse provider url: %w", err)
	}
	q := u.Query()
	q.Set("q", location)
	q.Set("appid", apiKey)
	q.Set("units", units)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.recorder.ObserveUpstream("error", time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}
	defer resp.Body.Close()
	r.recorder.ObserveUpstream(strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		var apiErr model.OpenWeatherMapError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if resp.StatusCode == http.StatusNotFound {
			return nil, &LocationNotFoundError{Location: location, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrExternalAPI, resp.StatusCode, apiErr.Message)
	}

	var data model.OpenWeatherMapForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrExternalAPI, err)
	}
	return &data, nil
}

// cacheForecast stores forecast data in Redis cache
func (r *forecastRepository) cacheForecast(ctx context.Context, location, units string, days int, forecast *model.WeatherForecastResponse) {
	b, err := json.Marshal(forecast)
	if err != nil {
		r.recorder.ObserveCache("set", "error")
		return
	}
	if err := r.redisClient.Set(ctx, cacheKey(location, units, days), b, r.cacheTTL).Err(); err != nil {
		r.recorder.ObserveCache("set", "error")
		config.GetLogger().Warnw("Failed to cache forecast", "location", location, "error", err)
		return
	}
	r.recorder.ObserveCache("set", "ok")
}
