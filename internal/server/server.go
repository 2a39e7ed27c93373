package server

import (
	"context"
	"net/http"
	"time"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/config"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/handler"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/metrics"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/middleware"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/service"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	ForecastService service.ForecastServiceInterface
	Ping            func(ctx context.Context) error
	Metrics         *metrics.Metrics
}

// NewMux registers /forecast, /health and /metrics.
func NewMux(deps Deps) *http.ServeMux {
	forecastHandler := handler.NewForecastHandler(deps.ForecastService)
	healthHandler := handler.NewHealthHandler(deps.Ping)

	mux := http.NewServeMux()
	mux.Handle("/forecast", middleware.RequestLogger(
		middleware.Instrument(deps.Metrics, "/forecast",
			middleware.RateLimitMiddleware(http.HandlerFunc(forecastHandler.HandleForecast)))))
	mux.Handle("/health", middleware.RequestLogger(
		middleware.Instrument(deps.Metrics, "/health", http.HandlerFunc(healthHandler.HandleHealth))))
	mux.Handle("/metrics", deps.Metrics.Handler())
	return mux
}

// NewHTTPServer applies the port and timeouts from config.
func NewHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + config.GetServerPort(),
		Handler:           h,
		ReadHeaderTimeout: config.GetServerTimeoutDuration("read_header_timeout", 15*time.Second),
		ReadTimeout:       config.GetServerTimeoutDuration("read_timeout", 15*time.Second),
		WriteTimeout:      config.GetServerTimeoutDuration("write_timeout", 10*time.Second),
		IdleTimeout:       config.GetServerTimeoutDuration("idle_timeout", 30*time.Second),
	}
}
