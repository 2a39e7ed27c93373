package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/config"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/metrics"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/middleware"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/redis"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/repository"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/server"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/service"
)

func main() {
	logger := config.GetLogger()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if config.GetOpenWeatherMapAPIKey() == "" {
		logger.Warnw("OPENWEATHERMAP_API_KEY is not set, only cached forecasts will be served")
	}

	m := metrics.NewMetrics("forecast")
	repo := repository.NewForecastRepository(
		repository.WithCache(redis.GetClient()),
		repository.WithRecorder(m),
	)
	mux := server.NewMux(server.Deps{
		ForecastService: service.NewForecastService(repo),
		Ping:            redis.Ping,
		Metrics:         m,
	})
	middleware.StartRateLimiterCleanup(ctx)

	srv := server.NewHTTPServer(mux)
	serverErr := make(chan error, 1)
	go func() {
		logger.Infow("Forecast API server running", "addr", srv.Addr, "redis", config.GetRedisAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Fatalw("Server failed", "error", err)
	case <-ctx.Done():
	}

	logger.Infow("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.GetServerTimeoutDuration("shutdown_timeout", 10*time.Second))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Graceful shutdown failed", "error", err)
	}
	if err := redis.Close(); err != nil {
		logger.Errorw("Closing redis client failed", "error", err)
	}
}
