package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/config"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
)

type HealthHandler struct {
	Ping    func(ctx context.Context) error
	Timeout time.Duration
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{Ping: ping, Timeout: 2 * time.Second}
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Ping(ctx); err != nil {
		config.GetLogger().Warnw("Health check failed", "error", err)
		writeJSONResponse(w, http.StatusServiceUnavailable, model.NewErrorResponse("redis unreachable", model.MessageError))
		return
	}
	writeJSONResponse(w, http.StatusOK, model.NewDataResponse(map[string]string{"status": "ok"}))
}
