package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/config"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/repository"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/service"
)

type ForecastHandler struct {
	ForecastService service.ForecastServiceInterface
}

func NewForecastHandler(svc ...service.ForecastServiceInterface) *ForecastHandler {
	var forecastService service.ForecastServiceInterface
	if len(svc) > 0 && svc[0] != nil {
		forecastService = svc[0]
	} else {
		forecastService = service.NewForecastService()
	}
	return &ForecastHandler{
		ForecastService: forecastService,
	}
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		config.GetLogger().Errorw("could not encode json", "error", err)
	}
}

func (h *ForecastHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSONResponse(w, http.StatusMethodNotAllowed, model.NewErrorResponse("Method not allowed", model.MessageError))
		return
	}

	query := r.URL.Query()
	location := query.Get("location")
	if location == "" {
		writeJSONResponse(w, http.StatusBadRequest, model.NewErrorResponse("Missing 'location' query parameter", model.MessageError))
		return
	}

	days := 0
	if raw := query.Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONResponse(w, http.StatusBadRequest, model.NewErrorResponse("'days' must be an integer", model.MessageError))
			return
		}
		days = parsed
	}

	forecast, err := h.ForecastService.GetForecast(r.Context(), location, query.Get("units"), days)
	if err != nil {
		status, errMsg := classifyError(err)
		if status >= http.StatusInternalServerError {
			config.GetLogger().Errorw("Failed to fetch forecast", "location", location, "error", err)
		}
		writeJSONResponse(w, status, model.NewErrorResponse(errMsg, model.MessageError))
		return
	}

	writeJSONResponse(w, http.StatusOK, model.NewDataResponse(forecast))
}

func classifyError(err error) (int, string) {
	switch {
	case service.IsInvalidInput(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrLocationNotFound):
		return http.StatusNotFound, "Location not found"
	case errors.Is(err, repository.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "Forecast provider temporarily unavailable"
	default:
		return http.StatusInternalServerError, "Failed to fetch forecast data"
	}
}
