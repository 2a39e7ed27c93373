package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/repository"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/service"
)

// Mock service for testing
type mockForecastService struct {
	err      error
	mockData *model.WeatherForecastResponse

	gotLocation string
	gotUnits    string
	gotDays     int
}

func (m *mockForecastService) GetForecast(ctx context.Context, location, units string, days int) (*model.WeatherForecastResponse, error) {
	m.gotLocation, m.gotUnits, m.gotDays = location, units, days
	if m.err != nil {
		return nil, m.err
	}
	return m.mockData, nil
}

// Ensure mockForecastService implements ForecastServiceInterface
var _ service.ForecastServiceInterface = (*mockForecastService)(nil)

type forecastEnvelope struct {
	Data    *model.WeatherForecastResponse `json:"data"`
	Error   *string                        `json:"error"`
	Message string                         `json:"message"`
}

func londonForecast() *model.WeatherForecastResponse {
	f := model.NewWeatherForecastResponse()
	f.SetLocation("London")
	f.SetUnits("metric")
	f.SetDailyForecast([]model.DayForecast{
		{Date: "2025-06-01", TempMin: 10, TempMax: 18, Description: "clear sky"},
		{Date: "2025-06-02", TempMin: 12, TempMax: 20, Description: "light rain"},
	})
	return f
}

func TestNewForecastHandler(t *testing.T) {
	handler := NewForecastHandler()
	require.NotNil(t, handler)
	assert.NotNil(t, handler.ForecastService)

	svc := &mockForecastService{}
	assert.Same(t, svc, NewForecastHandler(svc).ForecastService)
}

func TestForecastHandler_HandleForecast(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		err            error
		mockData       *model.WeatherForecastResponse
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Missing location parameter",
			query:          "",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Missing 'location' query parameter",
		},
		{
			name:           "Days not a number",
			query:          "location=London&days=three",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "'days' must be an integer",
		},
		{
			name:           "Successful forecast request",
			query:          "location=London&units=metric&days=2",
			mockData:       londonForecast(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid units",
			query:          "location=London&units=kelvin",
			err:            service.ErrInvalidUnits,
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.ErrInvalidUnits.Error(),
		},
		{
			name:           "Location not found",
			query:          "location=Atlantis",
			err:            &repository.LocationNotFoundError{Location: "Atlantis", Message: "city not found"},
			expectedStatus: http.StatusNotFound,
			expectedError:  "Location not found",
		},
		{
			name:           "Circuit open",
			query:          "location=London",
			err:            repository.ErrCircuitOpen,
			expectedStatus: http.StatusServiceUnavailable,
			expectedError:  "Forecast provider temporarily unavailable",
		},
		{
			name:           "Service error",
			query:          "location=London",
			err:            fmt.Errorf("%w: status 500", repository.ErrExternalAPI),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Failed to fetch forecast data",
		},
		{
			name:           "Generic service error",
			query:          "location=London",
			err:            errors.New("unexpected failure"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Failed to fetch forecast data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &ForecastHandler{
				ForecastService: &mockForecastService{err: tt.err, mockData: tt.mockData},
			}

			req := httptest.NewRequest(http.MethodGet, "/forecast?"+tt.query, nil)
			rr := httptest.NewRecorder()

			handler.HandleForecast(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var response forecastEnvelope
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))

			if tt.expectedError != "" {
				require.NotNil(t, response.Error)
				assert.Equal(t, tt.expectedError, *response.Error)
				assert.Equal(t, model.MessageError, response.Message)
				return
			}

			assert.Equal(t, model.MessageSuccess, response.Message)
			require.NotNil(t, response.Data)
			assert.Equal(t, tt.mockData.GetLocation(), response.Data.GetLocation())
			assert.Equal(t, tt.mockData.GetUnits(), response.Data.GetUnits())
			assert.Equal(t, tt.mockData.GetDailyForecast(), response.Data.GetDailyForecast())
		})
	}
}

func TestForecastHandler_PassesQueryThrough(t *testing.T) {
	svc := &mockForecastService{mockData: londonForecast()}
	handler := &ForecastHandler{ForecastService: svc}

	req := httptest.NewRequest(http.MethodGet, "/forecast?location=New+York&units=imperial&days=3", nil)
	rr := httptest.NewRecorder()
	handler.HandleForecast(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "New York", svc.gotLocation)
	assert.Equal(t, "imperial", svc.gotUnits)
	assert.Equal(t, 3, svc.gotDays)
}

func TestForecastHandler_DaysOmitted(t *testing.T) {
	svc := &mockForecastService{mockData: londonForecast()}
	handler := &ForecastHandler{ForecastService: svc}

	req := httptest.NewRequest(http.MethodGet, "/forecast?location=London&location=Paris", nil)
	rr := httptest.NewRecorder()
	handler.HandleForecast(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "London", svc.gotLocation)
	assert.Equal(t, 0, svc.gotDays)
}

func TestForecastHandler_MethodNotAllowed(t *testing.T) {
	handler := &ForecastHandler{ForecastService: &mockForecastService{}}

	req := httptest.NewRequest(http.MethodPost, "/forecast?location=London", nil)
	rr := httptest.NewRecorder()
	handler.HandleForecast(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodGet, rr.Header().Get("Allow"))
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
	}{
		{name: "Healthy", wantStatus: http.StatusOK},
		{name: "Redis down", pingErr: errors.New("dial tcp: connection refused"), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(func(ctx context.Context) error {
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
				return tt.pingErr
			})

			rr := httptest.NewRecorder()
			handler.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func BenchmarkForecastHandler_HandleForecast(b *testing.B) {
	handler := &ForecastHandler{ForecastService: &mockForecastService{mockData: londonForecast()}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/forecast?location=London", nil)
		rr := httptest.NewRecorder()
		handler.HandleForecast(rr, req)
	}
}
