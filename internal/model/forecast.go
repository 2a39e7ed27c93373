package model

// DayForecast is a single day of an aggregated forecast.
type DayForecast struct {
	Date                     string  `json:"date"`
	TempMin                  float64 `json:"tempMin"`
	TempMax                  float64 `json:"tempMax"`
	Humidity                 float64 `json:"humidity"`
	PrecipitationProbability float64 `json:"precipitationProbability"`
	WindSpeed                float64 `json:"windSpeed"`
	Description              string  `json:"description"`
	Icon                     string  `json:"icon"`
}

// WeatherForecastResponse holds a location, its unit system and the
// per-day forecast entries in day order.
//
// A nil Location, Units or DailyForecast means the field was never set and
// is encoded as JSON null, so unset, empty and populated stay distinct.
// The type carries no synchronization.
type WeatherForecastResponse struct {
	Location      *string       `json:"location"`
	Units         *string       `json:"units"`
	DailyForecast []DayForecast `json:"dailyForecast"`
	// Cached is set by the repository when the response came from redis.
	Cached        bool          `json:"cached"`
}

// NewWeatherForecastResponse returns a response with every field unset.
func NewWeatherForecastResponse() *WeatherForecastResponse {
	return &WeatherForecastResponse{}
}

func (r *WeatherForecastResponse) GetLocation() string {
	if r == nil || r.Location == nil {
		return ""
	}
	return *r.Location
}

func (r *WeatherForecastResponse) SetLocation(location string) {
	r.Location = &location
}

func (r *WeatherForecastResponse) HasLocation() bool {
	return r != nil && r.Location != nil
}

func (r *WeatherForecastResponse) ClearLocation() {
	r.Location = nil
}

func (r *WeatherForecastResponse) GetUnits() string {
	if r == nil || r.Units == nil {
		return ""
	}
	return *r.Units
}

func (r *WeatherForecastResponse) SetUnits(units string) {
	r.Units = &units
}

func (r *WeatherForecastResponse) HasUnits() bool {
	return r != nil && r.Units != nil
}

func (r *WeatherForecastResponse) ClearUnits() {
	r.Units = nil
}

// GetDailyForecast returns the stored slice itself, not a copy.
func (r *WeatherForecastResponse) GetDailyForecast() []DayForecast {
	if r == nil {
		return nil
	}
	return r.DailyForecast
}

// SetDailyForecast stores days without copying; later changes to the
// caller's slice elements are visible through the response.
func (r *WeatherForecastResponse) SetDailyForecast(days []DayForecast) {
	r.DailyForecast = days
}
