package model

// OpenWeatherMapForecastResponse is the body of the 5 day / 3 hour forecast endpoint.
type OpenWeatherMapForecastResponse struct {
	Cod  string                `json:"cod"`
	Cnt  int                   `json:"cnt"`
	List []OpenWeatherMapEntry `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"` // shift in seconds from UTC
	} `json:"city"`
}

type OpenWeatherMapEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Pop float64 `json:"pop"`
}

// OpenWeatherMapError is returned by the API on non-200 responses. cod is a
// number on some endpoints and a string on others.
type OpenWeatherMapError struct {
	Cod     interface{} `json:"cod"`
	Message string      `json:"message"`
}
