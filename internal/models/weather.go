package models

// WeatherSnapshot is a single weather observation or forecast slot.
//
// Numeric fields use [Reading] so a null or malformed value shows up as missing instead of failing the decode.
type WeatherSnapshot struct {
	ID            int       `json:"id,omitempty"`
	DestinationID int       `json:"destination_id,omitempty"`
	Temperature   Reading   `json:"temperature"`
	FeelsLike     Reading   `json:"feels_like"`
	TempMin       Reading   `json:"temp_min"`
	TempMax       Reading   `json:"temp_max"`
	Humidity      Reading   `json:"humidity"`
	WindSpeed     Reading   `json:"wind_speed"`
	Clouds        Reading   `json:"clouds"`
	ConditionCode string    `json:"weather_main"`
	Description   string    `json:"weather_description"`
	Icon          string    `json:"icon,omitempty"`
	ForecastDate  string    `json:"forecast_date,omitempty"`
	LastUpdated   *DateTime `json:"fetched_at,omitempty"`
}

// ForecastEntry is one three-hour forecast slot. ForecastDate is kept raw and parsed during grouping.
type ForecastEntry = WeatherSnapshot

// WeatherReport is the body of GET /weather/destination/{id}.
type WeatherReport struct {
	Destination Destination       `json:"destination"`
	Current     *WeatherSnapshot  `json:"current_weather"`
	Forecast    []WeatherSnapshot `json:"forecast"`
}

// ForecastResponse is the body of POST /weather/destination/{id}/forecast.
type ForecastResponse struct {
	Message   string          `json:"message"`
	Count     int             `json:"count"`
	Forecasts []ForecastEntry `json:"forecasts"`
}

// DestinationWeather pairs a destination with its current conditions, if any.
type DestinationWeather struct {
	Destination Destination      `json:"destination"`
	Current     *WeatherSnapshot `json:"current_weather"`
}

// TripWeather is the body of GET /weather/trip/{id}.
type TripWeather struct {
	Trip         Trip                 `json:"trip"`
	Destinations []DestinationWeather `json:"destinations_weather"`
}

// Condition is one entry of the provider's "weather" array.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CityWeather is the provider-shaped body of GET /weather/city/{city}.
type CityWeather struct {
	Name string `json:"name"`
	Main struct {
		Temp      Reading `json:"temp"`
		FeelsLike Reading `json:"feels_like"`
		TempMin   Reading `json:"temp_min"`
		TempMax   Reading `json:"temp_max"`
		Humidity  Reading `json:"humidity"`
	} `json:"main"`
	Weather []Condition `json:"weather"`
	Wind struct {
		Speed Reading `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All Reading `json:"all"`
	} `json:"clouds"`
}

// Snapshot flattens the provider shape into a [WeatherSnapshot].
func (c CityWeather) Snapshot() WeatherSnapshot {
	s := WeatherSnapshot{
		Temperature: c.Main.Temp,
		FeelsLike:   c.Main.FeelsLike,
		TempMin:     c.Main.TempMin,
		TempMax:     c.Main.TempMax,
		Humidity:    c.Main.Humidity,
		WindSpeed:   c.Wind.Speed,
		Clouds:      c.Clouds.All,
	}
	if len(c.Weather) > 0 {
		s.ConditionCode = c.Weather[0].Main
		s.Description = c.Weather[0].Description
		s.Icon = c.Weather[0].Icon
	}
	return s
}

// DayForecast summarizes the forecast entries that fall on one local calendar day.
type DayForecast struct {
	Key           string // YYYY-MM-DD in the display location
	Label         string // e.g. "Mon 4 Mar"
	AvgTemp       Reading
	MinTemp       Reading
	MaxTemp       Reading
	AvgHumidity   Reading
	ConditionCode string
	Description   string
	Entries       []ForecastEntry
}
