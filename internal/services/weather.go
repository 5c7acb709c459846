package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/shared"
)

// WeatherClient covers the /weather endpoints.
type WeatherClient struct {
	api Requester
}

func NewWeatherClient(api Requester) *WeatherClient {
	return &WeatherClient{api: api}
}

// Current returns the stored or freshly fetched conditions for a destination.
//
// forceRefresh asks the backend to bypass its cache.
func (c *WeatherClient) Current(ctx context.Context, destinationID int, forceRefresh bool) (*models.WeatherReport, error) {
	path := fmt.Sprintf("/weather/destination/%d?force_refresh=%s", destinationID, strconv.FormatBool(forceRefresh))

	var report models.WeatherReport
	if err := call(ctx, c.api, path, RequestOpts{}, "failed to fetch weather", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Forecast asks the backend to fetch and store a new forecast, and returns its entries.
func (c *WeatherClient) Forecast(ctx context.Context, destinationID int) ([]models.ForecastEntry, error) {
	path := fmt.Sprintf("/weather/destination/%d/forecast", destinationID)

	var body models.ForecastResponse
	if err := call(ctx, c.api, path, RequestOpts{Method: http.MethodPost}, "failed to fetch forecast", &body); err != nil {
		return nil, err
	}
	if body.Forecasts == nil {
		return []models.ForecastEntry{}, nil
	}
	return body.Forecasts, nil
}

// ByCity looks up weather for a place without saving it. country may be empty.
func (c *WeatherClient) ByCity(ctx context.Context, city, country string) (*models.CityWeather, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("%w: city is required", shared.ErrMissingArgument)
	}

	path := "/weather/city/" + url.PathEscape(city)
	if country = strings.TrimSpace(country); country != "" {
		path += "?country=" + url.QueryEscape(country)
	}

	var out models.CityWeather
	if err := call(ctx, c.api, path, RequestOpts{}, "failed to fetch city weather", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ByTrip returns current conditions for every destination of a trip.
func (c *WeatherClient) ByTrip(ctx context.Context, tripID int) (*models.TripWeather, error) {
	path := fmt.Sprintf("/weather/trip/%d", tripID)

	var out models.TripWeather
	if err := call(ctx, c.api, path, RequestOpts{}, "failed to fetch trip weather", &out); err != nil {
		return nil, err
	}
	if out.Destinations == nil {
		out.Destinations = []models.DestinationWeather{}
	}
	return &out, nil
}
