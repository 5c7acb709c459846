package formatter

import (
	"fmt"
	"math"
	"strings"

	"github.com/desertthunder/tripx/internal/models"
)

const defaultIcon = "🌤️"

var weatherIcons = map[string]string{
	"Clear":        "☀️",
	"Clouds":       "☁️",
	"Rain":         "🌧️",
	"Drizzle":      "🌦️",
	"Thunderstorm": "⛈️",
	"Snow":         "❄️",
	"Mist":         "🌫️",
	"Fog":          "🌫️",
	"Haze":         "🌫️",
}

// WeatherIcon maps a provider condition code such as "Rain" to an emoji.
func WeatherIcon(code string) string {
	if icon, ok := weatherIcons[code]; ok {
		return icon
	}
	return defaultIcon
}

// Degrees rounds a temperature to whole degrees Celsius.
func Degrees(r models.Reading) string {
	if !r.Valid {
		return "—"
	}
	return fmt.Sprintf("%.0f°C", math.Round(r.Value))
}

// Percent rounds a humidity reading.
func Percent(r models.Reading) string {
	if !r.Valid {
		return "—"
	}
	return fmt.Sprintf("%.0f%%", math.Round(r.Value))
}

// FormatWeatherCard renders current conditions for one place. A nil snapshot means no data.
func FormatWeatherCard(place string, s *models.WeatherSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", place)

	if s == nil {
		b.WriteString("  Weather unavailable for this destination\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  %s %s  %s\n", WeatherIcon(s.ConditionCode), Degrees(s.Temperature), s.Description)
	fmt.Fprintf(&b, "  Feels like %s · Humidity %s\n", Degrees(s.FeelsLike), Percent(s.Humidity))
	fmt.Fprintf(&b, "  Min %s · Max %s\n", Degrees(s.TempMin), Degrees(s.TempMax))
	if s.WindSpeed.Valid {
		fmt.Fprintf(&b, "  Wind %s m/s\n", s.WindSpeed.Format(1))
	}
	return b.String()
}

// FormatForecast renders daily summaries as an aligned table.
func FormatForecast(days []models.DayForecast) string {
	if len(days) == 0 {
		return "No forecast available\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %-3s %6s %6s %6s %5s  %s\n", "Day", "", "Avg", "Min", "Max", "Hum", "Conditions")
	for _, d := range days {
		desc := d.Description
		if desc == "" {
			desc = "—"
		}
		fmt.Fprintf(&b, "%-12s %-3s %6s %6s %6s %5s  %s\n",
			d.Label, WeatherIcon(d.ConditionCode),
			Degrees(d.AvgTemp), Degrees(d.MinTemp), Degrees(d.MaxTemp), Percent(d.AvgHumidity), desc)
	}
	return b.String()
}

// FormatTripWeather renders a card for every destination of a trip.
func FormatTripWeather(tw *models.TripWeather) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", tw.Trip.Name)
	if len(tw.Destinations) == 0 {
		b.WriteString("No destinations\n")
		return b.String()
	}
	for _, dw := range tw.Destinations {
		b.WriteString(FormatWeatherCard(dw.Destination.Place(), dw.Current))
		b.WriteString("\n")
	}
	return b.String()
}
