package tasks

import (
	"time"

	"github.com/desertthunder/tripx/internal/models"
)

// MaxForecastDays caps the number of daily summaries.
const MaxForecastDays = 5

const (
	dayKeyLayout   = "2006-01-02"
	dayLabelLayout = "Mon 2 Jan"
)

// GroupForecast buckets forecast slots by local calendar day in loc.
//
// Entries whose timestamp cannot be parsed are dropped. Days keep the order in which they first
// appear and only the first [MaxForecastDays] are returned. Each day's condition comes from its first entry.
func GroupForecast(entries []models.ForecastEntry, loc *time.Location) []models.DayForecast {
	if loc == nil {
		loc = time.Local
	}

	var (
		order []string
		byDay = make(map[string]*models.DayForecast)
	)

	for _, e := range entries {
		ts, err := models.ParseDateTime(e.ForecastDate, loc)
		if err != nil {
			continue
		}
		local := ts.In(loc)
		key := local.Format(dayKeyLayout)

		day, ok := byDay[key]
		if !ok {
			day = &models.DayForecast{
				Key:           key,
				Label:         local.Format(dayLabelLayout),
				ConditionCode: e.ConditionCode,
				Description:   e.Description,
			}
			byDay[key] = day
			order = append(order, key)
		}
		day.Entries = append(day.Entries, e)
	}

	if len(order) > MaxForecastDays {
		order = order[:MaxForecastDays]
	}

	out := make([]models.DayForecast, 0, len(order))
	for _, key := range order {
		day := byDay[key]
		summarize(day)
		out = append(out, *day)
	}
	return out
}

func summarize(day *models.DayForecast) {
	n := len(day.Entries)
	temps := make([]models.Reading, 0, n)
	mins := make([]models.Reading, 0, n)
	maxs := make([]models.Reading, 0, n)
	hums := make([]models.Reading, 0, n)

	for _, e := range day.Entries {
		temps = append(temps, e.Temperature)
		mins = append(mins, e.TempMin)
		maxs = append(maxs, e.TempMax)
		hums = append(hums, e.Humidity)
	}

	day.AvgTemp = models.Mean(temps...)
	day.MinTemp = models.Min(mins...)
	day.MaxTemp = models.Max(maxs...)
	day.AvgHumidity = models.Mean(hums...)
}
