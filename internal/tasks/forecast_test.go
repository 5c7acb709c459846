package tasks

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/desertthunder/tripx/internal/models"
)

func entry(date string, temp, min, max, hum models.Reading, code string) models.ForecastEntry {
	return models.ForecastEntry{
		ForecastDate:  date,
		Temperature:   temp,
		TempMin:       min,
		TempMax:       max,
		Humidity:      hum,
		ConditionCode: code,
		Description:   code + " desc",
	}
}

func TestGroupForecast(t *testing.T) {
	t.Run("Eight Slots Over Two Days", func(t *testing.T) {
		var entries []models.ForecastEntry
		temps := []float64{10, 12, 14, 16, 20, 22, 24, 26}
		for i, temp := range temps {
			day := 1 + i/4
			hour := 6 + (i%4)*3
			date := fmt.Sprintf("2024-03-%02d %02d:00:00", day, hour)
			entries = append(entries, entry(date, models.Of(temp), models.Of(temp-2), models.Of(temp+2), models.Of(50+float64(i)), "Clear"))
		}
		entries[5].Temperature = models.Reading{}

		days := GroupForecast(entries, time.UTC)
		if len(days) != 2 {
			t.Fatalf("expected 2 days, got %d", len(days))
		}

		if days[0].Key != "2024-03-01" || days[0].AvgTemp.Value != 13 {
			t.Errorf("unexpected first day %+v", days[0])
		}
		if days[0].MinTemp.Value != 8 || days[0].MaxTemp.Value != 18 {
			t.Errorf("unexpected min/max %v/%v", days[0].MinTemp, days[0].MaxTemp)
		}
		if days[0].AvgHumidity.Value != 51.5 {
			t.Errorf("expected humidity 51.5, got %v", days[0].AvgHumidity)
		}

		wantAvg := (20.0 + 24 + 26) / 3
		if math.Abs(days[1].AvgTemp.Value-wantAvg) > 1e-9 {
			t.Errorf("second day average should skip missing temps: want %v, got %v", wantAvg, days[1].AvgTemp.Value)
		}
		if len(days[1].Entries) != 4 {
			t.Errorf("expected 4 entries on day 2, got %d", len(days[1].Entries))
		}
	})

	t.Run("Keeps First Five Days In Appearance Order", func(t *testing.T) {
		var entries []models.ForecastEntry
		for _, d := range []int{3, 1, 2, 4, 5, 6, 7} {
			entries = append(entries, entry(fmt.Sprintf("2024-03-%02dT12:00:00", d), models.Of(1), models.Reading{}, models.Reading{}, models.Reading{}, "Rain"))
		}

		days := GroupForecast(entries, time.UTC)
		if len(days) != MaxForecastDays {
			t.Fatalf("expected %d days, got %d", MaxForecastDays, len(days))
		}
		want := []string{"2024-03-03", "2024-03-01", "2024-03-02", "2024-03-04", "2024-03-05"}
		for i, key := range want {
			if days[i].Key != key {
				t.Errorf("day %d: expected %s, got %s", i, key, days[i].Key)
			}
		}
	})

	t.Run("Drops Unparseable Timestamps", func(t *testing.T) {
		entries := []models.ForecastEntry{
			entry("", models.Of(1), models.Of(1), models.Of(1), models.Of(1), "Snow"),
			entry("not a date", models.Of(1), models.Of(1), models.Of(1), models.Of(1), "Snow"),
			entry("2024-03-01 09:00:00", models.Of(5), models.Of(4), models.Of(6), models.Of(70), "Clouds"),
		}

		days := GroupForecast(entries, time.UTC)
		if len(days) != 1 || len(days[0].Entries) != 1 {
			t.Fatalf("expected one day with one entry, got %+v", days)
		}
		if days[0].ConditionCode != "Clouds" || days[0].Description != "Clouds desc" {
			t.Errorf("condition should come from the first kept entry, got %s", days[0].ConditionCode)
		}
		if days[0].Label != "Fri 1 Mar" {
			t.Errorf("unexpected label %q", days[0].Label)
		}
	})

	t.Run("All Missing Aggregates", func(t *testing.T) {
		entries := []models.ForecastEntry{
			entry("2024-03-01 09:00:00", models.Reading{}, models.Reading{}, models.Reading{}, models.Reading{}, ""),
		}
		days := GroupForecast(entries, time.UTC)
		d := days[0]
		if d.AvgTemp.Valid || d.MinTemp.Valid || d.MaxTemp.Valid || d.AvgHumidity.Valid {
			t.Errorf("expected all aggregates missing, got %+v", d)
		}
	})

	t.Run("Groups By Local Day", func(t *testing.T) {
		tokyo := time.FixedZone("JST", 9*3600)
		entries := []models.ForecastEntry{
			entry("2024-03-01T20:00:00Z", models.Of(1), models.Reading{}, models.Reading{}, models.Reading{}, "Clear"),
			entry("2024-03-02T02:00:00Z", models.Of(3), models.Reading{}, models.Reading{}, models.Reading{}, "Clear"),
		}

		if days := GroupForecast(entries, time.UTC); len(days) != 2 {
			t.Errorf("expected 2 UTC days, got %d", len(days))
		}
		days := GroupForecast(entries, tokyo)
		if len(days) != 1 || days[0].Key != "2024-03-02" || days[0].AvgTemp.Value != 2 {
			t.Errorf("expected both entries on 2024-03-02 in JST, got %+v", days)
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		if days := GroupForecast(nil, nil); days == nil || len(days) != 0 {
			t.Errorf("expected empty non-nil result, got %v", days)
		}
	})
}
