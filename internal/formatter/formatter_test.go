package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/shared"
	th "github.com/desertthunder/tripx/internal/testing"
	"github.com/xuri/excelize/v2"
)

func date(s string) *models.DateTime {
	d, err := models.ParseDateTime(s, time.UTC)
	if err != nil {
		panic(err)
	}
	return &d
}

func sampleTrips() []models.Trip {
	return []models.Trip{
		{
			ID:          1,
			Name:        "Italy",
			Description: "Spring break",
			StartDate:   date("2024-03-01T00:00:00"),
			EndDate:     date("2024-03-05T23:59:59"),
			Destinations: []models.Destination{
				{ID: 10, TripID: 1, City: "Rome", Country: "IT", ArrivalDate: date("2024-03-01T00:00:00")},
				{ID: 11, TripID: 1, City: "Florence", Country: "IT"},
			},
		},
		{ID: 2, Name: "Weekend", Destinations: []models.Destination{}},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleTrips())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("expected header + 3 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "Trip ID,Trip,Start,End,Destination ID,City,Country,Arrival,Departure" {
			t.Errorf("unexpected header %v", records[0])
		}
		if records[1][1] != "Italy" || records[1][2] != "2024-03-01" || records[1][3] != "2024-03-05" || records[1][5] != "Rome" {
			t.Errorf("unexpected first row %v", records[1])
		}
		if records[3][1] != "Weekend" || records[3][4] != "" {
			t.Errorf("trip without destinations should have blank destination columns, got %v", records[3])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleTrips())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{
			"# Trips",
			"**Trips**: 2",
			"## Italy",
			"**Description**: Spring break",
			"**Dates**: 2024-03-01 → 2024-03-05",
			"1. Rome, IT [2024-03-01 →]",
			"2. Florence, IT",
			"_No destinations yet._",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("markdown missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleTrips())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		output := string(data)
		if !strings.Contains(output, "Italy (#1)") || !strings.Contains(output, "  - Florence, IT") {
			t.Errorf("unexpected text export:\n%s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(nil)
		if err != nil || string(data) != "[]" {
			t.Errorf("expected empty array, got %s (%v)", data, err)
		}

		data, err = ExportToJSON(sampleTrips())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		var back []map[string]any
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if back[0]["start_date"] != "2024-03-01T00:00:00" {
			t.Errorf("dates should use the naive layout, got %v", back[0]["start_date"])
		}
	})

	t.Run("ExportToXLSX", func(t *testing.T) {
		weather := map[int]*models.TripWeather{
			1: {Destinations: []models.DestinationWeather{
				{Destination: models.Destination{City: "Rome", Country: "IT"}, Current: &models.WeatherSnapshot{
					ConditionCode: "Clear", Description: "clear sky", Temperature: models.Of(18), Humidity: models.Of(40),
				}},
				{Destination: models.Destination{City: "Florence", Country: "IT"}},
			}},
		}

		data, err := ExportToXLSX(sampleTrips(), weather)
		if err != nil {
			t.Fatalf("ExportToXLSX failed: %v", err)
		}

		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("output is not a workbook: %v", err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if strings.Join(sheets, ",") != "Trips,Destinations,Weather" {
			t.Errorf("unexpected sheets %v", sheets)
		}

		rows, err := f.GetRows(sheetTrips)
		if err != nil {
			t.Fatalf("failed to read trips sheet: %v", err)
		}
		if len(rows) != 3 || rows[1][1] != "Italy" || rows[1][5] != "2" {
			t.Errorf("unexpected trips rows %v", rows)
		}

		rows, _ = f.GetRows(sheetDestinations)
		if len(rows) != 3 || rows[2][3] != "Florence" {
			t.Errorf("unexpected destination rows %v", rows)
		}

		rows, _ = f.GetRows(sheetWeather)
		if len(rows) != 3 || rows[1][3] != "Clear" || rows[1][5] != "18" {
			t.Errorf("unexpected weather rows %v", rows)
		}
	})

	t.Run("ExportToXLSX Without Weather", func(t *testing.T) {
		data, err := ExportToXLSX(sampleTrips(), nil)
		if err != nil {
			t.Fatalf("ExportToXLSX failed: %v", err)
		}
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("output is not a workbook: %v", err)
		}
		defer f.Close()
		if len(f.GetSheetList()) != 2 {
			t.Errorf("weather sheet should be omitted, got %v", f.GetSheetList())
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("Each Format", func(t *testing.T) {
		dir := t.TempDir()
		for _, format := range Formats {
			t.Run(format, func(t *testing.T) {
				path := filepath.Join(dir, "out", "trips."+format)
				written, err := WriteExport(sampleTrips(), nil, format, path)
				if err != nil {
					t.Fatalf("WriteExport failed: %v", err)
				}
				th.AssertFileExists(t, written)
			})
		}
	})

	t.Run("Default Path", func(t *testing.T) {
		wd := th.MustGetwd(t)
		th.MustChdir(t, t.TempDir())
		defer th.MustChdir(t, wd)

		written, err := WriteExport(sampleTrips(), nil, "md", "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if written != "trips.md" {
			t.Errorf("expected trips.md, got %s", written)
		}
		if !strings.Contains(th.MustReadFile(t, written), "## Italy") {
			t.Error("markdown content missing")
		}
	})

	t.Run("Unsupported Format", func(t *testing.T) {
		_, err := WriteExport(nil, nil, "pdf", filepath.Join(t.TempDir(), "x.pdf"))
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := WriteExport(nil, nil, "json", filepath.Join(blocker, "trips.json")); err == nil {
			t.Error("expected error writing beneath a regular file")
		}
	})
}

func TestWeatherFormatting(t *testing.T) {
	t.Run("WeatherIcon", func(t *testing.T) {
		tests := map[string]string{"Clear": "☀️", "Rain": "🌧️", "Fog": "🌫️", "Tornado": "🌤️", "": "🌤️"}
		for code, want := range tests {
			if got := WeatherIcon(code); got != want {
				t.Errorf("WeatherIcon(%q) = %s, want %s", code, got, want)
			}
		}
	})

	t.Run("FormatWeatherCard", func(t *testing.T) {
		s := &models.WeatherSnapshot{
			Temperature: models.Of(18.6), FeelsLike: models.Of(17.2), Humidity: models.Of(55),
			TempMin: models.Of(15), TempMax: models.Of(21.5), ConditionCode: "Clouds", Description: "broken clouds",
		}
		card := FormatWeatherCard("Rome, IT", s)
		for _, want := range []string{"Rome, IT", "☁️ 19°C  broken clouds", "Feels like 17°C", "Humidity 55%", "Min 15°C", "Max 22°C"} {
			if !strings.Contains(card, want) {
				t.Errorf("card missing %q:\n%s", want, card)
			}
		}
		if strings.Contains(card, "Wind") {
			t.Error("missing wind speed should be left out")
		}

		if card := FormatWeatherCard("Nowhere", nil); !strings.Contains(card, "unavailable") {
			t.Errorf("expected unavailable message, got %s", card)
		}
	})

	t.Run("FormatForecast", func(t *testing.T) {
		if got := FormatForecast(nil); got != "No forecast available\n" {
			t.Errorf("unexpected empty output %q", got)
		}

		days := []models.DayForecast{
			{Label: "Fri 1 Mar", AvgTemp: models.Of(13.4), MinTemp: models.Of(8), MaxTemp: models.Of(18), AvgHumidity: models.Of(51.5), ConditionCode: "Rain", Description: "light rain"},
			{Label: "Sat 2 Mar"},
		}
		out := FormatForecast(days)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header + 2 lines, got %d:\n%s", len(lines), out)
		}
		if !strings.Contains(lines[1], "13°C") || !strings.Contains(lines[1], "52%") || !strings.Contains(lines[1], "light rain") {
			t.Errorf("unexpected first day line %q", lines[1])
		}
		if !strings.Contains(lines[2], "—") {
			t.Errorf("missing values should render as dashes: %q", lines[2])
		}
	})

	t.Run("FormatTripWeather", func(t *testing.T) {
		tw := &models.TripWeather{
			Trip: models.Trip{Name: "Italy"},
			Destinations: []models.DestinationWeather{
				{Destination: models.Destination{City: "Rome", Country: "IT"}, Current: &models.WeatherSnapshot{Temperature: models.Of(20)}},
				{Destination: models.Destination{City: "Milan", Country: "IT"}},
			},
		}
		out := FormatTripWeather(tw)
		if !strings.Contains(out, "Rome, IT") || !strings.Contains(out, "20°C") || !strings.Contains(out, "Milan, IT\n  Weather unavailable") {
			t.Errorf("unexpected trip weather output:\n%s", out)
		}
	})
}

func TestDestinationChart(t *testing.T) {
	trips := []models.Trip{
		{Name: "Long trip", Destinations: make([]models.Destination, 4)},
		{Name: "Short", Destinations: make([]models.Destination, 1)},
		{Name: "Empty"},
	}

	out := DestinationChart(trips, 8)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected title + 3 bars, got %d:\n%s", len(lines), out)
	}
	if !strings.HasSuffix(lines[1], "│████████ 4") {
		t.Errorf("largest bar should span full width: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "│██ 1") {
		t.Errorf("unexpected scaled bar: %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "│ 0") {
		t.Errorf("empty trip should have no bar: %q", lines[3])
	}
	if !strings.HasPrefix(lines[2], "Short    ") {
		t.Errorf("labels should be padded: %q", lines[2])
	}

	if got := DestinationChart(nil, 10); got != "No trips to chart\n" {
		t.Errorf("unexpected empty chart %q", got)
	}
}

func TestTripWriter(t *testing.T) {
	var buf bytes.Buffer
	NewTripWriter(&buf).RenderTrips(sampleTrips())

	out := buf.String()
	if !strings.Contains(out, "Italy") || !strings.Contains(out, "Rome, Florence") {
		t.Errorf("unexpected table:\n%s", out)
	}

	buf.Reset()
	NewTripWriter(&buf).RenderTrips(nil)
	if buf.String() != "No trips found\n" {
		t.Errorf("unexpected empty output %q", buf.String())
	}

	if got := FormatDestinations(sampleTrips()[0].Destinations); !strings.Contains(got, "Florence") {
		t.Errorf("unexpected destinations table:\n%s", got)
	}

	NewTripWriter(&th.FWriter{}).RenderTrips(sampleTrips())
}
