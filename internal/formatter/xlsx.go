package formatter

import (
	"fmt"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	sheetTrips        = "Trips"
	sheetDestinations = "Destinations"
	sheetWeather      = "Weather"
)

// ExportToXLSX builds a workbook with a Trips sheet and a Destinations sheet.
//
// When weather is non-empty a Weather sheet lists current conditions per destination, keyed by trip id.
func ExportToXLSX(trips []models.Trip, weather map[int]*models.TripWeather) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetTrips); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	tripHeader := []any{"ID", "Name", "Description", "Start", "End", "Destinations"}
	if err := f.SetSheetRow(sheetTrips, "A1", &tripHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, t := range trips {
		row := []any{t.ID, t.Name, t.Description, t.StartDate.DateString(), t.EndDate.DateString(), len(t.Destinations)}
		if err := f.SetSheetRow(sheetTrips, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("failed to write trip row: %w", err)
		}
	}
	f.SetColWidth(sheetTrips, "B", "C", 30)
	f.SetColWidth(sheetTrips, "D", "E", 12)

	if _, err := f.NewSheet(sheetDestinations); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	destHeader := []any{"Trip ID", "Trip", "ID", "City", "Country", "Arrival", "Departure"}
	if err := f.SetSheetRow(sheetDestinations, "A1", &destHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	row := 2
	for _, t := range trips {
		for _, d := range t.Destinations {
			cells := []any{t.ID, t.Name, d.ID, d.City, d.Country, d.ArrivalDate.DateString(), d.DepartureDate.DateString()}
			if err := f.SetSheetRow(sheetDestinations, fmt.Sprintf("A%d", row), &cells); err != nil {
				return nil, fmt.Errorf("failed to write destination row: %w", err)
			}
			row++
		}
	}
	f.SetColWidth(sheetDestinations, "B", "B", 30)
	f.SetColWidth(sheetDestinations, "D", "E", 18)

	if len(weather) > 0 {
		if err := writeWeatherSheet(f, trips, weather); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeWeatherSheet(f *excelize.File, trips []models.Trip, weather map[int]*models.TripWeather) error {
	if _, err := f.NewSheet(sheetWeather); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := []any{"Trip", "City", "Country", "Condition", "Description", "Temp (°C)", "Min (°C)", "Max (°C)", "Humidity (%)"}
	if err := f.SetSheetRow(sheetWeather, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	for _, t := range trips {
		tw, ok := weather[t.ID]
		if !ok || tw == nil {
			continue
		}
		for _, dw := range tw.Destinations {
			cells := []any{t.Name, dw.Destination.City, dw.Destination.Country}
			if s := dw.Current; s != nil {
				cells = append(cells, s.ConditionCode, s.Description,
					readingCell(s.Temperature), readingCell(s.TempMin), readingCell(s.TempMax), readingCell(s.Humidity))
			}
			if err := f.SetSheetRow(sheetWeather, fmt.Sprintf("A%d", row), &cells); err != nil {
				return fmt.Errorf("failed to write weather row: %w", err)
			}
			row++
		}
	}
	f.SetColWidth(sheetWeather, "A", "A", 30)
	f.SetColWidth(sheetWeather, "E", "E", 24)
	return nil
}

// readingCell leaves missing measurements blank instead of writing zero.
func readingCell(r models.Reading) any {
	if !r.Valid {
		return ""
	}
	return r.Value
}
