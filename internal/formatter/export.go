package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/shared"
)

// Export formats accepted by [WriteExport].
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatXLSX     = "xlsx"
)

// Formats lists every supported export format.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText, FormatXLSX}

var csvHeaders = []string{"Trip ID", "Trip", "Start", "End", "Destination ID", "City", "Country", "Arrival", "Departure"}

// ExportToCSV writes one row per destination. Trips without destinations get a single row with empty destination columns.
func ExportToCSV(trips []models.Trip) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range tripRows(trips) {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func tripRows(trips []models.Trip) [][]string {
	var rows [][]string
	for _, trip := range trips {
		base := []string{
			strconv.Itoa(trip.ID),
			trip.Name,
			trip.StartDate.DateString(),
			trip.EndDate.DateString(),
		}
		if len(trip.Destinations) == 0 {
			rows = append(rows, append(base, "", "", "", "", ""))
			continue
		}
		for _, d := range trip.Destinations {
			row := append([]string{}, base...)
			row = append(row,
				strconv.Itoa(d.ID),
				d.City,
				d.Country,
				d.ArrivalDate.DateString(),
				d.DepartureDate.DateString(),
			)
			rows = append(rows, row)
		}
	}
	return rows
}

// ExportToMarkdown renders each trip as a section with its destinations as a list.
func ExportToMarkdown(trips []models.Trip) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Trips\n\n")
	fmt.Fprintf(&buf, "**Trips**: %d\n\n", len(trips))

	for _, trip := range trips {
		fmt.Fprintf(&buf, "## %s\n\n", trip.Name)
		if trip.Description != "" {
			fmt.Fprintf(&buf, "**Description**: %s\n\n", trip.Description)
		}
		if dates := DateRange(trip.StartDate, trip.EndDate); dates != "" {
			fmt.Fprintf(&buf, "**Dates**: %s\n\n", dates)
		}

		if len(trip.Destinations) == 0 {
			buf.WriteString("_No destinations yet._\n\n")
			continue
		}

		for i, d := range trip.Destinations {
			datePart := ""
			if dates := DateRange(d.ArrivalDate, d.DepartureDate); dates != "" {
				datePart = fmt.Sprintf(" [%s]", dates)
			}
			fmt.Fprintf(&buf, "%d. %s%s\n", i+1, d.Place(), datePart)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts trips to an indented plain text listing.
func ExportToText(trips []models.Trip) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Trips: %d\n\n", len(trips))
	for _, trip := range trips {
		fmt.Fprintf(&buf, "%s (#%d)\n", trip.Name, trip.ID)
		if dates := DateRange(trip.StartDate, trip.EndDate); dates != "" {
			fmt.Fprintf(&buf, "  %s\n", dates)
		}
		for _, d := range trip.Destinations {
			fmt.Fprintf(&buf, "  - %s\n", d.Place())
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON pretty-prints the trips as the backend shapes them.
func ExportToJSON(trips []models.Trip) ([]byte, error) {
	if trips == nil {
		trips = []models.Trip{}
	}
	return shared.MarshalJSON(trips, true)
}

// DateRange formats "start → end", either side optional.
func DateRange(start, end *models.DateTime) string {
	s, e := start.DateString(), end.DateString()
	switch {
	case s == "" && e == "":
		return ""
	case e == "":
		return s + " →"
	case s == "":
		return "→ " + e
	default:
		return s + " → " + e
	}
}

// WriteExport renders trips in format and writes them to path.
//
// An empty path defaults to "trips.<ext>" in the working directory. The written path is returned.
func WriteExport(trips []models.Trip, weather map[int]*models.TripWeather, format, path string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatJSON
	}

	var (
		data []byte
		err  error
		ext  string
	)
	switch format {
	case FormatJSON:
		data, err = ExportToJSON(trips)
		ext = ".json"
	case FormatCSV:
		data, err = ExportToCSV(trips)
		ext = ".csv"
	case FormatMarkdown, "md":
		data, err = ExportToMarkdown(trips)
		ext = ".md"
	case FormatText, "text":
		data, err = ExportToText(trips)
		ext = ".txt"
	case FormatXLSX:
		data, err = ExportToXLSX(trips, weather)
		ext = ".xlsx"
	default:
		return "", fmt.Errorf("%w: unsupported format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	if path == "" {
		path = "trips" + ext
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
