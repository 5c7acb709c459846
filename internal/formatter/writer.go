package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/tripx/internal/models"
)

// TripWriter prints the trip collection as a table each time it is rendered.
type TripWriter struct {
	w io.Writer
}

func NewTripWriter(w io.Writer) *TripWriter {
	return &TripWriter{w: w}
}

// RenderTrips writes the trips to the underlying writer. Write errors are ignored; the terminal is best-effort.
func (tw *TripWriter) RenderTrips(trips []models.Trip) {
	io.WriteString(tw.w, FormatTrips(trips))
}

// FormatTrips renders an aligned table of trips.
func FormatTrips(trips []models.Trip) string {
	if len(trips) == 0 {
		return "No trips found\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-28s %-25s %s\n", "ID", "Name", "Dates", "Destinations")
	for _, t := range trips {
		places := make([]string, 0, len(t.Destinations))
		for _, d := range t.Destinations {
			places = append(places, d.City)
		}
		fmt.Fprintf(&b, "%-6d %-28s %-25s %s\n", t.ID, truncate(t.Name, 28), DateRange(t.StartDate, t.EndDate), strings.Join(places, ", "))
	}
	return b.String()
}

// FormatDestinations renders an aligned table of destinations.
func FormatDestinations(dests []models.Destination) string {
	if len(dests) == 0 {
		return "No destinations found\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-24s %-10s %s\n", "ID", "City", "Country", "Dates")
	for _, d := range dests {
		fmt.Fprintf(&b, "%-6d %-24s %-10s %s\n", d.ID, truncate(d.City, 24), d.Country, DateRange(d.ArrivalDate, d.DepartureDate))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
