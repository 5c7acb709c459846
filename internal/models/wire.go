package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// NaiveLayout is the zone-less timestamp form the backend emits and accepts.
const NaiveLayout = "2006-01-02T15:04:05"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	NaiveLayout,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// DateTime is a timestamp that accepts RFC3339, naive and space-separated forms, and bare dates.
type DateTime struct {
	time.Time
}

// ParseDateTime parses s in any of the accepted layouts. Zone-less values are read in loc.
func ParseDateTime(s string, loc *time.Location) (DateTime, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateTimeLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, loc)
		}
		if err == nil {
			return DateTime{t}, nil
		}
	}
	return DateTime{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// UnmarshalJSON never fails. Null, empty, non-string and unparseable values leave d zero,
// which the formatters render as absent.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	*d = DateTime{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		return nil
	}
	if parsed, err := ParseDateTime(s, time.UTC); err == nil {
		*d = parsed
	}
	return nil
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(NaiveLayout))
}

// DateString returns the calendar date portion, or "" for a zero value.
func (d *DateTime) DateString() string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// Reading is a measurement that may be missing.
type Reading struct {
	Value float64
	Valid bool
}

// Of returns a valid reading.
func Of(v float64) Reading {
	return Reading{Value: v, Valid: true}
}

// UnmarshalJSON accepts numbers and numeric strings. Anything else, including null, becomes an invalid reading without error.
func (r *Reading) UnmarshalJSON(data []byte) error {
	*r = Reading{}

	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*r = Of(v)
	return nil
}

func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// Format renders the value with the given precision, or "—" when missing.
func (r Reading) Format(precision int) string {
	if !r.Valid {
		return "—"
	}
	return strconv.FormatFloat(r.Value, 'f', precision, 64)
}

// Mean averages the valid readings. It is invalid when none are valid.
func Mean(readings ...Reading) Reading {
	var (
		sum float64
		n   int
	)
	for _, r := range readings {
		if r.Valid {
			sum += r.Value
			n++
		}
	}
	if n == 0 {
		return Reading{}
	}
	return Of(sum / float64(n))
}

// Min returns the smallest valid reading.
func Min(readings ...Reading) Reading {
	var out Reading
	for _, r := range readings {
		if r.Valid && (!out.Valid || r.Value < out.Value) {
			out = r
		}
	}
	return out
}

// Max returns the largest valid reading.
func Max(readings ...Reading) Reading {
	var out Reading
	for _, r := range readings {
		if r.Valid && (!out.Valid || r.Value > out.Value) {
			out = r
		}
	}
	return out
}
