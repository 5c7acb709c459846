package shared

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the bare calendar-date form accepted from users.
const DateLayout = "2006-01-02"

const (
	startOfDay = "T00:00:00"
	endOfDay   = "T23:59:59"
)

// NormalizeStartDate turns a bare date into the server's start-of-day timestamp.
//
// Empty input yields nil so the field is left out of the request body.
func NormalizeStartDate(date string) (*string, error) {
	return normalizeDate(date, startOfDay)
}

// NormalizeEndDate turns a bare date into the server's end-of-day timestamp.
func NormalizeEndDate(date string) (*string, error) {
	return normalizeDate(date, endOfDay)
}

func normalizeDate(date, suffix string) (*string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, nil
	}

	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, date)
	}

	out := date + suffix
	return &out, nil
}
