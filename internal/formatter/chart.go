package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/tripx/internal/models"
)

// DestinationChart draws a horizontal bar per trip sized by its destination count.
//
// Bars are scaled so the largest count spans width cells.
func DestinationChart(trips []models.Trip, width int) string {
	if len(trips) == 0 {
		return "No trips to chart\n"
	}
	if width < 1 {
		width = 40
	}

	labelWidth, maxCount := 0, 0
	for _, t := range trips {
		labelWidth = max(labelWidth, utf8.RuneCountInString(t.Name))
		maxCount = max(maxCount, len(t.Destinations))
	}

	var b strings.Builder
	b.WriteString("Destinations per trip\n")
	for _, t := range trips {
		n := len(t.Destinations)
		cells := 0
		if maxCount > 0 {
			cells = n * width / maxCount
		}
		if n > 0 && cells == 0 {
			cells = 1
		}
		pad := strings.Repeat(" ", labelWidth-utf8.RuneCountInString(t.Name))
		fmt.Fprintf(&b, "%s%s │%s %d\n", t.Name, pad, strings.Repeat("█", cells), n)
	}
	return b.String()
}
