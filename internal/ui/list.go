package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tripx/internal/formatter"
	"github.com/desertthunder/tripx/internal/models"
)

var (
	_ list.Item = tripItem{}
	_ list.Item = destinationItem{}
)

// tripItem wraps [models.Trip] to implement [list.Item].
type tripItem struct {
	trip models.Trip
}

func (i tripItem) FilterValue() string { return i.trip.Name }
func (i tripItem) Title() string       { return i.trip.Name }
func (i tripItem) Description() string {
	parts := []string{fmt.Sprintf("%d destinations", len(i.trip.Destinations))}
	if dates := formatter.DateRange(i.trip.StartDate, i.trip.EndDate); dates != "" {
		parts = append(parts, dates)
	}
	if i.trip.Description != "" {
		parts = append(parts, i.trip.Description)
	}
	return strings.Join(parts, " • ")
}

// destinationItem wraps [models.Destination] to implement [list.Item].
type destinationItem struct {
	dest models.Destination
}

func (i destinationItem) FilterValue() string { return i.dest.City }
func (i destinationItem) Title() string       { return i.dest.Place() }
func (i destinationItem) Description() string {
	if dates := formatter.DateRange(i.dest.ArrivalDate, i.dest.DepartureDate); dates != "" {
		return dates
	}
	return "No dates"
}

func tripItems(trips []models.Trip) []list.Item {
	items := make([]list.Item, len(trips))
	for i, t := range trips {
		items[i] = tripItem{trip: t}
	}
	return items
}

func destinationItems(dests []models.Destination) []list.Item {
	items := make([]list.Item, len(dests))
	for i, d := range dests {
		items[i] = destinationItem{dest: d}
	}
	return items
}

// newList builds a list with its own quit keys disabled; the model handles quitting.
func newList(title string, items []list.Item, width, height int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.KeyMap.Quit.SetEnabled(false)
	l.SetShowHelp(false)
	return l
}
