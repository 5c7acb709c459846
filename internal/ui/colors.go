package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#2E86DE", "#04B575", "#E74C3C", "#F39C12", "#626262")

// Palette is a small stylesheet of named [lipgloss.Style] values.
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	label  lipgloss.Style
	card   lipgloss.Style
	status lipgloss.Style
}

// NewPalette builds a palette from title, success, error, warning and muted colors.
func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		label:  NewBold(h),
		card:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(0, 1),
		status: NewStyle(h).MarginTop(1),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
