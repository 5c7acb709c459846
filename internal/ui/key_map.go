package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	add     key.Binding
	remove  key.Binding
	refresh key.Binding
	logout  key.Binding
	next    key.Binding
	prev    key.Binding
	yes     key.Binding
	no      key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		add:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		remove:  key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		next:    key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:    key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.add, k.remove, k.refresh, k.logout},
		{k.yes, k.no, k.quit},
	}
}
