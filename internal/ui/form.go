package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// formKind identifies what a submitted [form] creates.
type formKind int

const (
	loginForm formKind = iota
	tripForm
	destinationForm
)

type field struct {
	label string
	input textinput.Model
}

// form is a vertical stack of text inputs with one focused at a time.
type form struct {
	kind     formKind
	title    string
	fields   []field
	focus    int
	returnTo ViewState
}

func newField(label, placeholder string) field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 120
	in.Width = 40
	in.Prompt = "› "
	return field{label: label, input: in}
}

func newForm(kind formKind, title string, fields ...field) *form {
	f := &form{kind: kind, title: title, fields: fields}
	f.fields[0].input.Focus()
	return f
}

func newLoginForm() *form {
	password := newField("Password", "")
	password.input.EchoMode = textinput.EchoPassword
	password.input.EchoCharacter = '•'
	return newForm(loginForm, "Sign in", newField("Username", "alice"), password)
}

func newTripForm() *form {
	return newForm(tripForm, "New trip",
		newField("Name", "Summer in Italy"),
		newField("Description", "optional"),
		newField("Start date", "YYYY-MM-DD"),
		newField("End date", "YYYY-MM-DD"),
	)
}

func newDestinationForm(tripName string) *form {
	return newForm(destinationForm, "New destination for "+tripName,
		newField("City", "Rome"),
		newField("Country", "IT"),
		newField("Arrival", "YYYY-MM-DD"),
		newField("Departure", "YYYY-MM-DD"),
	)
}

// value returns the trimmed content of field i.
func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f *form) last() bool {
	return f.focus == len(f.fields)-1
}

// move shifts focus by delta, wrapping around.
func (f *form) move(delta int) tea.Cmd {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].input.Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) view() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(f.title))
	b.WriteString("\n")
	for _, fl := range f.fields {
		b.WriteString(styles.label.Render(fl.label))
		b.WriteString("\n")
		b.WriteString(fl.input.View())
		b.WriteString("\n\n")
	}
	return b.String()
}
