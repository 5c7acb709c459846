package ui

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tripx/internal/formatter"
	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/services"
	"github.com/desertthunder/tripx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	FormView
	TripListView
	DestinationListView
	WeatherView
	ConfirmView
)

// WeatherService is the subset of [services.WeatherClient] the weather view needs.
type WeatherService interface {
	Current(ctx context.Context, destinationID int, forceRefresh bool) (*models.WeatherReport, error)
	Forecast(ctx context.Context, destinationID int) ([]models.ForecastEntry, error)
}

// confirmation is a pending destructive action awaiting y/n.
type confirmation struct {
	prompt   string
	action   string
	run      func(ctx context.Context) error
	returnTo ViewState
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	sync     *tasks.Synchronizer
	weather  WeatherService
	loc      *time.Location
	renderer *ChannelRenderer
	progress chan tasks.ProgressUpdate

	width  int
	height int

	session  *models.Session
	trips    []models.Trip
	tripList list.Model
	destList list.Model
	tripID   int

	weatherDest models.Destination
	weatherData weatherResult

	form    *form
	confirm *confirmation

	busy      bool
	activity  string
	status    string
	statusErr bool

	help help.Model
	keys keyMap
}

// NewModel creates a TUI over sync. The model installs itself as the synchronizer's renderer and progress sink.
func NewModel(ctx context.Context, sync *tasks.Synchronizer, weather WeatherService, loc *time.Location) *Model {
	if loc == nil {
		loc = time.Local
	}

	m := &Model{
		ctx:      ctx,
		view:     LoadingView,
		sync:     sync,
		weather:  weather,
		loc:      loc,
		renderer: NewChannelRenderer(),
		progress: make(chan tasks.ProgressUpdate, 32),
		tripList: newList("Trips", nil, 0, 0),
		destList: newList("Destinations", nil, 0, 0),
		help:     help.New(),
		keys:     newKeyMap(),
	}
	sync.SetRenderer(m.renderer)
	sync.SetProgress(m.progress)
	return m
}

// Init restores the session and starts listening for renders and progress.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.start(), m.waitForTrips(), m.waitForProgress())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tripList.SetSize(msg.Width-4, msg.Height-6)
		m.destList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case FormView:
			return m.handleFormKeys(msg)
		case TripListView:
			return m.handleTripListKeys(msg)
		case DestinationListView:
			return m.handleDestinationListKeys(msg)
		case WeatherView:
			return m.handleWeatherKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStarted:
		m.session, _ = msg.data.(*models.Session)
		if m.session == nil {
			m.openForm(newLoginForm())
			m.setStatus("Not signed in", false)
			return m, nil
		}
		m.view = TripListView
		m.setStatus("Signed in as "+m.session.Username, false)
		return m, nil

	case MsgTripsRendered:
		trips, _ := msg.data.([]models.Trip)
		cmd := m.setTrips(trips)
		return m, tea.Batch(cmd, m.waitForTrips())

	case MsgProgressUpdate:
		if update, ok := msg.data.(tasks.ProgressUpdate); ok {
			m.activity = update.Message
		}
		return m, m.waitForProgress()

	case MsgLoginDone:
		res := msg.data.(loginResult)
		m.busy = false
		if res.err != nil {
			m.setStatus(fmt.Sprintf("Login failed: %v", res.err), true)
			return m, nil
		}
		m.session = res.session
		m.form = nil
		m.view = TripListView
		m.setStatus("Signed in as "+res.session.Username, false)
		return m, nil

	case MsgMutationDone:
		res := msg.data.(mutationResult)
		m.busy = false
		if res.err != nil {
			m.setStatus(fmt.Sprintf("Could not %s: %v", res.action, res.err), true)
			return m, nil
		}
		m.setStatus("Done: "+res.action, false)
		return m, nil

	case MsgWeatherFetched:
		m.busy = false
		m.weatherData = msg.data.(weatherResult)
		switch {
		case m.weatherData.err != nil:
			m.setStatus(fmt.Sprintf("Weather unavailable: %v", m.weatherData.err), true)
		case m.weatherData.forecastErr != nil:
			m.setStatus(fmt.Sprintf("Forecast unavailable: %v", m.weatherData.forecastErr), true)
		default:
			m.setStatus("Weather updated", false)
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case LoadingView:
		body = styles.title.Render("tripx") + "\nLoading…"
	case FormView:
		body = m.renderForm()
	case TripListView:
		body = m.renderTripList()
	case DestinationListView:
		body = m.renderDestinationList()
	case WeatherView:
		body = m.renderWeather()
	case ConfirmView:
		body = m.renderConfirm()
	}
	return body + "\n" + m.renderStatus()
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// setTrips replaces the collection and keeps the current selections where possible.
func (m *Model) setTrips(trips []models.Trip) tea.Cmd {
	m.trips = trips
	selected := m.tripList.Index()
	cmd := m.tripList.SetItems(tripItems(trips))
	if i := slices.IndexFunc(trips, func(t models.Trip) bool { return t.ID == m.tripID }); i >= 0 {
		m.tripList.Select(i)
	} else if selected < len(trips) {
		m.tripList.Select(selected)
	}

	if m.tripID == 0 {
		return cmd
	}
	trip, ok := m.currentTrip()
	if !ok {
		m.tripID = 0
		if m.view == DestinationListView || m.view == WeatherView {
			m.view = TripListView
			m.setStatus("Trip no longer exists", true)
		}
		return cmd
	}
	return tea.Batch(cmd, m.destList.SetItems(destinationItems(trip.Destinations)))
}

func (m *Model) currentTrip() (models.Trip, bool) {
	return models.FindTrip(m.trips, m.tripID)
}

func (m *Model) selectedTrip() (models.Trip, bool) {
	if item, ok := m.tripList.SelectedItem().(tripItem); ok {
		return item.trip, true
	}
	return models.Trip{}, false
}

func (m *Model) selectedDestination() (models.Destination, bool) {
	if item, ok := m.destList.SelectedItem().(destinationItem); ok {
		return item.dest, true
	}
	return models.Destination{}, false
}

func (m *Model) openForm(f *form) {
	f.returnTo = m.view
	m.form = f
	m.view = FormView
}

func (m *Model) openTrip(trip models.Trip) {
	m.tripID = trip.ID
	m.destList = newList(trip.Name, destinationItems(trip.Destinations), m.width-4, m.height-6)
	m.view = DestinationListView
}

func (m *Model) ask(prompt, action string, run func(ctx context.Context) error) {
	m.confirm = &confirmation{prompt: prompt, action: action, run: run, returnTo: m.view}
	m.view = ConfirmView
}

func (m *Model) handleTripListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.tripList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if trip, ok := m.selectedTrip(); ok {
			m.openTrip(trip)
		}
		return m, nil
	case key.Matches(msg, m.keys.add):
		m.openForm(newTripForm())
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if trip, ok := m.selectedTrip(); ok {
			id := trip.ID
			m.ask(fmt.Sprintf("Delete trip %q and its %d destinations?", trip.Name, len(trip.Destinations)),
				"delete trip "+trip.Name,
				func(ctx context.Context) error { return m.sync.DeleteTrip(ctx, id) })
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	}

	return m.updateLists(msg)
}

func (m *Model) handleDestinationListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.destList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = TripListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if dest, ok := m.selectedDestination(); ok {
			m.weatherDest = dest
			m.weatherData = weatherResult{}
			m.view = WeatherView
			return m, m.fetchWeather(dest.ID, false)
		}
		return m, nil
	case key.Matches(msg, m.keys.add):
		if trip, ok := m.currentTrip(); ok {
			m.openForm(newDestinationForm(trip.Name))
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if dest, ok := m.selectedDestination(); ok {
			id := dest.ID
			m.ask(fmt.Sprintf("Remove %s from this trip?", dest.Place()),
				"remove "+dest.City,
				func(ctx context.Context) error { return m.sync.DeleteDestination(ctx, id) })
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.refresh()
	}

	return m.updateLists(msg)
}

func (m *Model) handleWeatherKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = DestinationListView
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchWeather(m.weatherDest.ID, true)
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirm
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = c.returnTo
		m.confirm = nil
		return m, m.mutate(c.action, c.run)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = c.returnTo
		m.confirm = nil
	}
	return m, nil
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.String() {
	case "esc":
		if f.kind == loginForm {
			return m, tea.Quit
		}
		m.form = nil
		m.view = f.returnTo
		return m, nil
	case "tab", "down":
		return m, f.move(1)
	case "shift+tab", "up":
		return m, f.move(-1)
	case "enter":
		if !f.last() {
			return m, f.move(1)
		}
		return m, m.submit(f)
	}
	return m, f.update(msg)
}

// submit turns a completed form into a command. Trip and destination forms close immediately.
func (m *Model) submit(f *form) tea.Cmd {
	if m.busy {
		return nil
	}

	switch f.kind {
	case loginForm:
		username, password := f.value(0), f.fields[1].input.Value()
		m.busy = true
		m.setStatus("Signing in…", false)
		return func() tea.Msg {
			sess, err := m.sync.Login(m.ctx, username, password)
			return loginDoneMsg(sess, err)
		}

	case tripForm:
		fields := services.TripFields{Name: f.value(0), Description: f.value(1), StartDate: f.value(2), EndDate: f.value(3)}
		m.form = nil
		m.view = f.returnTo
		return m.mutate("create trip "+fields.Name, func(ctx context.Context) error {
			_, err := m.sync.CreateTrip(ctx, fields)
			return err
		})

	case destinationForm:
		fields := services.DestinationFields{TripID: m.tripID, City: f.value(0), Country: f.value(1), ArrivalDate: f.value(2), DepartureDate: f.value(3)}
		m.form = nil
		m.view = f.returnTo
		return m.mutate("add "+fields.City, func(ctx context.Context) error {
			_, err := m.sync.CreateDestination(ctx, fields)
			return err
		})
	}
	return nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case TripListView:
		m.tripList, cmd = m.tripList.Update(msg)
	case DestinationListView:
		m.destList, cmd = m.destList.Update(msg)
	}
	return m, cmd
}

func (m *Model) start() tea.Cmd {
	return func() tea.Msg {
		return startedMsg(m.sync.Start(m.ctx))
	}
}

// mutate runs a synchronizer operation off the event loop. The refreshed trips arrive through the renderer.
func (m *Model) mutate(action string, run func(ctx context.Context) error) tea.Cmd {
	m.busy = true
	m.setStatus("Working: "+action+"…", false)
	return func() tea.Msg {
		return mutationDoneMsg(action, run(m.ctx))
	}
}

func (m *Model) refresh() tea.Cmd {
	return m.mutate("refresh trips", func(ctx context.Context) error {
		m.sync.Refresh(ctx)
		return nil
	})
}

func (m *Model) logout() tea.Cmd {
	err := m.sync.Logout()
	m.session = nil
	m.tripID = 0
	m.openForm(newLoginForm())
	if err != nil {
		m.setStatus(fmt.Sprintf("Logged out, but the stored session could not be removed: %v", err), true)
	} else {
		m.setStatus("Logged out", false)
	}
	return nil
}

func (m *Model) fetchWeather(destinationID int, force bool) tea.Cmd {
	m.busy = true
	m.setStatus("Fetching weather…", false)
	return func() tea.Msg {
		var res weatherResult
		res.report, res.err = m.weather.Current(m.ctx, destinationID, force)
		if res.err != nil {
			return weatherFetchedMsg(res)
		}
		entries, err := m.weather.Forecast(m.ctx, destinationID)
		if err != nil {
			res.forecastErr = err
		} else {
			res.forecast = tasks.GroupForecast(entries, m.loc)
		}
		return weatherFetchedMsg(res)
	}
}

func (m *Model) waitForTrips() tea.Cmd {
	ch := m.renderer.Trips()
	return func() tea.Msg {
		trips, ok := <-ch
		if !ok {
			return nil
		}
		return tripsRenderedMsg(trips)
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	ch := m.progress
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderForm() string {
	helpKeys := []key.Binding{m.keys.next, m.keys.prev, m.keys.enter, m.keys.back}
	return fmt.Sprintf("%s%s", m.form.view(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderTripList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.add, m.keys.remove, m.keys.refresh, m.keys.logout, m.keys.quit}
	return fmt.Sprintf("%s\n%s", m.tripList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDestinationList() string {
	weatherKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "weather"))
	helpKeys := []key.Binding{weatherKey, m.keys.add, m.keys.remove, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s", m.destList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderWeather() string {
	title := styles.title.Render("Weather • " + m.weatherDest.Place())

	var body string
	switch {
	case m.busy && m.weatherData.report == nil:
		body = "Fetching…"
	case m.weatherData.err != nil:
		body = styles.err.Render(m.weatherData.err.Error())
	default:
		var current *models.WeatherSnapshot
		if m.weatherData.report != nil {
			current = m.weatherData.report.Current
		}
		body = styles.card.Render(formatter.FormatWeatherCard(m.weatherDest.Place(), current)) +
			"\n\n" + formatter.FormatForecast(m.weatherData.forecast)
	}

	forceKey := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "force refresh"))
	helpKeys := []key.Binding{forceKey, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", title, body, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	title := styles.warn.Render(m.confirm.prompt)
	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n\n%s", title, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderStatus() string {
	status := m.status
	switch {
	case status == "":
	case m.statusErr:
		status = styles.err.Render(status)
	default:
		status = styles.ok.Render(status)
	}
	if m.activity != "" {
		status += "  " + styles.help.Render(m.activity)
	}
	return styles.status.Render(status)
}
