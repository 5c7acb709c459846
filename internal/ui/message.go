package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStarted MsgKind = iota
	MsgTripsRendered
	MsgProgressUpdate
	MsgLoginDone
	MsgMutationDone
	MsgWeatherFetched
)

type loginResult struct {
	session *models.Session
	err     error
}

type mutationResult struct {
	action string
	err    error
}

// weatherResult carries current conditions and the grouped forecast. The forecast can fail on its own.
type weatherResult struct {
	report      *models.WeatherReport
	forecast    []models.DayForecast
	err         error
	forecastErr error
}

// startedMsg is the constructor for [MsgStarted]. A nil session means nobody is signed in.
func startedMsg(sess *models.Session) Msg {
	return Msg{kind: MsgStarted, data: sess}
}

// tripsRenderedMsg is the constructor for [MsgTripsRendered]
func tripsRenderedMsg(trips []models.Trip) Msg {
	return Msg{kind: MsgTripsRendered, data: trips}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// loginDoneMsg is the constructor for [MsgLoginDone]
func loginDoneMsg(sess *models.Session, err error) Msg {
	return Msg{kind: MsgLoginDone, data: loginResult{session: sess, err: err}}
}

// mutationDoneMsg is the constructor for [MsgMutationDone]
func mutationDoneMsg(action string, err error) Msg {
	return Msg{kind: MsgMutationDone, data: mutationResult{action: action, err: err}}
}

// weatherFetchedMsg is the constructor for [MsgWeatherFetched]
func weatherFetchedMsg(result weatherResult) Msg {
	return Msg{kind: MsgWeatherFetched, data: result}
}
