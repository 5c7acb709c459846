// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI drives a [tasks.Synchronizer]:
//  1. [FormView] : sign in, or create a trip or destination
//  2. [TripListView] : browse trips; n creates, d deletes, r refreshes, L logs out
//  3. [DestinationListView] : the selected trip's destinations
//  4. [WeatherView] : current conditions and a five-day forecast for one destination
//  5. [ConfirmView] : y/n before any deletion
//
// The model installs a [ChannelRenderer] as the synchronizer's renderer, so every refresh reaches the event loop as a
// message no matter which command triggered it. Progress updates arrive the same way and feed the status line.
// Failures are shown in the status line; the interface stays usable.
package ui
