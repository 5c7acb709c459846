// Package models defines the domain entities exchanged with the trip-planning backend.
//
// The package contains three categories of types:
//
// 1. Session state: the single authenticated identity held by the client
//   - [Session] : user id, username, bearer token and the CSRF token in effect
//   - [User] : account record returned by registration and /users/me
//
// 2. Trip data: server-owned records mirrored after every fetch
//   - [Trip] : named date range owning an ordered list of destinations
//   - [Destination] : city/country stop within a trip
//
// 3. Weather data: ephemeral readings that are never persisted client-side
//   - [WeatherSnapshot] : one observation or forecast slot
//   - [WeatherReport], [TripWeather], [CityWeather] : endpoint response shapes
//   - [ForecastEntry] and [DayForecast] : raw three-hour slots and their daily summary
//
// Wire helpers [DateTime] and [Reading] tolerate the loose timestamp and number formats the backend emits.
package models
