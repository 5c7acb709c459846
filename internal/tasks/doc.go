// Package tasks keeps the client's view of trips consistent with the server.
//
// # Synchronization
//
// [Synchronizer] owns the refresh-after-mutation rule: every create or delete is followed by a
// full [Synchronizer.Refresh] once the mutation's outcome is known, whether it succeeded or not.
// There is no optimistic local patching; the server is the single source of truth.
//
// A failed refresh never surfaces as an error. The trip collection is emptied, the [Renderer]
// receives the empty list and the failure is logged.
//
// # Startup
//
// [Synchronizer.Start] restores a stored session, seeds the CSRF token, then refreshes trips if a
// session was found.
//
// # Progress Reporting
//
// Operations optionally report [ProgressUpdate] values on a channel. Sends never block; when the
// channel is full the update is dropped.
//
// # Weather Collection
//
// [CollectWeather] fetches trip-wide weather for many trips with a small worker pool and a
// [rate.Limiter] so the backend's per-client limit is respected.
//
// # Forecast Grouping
//
// [GroupForecast] buckets three-hour forecast slots into at most [MaxForecastDays] local calendar days.
package tasks
