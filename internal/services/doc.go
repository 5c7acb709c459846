// Package services talks to the trip-planning backend over HTTP.
//
// # Gateway
//
// [Gateway] is the single place credentials are attached. Every request gets:
//   - Content-Type: application/json unless the caller sets another
//   - Authorization: Bearer <token> when the [session.Store] holds a session
//   - X-CSRF-Token on methods other than GET, HEAD and OPTIONS once a token is known
//   - X-Request-ID, a fresh v4 UUID for correlating debug logs
//
// Every response is checked for an X-CSRF-Token header, which replaces the cached token.
// The gateway never turns a non-2xx status into an error; only transport failures
// are returned, wrapping [shared.ErrTransport].
//
// # Resource Clients
//
// [AuthClient], [TripClient], [DestinationClient] and [WeatherClient] build paths and bodies,
// call a [Requester], and translate non-2xx responses into [*APIError]. The error message is the
// server's "detail" field when it has one, else a fixed per-operation fallback.
//
// # Error Handling
//
// [APIError] unwraps to a shared sentinel so callers can branch with [errors.Is]:
//   - [shared.ErrNotAuthenticated] : 401
//   - [shared.ErrForbidden] : 403
//   - [shared.ErrNotFound] : 404
//   - [shared.ErrAPIRequest] : any other failure status
package services
