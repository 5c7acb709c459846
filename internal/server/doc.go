// Package server provides HTTP routing and middleware for serving the trip-planning REST surface.
//
// # Router
//
// [BasicRouter] wraps [http.ServeMux] method patterns. Middleware added with [BasicRouter.Use] wraps
// every route registered after it, outermost first.
//
// # Middleware
//
//   - [CSRF] rotates an X-CSRF-Token on every response and checks it on mutating requests.
//   - [Authenticate] maps a bearer token to a user id kept in the request context; [RequireUser]
//     guards handlers that need one.
//   - [RequestLogger] logs each exchange at debug level.
//
// The in-process backend in internal/testing is assembled from these pieces, so client code can be
// exercised against the same CSRF and bearer rules the real service enforces.
package server
