// package server contains the router and middleware used to serve the trip-planning REST surface
package server

import (
	"net/http"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler groups several routes behind one http.Handler.
//
// Routes are ServeMux patterns and may carry a method, e.g. "GET /trips/{id}".
type Handler interface {
	http.Handler
	Routes() []string
}

// Router registers handlers and applies middleware to them.
type Router interface {
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	HandleFunc(method, path string, handler http.HandlerFunc)
	Handler(handler Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}
