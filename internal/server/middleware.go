package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripx/internal/shared"
)

// HeaderCSRF carries the anti-forgery token on responses and mutating requests.
const HeaderCSRF = "X-CSRF-Token"

type contextKey int

const userKey contextKey = iota

// CSRFOpts configures [NewCSRF].
type CSRFOpts struct {
	// Strict rejects mutating requests whose token is missing or stale with 403.
	// Otherwise they are logged and allowed through.
	Strict bool
	// Exempt path prefixes are neither checked nor given a token.
	Exempt []string
	// Generate produces new tokens. Defaults to random UUIDs.
	Generate func() string
	Logger   *log.Logger
}

// CSRF issues a fresh token on every response and checks it on POST, PUT, PATCH and DELETE.
//
// Only the most recently issued token is accepted.
type CSRF struct {
	mu      sync.Mutex
	current string
	opts    CSRFOpts
}

func NewCSRF(opts CSRFOpts) *CSRF {
	if opts.Generate == nil {
		opts.Generate = shared.GenerateID
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &CSRF{opts: opts}
}

// Current returns the last token handed out, or "" before the first response.
func (c *CSRF) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *CSRF) rotate() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.opts.Generate()
	return c.current
}

func (c *CSRF) valid(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return token != "" && token == c.current
}

func (c *CSRF) exempt(path string) bool {
	for _, prefix := range c.opts.Exempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware returns the [Middleware] form of c.
func (c *CSRF) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c.exempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				token := r.Header.Get(HeaderCSRF)
				if !c.valid(token) {
					detail := "Invalid CSRF token."
					if token == "" {
						detail = "CSRF token missing. Include X-CSRF-Token header."
					}
					if c.opts.Strict {
						w.Header().Set(HeaderCSRF, c.rotate())
						WriteDetail(w, http.StatusForbidden, detail)
						return
					}
					c.opts.Logger.Warn("csrf check failed", "path", r.URL.Path, "detail", detail)
				}
			}

			w.Header().Set(HeaderCSRF, c.rotate())
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate resolves a bearer token to a user id with validate and stores it in the request context.
//
// Requests without a valid token pass through anonymously; [RequireUser] rejects them.
func Authenticate(validate func(token string) (int, bool)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if ok && strings.EqualFold(scheme, "Bearer") {
				if id, ok := validate(strings.TrimSpace(token)); ok {
					r = r.WithContext(context.WithValue(r.Context(), userKey, id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserID returns the authenticated user stored by [Authenticate].
func UserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userKey).(int)
	return id, ok
}

// RequireUser answers 401 unless [Authenticate] identified the caller.
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserID(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			WriteDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs method, path, status and duration of every request at debug level.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
		})
	}
}

// WriteJSON encodes v with status. A nil v writes no body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if v == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteDetail writes the {"detail": ...} error body used by the backend.
func WriteDetail(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, map[string]string{"detail": detail})
}
