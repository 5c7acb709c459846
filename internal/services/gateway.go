package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripx/internal/session"
	"github.com/desertthunder/tripx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	HeaderCSRF      = "X-CSRF-Token"
	HeaderRequestID = "X-Request-ID"
)

// Requester issues a request against the backend. [Gateway] is the production implementation.
type Requester interface {
	Request(ctx context.Context, path string, opts RequestOpts) (*APIResponse, error)
}

// RequestOpts describes one call. The zero value is a GET with no body.
//
// Body may be nil, a []byte or string sent verbatim, or any value encoded as JSON.
type RequestOpts struct {
	Method  string
	Body    any
	Headers http.Header
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GatewayOpts configures [NewGateway].
type GatewayOpts struct {
	Origin  string
	Client  *http.Client
	Timeout time.Duration
	// RateLimit is requests per second. Zero disables client-side limiting.
	RateLimit float64
	Burst     int
	Store     *session.Store
	Logger    *log.Logger
}

// Gateway attaches credentials to outgoing requests and harvests rotated CSRF tokens.
type Gateway struct {
	origin     string
	httpClient *http.Client
	limiter    *rate.Limiter
	store      *session.Store
	logger     *log.Logger
}

// NewGateway creates a gateway for the backend at opts.Origin.
func NewGateway(opts GatewayOpts) *Gateway {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	store := opts.Store
	if store == nil {
		store = session.NewStore(nil, opts.Logger)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	g := &Gateway{
		origin:     strings.TrimRight(opts.Origin, "/"),
		httpClient: client,
		store:      store,
		logger:     logger,
	}

	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return g
}

// Origin returns the backend origin requests are sent to.
func (g *Gateway) Origin() string {
	return g.origin
}

// Request sends a request to origin+path with the session's credentials attached.
//
// Any status code is returned as a response. The error is non-nil only when no response was obtained.
func (g *Gateway) Request(ctx context.Context, path string, opts RequestOpts) (*APIResponse, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, g.origin+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, values := range opts.Headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if token := g.store.AuthToken(); token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	if mutating(method) {
		if csrf := g.store.CSRFToken(); csrf != "" {
			req.Header.Set(HeaderCSRF, csrf)
		}
	}

	requestID := shared.GenerateID()
	req.Header.Set(HeaderRequestID, requestID)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", shared.ErrTransport, err)
		}
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if csrf := resp.Header.Get(HeaderCSRF); csrf != "" {
		g.store.SetCSRFToken(csrf)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrTransport, err)
	}

	g.logger.Debug("request",
		"method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start).Round(time.Millisecond))

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (g *Gateway) Get(ctx context.Context, path string) (*APIResponse, error) {
	return g.Request(ctx, path, RequestOpts{Method: http.MethodGet})
}

// Post performs a POST request with the given body and returns the raw response.
func (g *Gateway) Post(ctx context.Context, path string, body any) (*APIResponse, error) {
	return g.Request(ctx, path, RequestOpts{Method: http.MethodPost, Body: body})
}

// Delete performs a DELETE request to the specified path and returns the raw response.
func (g *Gateway) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return g.Request(ctx, path, RequestOpts{Method: http.MethodDelete})
}

// InitCSRF fetches the service root once so the response can seed the CSRF token.
//
// Failure is logged and reported as false; it never stops startup.
func (g *Gateway) InitCSRF(ctx context.Context) bool {
	if _, err := g.Get(ctx, "/"); err != nil {
		g.logger.Warn("could not initialize CSRF token", "error", err)
		return false
	}
	if g.store.CSRFToken() == "" {
		g.logger.Debug("service root did not provide a CSRF token")
		return false
	}
	return true
}

func mutating(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to encode request body: %v", shared.ErrInvalidInput, err)
		}
		return bytes.NewReader(data), nil
	}
}
