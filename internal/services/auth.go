package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/shared"
)

// AuthClient covers the /users endpoints and the health probe.
type AuthClient struct {
	api Requester
}

func NewAuthClient(api Requester) *AuthClient {
	return &AuthClient{api: api}
}

// Login exchanges credentials for a session. The session is not stored; callers decide that.
func (c *AuthClient) Login(ctx context.Context, username, password string) (*models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, shared.ErrMissingArgument
	}

	var body models.LoginResponse
	err := call(ctx, c.api, "/users/login", RequestOpts{
		Method: http.MethodPost,
		Body:   map[string]string{"username": username, "password": password},
	}, "failed to log in", &body)
	if err != nil {
		return nil, err
	}

	return body.Session(), nil
}

// Register creates an account. It does not log in.
func (c *AuthClient) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	var user models.User
	err := call(ctx, c.api, "/users/register", RequestOpts{
		Method: http.MethodPost,
		Body:   map[string]string{"username": strings.TrimSpace(username), "email": strings.TrimSpace(email), "password": password},
	}, "registration failed", &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the account the current token belongs to.
func (c *AuthClient) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := call(ctx, c.api, "/users/me", RequestOpts{}, "failed to load profile", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Health is the body of GET /health.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health probes the backend.
func (c *AuthClient) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := call(ctx, c.api, "/health", RequestOpts{}, "health check failed", &h); err != nil {
		return nil, err
	}
	return &h, nil
}
