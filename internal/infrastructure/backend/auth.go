package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

// Login posts the OAuth2 password form. Bad credentials answer 401, which
// must not be mistaken for a rejected session.
func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	var out ports.LoginResult
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/login",
		form:   url.Values{"username": {email}, "password": {password}},
		public: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type registerRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Role     domain.Role `json:"role"`
}

// Register creates a client account; self-service signup never grants more.
func (c *Client) Register(ctx context.Context, in ports.SignupInput) (*domain.Identity, error) {
	var out domain.Identity
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/register",
		body: registerRequest{
			Email:    in.Email,
			Password: in.Password,
			FullName: in.FullName,
			Role:     domain.RoleClient,
		},
		public: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*domain.Identity, error) {
	var out domain.Identity
	if err := c.do(ctx, call{method: http.MethodGet, path: "/auth/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
