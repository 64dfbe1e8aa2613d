package backend

import (
	"context"
	"fmt"
	"net/http"

	"grocery-console/internal/domain"
)

// AuthResult is a successful login or registration: the bearer credential
// plus the identity it proves.
type AuthResult struct {
	Token    string
	Identity domain.Identity
}

type authPayload struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login exchanges credentials for a bearer token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var payload authPayload
	err := c.sendJSON(ctx, http.MethodPost, "", "/auth/login", loginRequest{Email: email, Password: password}, &payload)
	if err != nil {
		return nil, err
	}
	return authResultFrom(payload)
}

// Register creates an account and logs it in, with the same contract as
// Login.
func (c *Client) Register(ctx context.Context, name, email, password string, role domain.Role) (*AuthResult, error) {
	req := registerRequest{Name: name, Email: email, Password: password, Role: role.String()}
	var payload authPayload
	if err := c.sendJSON(ctx, http.MethodPost, "", "/auth/register", req, &payload); err != nil {
		return nil, err
	}
	return authResultFrom(payload)
}

// Me presents a stored bearer credential and returns the identity it still
// proves, or an authentication error when the backend rejects it.
func (c *Client) Me(ctx context.Context, token string) (*domain.Identity, error) {
	var payload struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	if err := c.get(ctx, token, "/auth/me", nil, &payload); err != nil {
		return nil, err
	}

	role, err := domain.ParseRole(payload.Role)
	if err != nil {
		return nil, fmt.Errorf("backend returned identity with %w", err)
	}
	return &domain.Identity{Name: payload.Name, Role: role}, nil
}

func authResultFrom(payload authPayload) (*AuthResult, error) {
	role, err := domain.ParseRole(payload.Role)
	if err != nil {
		return nil, fmt.Errorf("backend returned identity with %w", err)
	}
	return &AuthResult{
		Token:    payload.Token,
		Identity: domain.Identity{Name: payload.Name, Role: role},
	}, nil
}
