// ABOUTME: Login endpoint call used by the login flow
// ABOUTME: Posts credentials and decodes the token and principal from any response body

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// LoginPath is the credentials endpoint relative to the base URL
const LoginPath = "users/login"

// LoginRequest is the credentials body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUser is the principal returned by the login endpoint
type LoginUser struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// LoginResponse is the login endpoint body
type LoginResponse struct {
	Token string     `json:"token"`
	User  *LoginUser `json:"user"`

	// StatusCode is the HTTP status the body arrived with
	StatusCode int `json:"-"`
}

// Login calls POST /users/login. The body is decoded whatever the status code;
// deciding whether the login succeeded is left to the caller.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, LoginPath, nil, LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("login request completed",
		"status", resp.StatusCode, "request_id", req.Header.Get("X-Request-ID"))

	var login LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return nil, fmt.Errorf("invalid response from backend (status %d): %w", resp.StatusCode, err)
	}
	login.StatusCode = resp.StatusCode
	return &login, nil
}
