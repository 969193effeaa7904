package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/feelsunbreeze/spps_tui/internal/models"
)

// Login exchanges credentials for a session cookie. The returned profile is
// empty when the backend's login response carries none.
func (c *Client) Login(ctx context.Context, username, password string) (models.User, error) {
	payload := map[string]string{"username": username, "password": password}

	var raw json.RawMessage
	if err := c.send(ctx, http.MethodPost, "/auth/login/", payload, &raw); err != nil {
		return models.User{}, err
	}
	return decodeProfile(raw)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/auth/logout/", nil, nil)
}

// Me resolves the identity behind the current session cookie.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/auth/me/", nil, &raw); err != nil {
		return models.User{}, err
	}
	return decodeProfile(raw)
}

// decodeProfile accepts either a bare profile or {"user": {...}}.
func decodeProfile(raw json.RawMessage) (models.User, error) {
	if len(raw) == 0 {
		return models.User{}, nil
	}

	var wrapped struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return models.User{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	if wrapped.User != nil {
		return *wrapped.User, nil
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return models.User{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	return user, nil
}
