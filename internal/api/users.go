package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"point2point/internal/normalize"
	"point2point/internal/types"
)

// NewUser is the payload for account creation. Role and status are fixed
// server-side concepts the client always submits as student/active.
type NewUser struct {
	Email                  string `json:"email"`
	FirstName              string `json:"firstName"`
	LastName               string `json:"lastName"`
	HomeArea               string `json:"homeArea"`
	PreferredDepartureTime string `json:"preferredDepartureTime"`
}

// ListUsers fetches all users, normalized.
func (c *Client) ListUsers(ctx context.Context) ([]types.User, error) {
	resp, err := c.request(ctx, http.MethodGet, "/users", nil, nil)
	if err != nil {
		return nil, err
	}
	raws, err := decodeUserList(resp.Body)
	if err != nil {
		return nil, err
	}
	users := make([]types.User, 0, len(raws))
	for _, raw := range raws {
		users = append(users, normalize.User(raw))
	}
	return users, nil
}

// GetUser fetches one user by id.
func (c *Client) GetUser(ctx context.Context, userID int64) (types.User, error) {
	var raw normalize.RawUser
	if err := c.requestInto(ctx, http.MethodGet, fmt.Sprintf("/users/%d", userID), nil, &raw); err != nil {
		return types.User{}, err
	}
	return normalize.User(raw), nil
}

// FindUserByEmail looks a user up by email. Returns ErrNotFound when no
// user matches. The user service has answered with both a bare array and
// a {data: [...]} envelope; both are tolerated.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (types.User, error) {
	endpoint := "/users?email=" + url.QueryEscape(email)
	resp, err := c.request(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return types.User{}, err
	}
	raws, err := decodeUserList(resp.Body)
	if err != nil {
		return types.User{}, err
	}
	if len(raws) == 0 {
		return types.User{}, &RequestError{Status: http.StatusNotFound, Message: "user not found"}
	}
	return normalize.User(raws[0]), nil
}

// CreateUser registers a new account and returns the stored record.
func (c *Client) CreateUser(ctx context.Context, u NewUser) (types.User, error) {
	if u.HomeArea == "" {
		u.HomeArea = "New York"
	}
	if u.PreferredDepartureTime == "" {
		u.PreferredDepartureTime = "08:00"
	}
	body := map[string]any{
		"email":                  u.Email,
		"firstName":              u.FirstName,
		"lastName":               u.LastName,
		"homeArea":               u.HomeArea,
		"preferredDepartureTime": u.PreferredDepartureTime,
		"role":                   "student",
		"status":                 "active",
	}

	var raw normalize.RawUser
	if err := c.requestInto(ctx, http.MethodPost, "/users", body, &raw); err != nil {
		return types.User{}, err
	}
	return normalize.User(raw), nil
}

// UpdateUser replaces a user's profile fields.
func (c *Client) UpdateUser(ctx context.Context, userID int64, profile types.User) (types.User, error) {
	var raw normalize.RawUser
	if err := c.requestInto(ctx, http.MethodPut, fmt.Sprintf("/users/%d", userID), profile, &raw); err != nil {
		return types.User{}, err
	}
	return normalize.User(raw), nil
}

// decodeUserList tolerates a bare array, {"data": [...]}, or
// {"users": [...]}.
func decodeUserList(body json.RawMessage) ([]normalize.RawUser, error) {
	var raws []normalize.RawUser
	if err := json.Unmarshal(body, &raws); err == nil {
		return raws, nil
	}
	var env struct {
		Data  []normalize.RawUser `json:"data"`
		Users []normalize.RawUser `json:"users"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode user list: %w", err)
	}
	if env.Data != nil {
		return env.Data, nil
	}
	return env.Users, nil
}
