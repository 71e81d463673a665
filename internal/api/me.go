package api

import (
	"context"
	"net/http"

	"point2point/internal/normalize"
	"point2point/internal/types"
)

// Credentials is the login payload for the auth service.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the token + user pair returned by login and signup.
type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

type rawAuthResponse struct {
	Token string            `json:"token"`
	User  normalize.RawUser `json:"user"`
}

// Login authenticates against the auth service through the composite
// gateway.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResponse, error) {
	var raw rawAuthResponse
	if err := c.requestInto(ctx, http.MethodPost, "/auth/login", creds, &raw); err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{Token: raw.Token, User: normalize.User(raw.User)}, nil
}

// Signup registers an account through the auth service and returns the
// initial session.
func (c *Client) Signup(ctx context.Context, u NewUser, password string) (AuthResponse, error) {
	body := map[string]any{
		"email":                  u.Email,
		"password":               password,
		"firstName":              u.FirstName,
		"lastName":               u.LastName,
		"homeArea":               u.HomeArea,
		"preferredDepartureTime": u.PreferredDepartureTime,
	}
	var raw rawAuthResponse
	if err := c.requestInto(ctx, http.MethodPost, "/auth/signup", body, &raw); err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{Token: raw.Token, User: normalize.User(raw.User)}, nil
}

// Logout invalidates the server-side session. The local session record is
// cleared by the session store regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.requestInto(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// GetProfile fetches the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context) (types.User, error) {
	var raw normalize.RawUser
	if err := c.requestInto(ctx, http.MethodGet, "/me/profile", nil, &raw); err != nil {
		return types.User{}, err
	}
	return normalize.User(raw), nil
}

// UpdateProfile replaces the authenticated user's profile fields.
func (c *Client) UpdateProfile(ctx context.Context, profile types.User) (types.User, error) {
	var raw normalize.RawUser
	if err := c.requestInto(ctx, http.MethodPut, "/me/profile", profile, &raw); err != nil {
		return types.User{}, err
	}
	return normalize.User(raw), nil
}

type rawOverview struct {
	Subscriptions []normalize.RawSubscription `json:"subscriptions"`
	UpcomingTrips []normalize.RawTrip         `json:"upcomingTrips"`
}

// SemesterOverview fetches the authenticated user's subscriptions and
// upcoming trips for the current semester.
func (c *Client) SemesterOverview(ctx context.Context) (types.SemesterOverview, error) {
	var raw rawOverview
	if err := c.requestInto(ctx, http.MethodGet, "/me/semester-overview", nil, &raw); err != nil {
		return types.SemesterOverview{}, err
	}

	overview := types.SemesterOverview{
		Subscriptions: make([]types.Subscription, 0, len(raw.Subscriptions)),
		UpcomingTrips: make([]types.Trip, 0, len(raw.UpcomingTrips)),
	}
	for _, s := range raw.Subscriptions {
		overview.Subscriptions = append(overview.Subscriptions, normalize.Subscription(s, c.norm))
	}
	for _, t := range raw.UpcomingTrips {
		overview.UpcomingTrips = append(overview.UpcomingTrips, normalize.Trip(t))
	}
	return overview, nil
}

// TodayTrips fetches the authenticated user's bookings for today.
func (c *Client) TodayTrips(ctx context.Context) ([]types.Trip, error) {
	var env tripListEnvelope
	if err := c.requestInto(ctx, http.MethodGet, "/me/today-trips", nil, &env); err != nil {
		return nil, err
	}
	raws := env.Data
	if raws == nil {
		raws = env.Trips
	}
	trips := make([]types.Trip, 0, len(raws))
	for _, raw := range raws {
		trips = append(trips, normalize.Trip(raw))
	}
	return trips, nil
}
