package ui

import (
	"context"

	"point2point/internal/api"
	"point2point/internal/config"
	"point2point/internal/fallback"
	"point2point/internal/session"
	"point2point/internal/types"
)

// Gateway is the slice of the API client the pages use. *api.Client
// satisfies it; tests substitute a scripted fake.
type Gateway interface {
	ListRoutes(ctx context.Context, filter api.RouteFilter) (types.RouteList, error)
	GetRoute(ctx context.Context, routeID int64, etag string) (types.Route, string, error)
	CreateRoute(ctx context.Context, proposal types.RouteProposal, userID int64) (types.Route, error)
	JoinRoute(ctx context.Context, routeID, userID int64) error
	ActivateRoute(ctx context.Context, routeID int64) (types.ActivationTask, error)
	GetActivationStatus(ctx context.Context, taskID string) (types.ActivationTask, error)
	ListSubscriptions(ctx context.Context, userID int64) (types.SubscriptionList, error)
	CreateSubscription(ctx context.Context, userID, routeID int64, semester string) (types.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID int64) error
	EnrichSubscriptions(ctx context.Context, subs []types.Subscription) error
	ListTrips(ctx context.Context, userID int64) ([]types.Trip, error)
	CancelTrip(ctx context.Context, bookingID int64) error
	SemesterOverview(ctx context.Context) (types.SemesterOverview, error)
	GetProfile(ctx context.Context) (types.User, error)
}

// Session is the slice of the session store the pages use.
type Session interface {
	IsAuthenticated() bool
	CurrentUser() (types.User, bool)
	Login(ctx context.Context, email, password string) session.AuthResult
	Signup(ctx context.Context, u api.NewUser, password string) session.AuthResult
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, profile types.User) session.AuthResult
}

// Deps bundles everything the App and its pages need.
type Deps struct {
	Gateway  Gateway
	Fallback *fallback.Provider
	Session  Session
	Semester string
	Services config.ServicesConfig
}

// currentUserID returns the signed-in user's id, or 0.
func (d Deps) currentUserID() int64 {
	if u, ok := d.Session.CurrentUser(); ok {
		return u.ID
	}
	return 0
}
