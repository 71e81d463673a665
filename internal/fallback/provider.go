// Package fallback supplies deterministic sample data when the composite
// service cannot be reached. Pages use it only from their error paths so
// the primary views never end up permanently empty; it is never consulted
// speculatively.
package fallback

import (
	"context"
	"time"

	"point2point/internal/types"
)

// SampleRouteCount is the fixed size of the sample route set.
const SampleRouteCount = 4

// DefaultLatency approximates a real network round trip so degraded loads
// feel consistent with live ones.
const DefaultLatency = 800 * time.Millisecond

// Provider hands out copies of the fixed sample data.
type Provider struct {
	latency time.Duration
}

// New creates a Provider with the default simulated latency.
func New() *Provider {
	return &Provider{latency: DefaultLatency}
}

// NewWithLatency creates a Provider with a custom latency. Tests pass 0.
func NewWithLatency(latency time.Duration) *Provider {
	return &Provider{latency: latency}
}

// wait sleeps for the simulated latency, honoring cancellation.
func (p *Provider) wait(ctx context.Context) error {
	if p.latency <= 0 {
		return nil
	}
	t := time.NewTimer(p.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Routes returns the fixed sample route list.
func (p *Provider) Routes(ctx context.Context) (types.RouteList, error) {
	if err := p.wait(ctx); err != nil {
		return types.RouteList{}, err
	}
	routes := []types.Route{
		{
			ID: 1, From: "Columbia University", To: "Flushing, Queens",
			Status: types.RouteProposed, Schedule: "Weekdays 8:00 AM / 6:30 PM",
			Semester: "Fall 2025", CurrentMembers: 8, RequiredMembers: 15,
			AvailableSeats: 7, DaysLeft: 5,
			Links: map[string]string{
				"self": "/routes/1", "members": "/routes/1/members", "join": "/routes/1/join",
			},
		},
		{
			ID: 2, From: "Columbia University", To: "Jersey City, NJ",
			Status: types.RouteActive, Schedule: "Weekdays 7:45 AM / 6:15 PM",
			Semester: "Fall 2025", CurrentMembers: 17, RequiredMembers: 20,
			AvailableSeats: 3, DaysLeft: 30,
			Links: map[string]string{
				"self": "/routes/2", "members": "/routes/2/members", "subscribe": "/subscriptions",
			},
		},
		{
			ID: 3, From: "Columbia University", To: "Brooklyn Heights",
			Status: types.RouteProposed, Schedule: "Weekdays 8:15 AM / 6:45 PM",
			Semester: "Fall 2025", CurrentMembers: 4, RequiredMembers: 12,
			AvailableSeats: 8, DaysLeft: 12,
			Links: map[string]string{
				"self": "/routes/3", "members": "/routes/3/members", "join": "/routes/3/join",
			},
		},
		{
			ID: 4, From: "Columbia University", To: "Astoria, Queens",
			Status: types.RouteActive, Schedule: "Weekdays 7:30 AM / 6:00 PM",
			Semester: "Fall 2025", CurrentMembers: 12, RequiredMembers: 15,
			AvailableSeats: 1, DaysLeft: 30,
			Links: map[string]string{
				"self": "/routes/4", "members": "/routes/4/members", "subscribe": "/subscriptions",
			},
		},
	}
	return types.RouteList{
		Routes: routes,
		Pagination: types.Pagination{
			TotalCount: len(routes), Page: 1, PageSize: 20, TotalPages: 1,
		},
	}, nil
}

// SemesterOverview returns the fixed sample subscriptions and upcoming
// trips.
func (p *Provider) SemesterOverview(ctx context.Context) (types.SemesterOverview, error) {
	if err := p.wait(ctx); err != nil {
		return types.SemesterOverview{}, err
	}
	return types.SemesterOverview{
		Subscriptions: []types.Subscription{
			{
				ID: 1, RouteID: 1, Status: types.SubscriptionActive, Semester: "Fall 2025",
				Route: types.RouteSummary{
					From: "Columbia University", To: "Flushing, Queens",
					Schedule: "Weekdays 8:00 AM / 6:30 PM", Semester: "Fall 2025",
				},
			},
			{
				ID: 2, RouteID: 2, Status: types.SubscriptionCancelled, Semester: "Fall 2025",
				Route: types.RouteSummary{
					From: "Columbia University", To: "Jersey City, NJ",
					Schedule: "Weekdays 7:45 AM / 6:15 PM", Semester: "Fall 2025",
				},
			},
		},
		UpcomingTrips: []types.Trip{
			{
				BookingID: 101, Type: types.TripMorning, Date: "2025-09-15",
				Route: types.RouteSummary{From: "Columbia University", To: "Flushing, Queens"},
			},
			{
				BookingID: 102, Type: types.TripEvening, Date: "2025-09-15",
				Route: types.RouteSummary{From: "Columbia University", To: "Flushing, Queens"},
			},
		},
	}, nil
}

// Profile returns the fixed sample user shown when the profile endpoints
// are unreachable.
func (p *Provider) Profile(ctx context.Context) (types.User, error) {
	if err := p.wait(ctx); err != nil {
		return types.User{}, err
	}
	return types.User{
		ID: 1, Email: "demo@columbia.edu",
		FirstName: "Demo", LastName: "User",
		HomeArea: "Flushing, Queens", PreferredDepartureTime: "08:00",
		JoinedRoutes:        []int64{1, 3},
		ActiveSubscriptions: []int64{2},
		MemberSince:         "2024-09-01",
	}, nil
}
