package fallback

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"point2point/internal/types"
)

func TestRoutesSampleSize(t *testing.T) {
	list, err := New().Routes(context.Background())
	if err != nil {
		t.Fatalf("routes failed: %v", err)
	}
	if len(list.Routes) != SampleRouteCount {
		t.Fatalf("expected %d sample routes, got %d", SampleRouteCount, len(list.Routes))
	}
	if list.Pagination.TotalCount != SampleRouteCount {
		t.Fatalf("pagination count %d does not match sample size", list.Pagination.TotalCount)
	}
}

func TestRoutesDeterministic(t *testing.T) {
	p := NewWithLatency(0)
	ctx := context.Background()
	a, err := p.Routes(ctx)
	if err != nil {
		t.Fatalf("routes failed: %v", err)
	}
	b, err := p.Routes(ctx)
	if err != nil {
		t.Fatalf("routes failed: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("sample routes are not deterministic:\n%s", diff)
	}
}

func TestRoutesSeatInvariant(t *testing.T) {
	list, err := NewWithLatency(0).Routes(context.Background())
	if err != nil {
		t.Fatalf("routes failed: %v", err)
	}
	for _, r := range list.Routes {
		if r.AvailableSeats < 0 {
			t.Fatalf("route %d has negative availableSeats", r.ID)
		}
		if r.Status != types.RouteProposed && r.Status != types.RouteActive {
			t.Fatalf("route %d has unexpected status %q", r.ID, r.Status)
		}
	}
}

func TestSemesterOverviewShape(t *testing.T) {
	overview, err := NewWithLatency(0).SemesterOverview(context.Background())
	if err != nil {
		t.Fatalf("overview failed: %v", err)
	}
	if len(overview.Subscriptions) != 2 {
		t.Fatalf("expected 2 sample subscriptions, got %d", len(overview.Subscriptions))
	}
	if len(overview.UpcomingTrips) != 2 {
		t.Fatalf("expected 2 sample trips, got %d", len(overview.UpcomingTrips))
	}
	if overview.Subscriptions[0].Status != types.SubscriptionActive {
		t.Fatalf("first sample subscription should be active")
	}
	if overview.UpcomingTrips[0].Type != types.TripMorning || overview.UpcomingTrips[1].Type != types.TripEvening {
		t.Fatalf("sample trips should cover morning and evening")
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	p := NewWithLatency(5 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Routes(ctx); err == nil {
		t.Fatalf("expected cancellation error")
	}
}
