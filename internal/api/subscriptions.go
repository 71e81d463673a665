package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"point2point/internal/normalize"
	"point2point/internal/types"
)

// enrichConcurrency bounds the parallel per-route fetches issued while
// hydrating a subscription list.
const enrichConcurrency = 4

type subscriptionListEnvelope struct {
	Data          []normalize.RawSubscription `json:"data"`
	Subscriptions []normalize.RawSubscription `json:"subscriptions"`
	Pagination    types.Pagination            `json:"pagination"`
}

// ListSubscriptions fetches subscriptions, normalized. A non-zero userID
// filters server-side.
func (c *Client) ListSubscriptions(ctx context.Context, userID int64) (types.SubscriptionList, error) {
	endpoint := "/subscriptions"
	if userID != 0 {
		q := url.Values{}
		q.Set("userId", strconv.FormatInt(userID, 10))
		endpoint += "?" + q.Encode()
	}

	var env subscriptionListEnvelope
	if err := c.requestInto(ctx, http.MethodGet, endpoint, nil, &env); err != nil {
		return types.SubscriptionList{}, err
	}

	raws := env.Data
	if raws == nil {
		raws = env.Subscriptions
	}
	list := types.SubscriptionList{
		Subscriptions: make([]types.Subscription, 0, len(raws)),
		Pagination:    env.Pagination,
	}
	for _, raw := range raws {
		list.Subscriptions = append(list.Subscriptions, normalize.Subscription(raw, c.norm))
	}
	return list, nil
}

// CreateSubscription subscribes a user to an active route for the
// semester. An empty semester falls back to the configured current one.
func (c *Client) CreateSubscription(ctx context.Context, userID, routeID int64, semester string) (types.Subscription, error) {
	if semester == "" {
		semester = c.norm.Semester
	}
	body := map[string]any{
		"userId":   userID,
		"routeId":  routeID,
		"semester": semester,
	}

	var raw normalize.RawSubscription
	if err := c.requestInto(ctx, http.MethodPost, "/subscriptions", body, &raw); err != nil {
		return types.Subscription{}, err
	}
	return normalize.Subscription(raw, c.norm), nil
}

// CancelSubscription transitions a subscription to cancelled. The record
// itself is never deleted.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID int64) error {
	return c.requestInto(ctx, http.MethodPost, fmt.Sprintf("/subscriptions/%d/cancel", subscriptionID), nil, nil)
}

// EnrichSubscriptions fills in the denormalized route summary for
// subscriptions that arrived without one, fetching routes concurrently.
// Individual route failures leave the placeholder summary in place; only
// context cancellation aborts the whole pass.
func (c *Client) EnrichSubscriptions(ctx context.Context, subs []types.Subscription) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	var mu sync.Mutex
	for i := range subs {
		if subs[i].RouteID == 0 {
			continue
		}
		if subs[i].Route.To != "" && subs[i].Route.To != normalize.PlaceholderTo {
			continue
		}
		i := i
		g.Go(func() error {
			route, _, err := c.GetRoute(ctx, subs[i].RouteID, "")
			if err != nil {
				if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return ctx.Err()
				}
				c.log.Warn("subscription enrichment skipped route",
					zap.Int64("routeId", subs[i].RouteID), zap.Error(err))
				return nil
			}
			mu.Lock()
			subs[i].Route = types.RouteSummary{
				From:     route.From,
				To:       route.To,
				Schedule: route.Schedule,
				Semester: route.Semester,
			}
			if subs[i].Semester == "" {
				subs[i].Semester = route.Semester
			}
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}
