package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"point2point/internal/normalize"
	"point2point/internal/types"
)

type tripListEnvelope struct {
	Data  []normalize.RawTrip `json:"data"`
	Trips []normalize.RawTrip `json:"trips"`
}

// ListTrips fetches trip bookings, normalized. A non-zero userID filters
// server-side.
func (c *Client) ListTrips(ctx context.Context, userID int64) ([]types.Trip, error) {
	endpoint := "/trips"
	if userID != 0 {
		q := url.Values{}
		q.Set("userId", strconv.FormatInt(userID, 10))
		endpoint += "?" + q.Encode()
	}

	var env tripListEnvelope
	if err := c.requestInto(ctx, http.MethodGet, endpoint, nil, &env); err != nil {
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

// NewTrip is the booking payload for a one-off trip.
type NewTrip struct {
	UserID  int64  `json:"userId"`
	RouteID int64  `json:"routeId"`
	Date    string `json:"date"`
	Type    string `json:"type"`
}

// CreateTrip books a one-off trip and returns the stored booking.
func (c *Client) CreateTrip(ctx context.Context, trip NewTrip) (types.Trip, error) {
	var raw normalize.RawTrip
	if err := c.requestInto(ctx, http.MethodPost, "/trips", trip, &raw); err != nil {
		return types.Trip{}, err
	}
	return normalize.Trip(raw), nil
}

// CancelTrip cancels a trip booking. The server answers 202; cancellation
// completes asynchronously.
func (c *Client) CancelTrip(ctx context.Context, bookingID int64) error {
	return c.requestInto(ctx, http.MethodPost, fmt.Sprintf("/trips/%d/cancel", bookingID), nil, nil)
}
