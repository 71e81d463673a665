package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"point2point/internal/normalize"
	"point2point/internal/types"
)

// RouteFilter selects routes by status. An empty or "all" filter returns
// every route.
type RouteFilter struct {
	Page     int
	PageSize int
	Status   string
}

// routeListEnvelope tolerates the two list shapes the composite service
// has produced ("routes" vs "data").
type routeListEnvelope struct {
	Routes     []normalize.RawRoute `json:"routes"`
	Data       []normalize.RawRoute `json:"data"`
	Pagination types.Pagination     `json:"pagination"`
}

// ListRoutes fetches all routes, normalized, with pagination.
func (c *Client) ListRoutes(ctx context.Context, filter RouteFilter) (types.RouteList, error) {
	q := url.Values{}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(filter.PageSize))
	}
	if filter.Status != "" && filter.Status != "all" {
		q.Set("status", filter.Status)
	}
	endpoint := "/routes"
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	var env routeListEnvelope
	if err := c.requestInto(ctx, http.MethodGet, endpoint, nil, &env); err != nil {
		return types.RouteList{}, err
	}

	raws := env.Routes
	if raws == nil {
		raws = env.Data
	}
	list := types.RouteList{
		Routes:     make([]types.Route, 0, len(raws)),
		Pagination: env.Pagination,
	}
	for _, raw := range raws {
		list.Routes = append(list.Routes, normalize.Route(raw, c.norm))
	}
	return list, nil
}

// GetRoute fetches one route. A non-empty etag makes the fetch
// conditional: when the server answers 304 the call returns ErrNotModified
// and the caller keeps its cached copy. The returned etag accompanies the
// route for the next conditional fetch.
func (c *Client) GetRoute(ctx context.Context, routeID int64, etag string) (types.Route, string, error) {
	var header http.Header
	if etag != "" {
		header = http.Header{"If-None-Match": []string{etag}}
	}

	resp, err := c.request(ctx, http.MethodGet, fmt.Sprintf("/routes/%d", routeID), nil, header)
	if err != nil {
		return types.Route{}, "", err
	}

	var raw normalize.RawRoute
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		return types.Route{}, "", fmt.Errorf("decode route response: %w", err)
	}
	return normalize.Route(raw, c.norm), resp.Header.Get("ETag"), nil
}

// CreateRoute submits a route proposal. The server records the proposer
// as the first member.
func (c *Client) CreateRoute(ctx context.Context, proposal types.RouteProposal, userID int64) (types.Route, error) {
	cost := proposal.EstimatedCost
	if cost <= 0 {
		cost = 100
	}
	body := map[string]any{
		"from": proposal.From,
		"to":   proposal.To,
		"schedule": map[string]any{
			"days":        proposal.Schedule.Days,
			"morningTime": proposal.Schedule.MorningTime,
			"eveningTime": proposal.Schedule.EveningTime,
		},
		"semester":        proposal.Semester,
		"estimatedCost":   cost,
		"description":     proposal.Description,
		"requiredMembers": normalize.DefaultRequiredMembers,
		"createdBy":       userID,
	}

	var raw normalize.RawRoute
	if err := c.requestInto(ctx, http.MethodPost, "/routes", body, &raw); err != nil {
		return types.Route{}, err
	}
	return normalize.Route(raw, c.norm), nil
}

// JoinRoute adds the user to a proposed route's membership.
func (c *Client) JoinRoute(ctx context.Context, routeID, userID int64) error {
	body := map[string]any{"userId": userID}
	return c.requestInto(ctx, http.MethodPost, fmt.Sprintf("/routes/%d/join", routeID), body, nil)
}

// ActivateRoute asks the server to transition a route from proposed to
// active. The operation is asynchronous; the server answers 202 with a
// task handle that GetActivationStatus polls.
func (c *Client) ActivateRoute(ctx context.Context, routeID int64) (types.ActivationTask, error) {
	var task types.ActivationTask
	err := c.requestInto(ctx, http.MethodPost, fmt.Sprintf("/routes/%d/activate", routeID), nil, &task)
	return task, err
}

// GetActivationStatus polls an activation task.
func (c *Client) GetActivationStatus(ctx context.Context, taskID string) (types.ActivationTask, error) {
	var task types.ActivationTask
	err := c.requestInto(ctx, http.MethodGet, "/route-activations/"+url.PathEscape(taskID), nil, &task)
	return task, err
}
