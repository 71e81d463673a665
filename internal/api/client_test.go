package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"point2point/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T, handler http.Handler, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Cleanup(srv.CloseClientConnections)

	cfg := config.Default()
	cfg.Services.Composite = srv.URL
	cfg.HTTP.Timeout = 5 * time.Second
	c := New(cfg, tokens)
	t.Cleanup(c.httpClient.CloseIdleConnections)
	return c
}

func TestRequestAttachesHeaders(t *testing.T) {
	var gotAuth, gotType string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"routes": []}`))
	}), TokenFunc(func() string { return "tok-123" }))

	_, err := c.ListRoutes(context.Background(), RouteFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "application/json", gotType)
}

func TestRequestOmitsBearerWhenAnonymous(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"routes": []}`))
	}), TokenFunc(func() string { return "" }))

	_, err := c.ListRoutes(context.Background(), RouteFilter{})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestRequestErrorCarriesStatusAndMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "database exploded"}`))
	}), nil)

	_, err := c.ListRoutes(context.Background(), RouteFilter{})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.Status)
	assert.Equal(t, "database exploded", reqErr.Message)
}

func TestNonJSONBodyWrappedAsMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream timeout"))
	}), nil)

	_, err := c.ListRoutes(context.Background(), RouteFilter{})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "upstream timeout", reqErr.Message)
}

func TestErrorFieldFallback(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "bad filter"}`))
	}), nil)

	_, err := c.ListRoutes(context.Background(), RouteFilter{})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "bad filter", reqErr.Message)
}

func TestNotFoundMatchesSentinel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "no such route"}`))
	}), nil)

	_, _, err := c.GetRoute(context.Background(), 99, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNetworkError(t *testing.T) {
	cfg := config.Default()
	cfg.Services.Composite = "http://127.0.0.1:1" // nothing listens here
	cfg.HTTP.Timeout = time.Second
	c := New(cfg, nil)

	_, err := c.ListRoutes(context.Background(), RouteFilter{})
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestListRoutesQueryParameters(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"routes": []}`))
	}), nil)

	_, err := c.ListRoutes(context.Background(), RouteFilter{Page: 2, PageSize: 10, Status: "proposed"})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "page_size=10")
	assert.Contains(t, gotQuery, "status=proposed")
}

func TestListRoutesAllStatusOmitted(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"routes": []}`))
	}), nil)

	_, err := c.ListRoutes(context.Background(), RouteFilter{Status: "all"})
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestListRoutesNormalizesBothEnvelopes(t *testing.T) {
	const routesBody = `{"routes": [{"id": 1, "from_location": "Columbia University", "to_location": "Astoria", "current_members": 8}]}`
	const dataBody = `{"data": [{"id": 1, "from": "Columbia University", "to": "Astoria", "currentMembers": 8}]}`

	for name, body := range map[string]string{"routes": routesBody, "data": dataBody} {
		t.Run(name, func(t *testing.T) {
			payload := body
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(payload))
			}), nil)

			list, err := c.ListRoutes(context.Background(), RouteFilter{})
			require.NoError(t, err)
			require.Len(t, list.Routes, 1)
			route := list.Routes[0]
			assert.Equal(t, "Astoria", route.To)
			assert.Equal(t, 8, route.CurrentMembers)
			assert.Equal(t, 15, route.RequiredMembers)
			assert.Equal(t, 7, route.AvailableSeats)
		})
	}
}

func TestGetRouteConditionalFetch(t *testing.T) {
	var gotIfNoneMatch string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIfNoneMatch = r.Header.Get("If-None-Match")
		if gotIfNoneMatch == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(`{"id": 3, "from": "Columbia University", "to": "Brooklyn Heights"}`))
	}), nil)

	route, etag, err := c.GetRoute(context.Background(), 3, "")
	require.NoError(t, err)
	assert.Equal(t, `"v1"`, etag)
	assert.Equal(t, "Brooklyn Heights", route.To)

	_, _, err = c.GetRoute(context.Background(), 3, etag)
	assert.ErrorIs(t, err, ErrNotModified)
	assert.Equal(t, `"v1"`, gotIfNoneMatch)
}

func TestCreateRouteBody(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, jsonDecode(r, &got))
		w.Write([]byte(`{"id": 10, "from": "Columbia University", "to": "Flushing, Queens", "currentMembers": 1}`))
	}), nil)

	proposal := routeProposalFixture()
	route, err := c.CreateRoute(context.Background(), proposal, 7)
	require.NoError(t, err)

	assert.Equal(t, float64(15), got["requiredMembers"])
	assert.Equal(t, float64(7), got["createdBy"])
	assert.Equal(t, float64(150), got["estimatedCost"])
	sched, ok := got["schedule"].(map[string]any)
	require.True(t, ok, "schedule must be structured")
	assert.Equal(t, "08:00", sched["morningTime"])
	assert.Equal(t, 1, route.CurrentMembers)
}

func TestCreateRouteDefaultsCost(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, jsonDecode(r, &got))
		w.Write([]byte(`{"id": 10}`))
	}), nil)

	proposal := routeProposalFixture()
	proposal.EstimatedCost = 0
	_, err := c.CreateRoute(context.Background(), proposal, 7)
	require.NoError(t, err)
	assert.Equal(t, float64(100), got["estimatedCost"])
}

func TestFindUserByEmailShapes(t *testing.T) {
	cases := map[string]string{
		"bare array":     `[{"id": 5, "email": "a@b.c", "first_name": "Ada"}]`,
		"data envelope":  `{"data": [{"id": 5, "email": "a@b.c", "firstName": "Ada"}]}`,
		"users envelope": `{"users": [{"id": 5, "email": "a@b.c", "firstName": "Ada"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			payload := body
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "a@b.c", r.URL.Query().Get("email"))
				w.Write([]byte(payload))
			}), nil)

			user, err := c.FindUserByEmail(context.Background(), "a@b.c")
			require.NoError(t, err)
			assert.Equal(t, int64(5), user.ID)
			assert.Equal(t, "Ada", user.FirstName)
		})
	}
}

func TestFindUserByEmailEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}), nil)

	_, err := c.FindUserByEmail(context.Background(), "nobody@b.c")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmptyBodyTolerated(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}), nil)

	err := c.CancelTrip(context.Background(), 101)
	require.NoError(t, err)
}
