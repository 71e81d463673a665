// Package api implements the gateway client for the Point2Point composite
// service. All backend access goes through Client.request, which attaches
// bearer authentication, parses response bodies defensively, and converts
// failures into the typed errors in errors.go. Raw payloads are converted
// to the canonical model via internal/normalize before they leave this
// package.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"point2point/internal/config"
	"point2point/internal/logging"
	"point2point/internal/normalize"
)

// TokenSource yields the current bearer token, or "" when the session is
// anonymous. The session store satisfies this.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// Client is the HTTP gateway to the composite service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	norm       normalize.Options
	log        *zap.Logger
}

// New builds a Client from the resolved configuration.
func New(cfg config.Config, tokens TokenSource) *Client {
	return &Client{
		baseURL: cfg.Services.Composite,
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
		},
		tokens: tokens,
		norm:   normalize.Options{Semester: cfg.Semester},
		log:    logging.Named("api"),
	}
}

// response is the outcome of a successful (2xx) request.
type response struct {
	Status int
	Header http.Header
	Body   json.RawMessage
}

// request performs one HTTP call against {base}/api{endpoint}. The body,
// when non-nil, is JSON-encoded. Response bodies are read as text first
// and then parsed; a non-JSON body is wrapped as {"message": <raw text>}
// so callers always receive a structured object.
func (c *Client) request(ctx context.Context, method, endpoint string, body any, header http.Header) (*response, error) {
	url := c.baseURL + "/api" + endpoint

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	reqID := uuid.NewString()
	start := time.Now()
	c.log.Debug("api request", zap.String("req", reqID), zap.String("method", method), zap.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("api request failed", zap.String("req", reqID), zap.Error(err))
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn("api response unreadable", zap.String("req", reqID), zap.Error(err))
		return nil, &NetworkError{URL: url, Err: err}
	}

	c.log.Debug("api response", zap.String("req", reqID),
		zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	data := structuredBody(text)

	if resp.StatusCode == http.StatusNotModified {
		return nil, ErrNotModified
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{Status: resp.StatusCode, Message: serverMessage(data)}
	}

	return &response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// requestInto runs request and decodes the structured body into v.
func (c *Client) requestInto(ctx context.Context, method, endpoint string, body, v any) error {
	resp, err := c.request(ctx, method, endpoint, body, nil)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// structuredBody guarantees a structured JSON document: empty bodies
// become {}, invalid JSON is wrapped under a "message" key.
func structuredBody(text []byte) json.RawMessage {
	if len(bytes.TrimSpace(text)) == 0 {
		return json.RawMessage(`{}`)
	}
	if json.Valid(text) {
		return json.RawMessage(text)
	}
	wrapped, _ := json.Marshal(map[string]string{"message": string(text)})
	return wrapped
}

// serverMessage extracts the error message from a failure body, trying
// "message" then "error".
func serverMessage(data json.RawMessage) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
