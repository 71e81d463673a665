package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches RequestError values whose status is 404; callers can
// test entity absence with errors.Is without inspecting status codes.
var ErrNotFound = errors.New("entity not found")

// ErrNotModified is returned by conditional fetches when the server
// answers 304 for the supplied entity tag. The caller's cached copy is
// still current.
var ErrNotModified = errors.New("not modified")

// NetworkError indicates the call never reached the server: DNS failure,
// refused connection, timeout, cancelled context.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RequestError indicates the server answered with a non-success HTTP
// status. Message carries the server-supplied message when one was
// present in the body.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
}

// Is reports ErrNotFound equivalence for 404 responses.
func (e *RequestError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}
