package client

import (
	"errors"
	"fmt"
)

var (
	// ErrLoginRequired is returned when the server asks the user to log in.
	ErrLoginRequired = errors.New("login required")

	// ErrTooFewTracks is returned when a recommendation has fewer tracks than
	// a mood page shows.
	ErrTooFewTracks = errors.New("not enough tracks in recommendation")
)

// APIError is a request the server understood and rejected.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.StatusCode, e.Message)
}

// Message returns the text the server gave for err, if err is an APIError.
func Message(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}
