package pocketbase

import (
	"errors"
	"fmt"
)

// ErrProviderNotFound is returned when a requested OAuth2 provider is not
// enabled for the collection.
var ErrProviderNotFound = errors.New("pocketbase: oauth2 provider not enabled")

// Error is the error body PocketBase returns for non-2xx responses.
type Error struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("pocketbase: request failed with status %d", e.Status)
	}
	return e.Message
}

// StatusCode returns the HTTP status of a PocketBase error, or 0 if err is
// not one.
func StatusCode(err error) int {
	var pbErr *Error
	if errors.As(err, &pbErr) {
		return pbErr.Status
	}
	return 0
}
