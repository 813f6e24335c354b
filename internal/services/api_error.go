package services

import (
	"errors"
	"fmt"
)

// ErrNotActive is returned by session wrappers when an operation other
// than start is attempted while the session is inactive. No vendor call
// is made in that case.
var ErrNotActive = errors.New("session is not active")

// APIError is a vendor HTTP failure, kept structured so handlers can
// surface the vendor's status code and response body alongside a hint.
type APIError struct {
	Vendor     string
	StatusCode int
	Details    string
	Hint       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error (%d): %s", e.Vendor, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("%s API error: %s", e.Vendor, e.Details)
}
