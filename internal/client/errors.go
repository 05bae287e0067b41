// ABOUTME: Error kinds returned by the API client
// ABOUTME: Authentication failures are terminal for a session; request failures are shown inline

package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned for any 401 response.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrRequestFailed matches every *RequestError via errors.Is.
	ErrRequestFailed = errors.New("request failed")
)

// RequestError describes a failed request that was not an authentication failure:
// a transport error, a non-2xx status other than 401, or a body that is not JSON.
type RequestError struct {
	Op     string // "GET /api/todo/list"
	Status int    // 0 when no response was received
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRequestFailed) true for every RequestError.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// IsUnauthenticated reports whether err is an authentication failure.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
