package rest

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoEncoder is returned when a request carries a body but the adapter
	// has no encoder configured.
	ErrNoEncoder = errors.New("rest: no encoder configured")

	// ErrNoDecoder is returned when a response body must be decoded but the
	// adapter has no decoder configured.
	ErrNoDecoder = errors.New("rest: no decoder configured")

	ErrBodyNotAllowed = errors.New("rest: method does not allow a request body")
	ErrEmptyPath      = errors.New("rest: empty request path")
	ErrInvalidMethod  = errors.New("rest: invalid request method")

	// ErrUnsupportedType is returned by a codec that cannot handle the
	// value it was given.
	ErrUnsupportedType = errors.New("rest: unsupported type for codec")

	// ErrRelativeURL is returned when a relative path is sent through an
	// adapter without a base URL.
	ErrRelativeURL = errors.New("rest: relative request path without base URL")
)

// StatusError reports a response with a 4xx or 5xx status code.
type StatusError struct {
	Code   int
	Status string
	Body   []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("rest: unexpected status %s", e.Status)
	}
	const maxBody = 256
	body := e.Body
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return fmt.Sprintf("rest: unexpected status %s: %s", e.Status, body)
}

// Is lets errors.Is match a StatusError against another one by code only.
func (e *StatusError) Is(target error) bool {
	t, ok := target.(*StatusError)
	return ok && t.Code == e.Code
}

// IsNotFound reports whether err carries a 404 response.
func IsNotFound(err error) bool {
	return errors.Is(err, &StatusError{Code: http.StatusNotFound})
}
