package rest

import (
	"net/http"
	"time"
)

const (
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-Id"

	defaultTransportTimeout = 30 * time.Second
)

// Transport sends one HTTP request. *http.Client satisfies it.
//
//go:generate mockgen -destination=mocks/mock_transport.go -package=mocks github.com/azargarov/wcall/rest Transport
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPTransport returns an http.Client with the given overall timeout.
// A non-positive timeout uses 30s.
func NewHTTPTransport(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTransportTimeout
	}
	return &http.Client{Timeout: timeout}
}
