package rest

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/azargarov/wcall"
)

// defaultExecutor is the process-wide worker used by adapters that were not
// given one. It is started on first use and lives as long as the process.
var defaultExecutor = sync.OnceValue(func() wcall.Executor {
	return wcall.NewSingleWorker(wcall.Options{})
})

// Adapter holds the state shared by every request sent through it: base
// URL, transport, executor, interceptors and codecs.
//
// An Adapter is immutable after construction and safe for concurrent use.
// Use With to derive a variant.
type Adapter struct {
	base      *url.URL
	transport Transport
	exec      wcall.Executor
	intercept Interceptor
	enc       Encoder
	dec       Decoder
}

// Option configures an Adapter.
type Option func(*Adapter) error

// NewAdapter builds an adapter. Without options requests go through
// http.DefaultClient on the shared background worker, with no interceptor,
// no body encoder and the Text decoder.
func NewAdapter(opts ...Option) (*Adapter, error) {
	a := &Adapter{
		transport: http.DefaultClient,
		intercept: NoIntercept,
		enc:       NoCodec,
		dec:       Text,
	}
	if err := a.apply(opts); err != nil {
		return nil, err
	}
	if a.exec == nil {
		a.exec = defaultExecutor()
	}
	return a, nil
}

// With returns a copy of a with opts applied. The copy shares a's
// transport and executor unless opts replace them.
func (a *Adapter) With(opts ...Option) (*Adapter, error) {
	c := *a
	if err := c.apply(opts); err != nil {
		return nil, err
	}
	return &c, nil
}

func (a *Adapter) apply(opts []Option) error {
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return err
		}
	}
	return nil
}

// Executor returns the executor running this adapter's requests.
func (a *Adapter) Executor() wcall.Executor { return a.exec }

// BaseURL returns the base URL, or nil when paths must be absolute.
func (a *Adapter) BaseURL() *url.URL {
	if a.base == nil {
		return nil
	}
	u := *a.base
	return &u
}

// WithBaseURL resolves every request path against raw.
func WithBaseURL(raw string) Option {
	return func(a *Adapter) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("rest: invalid base URL %q: %w", raw, err)
		}
		if !u.IsAbs() {
			return fmt.Errorf("rest: base URL %q is not absolute", raw)
		}
		a.base = u
		return nil
	}
}

func WithTransport(t Transport) Option {
	return func(a *Adapter) error {
		if t == nil {
			return errors.New("rest: nil transport")
		}
		a.transport = t
		return nil
	}
}

func WithExecutor(e wcall.Executor) Option {
	return func(a *Adapter) error {
		if e == nil {
			return errors.New("rest: nil executor")
		}
		a.exec = e
		return nil
	}
}

// WithInterceptor replaces the interceptor chain.
func WithInterceptor(i Interceptor) Option {
	return func(a *Adapter) error {
		a.intercept = Chain(i)
		return nil
	}
}

// ChainInterceptor appends i to the existing interceptor chain.
func ChainInterceptor(i Interceptor) Option {
	return func(a *Adapter) error {
		a.intercept = Chain(a.intercept, i)
		return nil
	}
}

func WithEncoder(e Encoder) Option {
	return func(a *Adapter) error {
		if e == nil {
			e = NoCodec
		}
		a.enc = e
		return nil
	}
}

func WithDecoder(d Decoder) Option {
	return func(a *Adapter) error {
		if d == nil {
			d = NoCodec
		}
		a.dec = d
		return nil
	}
}

// WithCodec uses c for both request and response bodies.
func WithCodec(c Codec) Option {
	return func(a *Adapter) error {
		if c == nil {
			c = NoCodec
		}
		a.enc, a.dec = c, c
		return nil
	}
}
