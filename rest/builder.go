package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const formContentType = "application/x-www-form-urlencoded"

// RequestBuilder describes one request. It is built synchronously on the
// caller's goroutine; Prepare hands a snapshot of it to the executor.
//
// Construction errors are recorded instead of returned. A builder with an
// error produces an already failed Call and never reaches the transport.
type RequestBuilder struct {
	head RequestHead
	ctx  context.Context

	body    any
	hasBody bool
	raw     []byte
	rawType string

	err error
}

// NewRequest starts a request for method and path. path is resolved against
// the adapter base URL when the request runs.
func NewRequest(method, path string) *RequestBuilder {
	b := &RequestBuilder{
		head: RequestHead{
			ID:     uuid.NewString(),
			Method: strings.ToUpper(method),
			Path:   path,
			Query:  url.Values{},
			Header: http.Header{},
		},
		ctx: context.Background(),
	}
	switch {
	case !validMethod(b.head.Method):
		b.err = fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	case strings.TrimSpace(path) == "":
		b.err = ErrEmptyPath
	default:
		if _, err := url.Parse(path); err != nil {
			b.err = fmt.Errorf("rest: invalid path %q: %w", path, err)
		}
	}
	return b
}

func Get(path string) *RequestBuilder    { return NewRequest(http.MethodGet, path) }
func Head(path string) *RequestBuilder   { return NewRequest(http.MethodHead, path) }
func Post(path string) *RequestBuilder   { return NewRequest(http.MethodPost, path) }
func Put(path string) *RequestBuilder    { return NewRequest(http.MethodPut, path) }
func Patch(path string) *RequestBuilder  { return NewRequest(http.MethodPatch, path) }
func Delete(path string) *RequestBuilder { return NewRequest(http.MethodDelete, path) }

func validMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

func bodyAllowed(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return false
	}
	return true
}

// Query adds key=value to the query string. value is formatted with fmt.Sprint.
func (b *RequestBuilder) Query(key string, value any) *RequestBuilder {
	b.head.AddQuery(key, fmt.Sprint(value))
	return b
}

func (b *RequestBuilder) Header(key, value string) *RequestBuilder {
	b.head.SetHeader(key, value)
	return b
}

// ID replaces the generated request ID.
func (b *RequestBuilder) ID(id string) *RequestBuilder {
	b.head.ID = id
	return b
}

// WithContext attaches ctx. Its values, such as the logger, travel with the
// request; its cancellation does not.
func (b *RequestBuilder) WithContext(ctx context.Context) *RequestBuilder {
	if ctx != nil {
		b.ctx = ctx
	}
	return b
}

// Body sets a value to be encoded by the adapter's Encoder.
func (b *RequestBuilder) Body(v any) *RequestBuilder {
	if b.checkBody() {
		b.body, b.hasBody = v, true
		b.raw, b.rawType = nil, ""
	}
	return b
}

// RawBody sends data as is, bypassing the encoder.
func (b *RequestBuilder) RawBody(data []byte, contentType string) *RequestBuilder {
	if b.checkBody() {
		b.raw, b.rawType = data, contentType
		if b.raw == nil {
			b.raw = []byte{}
		}
		b.body, b.hasBody = nil, false
	}
	return b
}

// Multipart sends a multipart/form-data body holding the text fields of
// values followed by files. The body is assembled here, so files are read
// on the caller's goroutine; a read error becomes the construction error.
func (b *RequestBuilder) Multipart(values url.Values, files ...FileField) *RequestBuilder {
	if !b.checkBody() {
		return b
	}
	data, contentType, err := encodeMultipart(values, files)
	if err != nil {
		b.err = fmt.Errorf("rest: multipart body: %w", err)
		return b
	}
	return b.RawBody(data, contentType)
}

// Form sends values as an url-encoded form.
func (b *RequestBuilder) Form(values url.Values) *RequestBuilder {
	return b.RawBody([]byte(values.Encode()), formContentType)
}

func (b *RequestBuilder) checkBody() bool {
	if b.err != nil {
		return false
	}
	if !bodyAllowed(b.head.Method) {
		b.err = fmt.Errorf("%w: %s", ErrBodyNotAllowed, b.head.Method)
		return false
	}
	return true
}

// Head gives direct access to the descriptor, as an interceptor would see it.
func (b *RequestBuilder) Head() *RequestHead { return &b.head }

// Err returns the first construction error, if any.
func (b *RequestBuilder) Err() error { return b.err }

func (b *RequestBuilder) String() string { return b.head.String() }

// snapshot detaches the builder state handed to a job from later edits.
func (b *RequestBuilder) snapshot() *RequestBuilder {
	c := *b
	c.head = b.head.clone()
	return &c
}

// encodeBody returns the wire body and its content type.
func (b *RequestBuilder) encodeBody(enc Encoder) ([]byte, string, error) {
	switch {
	case b.raw != nil:
		return b.raw, b.rawType, nil
	case b.hasBody:
		data, err := enc.Encode(b.body)
		if err != nil {
			return nil, "", err
		}
		return data, enc.ContentType(), nil
	default:
		return nil, "", nil
	}
}
