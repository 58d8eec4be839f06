package rest

import (
	"fmt"
	"net/http"
)

// Interceptor edits an outgoing request before it is encoded and sent.
//
// Interceptors cannot fail. They run on the worker executing the request,
// once per request, in the order they were chained.
type Interceptor interface {
	Intercept(h *RequestHead)
}

// InterceptorFunc adapts a function to Interceptor.
type InterceptorFunc func(h *RequestHead)

func (f InterceptorFunc) Intercept(h *RequestHead) { f(h) }

// NoIntercept leaves every request untouched.
var NoIntercept Interceptor = InterceptorFunc(func(*RequestHead) {})

type chain []Interceptor

func (c chain) Intercept(h *RequestHead) {
	for _, i := range c {
		i.Intercept(h)
	}
}

// Chain returns an Interceptor running each of is in order. Nil entries are
// skipped and nested chains are flattened.
func Chain(is ...Interceptor) Interceptor {
	var c chain
	for _, i := range is {
		switch v := i.(type) {
		case nil:
		case chain:
			c = append(c, v...)
		default:
			c = append(c, v)
		}
	}
	if len(c) == 0 {
		return NoIntercept
	}
	return c
}

// AddHeader sets key to value on every request.
func AddHeader(key, value string) Interceptor {
	return InterceptorFunc(func(h *RequestHead) { h.SetHeader(key, value) })
}

// AddHeaders sets every header in hdr on every request.
func AddHeaders(hdr http.Header) Interceptor {
	hdr = hdr.Clone()
	return InterceptorFunc(func(h *RequestHead) {
		for k, vs := range hdr {
			h.Header.Del(k)
			for _, v := range vs {
				h.Header.Add(k, v)
			}
		}
	})
}

// BearerToken adds an Authorization header. An empty token adds nothing.
func BearerToken(token string) Interceptor {
	return InterceptorFunc(func(h *RequestHead) {
		if token == "" {
			return
		}
		h.SetHeader("Authorization", fmt.Sprintf("Bearer %s", token))
	})
}

func PrependPath(prefix string) Interceptor {
	return InterceptorFunc(func(h *RequestHead) { h.PrependPath(prefix) })
}

func AppendPath(suffix string) Interceptor {
	return InterceptorFunc(func(h *RequestHead) { h.AppendPath(suffix) })
}

// RequestID copies the request ID into the X-Request-Id header unless the
// request already carries one.
func RequestID() Interceptor {
	return InterceptorFunc(func(h *RequestHead) {
		if h.ID != "" && h.Header.Get(HeaderRequestID) == "" {
			h.SetHeader(HeaderRequestID, h.ID)
		}
	})
}

// QueryAppender adds a fixed list of query pairs to every request.
type QueryAppender struct {
	pairs [][2]string
}

// AppendQuery starts an empty QueryAppender; add pairs with Pair.
func AppendQuery() *QueryAppender { return &QueryAppender{} }

// Pair appends key=value. Both are formatted with fmt.Sprint.
func (q *QueryAppender) Pair(key, value any) *QueryAppender {
	q.pairs = append(q.pairs, [2]string{fmt.Sprint(key), fmt.Sprint(value)})
	return q
}

func (q *QueryAppender) Intercept(h *RequestHead) {
	for _, p := range q.pairs {
		h.AddQuery(p[0], p[1])
	}
}
