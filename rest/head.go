package rest

import (
	"net/http"
	"net/url"
	"strings"
)

// RequestHead is the mutable part of a request descriptor: everything
// interceptors are allowed to touch.
type RequestHead struct {
	// ID identifies the request in logs and in the X-Request-Id header.
	ID     string
	Method string
	// Path is resolved against the adapter's base URL. It may carry its own
	// query string; Query values are added to it.
	Path   string
	Query  url.Values
	Header http.Header
}

func (h *RequestHead) SetHeader(key, value string) { h.Header.Set(key, value) }
func (h *RequestHead) AddHeader(key, value string) { h.Header.Add(key, value) }
func (h *RequestHead) AddQuery(key, value string)  { h.Query.Add(key, value) }

// PrependPath and AppendPath edit the path only; a query string already in
// Path stays at the end.
func (h *RequestHead) PrependPath(prefix string) {
	path, query := splitQuery(h.Path)
	h.Path = prefix + path + query
}

func (h *RequestHead) AppendPath(suffix string) {
	path, query := splitQuery(h.Path)
	h.Path = path + suffix + query
}

// splitQuery cuts p before its "?" or "#", whichever comes first.
func splitQuery(p string) (path, tail string) {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i], p[i:]
	}
	return p, ""
}

// String describes the request as "METHOD path [id]".
func (h *RequestHead) String() string {
	var b strings.Builder
	b.WriteString(h.Method)
	b.WriteByte(' ')
	b.WriteString(h.Path)
	if q := h.Query.Encode(); q != "" {
		if strings.Contains(h.Path, "?") {
			b.WriteByte('&')
		} else {
			b.WriteByte('?')
		}
		b.WriteString(q)
	}
	if h.ID != "" {
		b.WriteString(" [")
		b.WriteString(h.ID)
		b.WriteByte(']')
	}
	return b.String()
}

func (h *RequestHead) clone() RequestHead {
	c := *h
	c.Header = h.Header.Clone()
	c.Query = make(url.Values, len(h.Query))
	for k, vs := range h.Query {
		c.Query[k] = append([]string(nil), vs...)
	}
	return c
}

// resolve builds the target URL. Relative paths follow RFC 3986 reference
// resolution against base, so a base ending in "/" keeps its last segment.
func (h *RequestHead) resolve(base *url.URL) (*url.URL, error) {
	ref, err := url.Parse(h.Path)
	if err != nil {
		return nil, err
	}
	u := ref
	if base != nil {
		u = base.ResolveReference(ref)
	} else if !ref.IsAbs() {
		return nil, ErrRelativeURL
	}
	if len(h.Query) > 0 {
		q := u.Query()
		for k, vs := range h.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}
