package rest

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestHeadString(t *testing.T) {
	h := Get("/items").Query("page", 2).ID("abc").Head()
	assert.Equal(t, "GET /items?page=2 [abc]", h.String())

	h = Get("/items?sort=asc").Query("page", 2).ID("").Head()
	assert.Equal(t, "GET /items?sort=asc&page=2", h.String())
}

func TestRequestHeadResolve(t *testing.T) {
	base, err := url.Parse("http://example.com/api/")
	require.NoError(t, err)

	cases := []struct {
		name string
		path string
		base *url.URL
		want string
	}{
		{"relative keeps base path", "items/1", base, "http://example.com/api/items/1"},
		{"absolute path replaces base path", "/items/1", base, "http://example.com/items/1"},
		{"absolute url ignores base", "https://other.org/x", base, "https://other.org/x"},
		{"no base with absolute url", "https://other.org/x", nil, "https://other.org/x"},
		{"query merged", "items?a=1", base, "http://example.com/api/items?a=1&b=2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Get(tc.path)
			if tc.name == "query merged" {
				b.Query("b", 2)
			}
			u, err := b.Head().resolve(tc.base)
			require.NoError(t, err)
			assert.Equal(t, tc.want, u.String())
		})
	}

	_, err = Get("items").Head().resolve(nil)
	assert.ErrorIs(t, err, ErrRelativeURL)
}

func TestRequestHeadCloneIsDetached(t *testing.T) {
	b := Get("/x").Header("X-A", "1").Query("q", 1)
	snap := b.snapshot()
	b.Header("X-A", "2").Query("q", 2)

	assert.Equal(t, "1", snap.head.Header.Get("X-A"))
	assert.Equal(t, []string{"1"}, snap.head.Query["q"])
}

func TestRequestHeadPathEditsKeepQuery(t *testing.T) {
	h := Get("items?sort=asc#top").Head()
	h.AppendPath("/7")
	h.PrependPath("api/")
	assert.Equal(t, "api/items/7?sort=asc#top", h.Path)

	h = Get("items").Head()
	h.AppendPath(".json")
	assert.Equal(t, "items.json", h.Path)
}
