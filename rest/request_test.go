package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azargarov/wcall"
	"github.com/azargarov/wcall/rest/mocks"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type panicDecoder struct{}

func (panicDecoder) Decode([]byte, any) error { panic("decoder exploded") }

func newTestExecutor(t *testing.T) *wcall.Pool {
	t.Helper()
	p := wcall.NewPool(wcall.Options{Workers: 2})
	t.Cleanup(p.Stop)
	return p
}

// newTestAPI serves a tiny item store under /api.
func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if id == "missing" {
				http.Error(w, "no such item", http.StatusNotFound)
				return
			}
			w.Header().Set(HeaderContentType, "application/json")
			_ = json.NewEncoder(w).Encode(item{ID: id, Name: r.URL.Query().Get("name")})
		})
		r.Post("/items", func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer t0ken" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var in item
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			in.ID = r.Header.Get(HeaderRequestID)
			w.Header().Set("X-Seen-Content-Type", r.Header.Get(HeaderContentType))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(in)
		})
		r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, r.Header.Get(HeaderContentType))
		})
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func await[T any](t *testing.T, c *wcall.Call[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := c.Await(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "call did not resolve")
	return v, err
}

func TestPipelineAgainstServer(t *testing.T) {
	ts := newTestAPI(t)
	a, err := NewAdapter(
		WithBaseURL(ts.URL+"/"),
		WithExecutor(newTestExecutor(t)),
		WithCodec(JSON),
		WithInterceptor(Chain(PrependPath("api/"), RequestID())),
	)
	require.NoError(t, err)

	t.Run("get decodes json", func(t *testing.T) {
		got, err := await(t, Do[item](a, Get("items/7").Query("name", "bolt")))
		require.NoError(t, err)
		assert.Equal(t, item{ID: "7", Name: "bolt"}, got)
	})

	t.Run("post encodes body after interceptors", func(t *testing.T) {
		authed, err := a.With(ChainInterceptor(BearerToken("t0ken")))
		require.NoError(t, err)

		call := Do[Raw](authed, Post("items").ID("req-9").Body(item{Name: "nut"}))
		raw, err := await(t, call)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, raw.StatusCode)
		assert.Equal(t, "application/json", raw.Header.Get("X-Seen-Content-Type"))
		assert.JSONEq(t, `{"id":"req-9","name":"nut"}`, string(raw.Body))
	})

	t.Run("derived adapter leaves parent untouched", func(t *testing.T) {
		_, err := await(t, Do[item](a, Post("items").Body(item{Name: "nut"})))
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusUnauthorized, se.Code)
	})

	t.Run("status error", func(t *testing.T) {
		_, err := await(t, Do[item](a, Get("items/missing")))
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.Code)
		assert.Contains(t, string(se.Body), "no such item")
		assert.True(t, IsNotFound(err))
	})

	t.Run("raw skips status check", func(t *testing.T) {
		raw, err := await(t, Do[Raw](a, Get("items/missing")))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, raw.StatusCode)
	})

	t.Run("explicit content type wins", func(t *testing.T) {
		text, err := a.With(WithDecoder(Text))
		require.NoError(t, err)
		got, err := Prepare[string](text, Post("echo").Header(HeaderContentType, "text/csv").Body([]string{"a", "b"})).Here()
		require.NoError(t, err)
		assert.Equal(t, "text/csv", got)
	})
}

func TestConstructionFailureSkipsTransport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no EXPECT: any call to Do fails the test
	transport := mocks.NewMockTransport(ctrl)
	a, err := NewAdapter(WithTransport(transport), WithExecutor(newTestExecutor(t)))
	require.NoError(t, err)

	req := Prepare[string](a, Get("/items").Body("not allowed"))
	assert.True(t, req.Immediate())

	call := req.Async()
	assert.True(t, call.IsImmediate())
	_, err = call.Block()
	assert.ErrorIs(t, err, ErrBodyNotAllowed)
	assert.True(t, req.Immediate(), "still immediate after the result is taken")

	assert.False(t, Prepare[string](a, Get("/items")).Immediate())

	_, err = Prepare[string](a, NewRequest("BREW", "/pot")).Here()
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestEncodeFailureSkipsTransport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transport := mocks.NewMockTransport(ctrl)
	a, err := NewAdapter(WithBaseURL("http://example.invalid/"), WithTransport(transport))
	require.NoError(t, err)

	// the default encoder refuses every body
	_, err = Prepare[string](a, Post("items").Body("x")).Here()
	assert.ErrorIs(t, err, ErrNoEncoder)
}

func TestHereUsesTransportOnCaller(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "http://example.invalid/v1/ping?verbose=1", req.URL.String())
		assert.Equal(t, "yes", req.Header.Get("X-Trace"))
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader("pong")),
		}, nil
	})

	a, err := NewAdapter(
		WithBaseURL("http://example.invalid/v1/"),
		WithTransport(transport),
		WithInterceptor(Chain(AddHeader("X-Trace", "yes"), AppendQuery().Pair("verbose", 1))),
	)
	require.NoError(t, err)

	got, err := Prepare[string](a, Get("ping")).Here()
	require.NoError(t, err)
	assert.Equal(t, "pong", got)
}

func TestTransportErrorResolvesCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("connection refused")
	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Do(gomock.Any()).Return(nil, boom)

	a, err := NewAdapter(WithBaseURL("http://example.invalid/"), WithTransport(transport), WithExecutor(newTestExecutor(t)))
	require.NoError(t, err)

	_, err = await(t, Do[string](a, Get("x")))
	// stage errors reach the caller as returned
	assert.Equal(t, boom, err)
}

func TestDecoderPanicResolvesCall(t *testing.T) {
	ts := newTestAPI(t)
	exec := newTestExecutor(t)
	a, err := NewAdapter(WithBaseURL(ts.URL+"/api/"), WithExecutor(exec), WithDecoder(panicDecoder{}))
	require.NoError(t, err)

	_, err = await(t, Do[item](a, Get("items/1").ID("boom")))
	require.ErrorIs(t, err, wcall.ErrAbnormalTermination)
	var pe *wcall.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "decoder exploded", pe.Value)
	assert.Equal(t, "GET items/1 [boom]", pe.Context)

	// the executor keeps serving requests
	ok, err := a.With(WithDecoder(JSON))
	require.NoError(t, err)
	got, err := await(t, Do[item](ok, Get("items/2")))
	require.NoError(t, err)
	assert.Equal(t, "2", got.ID)
}

func TestDecoderPanicHere(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Do(gomock.Any()).Return(&http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Body:       io.NopCloser(strings.NewReader("{}")),
	}, nil)

	a, err := NewAdapter(WithBaseURL("http://example.invalid/"), WithTransport(transport), WithDecoder(panicDecoder{}))
	require.NoError(t, err)

	_, err = Prepare[item](a, Get("x")).Here()
	assert.ErrorIs(t, err, wcall.ErrAbnormalTermination)
}

func TestAsyncOnClosedExecutor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	exec := wcall.NewSingleWorker(wcall.Options{})
	exec.Stop()

	a, err := NewAdapter(WithTransport(mocks.NewMockTransport(ctrl)), WithExecutor(exec))
	require.NoError(t, err)

	_, err = Do[string](a, Get("http://example.invalid/")).Block()
	assert.ErrorIs(t, err, wcall.ErrExecutorClosed)

	// the refused Call is the request's own: later access does not hang
	req := Prepare[string](a, Get("http://example.invalid/"))
	call := req.Async()
	assert.False(t, req.Immediate())

	done := make(chan error, 1)
	go func() {
		_, err := req.Here()
		done <- err
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, wcall.ErrExecutorClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Here blocked after a refused submit")
	}
	assert.Same(t, call, req.Async())
	_, err = call.Poll()
	assert.ErrorIs(t, err, wcall.ErrResultTaken)
}

func TestRequestRunsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Do(gomock.Any()).Return(&http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Body:       io.NopCloser(strings.NewReader("once")),
	}, nil).Times(1)

	a, err := NewAdapter(WithTransport(transport))
	require.NoError(t, err)

	req := Prepare[string](a, Get("http://example.invalid/"))
	got, err := req.Here()
	require.NoError(t, err)
	assert.Equal(t, "once", got)

	_, err = req.Here()
	assert.ErrorIs(t, err, wcall.ErrResultTaken)
}

func TestAdapterOptions(t *testing.T) {
	_, err := NewAdapter(WithBaseURL("relative/path"))
	assert.Error(t, err)
	_, err = NewAdapter(WithBaseURL("http://bad host/"))
	assert.Error(t, err)
	_, err = NewAdapter(WithTransport(nil))
	assert.Error(t, err)
	_, err = NewAdapter(WithExecutor(nil))
	assert.Error(t, err)

	a, err := NewAdapter()
	require.NoError(t, err)
	assert.Nil(t, a.BaseURL())
	assert.NotNil(t, a.Executor())

	b, err := a.With(WithBaseURL("http://example.com/api/"))
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api/", b.BaseURL().String())
	assert.Same(t, a.Executor(), b.Executor())
}

func TestResponseWithRaw(t *testing.T) {
	ts := newTestAPI(t)
	a, err := NewAdapter(WithBaseURL(ts.URL+"/api/"), WithExecutor(newTestExecutor(t)), WithCodec(JSON))
	require.NoError(t, err)

	t.Run("value and response", func(t *testing.T) {
		got, err := await(t, Do[WithRaw[item]](a, Get("items/3").Query("name", "gear")))
		require.NoError(t, err)
		assert.Equal(t, item{ID: "3", Name: "gear"}, got.Value)
		assert.Equal(t, http.StatusOK, got.Raw.StatusCode)
		assert.Equal(t, "application/json", got.Raw.Header.Get(HeaderContentType))
		assert.JSONEq(t, `{"id":"3","name":"gear"}`, string(got.Raw.Body))
	})

	t.Run("status still fails", func(t *testing.T) {
		_, err := await(t, Do[WithRaw[item]](a, Get("items/missing")))
		assert.True(t, IsNotFound(err))
	})

	t.Run("try keeps failures inside", func(t *testing.T) {
		got, err := await(t, Do[TryWithRaw[item]](a, Get("items/missing")))
		require.NoError(t, err)
		assert.True(t, IsNotFound(got.Err))
		assert.Equal(t, http.StatusNotFound, got.Raw.StatusCode)
		assert.Contains(t, string(got.Raw.Body), "no such item")

		got, err = await(t, Do[TryWithRaw[item]](a, Get("items/4")))
		require.NoError(t, err)
		v, err := got.Result()
		require.NoError(t, err)
		assert.Equal(t, "4", v.ID)
	})

	t.Run("try records decode failure", func(t *testing.T) {
		text, err := a.With(WithDecoder(panicFreeBadDecoder{}))
		require.NoError(t, err)
		got, err := await(t, Do[TryWithRaw[item]](text, Get("items/5")))
		require.NoError(t, err)
		assert.ErrorIs(t, got.Err, errBadPayload)
		assert.Equal(t, http.StatusOK, got.Raw.StatusCode)
	})
}

var errBadPayload = errors.New("bad payload")

type panicFreeBadDecoder struct{}

func (panicFreeBadDecoder) Decode([]byte, any) error { return errBadPayload }

func TestMultipartUpload(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("doc")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		content, _ := io.ReadAll(f)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"title":    r.FormValue("title"),
			"filename": hdr.Filename,
			"type":     hdr.Header.Get(HeaderContentType),
			"content":  string(content),
		})
	})
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	a, err := NewAdapter(WithBaseURL(ts.URL+"/"), WithExecutor(newTestExecutor(t)), WithCodec(JSON))
	require.NoError(t, err)

	b := Post("upload").Multipart(
		url.Values{"title": {"notes"}},
		FileField{Name: "doc", Filename: "notes.txt", ContentType: "text/plain", Reader: strings.NewReader("hello")},
	)
	got, err := await(t, Do[map[string]string](a, b))
	require.NoError(t, err)
	assert.Equal(t, "notes", got["title"])
	assert.Equal(t, "notes.txt", got["filename"])
	assert.Equal(t, "text/plain", got["type"])
	assert.Equal(t, "hello", got["content"])
}
