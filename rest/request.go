package rest

import (
	"bytes"
	"context"
	"io"
	"net/http"

	lg "github.com/Andrej220/go-utils/zlog"

	"github.com/azargarov/wcall"
)

// Request is a prepared request: a job ready to run and the Call it will
// resolve. A Request runs at most once.
type Request[T any] struct {
	adapter   *Adapter
	job       wcall.Job
	guard     *wcall.PanicGuard[T]
	call      *wcall.Call[T]
	immediate bool
}

// Prepare turns b into a Request decoding into T.
//
// If b recorded a construction error, the Request is immediate: its Call is
// already failed and nothing will be sent.
func Prepare[T any](a *Adapter, b *RequestBuilder) *Request[T] {
	if err := b.Err(); err != nil {
		return &Request[T]{adapter: a, call: wcall.Failed[T](err), immediate: true}
	}
	snap := b.snapshot()
	guard, call := wcall.NewCall[T](snap.String())
	job := func() {
		defer guard.Release()
		guard.Complete(execute[T](a, snap))
	}
	return &Request[T]{adapter: a, job: job, guard: guard, call: call}
}

// Do is Prepare(a, b).Async().
func Do[T any](a *Adapter, b *RequestBuilder) *wcall.Call[T] {
	return Prepare[T](a, b).Async()
}

// Immediate reports whether the request was resolved at Prepare time,
// without a job.
func (r *Request[T]) Immediate() bool { return r.immediate }

// Async submits the request to the adapter's executor and returns its Call
// without waiting. If the executor refuses the job, the Call resolves with
// that error.
func (r *Request[T]) Async() *wcall.Call[T] {
	job := r.take()
	if job == nil {
		return r.call
	}
	if err := r.adapter.exec.Submit(job); err != nil {
		var zero T
		r.guard.Complete(zero, err)
	}
	return r.call
}

// Here runs the request on the calling goroutine and returns its result.
func (r *Request[T]) Here() (T, error) {
	if job := r.take(); job != nil {
		_ = wcall.SyncExecutor{}.Submit(job)
	}
	return r.call.Block()
}

func (r *Request[T]) take() wcall.Job {
	job := r.job
	r.job = nil
	return job
}

// execute runs the request stages in order: interceptors, body encoding,
// URL resolution, transport, response decoding. The first failure ends it.
func execute[T any](a *Adapter, b *RequestBuilder) (T, error) {
	var out T
	logger := lg.FromContext(b.ctx)

	a.intercept.Intercept(&b.head)
	desc := b.head.String()

	fail := func(stage string, err error) (T, error) {
		logger.Warn("request failed",
			lg.String("request", desc),
			lg.String("stage", stage),
			lg.Any("error", err),
		)
		var zero T
		return zero, err
	}

	body, contentType, err := b.encodeBody(a.enc)
	if err != nil {
		return fail("encode", err)
	}
	u, err := b.head.resolve(a.base)
	if err != nil {
		return fail("resolve", err)
	}

	var rd io.Reader = http.NoBody
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.WithoutCancel(b.ctx), b.head.Method, u.String(), rd)
	if err != nil {
		return fail("build", err)
	}
	req.Header = b.head.Header.Clone()
	if contentType != "" && req.Header.Get(HeaderContentType) == "" {
		req.Header.Set(HeaderContentType, contentType)
	}

	resp, err := a.transport.Do(req)
	if err != nil {
		return fail("transport", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail("read", err)
	}

	raw := Raw{StatusCode: resp.StatusCode, Status: resp.Status, Header: resp.Header, Body: data}
	decode := func(v any) (string, error) {
		if raw.StatusCode >= http.StatusBadRequest {
			return "status", &StatusError{Code: raw.StatusCode, Status: raw.Status, Body: data}
		}
		if raw.StatusCode == http.StatusNoContent || (len(data) == 0 && b.head.Method == http.MethodHead) {
			return "", nil
		}
		if err := a.dec.Decode(data, v); err != nil {
			return "decode", err
		}
		return "", nil
	}

	var stage string
	if shape, ok := any(&out).(responseShape); ok {
		stage, err = shape.receive(raw, decode)
	} else {
		stage, err = decode(&out)
	}
	if err != nil {
		return fail(stage, err)
	}
	logger.Info("request done", lg.String("request", desc), lg.Int("status", resp.StatusCode))
	return out, nil
}
