package rest

import "net/http"

// Raw receives a response untouched: no status check, no decoding.
type Raw struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// WithRaw decodes the response into Value and keeps the raw response next
// to it. Status and decode failures fail the Call as for a plain T.
type WithRaw[T any] struct {
	Value T
	Raw   Raw
}

// TryWithRaw always carries the raw response once one arrived. A status or
// decode failure is stored in Err instead of failing the Call.
type TryWithRaw[T any] struct {
	Value T
	Err   error
	Raw   Raw
}

// Result returns Value and Err.
func (t TryWithRaw[T]) Result() (T, error) { return t.Value, t.Err }

// decodeFunc checks the status and decodes the body into v. On failure it
// also names the stage that failed.
type decodeFunc func(v any) (stage string, err error)

// responseShape is implemented by result types that want more than the
// decoded body.
type responseShape interface {
	receive(raw Raw, decode decodeFunc) (string, error)
}

func (r *Raw) receive(raw Raw, _ decodeFunc) (string, error) {
	*r = raw
	return "", nil
}

func (w *WithRaw[T]) receive(raw Raw, decode decodeFunc) (string, error) {
	w.Raw = raw
	return decode(&w.Value)
}

func (t *TryWithRaw[T]) receive(raw Raw, decode decodeFunc) (string, error) {
	t.Raw = raw
	_, t.Err = decode(&t.Value)
	return "", nil
}
