// Package rest sends HTTP requests on a wcall executor.
//
// A request is described synchronously with a RequestBuilder, prepared
// against an Adapter and then run either on the adapter's executor (Async)
// or on the calling goroutine (Here). Either way the caller gets a
// wcall.Call that resolves exactly once:
//
//	a, _ := rest.NewAdapter(
//		rest.WithBaseURL("https://api.example.com/v1/"),
//		rest.WithCodec(rest.JSON),
//		rest.ChainInterceptor(rest.BearerToken(token)),
//	)
//	call := rest.Do[User](a, rest.Get("users/42"))
//	user, err := call.Block()
//
// Running a request goes through interceptors, body encoding, URL
// resolution, the transport and response decoding, in that order. A panic
// in any stage resolves the Call with a *wcall.PanicError naming the request.
package rest
