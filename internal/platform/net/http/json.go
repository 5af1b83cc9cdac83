package http

import (
	"net/http"

	"marginalia/internal/platform/net/http/bind"
)

// JSONHandler lifts a typed request function into a Handler. The body
// is decoded into In and validated before fn runs; bind failures and
// fn errors both come back through the envelope writer
func JSONHandler[In any](fn func(*http.Request, In) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[In](r)
		if err != nil {
			return Error(err)
		}
		return respond(fn(r, in))
	})
}

// JSONHandlerNoBody is JSONHandler for endpoints without a request body
func JSONHandlerNoBody(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		return respond(fn(r))
	})
}

// respond folds a handler's return pair into a Response
func respond(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	return OK(out)
}
