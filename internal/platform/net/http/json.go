package http

import (
	"net/http"

	"topcrash/internal/platform/net/http/bind"
)

// JSONHandler adapts a pure JSON handler to a platform Handler
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		out, err := fn(r, in)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		RespondData(w, r, out)
	}
}

// JSONHandlerNoBody calls fn without parsing a request body and wraps the result
func JSONHandlerNoBody(fn func(*http.Request) (any, error)) Handler {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(r)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		RespondData(w, r, out)
	}
}
