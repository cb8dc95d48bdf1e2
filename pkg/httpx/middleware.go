package httpx

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first listed runs outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// ChainFunc is Chain for a handler function.
func ChainFunc(h http.HandlerFunc, mws ...Middleware) http.Handler {
	return Chain(h, mws...)
}
