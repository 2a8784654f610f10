// Package middle contains middleware for use with the normalization server.
package middle

import (
	"net/http"
	"runtime/debug"

	"github.com/dekarrin/chomsky/server/api"
	"github.com/dekarrin/chomsky/server/result"
)

// Middleware is a function that takes a handler and returns a new handler which
// wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

// PanicHandler is middleware that recovers from any panic in the handler it
// wraps and responds with an HTTP-500 instead of dropping the connection.
type PanicHandler struct {
	next http.Handler
}

func (ph *PanicHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			r := result.TextErr(
				http.StatusInternalServerError,
				"An internal server error occurred",
				"panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack()),
			)
			api.LogHTTPResponse("ERROR", req, r.Status, r.InternalMsg)
			r.WriteResponse(w)
		}
	}()

	ph.next.ServeHTTP(w, req)
}

// DontPanic returns a Middleware that turns panics into HTTP-500 responses.
func DontPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return &PanicHandler{next: next}
	}
}

// MaxBodySize returns a Middleware that stops reading request bodies after n
// bytes. Reads past the limit fail, which endpoints report as a bad request.
// n of 0 or less is no limit.
func MaxBodySize(n int64) Middleware {
	return func(next http.Handler) http.Handler {
		if n < 1 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			req.Body = http.MaxBytesReader(w, req.Body, n)
			next.ServeHTTP(w, req)
		})
	}
}
