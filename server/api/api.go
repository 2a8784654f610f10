// Package api provides HTTP API endpoints for the normalization server.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/dekarrin/chomsky/server/cnfs"
	"github.com/dekarrin/chomsky/server/result"
	"github.com/dekarrin/chomsky/server/serr"
	"github.com/go-chi/chi/v5"
)

const (
	// PathPrefix is the prefix of all paths in the API. Routers should mount
	// a sub-router that routes all requests to the API at this path.
	PathPrefix = "/api/v1"
)

// API holds parameters for endpoints needed to run and a service layer that
// will perform most of the actual logic. To use API, create one and then
// assign the result of its HTTP* methods as handlers to a router or some other
// kind of server mux.
//
// This is exclusively an API for serving external requests. For direct
// programmatic access into the backend of a server via Go code, see
// [cnfs.Service].
type API struct {
	// Backend is the service that the API calls to perform the requested
	// actions.
	Backend cnfs.Service
}

// EndpointFunc produces the result of a single request.
type EndpointFunc func(req *http.Request) result.Result

// Endpoint returns a HandlerFunc that runs ep, logs the outcome, and writes
// the result.
func Endpoint(ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		r := ep(req)

		// if this hasn't been properly created, output error directly and do
		// not try to read properties
		if r.Status == 0 {
			LogHTTPResponse("ERROR", req, http.StatusInternalServerError, "endpoint result was never populated")
			http.Error(w, "An internal server error occurred", http.StatusInternalServerError)
			return
		}

		// pre-call PrepareMarshaledResponse bc if it fails in call to
		// WriteResponse, it will panic.
		if err := r.PrepareMarshaledResponse(); err != nil {
			r = result.Err(http.StatusInternalServerError, "An internal server error occurred", "could not marshal JSON response: "+err.Error())
		}

		if r.IsErr {
			LogHTTPResponse("ERROR", req, r.Status, r.InternalMsg)
		} else {
			LogHTTPResponse("INFO", req, r.Status, r.InternalMsg)
		}

		r.WriteResponse(w)
	}
}

// LogHTTPResponse writes a line to the log about a response sent to req.
// level is padded or cut to five characters.
func LogHTTPResponse(level string, req *http.Request, respStatus int, msg string) {
	if len(level) > 5 {
		level = level[0:5]
	}

	for len(level) < 5 {
		level += " "
	}

	// we don't really care about the ephemeral port from the client end
	remoteAddrParts := strings.SplitN(req.RemoteAddr, ":", 2)
	remoteIP := remoteAddrParts[0]

	log.Printf("%s %s %s %s: HTTP-%d %s", level, remoteIP, req.Method, req.URL.Path, respStatus, msg)
}

// v must be a pointer to a type. Will return error such that
// errors.Is(err, serr.ErrBodyUnmarshal) returns true if it is problem decoding
// the JSON itself.
func parseJSON(req *http.Request, v interface{}) error {
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || strings.ToLower(mediaType) != "application/json" {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer func() {
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewBuffer(bodyData))
	}()

	err = json.Unmarshal(bodyData, v)
	if err != nil {
		return serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}

	return nil
}

func getURLParam[E any](r *http.Request, key string, parse func(string) (E, error)) (val E, err error) {
	valStr := chi.URLParam(r, key)
	if valStr == "" {
		// either it does not exist or it is nil; treat both as the same and
		// return an error
		return val, fmt.Errorf("parameter does not exist")
	}

	val, err = parse(valStr)
	if err != nil {
		return val, serr.New("", serr.ErrBadArgument)
	}
	return val, nil
}

// errorResult converts an error from the service layer into the Result to
// send for it.
func errorResult(err error, doing string) result.Result {
	switch {
	case errors.Is(err, serr.ErrNotFound):
		return result.NotFound("%s: %s", doing, err.Error())
	case errors.Is(err, serr.ErrBadArgument):
		return result.BadRequest(err.Error(), "%s: %s", doing, err.Error())
	case errors.Is(err, serr.ErrGrammar):
		return result.UnprocessableEntity(err.Error(), "%s: %s", doing, err.Error())
	case errors.Is(err, serr.ErrAlreadyExists):
		return result.Conflict("A grammar with that ID already exists", "%s: %s", doing, err.Error())
	default:
		return result.InternalServerError("%s: %s", doing, err.Error())
	}
}
