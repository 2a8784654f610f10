// Package result contains results that are used to write out API responses.
package result

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse is the body of every error response sent as JSON.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// splitInternalMsg takes the optional internal message arguments given to the
// status functions and splits them into a format string and its args. If none
// were given, def is used as the format string.
func splitInternalMsg(def string, internalMsg []interface{}) (string, []interface{}) {
	if len(internalMsg) < 1 {
		return def, nil
	}
	return internalMsg[0].(string), internalMsg[1:]
}

// OK returns a Result containing an HTTP-200 along with a more detailed
// message (if desired; if none is provided it defaults to a generic one) that
// is not displayed to the user.
func OK(respObj interface{}, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternalMsg("OK", internalMsg)
	return Response(http.StatusOK, respObj, msgFmt, msgArgs...)
}

// Created returns a Result containing an HTTP-201 along with a more detailed
// message that is not displayed to the user.
func Created(respObj interface{}, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternalMsg("created", internalMsg)
	return Response(http.StatusCreated, respObj, msgFmt, msgArgs...)
}

// NoContent returns a Result containing an HTTP-204 along with a more detailed
// message that is not displayed to the user.
func NoContent(internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternalMsg("no content", internalMsg)
	return Response(http.StatusNoContent, nil, msgFmt, msgArgs...)
}

// BadRequest returns a Result containing an HTTP-400 along with a more
// detailed message that is not displayed to the user.
func BadRequest(userMsg string, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternalMsg("bad request", internalMsg)
	return Err(http.StatusBadRequest, userMsg, msgFmt, msgArgs...)
}

// NotFound returns a Result containing an HTTP-404 response along with a more
// detailed message that is not displayed to the user.
func NotFound(internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternalMsg("not found", internalMsg)
	return Err(http.StatusNotFound, "The requested resource was not found", msgFmt, msgArgs...)
}

// MethodNotAllowed returns a Result containing an HTTP-405 along with a more
// detailed message that is not displayed to the user.
func MethodNotAllowed(req *http.Request, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternalMsg("method not allowed", internalMsg)
	userMsg := fmt.Sprintf("Method %s is not allowed for %s", req.Method, req.URL.Path)
	return Err(http.StatusMethodNotAllowed, userMsg, msgFmt, msgArgs...)
}

// Conflict returns a Result containing an HTTP-409 along with a more detailed
// message that is not displayed to the user.
func Conflict(userMsg string, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternalMsg("conflict", internalMsg)
	return Err(http.StatusConflict, userMsg, msgFmt, msgArgs...)
}

// UnprocessableEntity returns a Result containing an HTTP-422, used when a
// request is well-formed but the grammar in it cannot be normalized.
func UnprocessableEntity(userMsg string, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternalMsg("unprocessable entity", internalMsg)
	return Err(http.StatusUnprocessableEntity, userMsg, msgFmt, msgArgs...)
}

// InternalServerError returns a Result containing an HTTP-500 response along
// with a more detailed message that is not displayed to the user. If
// internalMsg is provided the first argument must be a string that is the
// format string and any subsequent args are passed to Sprintf with the first
// as the format string.
func InternalServerError(internalMsg ...interface{}) Result {
	msgFmt, msgArgs := splitInternalMsg("internal server error", internalMsg)
	return Err(http.StatusInternalServerError, "An internal server error occurred", msgFmt, msgArgs...)
}

// Response returns a JSON Result with the given status. If status is
// http.StatusNoContent, respObj will not be read and may be nil. Otherwise,
// respObj MUST NOT be nil. If additional values are provided they are given to
// internalMsg as a format string.
func Response(status int, respObj interface{}, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        respObj,
	}
}

// Err returns a JSON error Result. If additional values are provided they are
// given to internalMsg as a format string.
func Err(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp: ErrorResponse{
			Error:  userMsg,
			Status: status,
		},
	}
}

// Redirection returns a Result that permanently redirects to uri.
func Redirection(uri string) Result {
	return Result{
		Status:      http.StatusPermanentRedirect,
		InternalMsg: fmt.Sprintf("redirect -> %s", uri),
		redir:       uri,
	}
}

// TextErr is like Err but it avoids JSON encoding of any kind and writes the
// output as plain text. If additional values are provided they are given to
// internalMsg as a format string.
func TextErr(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        userMsg,
	}
}

// Result is a response ready to be written to a client, along with a message
// for the server log.
type Result struct {
	Status      int
	IsErr       bool
	IsJSON      bool
	InternalMsg string

	resp  interface{}
	redir string
	hdrs  [][2]string

	// set by calling PrepareMarshaledResponse.
	respJSONBytes []byte
}

// WithHeader returns a copy of r that also sets the given header.
func (r Result) WithHeader(name, val string) Result {
	cp := r
	cp.hdrs = append(append([][2]string{}, r.hdrs...), [2]string{name, val})
	return cp
}

// PrepareMarshaledResponse sets the respJSONBytes to the marshaled version of
// the response if required. If required, and there is a problem marshaling, an
// error is returned. If not required, nil error is always returned.
//
// If PrepareMarshaledResponse has been successfully called at least once for
// r, calling it again has no effect.
func (r *Result) PrepareMarshaledResponse() error {
	if r.respJSONBytes != nil {
		return nil
	}

	if r.IsJSON && r.Status != http.StatusNoContent && r.redir == "" {
		var err error
		r.respJSONBytes, err = json.Marshal(r.resp)
		if err != nil {
			return err
		}
	}

	return nil
}

// WriteResponse writes r to w. It panics if r was never populated or cannot
// be marshaled.
func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}

	err := r.PrepareMarshaledResponse()
	if err != nil {
		panic(fmt.Sprintf("could not marshal response: %s", err.Error()))
	}

	var respBytes []byte

	if r.IsJSON {
		w.Header().Set("Content-Type", "application/json")
		if r.redir == "" {
			respBytes = r.respJSONBytes
		}
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if r.Status != http.StatusNoContent && r.redir == "" {
			respBytes = []byte(fmt.Sprintf("%v", r.resp))
		}
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if r.redir != "" {
		w.Header().Set("Location", r.redir)
	}

	for i := range r.hdrs {
		w.Header().Set(r.hdrs[i][0], r.hdrs[i][1])
	}

	w.WriteHeader(r.Status)

	if r.Status != http.StatusNoContent {
		w.Write(respBytes)
	}
}
