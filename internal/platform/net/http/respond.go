package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "marginalia/internal/platform/errors"
	pnet "marginalia/internal/platform/net"
)

// Envelope is the body shape every endpoint answers with. Data rides on
// success; Code and Error replace it when the handler fails
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Response is what return-style handlers produce. A zero Status means 200;
// an error Body switches the envelope onto the error path
type Response struct {
	Status int
	Body   any
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

// OK returns a 200 response carrying data
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Error returns a response whose status and wire code derive from err
func Error(err error) Response { return Response{Body: err} }

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}

	env := Envelope{RequestID: pnet.RequestID(r.Context())}
	if err, ok := resp.Body.(error); ok && err != nil {
		// the error decides the status, not whatever the handler set
		status = perr.HTTPStatus(err)
		wire := perr.WireFrom(err)
		env.Code = wire.Code
		env.Error = wire.Message
	} else {
		env.Data = resp.Body
	}
	env.StatusCode = status
	env.Status = stdhttp.StatusText(status)
	writeJSON(w, status, env)
}

func writeJSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
