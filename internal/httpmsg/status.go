// Package httpmsg implements the request/response data model, parsing,
// and wire composition for the origin server. Status codes live here
// as a plain lookup table rather than an error type: builders and the
// resolver hand back a code for the caller to act on, they never panic.
package httpmsg

// Code is one of the fixed set of status codes the core emits.
type Code int

const (
	StatusOK                  Code = 200
	StatusBadRequest          Code = 400
	StatusForbidden           Code = 403
	StatusNotFound            Code = 404
	StatusUnsupportedMedia    Code = 415
	StatusInternalServerError Code = 500
	StatusNotImplemented      Code = 501
)

var reasonPhrases = map[Code]string{
	StatusOK:                  "OK",
	StatusBadRequest:          "Bad Request",
	StatusForbidden:           "Forbidden",
	StatusNotFound:            "Not Found",
	StatusUnsupportedMedia:    "Unsupported Media Type",
	StatusInternalServerError: "Internal Server Error",
	StatusNotImplemented:      "Not Implemented",
}

// Reason returns the exact reason phrase for code, or "Unknown Status"
// if code is not one of the fixed set the core emits.
func (c Code) Reason() string {
	if r, ok := reasonPhrases[c]; ok {
		return r
	}
	return "Unknown Status"
}
