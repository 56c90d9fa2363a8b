// Package builders implements the method-specific response builders
// and their registry.
package builders

import "github.com/nnickles/origind/internal/httpmsg"

// Result carries either a completed response or an error code,
// discriminated by OK; exactly one of Resp/Code is meaningful.
type Result struct {
	Resp *httpmsg.Response
	Code httpmsg.Code
}

// OK reports whether the builder produced a response rather than an
// error code.
func (r Result) OK() bool { return r.Resp != nil }

// Success wraps a completed response.
func Success(resp *httpmsg.Response) Result { return Result{Resp: resp} }

// Failure wraps a status code the caller must turn into an error
// response via httpmsg.Composer.ComposeError.
func Failure(code httpmsg.Code) Result { return Result{Code: code} }

// Builder produces a response from a parsed request.
type Builder interface {
	Build(req *httpmsg.Request) Result
}
