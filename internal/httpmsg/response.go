package httpmsg

import "strconv"

// Response is the structured response model. Exactly one of
// (len(Body) > 0, FilePath != "") is the payload source for a
// non-empty response; Static marks the file-reference case so the
// connection handler knows to sendfile rather than write Body.
type Response struct {
	Status   Code
	Header   Header
	Body     []byte
	Static   bool
	FilePath string
}

// NewResponse returns a Response with status and an initialized header
// map, ready for the caller to add headers to.
func NewResponse(status Code) *Response {
	return &Response{Status: status, Header: NewHeader()}
}

// StatusLine returns "HTTP/1.1 <code> <reason>" with no trailing CRLF.
func (r *Response) StatusLine() string {
	return HTTPVersion + " " + strconv.Itoa(int(r.Status)) + " " + r.Status.Reason()
}
