package httpmsg

import (
	"bytes"
	"strconv"
)

// Composer serializes Responses to wire bytes and synthesizes error
// responses. It holds no state and is safe to share across every
// worker goroutine.
type Composer struct{}

// NewComposer returns a ready-to-use Composer.
func NewComposer() *Composer {
	return &Composer{}
}

// ComposeHeaders serializes the status line and headers, ending with a
// blank line. The body (or file) is sent separately by the connection
// handler.
func (c *Composer) ComposeHeaders(resp *Response) []byte {
	var buf bytes.Buffer
	buf.WriteString(resp.StatusLine())
	buf.WriteString("\r\n")
	resp.Header.Each(func(name, value string) {
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\r\n")
	})
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// ComposeError builds the short "<code> <reason>" HTML error response:
// text/html, Connection: close, and a Content-Length matching the
// body.
func (c *Composer) ComposeError(code Code) *Response {
	body := strconv.Itoa(int(code)) + " " + code.Reason()
	resp := NewResponse(code)
	resp.Header.Replace("Content-Type", MediaTextHTML)
	resp.Header.Replace("Connection", "close")
	resp.Header.Replace("Content-Length", strconv.Itoa(len(body)))
	resp.Body = []byte(body)
	return resp
}
