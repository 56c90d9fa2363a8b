package httpmsg

import (
	"bytes"
	"strconv"
)

// Outcome is the parser's result discriminator: the caller always gets
// a value back, never an exception/panic.
type Outcome int

const (
	// ParseIncompleteHeaders means buf does not yet contain a full
	// "\r\n\r\n" header terminator; the caller should read more.
	ParseIncompleteHeaders Outcome = iota
	// ParseIncompleteBody means the header block parsed but fewer
	// than Content-Length bytes of body are present yet.
	ParseIncompleteBody
	// ParseOK means req is a complete, well-formed request.
	ParseOK
	// ParseBad means the request is malformed in a way that cannot be
	// fixed by reading more bytes; the caller should respond 400.
	ParseBad
)

const headerTerminator = "\r\n\r\n"

// ParseRequest parses buf, the bytes accumulated so far on a
// connection, into a Request. It is safe to call repeatedly as buf
// grows across non-blocking reads: an incomplete buf yields
// ParseIncompleteHeaders or ParseIncompleteBody rather than an error.
func ParseRequest(buf []byte) (*Request, Outcome) {
	headersEnd := bytes.Index(buf, []byte(headerTerminator))
	if headersEnd == -1 {
		return nil, ParseIncompleteHeaders
	}

	headerBlock := buf[:headersEnd]
	lineEnd := bytes.Index(headerBlock, []byte("\r\n"))
	if lineEnd == -1 {
		// No headers at all, the whole header block is the start line.
		lineEnd = len(headerBlock)
	}
	startLine := headerBlock[:lineEnd]

	req := &Request{Header: NewHeader()}
	if !parseStartLine(startLine, req) {
		return nil, ParseBad
	}

	if lineEnd < len(headerBlock) {
		parseHeaders(headerBlock[lineEnd+2:], req)
	}

	if req.Header.Has("Transfer-Encoding") {
		return nil, ParseBad
	}

	bodyStart := headersEnd + len(headerTerminator)
	rest := buf[bodyStart:]

	cl, hasCL := req.Header.Get("Content-Length")
	if !hasCL {
		req.Body = nil
		return req, ParseOK
	}

	n, err := strconv.Atoi(cl)
	if err != nil || n < 0 {
		return nil, ParseBad
	}
	if len(rest) < n {
		return nil, ParseIncompleteBody
	}
	req.Body = append([]byte(nil), rest[:n]...)
	return req, ParseOK
}

// parseStartLine parses "METHOD SP TARGET SP VERSION" with no trailing
// CRLF in line. Returns false if either space is missing or the
// version is not exactly HTTP/1.1; an unrecognized method is not a
// failure.
func parseStartLine(line []byte, req *Request) bool {
	sp1 := bytes.IndexByte(line, ' ')
	if sp1 == -1 {
		return false
	}
	sp2 := bytes.IndexByte(line[sp1+1:], ' ')
	if sp2 == -1 {
		return false
	}
	sp2 += sp1 + 1

	methodTok := string(line[:sp1])
	target := string(line[sp1+1 : sp2])
	version := string(line[sp2+1:])

	if version != HTTPVersion {
		return false
	}

	req.Method = methodFromToken(methodTok)
	req.Target = target
	req.Version = version
	return true
}

// parseHeaders parses a "\r\n"-separated block of "name: value" lines
// with no trailing terminator, stripping optional whitespace after the
// colon and keeping the first value on a duplicate name (Header.Set).
// Lines without a colon are silently skipped.
func parseHeaders(block []byte, req *Request) {
	for len(block) > 0 {
		end := bytes.Index(block, []byte("\r\n"))
		var line []byte
		if end == -1 {
			line = block
			block = nil
		} else {
			line = block[:end]
			block = block[end+2:]
		}
		if len(line) == 0 {
			continue
		}
		colon := bytes.IndexByte(line, ':')
		if colon == -1 {
			continue
		}
		name := line[:colon]
		value := bytes.TrimLeft(line[colon+1:], " \t")
		req.Header.Set(string(name), string(value))
	}
}
