// Package connection runs one accepted socket through its full request
// lifecycle: waiting for bytes, accumulating and parsing a request,
// dispatching it to a builder, writing the response, and deciding
// whether to read another request or close.
package connection

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/nnickles/origind/internal/builders"
	"github.com/nnickles/origind/internal/httpmsg"
	"github.com/nnickles/origind/internal/logging"
	"github.com/nnickles/origind/internal/netio"
)

const (
	// keepAliveTimeoutMs bounds how long a connection may sit idle
	// between requests before it is closed.
	keepAliveTimeoutMs = 60_000
	// pollSliceMs is the granularity at which a wait for readability
	// re-checks the running flag.
	pollSliceMs = 100
	// proactiveTimeoutMs bounds how long a freshly accepted connection
	// may go without sending its first byte.
	proactiveTimeoutMs = 500
	// maxRequestsPerConn caps how many requests one connection serves
	// before it is closed regardless of keep-alive.
	maxRequestsPerConn = 100
	// readChunkSize is the size of each non-blocking recv call.
	readChunkSize = 128 * 1024
)

// state is one step of a connection's lifecycle. It returns the next
// step to run, or nil once the connection should close.
type state func(*Handler) state

// Handler drives a single connection to completion and owns sock for
// that duration: it always closes sock before returning. Its fields
// beyond sock/registry/composer/logger/running carry the in-flight
// request/response across state transitions.
type Handler struct {
	sock     *netio.Socket
	registry *builders.Registry
	composer *httpmsg.Composer
	logger   *logging.Logger
	running  *atomic.Bool

	requestCount int
	firstWait    bool
	req          *httpmsg.Request
	resp         *httpmsg.Response
	outcome      httpmsg.Outcome
	forceClose   bool
}

// New returns a Handler ready to Serve sock. running is shared with the
// acceptor; once it flips false no further waits are entered.
func New(sock *netio.Socket, registry *builders.Registry, composer *httpmsg.Composer, logger *logging.Logger, running *atomic.Bool) *Handler {
	return &Handler{sock: sock, registry: registry, composer: composer, logger: logger, running: running, firstWait: true}
}

// Serve drives the connection through waitForData, readRequest,
// buildResponse, send and continueOrClose until a state returns nil,
// then closes the socket.
func (h *Handler) Serve() {
	defer h.sock.Close()

	for s := waitForData; s != nil; {
		s = s(h)
	}
}

// waitForData polls for readability in pollSliceMs slices, bounded by
// keepAliveTimeoutMs overall. On the first wait of a connection's
// lifetime it additionally closes early if nothing arrives within
// proactiveTimeoutMs, rather than holding the full keep-alive budget
// open for a client that may never send anything. It also enforces
// maxRequestsPerConn before waiting for another request.
func waitForData(h *Handler) state {
	if h.requestCount >= maxRequestsPerConn {
		h.logger.Debug("closing connection: reached per-connection request cap")
		return nil
	}
	if !h.pollForData(h.firstWait) {
		return nil
	}
	h.firstWait = false
	return readRequest
}

func (h *Handler) pollForData(first bool) bool {
	elapsed := 0
	for h.running.Load() && elapsed < keepAliveTimeoutMs {
		ready, err := netio.WaitReadable(h.sock.Fd(), pollSliceMs)
		if err != nil {
			h.logger.Debugf("wait for data failed: %v", err)
			return false
		}
		if ready {
			return true
		}
		elapsed += pollSliceMs
		if first && elapsed >= proactiveTimeoutMs {
			h.logger.Debug("closing idle connection: no request within proactive window")
			return false
		}
	}
	return false
}

// readRequest accumulates bytes via non-blocking recv, reparsing after
// every read, until the parser reports ParseOK or ParseBad.
func readRequest(h *Handler) state {
	req, outcome, closed := h.accumulateRequest()
	if closed {
		return nil
	}
	h.req = req
	h.outcome = outcome
	return buildResponse
}

// accumulateRequest is readRequest's body. closed is true when the
// connection is already gone (peer closed, or a fatal I/O error) and
// no response should be attempted.
func (h *Handler) accumulateRequest() (*httpmsg.Request, httpmsg.Outcome, bool) {
	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)
	elapsed := 0

	for {
		n, err := h.sock.Recv(chunk)
		if err != nil {
			if err == netio.ErrWouldBlock {
				ready, werr := netio.WaitReadable(h.sock.Fd(), pollSliceMs)
				if werr != nil || !h.running.Load() {
					return nil, httpmsg.ParseBad, true
				}
				if !ready {
					elapsed += pollSliceMs
					if elapsed >= keepAliveTimeoutMs {
						return nil, httpmsg.ParseBad, true
					}
				}
				continue
			}
			h.logger.Debugf("recv failed: %v", err)
			return nil, httpmsg.ParseBad, true
		}
		if n == 0 {
			return nil, httpmsg.ParseBad, true
		}

		buf = append(buf, chunk[:n]...)
		req, outcome := httpmsg.ParseRequest(buf)
		if outcome == httpmsg.ParseIncompleteHeaders || outcome == httpmsg.ParseIncompleteBody {
			continue
		}
		return req, outcome, false
	}
}

// buildResponse dispatches the parsed request to its builder, or
// synthesizes a 400 for a request the parser rejected outright. A
// malformed request forces the connection closed once the response is
// sent, regardless of any Connection header (there is no parsed
// request to read one from).
func buildResponse(h *Handler) state {
	if h.outcome == httpmsg.ParseBad {
		h.resp = h.composer.ComposeError(httpmsg.StatusBadRequest)
		h.forceClose = true
		return send
	}
	h.forceClose = false

	builder := h.registry.Lookup(h.req.Method)
	if builder == nil {
		h.resp = h.composer.ComposeError(httpmsg.StatusNotImplemented)
	} else {
		result := builder.Build(h.req)
		if result.OK() {
			h.resp = result.Resp
		} else {
			h.resp = h.composer.ComposeError(result.Code)
		}
	}
	applyDefaultConnection(h.resp, h.req)
	return send
}

// applyDefaultConnection sets Connection: keep-alive on a response
// that doesn't already carry one, mirroring the request's explicit
// value instead when it asked for anything other than keep-alive.
// Builders and the error composer that already set their own
// Connection header (POST's unconditional close, every error
// response) are left untouched.
func applyDefaultConnection(resp *httpmsg.Response, req *httpmsg.Request) {
	if resp.Header.Has("Connection") {
		return
	}
	if v, ok := req.Header.Get("Connection"); ok && !strings.EqualFold(v, "keep-alive") {
		resp.Header.Replace("Connection", v)
		return
	}
	resp.Header.Replace("Connection", "keep-alive")
}

// send writes the response and advances the request count on success.
func send(h *Handler) state {
	fields := map[string]interface{}{"status": int(h.resp.Status)}
	if h.req != nil {
		fields["method"] = h.req.Method.String()
		fields["target"] = h.req.Target
	}
	h.logger.WithFields(fields).Debug("handled request")

	if err := h.writeResponse(h.resp); err != nil {
		h.logger.Debugf("send failed: %v", err)
		return nil
	}
	h.requestCount++
	return continueOrClose
}

// continueOrClose decides whether the connection waits for another
// request or closes, per the Connection headers on both sides of the
// exchange just completed.
func continueOrClose(h *Handler) state {
	if h.forceClose || connClose(h.resp.Header) || connClose(h.req.Header) {
		return nil
	}
	return waitForData
}

func connClose(h httpmsg.Header) bool {
	v, ok := h.Get("Connection")
	return ok && strings.EqualFold(v, "close")
}

// contentLength reads and parses a response's Content-Length header,
// the preferred source of a static response's byte count over a fresh
// stat call.
func contentLength(h httpmsg.Header) (int64, bool) {
	v, ok := h.Get("Content-Length")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// writeResponse writes the header block, then the body: Send for an
// in-memory body, Sendfile for a static file reference above the
// static threshold.
func (h *Handler) writeResponse(resp *httpmsg.Response) error {
	head := h.composer.ComposeHeaders(resp)
	if _, err := h.sock.Send(head); err != nil {
		return err
	}

	if resp.Static {
		f, err := os.Open(resp.FilePath)
		if err != nil {
			return err
		}
		defer f.Close()

		size, ok := contentLength(resp.Header)
		if !ok {
			info, err := f.Stat()
			if err != nil {
				return err
			}
			size = info.Size()
		}
		_, err = h.sock.Sendfile(int(f.Fd()), 0, int(size))
		return err
	}

	if len(resp.Body) > 0 {
		_, err := h.sock.Send(resp.Body)
		return err
	}
	return nil
}
