// Package netio provides the low-level, non-blocking socket and
// epoll-readiness primitives the acceptor, worker pool, and connection
// handler build on, over golang.org/x/sys/unix.
package netio

import (
	"errors"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrWouldBlock is returned by Recv and Accept (and any other wrapped
// call) when the underlying syscall reports EAGAIN/EWOULDBLOCK and the
// caller must wait for readiness before retrying. Send and Sendfile
// never return it: they retry internally on EAGAIN/EWOULDBLOCK.
var ErrWouldBlock = errors.New("netio: operation would block")

// OSError wraps a syscall failure that is not EAGAIN/EWOULDBLOCK,
// carrying the original errno.
type OSError struct {
	Op  string
	Err unix.Errno
}

func (e *OSError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *OSError) Unwrap() error { return e.Err }

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errno, ok := err.(unix.Errno); ok {
		if errno == unix.EAGAIN || errno == unix.EWOULDBLOCK {
			return ErrWouldBlock
		}
		return &OSError{Op: op, Err: errno}
	}
	return err
}

// Socket wraps an OS socket descriptor with move-only ownership
// semantics: the zero value is not usable, values are always handled
// through a pointer, and the caller transferring a *Socket (e.g. the
// acceptor enqueuing to the worker pool) must not retain it afterward.
// Close is idempotent via closeOnce.
type Socket struct {
	fd        int
	closeOnce sync.Once
	closeErr  error
}

// NewSocket creates a new socket(2) with domain/type/protocol and
// enables SO_REUSEADDR.
func NewSocket(domain, typ, protocol int) (*Socket, error) {
	fd, err := unix.Socket(domain, typ, protocol)
	if err != nil {
		return nil, wrapErr("socket", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, wrapErr("setsockopt(SO_REUSEADDR)", err)
	}
	return &Socket{fd: fd}, nil
}

// AdoptSocket wraps an already-open descriptor (e.g. one returned by
// accept(2)), taking ownership of it.
func AdoptSocket(fd int) *Socket {
	return &Socket{fd: fd}
}

// Fd returns the underlying descriptor. Callers must not close it
// directly; use Close.
func (s *Socket) Fd() int { return s.fd }

// SetNonBlocking toggles O_NONBLOCK via fcntl(2), required before
// registering a socket with the epoll multiplexer.
func (s *Socket) SetNonBlocking(enable bool) error {
	return wrapErr("setnonblocking", unix.SetNonblock(s.fd, enable))
}

// Bind binds the socket to sa.
func (s *Socket) Bind(sa unix.Sockaddr) error {
	return wrapErr("bind", unix.Bind(s.fd, sa))
}

// Listen marks the socket as passive with the given backlog.
func (s *Socket) Listen(backlog int) error {
	return wrapErr("listen", unix.Listen(s.fd, backlog))
}

// Accept accepts one pending connection, returning ErrWouldBlock when
// none is pending. The caller drains repeated Accept calls in a tight
// loop until that happens.
func (s *Socket) Accept() (*Socket, unix.Sockaddr, error) {
	fd, sa, err := unix.Accept(s.fd)
	if err != nil {
		return nil, nil, wrapErr("accept", err)
	}
	return AdoptSocket(fd), sa, nil
}

// Recv reads into buf. A return of (0, nil) means the peer closed the
// connection; ErrWouldBlock means no data is available right now.
func (s *Socket) Recv(buf []byte) (int, error) {
	n, err := unix.Read(s.fd, buf)
	if err != nil {
		return 0, wrapErr("recv", err)
	}
	return n, nil
}

// Send writes all of buf, retrying internally on EAGAIN/EWOULDBLOCK
// until every byte is written. Any other failure aborts immediately
// with the bytes already sent.
func (s *Socket) Send(buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := unix.Write(s.fd, buf[total:])
		if err != nil {
			if errno, ok := err.(unix.Errno); ok && (errno == unix.EAGAIN || errno == unix.EWOULDBLOCK) {
				continue
			}
			return total, wrapErr("send", err)
		}
		total += n
	}
	return total, nil
}

// Sendfile transmits count bytes of fileFd starting at offset through
// the socket via sendfile(2), retrying on would-block the same way
// Send does. It returns the number of bytes sent.
func (s *Socket) Sendfile(fileFd int, offset int64, count int) (int, error) {
	total := 0
	off := offset
	for total < count {
		n, err := unix.Sendfile(s.fd, fileFd, &off, count-total)
		if err != nil {
			if errno, ok := err.(unix.Errno); ok && (errno == unix.EAGAIN || errno == unix.EWOULDBLOCK) {
				continue
			}
			return total, wrapErr("sendfile", err)
		}
		if n == 0 {
			// Nothing left to read from the file; avoid spinning.
			break
		}
		total += n
	}
	return total, nil
}

// Shutdown half-closes both directions, preventing further I/O before
// the socket is destroyed.
func (s *Socket) Shutdown() error {
	return wrapErr("shutdown", unix.Shutdown(s.fd, unix.SHUT_RDWR))
}

// Close closes the descriptor exactly once.
func (s *Socket) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = wrapErr("close", unix.Close(s.fd))
	})
	return s.closeErr
}
