package netio

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// Event is one ready descriptor reported by Wait, pairing the fd with
// the event mask that fired.
type Event struct {
	Fd     int
	Events uint32
}

// Multiplexer is the readiness-notification facility the acceptor
// blocks in. It owns an epoll instance and a self-wake eventfd that
// Wake() can signal to break a concurrent Wait early.
type Multiplexer struct {
	epfd   int
	wakeFd int
}

// NewMultiplexer creates an epoll instance and registers its wake
// descriptor for read-readiness.
func NewMultiplexer() (*Multiplexer, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, wrapErr("epoll_create1", err)
	}

	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return nil, wrapErr("eventfd", err)
	}

	m := &Multiplexer{epfd: epfd, wakeFd: wakeFd}
	if err := m.Add(wakeFd, unix.EPOLLIN); err != nil {
		unix.Close(wakeFd)
		unix.Close(epfd)
		return nil, err
	}
	return m, nil
}

// WakeFd returns the self-wake descriptor, so callers can recognize and
// ignore it among the events Wait returns.
func (m *Multiplexer) WakeFd() int { return m.wakeFd }

// Add registers fd for the given event mask.
func (m *Multiplexer) Add(fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	return wrapErr("epoll_ctl(ADD)", unix.EpollCtl(m.epfd, unix.EPOLL_CTL_ADD, fd, &ev))
}

// Remove deregisters fd. Errors are not fatal: the fd may already have
// been closed, which implicitly removes it from the epoll set.
func (m *Multiplexer) Remove(fd int) {
	unix.EpollCtl(m.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Wait blocks for up to timeoutMs (-1 blocks indefinitely) and returns
// the ready descriptors. The wake descriptor, if ready, is drained
// here so a spurious repeat notification cannot occur on the next
// Wait; its event is still included in the returned slice so the
// caller can recognize and skip it explicitly.
func (m *Multiplexer) Wait(timeoutMs int) ([]Event, error) {
	raw := make([]unix.EpollEvent, 16)
	n, err := unix.EpollWait(m.epfd, raw, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, wrapErr("epoll_wait", err)
	}

	events := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		fd := int(raw[i].Fd)
		if fd == m.wakeFd {
			var val [8]byte
			unix.Read(m.wakeFd, val[:])
		}
		events = append(events, Event{Fd: fd, Events: raw[i].Events})
	}
	return events, nil
}

// Wake causes a concurrent Wait to return promptly.
func (m *Multiplexer) Wake() error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(m.wakeFd, buf[:])
	return wrapErr("eventfd write", err)
}

// Close tears down the epoll instance and the wake descriptor.
func (m *Multiplexer) Close() error {
	unix.Close(m.wakeFd)
	return wrapErr("close(epoll)", unix.Close(m.epfd))
}
