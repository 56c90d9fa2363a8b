package netio

import "golang.org/x/sys/unix"

// WaitReadable blocks up to timeoutMs for fd to become readable, using
// poll(2) directly on the single descriptor. The shared
// netio.Multiplexer belongs to the acceptor alone; each connection
// handler polls its own fd independently rather than registering with
// the acceptor's epoll instance.
func WaitReadable(fd int, timeoutMs int) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, wrapErr("poll", err)
	}
	return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
}
