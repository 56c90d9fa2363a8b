package workerpool

import (
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nnickles/origind/internal/logging"
	"github.com/nnickles/origind/internal/netio"
)

// newFakeSocket returns one end of a connected socket pair, wrapped as
// a *netio.Socket, with the peer end left open for the duration of the
// test.
func newFakeSocket(t *testing.T) *netio.Socket {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { unix.Close(fds[1]) })
	return netio.AdoptSocket(fds[0])
}

func TestPoolProcessesMoreTasksThanWorkers(t *testing.T) {
	var processed atomic.Int32
	done := make(chan struct{})
	const tasks = 20

	p := New(3, func(sock *netio.Socket) {
		sock.Close()
		if processed.Add(1) == tasks {
			close(done)
		}
	}, logging.New(false))

	for i := 0; i < tasks; i++ {
		p.Enqueue(newFakeSocket(t))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("only %d/%d tasks processed before timeout", processed.Load(), tasks)
	}
	p.Shutdown()
}

func TestPoolZeroWorkersRunsInline(t *testing.T) {
	var calls int32
	p := New(0, func(sock *netio.Socket) {
		atomic.AddInt32(&calls, 1)
		sock.Close()
	}, logging.New(false))

	p.Enqueue(newFakeSocket(t))
	p.Enqueue(newFakeSocket(t))

	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("got %d inline calls, want 2", calls)
	}
	p.Shutdown()
}

func TestPoolShutdownIsIdempotent(t *testing.T) {
	p := New(2, func(sock *netio.Socket) {}, logging.New(false))
	p.Shutdown()
	p.Shutdown()
}

func TestPoolRejectsEnqueueAfterShutdown(t *testing.T) {
	var calls int32
	p := New(2, func(sock *netio.Socket) {
		atomic.AddInt32(&calls, 1)
	}, logging.New(false))
	p.Shutdown()

	p.Enqueue(newFakeSocket(t))
	time.Sleep(10 * time.Millisecond)

	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("enqueue after shutdown must be a no-op, got %d calls", calls)
	}
}

func TestPoolRejectsNilSocket(t *testing.T) {
	var calls int32
	p := New(2, func(sock *netio.Socket) {
		atomic.AddInt32(&calls, 1)
	}, logging.New(false))

	p.Enqueue(nil)
	time.Sleep(10 * time.Millisecond)
	p.Shutdown()

	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("nil socket must never reach handle, got %d calls", calls)
	}
}
