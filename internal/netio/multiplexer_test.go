package netio

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestMultiplexerReportsReadiness(t *testing.T) {
	m, err := NewMultiplexer()
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	if err := m.Add(fds[0], unix.EPOLLIN); err != nil {
		t.Fatal(err)
	}
	if _, err := unix.Write(fds[1], []byte("x")); err != nil {
		t.Fatal(err)
	}

	events, err := m.Wait(1000)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	found := false
	for _, ev := range events {
		if ev.Fd == fds[0] {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected fds[0] among ready events, got %+v", events)
	}
}

func TestMultiplexerWakeUnblocksWait(t *testing.T) {
	m, err := NewMultiplexer()
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	done := make(chan struct{})
	go func() {
		m.Wait(5000)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := m.Wake(); err != nil {
		t.Fatalf("Wake failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after Wake")
	}
}
