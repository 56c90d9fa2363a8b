// Package acceptor runs the non-blocking listening socket: it accepts
// connections as they become ready under the shared epoll multiplexer
// and hands each one off to the worker pool.
package acceptor

import (
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/nnickles/origind/internal/builders"
	"github.com/nnickles/origind/internal/config"
	"github.com/nnickles/origind/internal/connection"
	"github.com/nnickles/origind/internal/httpmsg"
	"github.com/nnickles/origind/internal/logging"
	"github.com/nnickles/origind/internal/netio"
	"github.com/nnickles/origind/internal/workerpool"
)

// listenBacklog is the backlog passed to listen(2).
const listenBacklog = 10

// waitTimeoutMs bounds each epoll_wait call so the acceptor rechecks
// its running flag regularly even with no traffic at all.
const waitTimeoutMs = 500

// Acceptor owns the listening socket, the shared multiplexer, the
// worker pool, and the running flag that every connection handler's
// poll loop also reads.
type Acceptor struct {
	cfg *config.Config

	listener *netio.Socket
	mux      *netio.Multiplexer
	pool     *workerpool.Pool

	registry *builders.Registry
	composer *httpmsg.Composer

	logger  *logging.Logger
	running atomic.Bool
}

// New builds an Acceptor whose socket is bound to cfg.Port, listening,
// and registered with the multiplexer. Connections are not accepted
// until Run is called.
func New(cfg *config.Config, logger *logging.Logger) (*Acceptor, error) {
	listener, err := netio.NewSocket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	if err := listener.SetNonBlocking(true); err != nil {
		listener.Close()
		return nil, err
	}

	sa := &unix.SockaddrInet4{Port: cfg.Port}
	if err := listener.Bind(sa); err != nil {
		listener.Close()
		return nil, err
	}
	if err := listener.Listen(listenBacklog); err != nil {
		listener.Close()
		return nil, err
	}

	mux, err := netio.NewMultiplexer()
	if err != nil {
		listener.Close()
		return nil, err
	}
	if err := mux.Add(listener.Fd(), unix.EPOLLIN); err != nil {
		mux.Close()
		listener.Close()
		return nil, err
	}

	a := &Acceptor{
		cfg:      cfg,
		listener: listener,
		mux:      mux,
		registry: builders.NewRegistry(cfg.RootFolder, cfg.IndexFile),
		composer: httpmsg.NewComposer(),
		logger:   logger,
	}
	a.running.Store(true)
	a.pool = workerpool.New(cfg.WorkerCount, a.serveConn, logger)
	return a, nil
}

// Run blocks, accepting connections until Stop is called from another
// goroutine (typically a signal handler).
func (a *Acceptor) Run() error {
	a.logger.Infof("listening on port %d, root %s", a.cfg.Port, a.cfg.RootFolder)

	for a.running.Load() {
		events, err := a.mux.Wait(waitTimeoutMs)
		if err != nil {
			a.logger.Errorf("epoll wait failed: %v", err)
			return err
		}

		for _, ev := range events {
			if ev.Fd == a.mux.WakeFd() {
				continue
			}
			if ev.Fd == a.listener.Fd() {
				a.acceptAll()
			}
		}
	}

	a.shutdown()
	return nil
}

// Stop flips the running flag and wakes a blocked Wait so Run returns
// promptly. Safe to call from a signal-handling goroutine.
func (a *Acceptor) Stop() {
	a.running.Store(false)
	if err := a.mux.Wake(); err != nil {
		a.logger.Debugf("wake failed: %v", err)
	}
}

// acceptAll drains pending connections on the listening socket until
// accept(2) reports would-block, since a single epoll readiness
// notification can correspond to more than one pending connection.
func (a *Acceptor) acceptAll() {
	for {
		sock, _, err := a.listener.Accept()
		if err != nil {
			if err != netio.ErrWouldBlock {
				a.logger.Errorf("accept failed: %v", err)
			}
			return
		}
		if err := sock.SetNonBlocking(true); err != nil {
			a.logger.Errorf("failed to set accepted socket non-blocking: %v", err)
			sock.Close()
			continue
		}
		a.pool.Enqueue(sock)
	}
}

// serveConn is the workerpool.HandlerFunc run for each accepted
// connection, on whichever goroutine picks it off the queue.
func (a *Acceptor) serveConn(sock *netio.Socket) {
	connection.New(sock, a.registry, a.composer, a.logger, &a.running).Serve()
}

// shutdown tears down every owned resource in dependency order: the
// worker pool first so no handler is mid-flight against a closing
// multiplexer, then the multiplexer and listening socket.
func (a *Acceptor) shutdown() {
	a.pool.Shutdown()
	a.mux.Remove(a.listener.Fd())
	a.mux.Close()
	a.listener.Close()
	a.logger.Info("acceptor shut down")
}
