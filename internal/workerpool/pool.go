// Package workerpool implements a bounded set of worker goroutines
// draining an unbounded FIFO task queue guarded by a mutex and
// condition variable, rather than a buffered channel: shutdown needs
// to broadcast every waiter and drop whatever is still queued, which a
// fixed-capacity channel cannot express without an unbounded backing
// slice anyway.
package workerpool

import (
	"sync"

	"github.com/nnickles/origind/internal/logging"
	"github.com/nnickles/origind/internal/netio"
)

// HandlerFunc processes one accepted connection to completion. It owns
// sock for the duration of the call and must close it before returning.
type HandlerFunc func(sock *netio.Socket)

// Pool is a fixed-size set of workers consuming tasks from a mutex+cond
// FIFO. A zero worker count degrades Enqueue to calling handle
// synchronously on the caller's goroutine.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*netio.Socket
	stop   bool
	active bool // true once workerCount worker goroutines are running

	handle HandlerFunc
	logger *logging.Logger
	wg     sync.WaitGroup
}

// New creates a Pool and, if workerCount > 0, starts that many worker
// goroutines immediately.
func New(workerCount int, handle HandlerFunc, logger *logging.Logger) *Pool {
	p := &Pool{handle: handle, logger: logger}
	p.cond = sync.NewCond(&p.mu)

	if workerCount == 0 {
		logger.Warn("worker pool inactive; running single-threaded")
		return p
	}

	p.active = true
	for i := 0; i < workerCount; i++ {
		p.wg.Add(1)
		go p.workerLoop()
	}
	return p
}

// Enqueue hands sock off to a worker, or runs it inline when the pool
// has zero workers. Enqueueing after Shutdown, or enqueueing a nil
// socket, is a rejected no-op.
func (p *Pool) Enqueue(sock *netio.Socket) {
	if sock == nil {
		p.logger.Error("failed to queue task: client socket is nil")
		return
	}

	p.mu.Lock()
	if p.stop {
		p.mu.Unlock()
		p.logger.Debug("rejecting enqueue after shutdown")
		return
	}
	if !p.active {
		p.mu.Unlock()
		p.handle(sock)
		return
	}
	p.queue = append(p.queue, sock)
	p.mu.Unlock()
	p.cond.Signal()
}

// Shutdown sets the stop flag, wakes every waiting worker, and joins
// them all. Any tasks still queued and not yet picked up are dropped.
// Idempotent.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.stop {
		p.mu.Unlock()
		return
	}
	p.stop = true
	p.mu.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()
	p.logger.Debug("worker pool shut down")
}

func (p *Pool) workerLoop() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for !p.stop && len(p.queue) == 0 {
			p.cond.Wait()
		}
		if p.stop {
			p.mu.Unlock()
			return
		}
		sock := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		if sock != nil {
			p.handle(sock)
		}
	}
}
