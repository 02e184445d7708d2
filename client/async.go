package client

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog/log"
)

var asyncLogger = log.With().Str("logger_name", "client::async").Logger()

// Work is one unit run by the async queue.
type Work func(ctx context.Context)

type scopeKey struct{}

// scope collects work enqueued through the context of a running unit.
type scope struct {
	queue  *AsyncQueue
	nested []Work
	done   bool
}

// AsyncQueue runs units one at a time in submission order on a single
// worker goroutine. Work enqueued with the context handed to a running unit
// runs right after that unit, ahead of anything queued before it.
type AsyncQueue struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	items    []Work
	closed   bool
	done     chan struct{}
}

func NewAsyncQueue() *AsyncQueue {
	q := &AsyncQueue{done: make(chan struct{})}
	q.nonEmpty = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Enqueue adds w to the queue. It returns false once the queue is closed,
// except for work nested under a running unit.
func (q *AsyncQueue) Enqueue(ctx context.Context, w Work) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if s, ok := ctx.Value(scopeKey{}).(*scope); ok && s.queue == q && !s.done {
		s.nested = append(s.nested, w)
		return true
	}
	if q.closed {
		return false
	}
	q.items = append(q.items, w)
	q.nonEmpty.Signal()
	return true
}

// Wait blocks until every unit queued before it has run. It must not be
// called from a unit.
func (q *AsyncQueue) Wait() {
	reached := make(chan struct{})
	if !q.Enqueue(context.Background(), func(context.Context) { close(reached) }) {
		<-q.done
		return
	}
	<-reached
}

// Close stops accepting work, runs what is already queued and waits for the
// worker to exit.
func (q *AsyncQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.nonEmpty.Broadcast()
	q.mu.Unlock()
	<-q.done
}

func (q *AsyncQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.nonEmpty.Wait()
		}
		if len(q.items) == 0 {
			q.mu.Unlock()
			return
		}
		w := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		s := &scope{queue: q}
		q.execute(context.WithValue(context.Background(), scopeKey{}, s), w)

		q.mu.Lock()
		s.done = true
		if len(s.nested) > 0 {
			q.items = append(s.nested, q.items...)
		}
		q.mu.Unlock()
	}
}

func (q *AsyncQueue) execute(ctx context.Context, w Work) {
	defer func() {
		if err := recover(); err != nil {
			asyncLogger.Error().Msgf("Async unit panicked: %s\nStack Trace:\n%s", err, string(debug.Stack()))
		}
	}()
	w(ctx)
}
