package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultDispatchTimeout bounds a single background task.
const DefaultDispatchTimeout = 10 * time.Second

// Task is a unit of background work. It receives its own context, detached from
// the request that enqueued it.
type Task func(ctx context.Context) error

type namedTask struct {
	name string
	fn   Task
}

// Dispatcher runs tasks on a single background goroutine so callers never wait
// on outbound calls.
type Dispatcher struct {
	log     *zap.Logger
	timeout time.Duration
	queue   chan namedTask
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts a dispatcher with the given queue capacity.
func NewDispatcher(log *zap.Logger, queueSize int, timeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	d := &Dispatcher{
		log:     log,
		timeout: timeout,
		queue:   make(chan namedTask, queueSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue schedules fn without blocking. It returns false when the queue is full
// or the dispatcher is closed; the task is then dropped.
func (d *Dispatcher) Enqueue(name string, fn Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("dispatcher closed, dropping task", zap.String("task", name))
		return false
	}
	select {
	case d.queue <- namedTask{name: name, fn: fn}:
		return true
	default:
		d.log.Warn("dispatch queue full, dropping task", zap.String("task", name))
		return false
	}
}

// Close stops accepting tasks and waits for queued ones to finish or ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for t := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := t.fn(ctx); err != nil {
			d.log.Warn("background task failed", zap.String("task", t.name), zap.Error(err))
		}
		cancel()
	}
}
