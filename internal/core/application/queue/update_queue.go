// Package queue serializes image-append mutations across every order.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

var (
	// ErrQueueAlreadyRunning is returned by a second Start.
	ErrQueueAlreadyRunning = errors.New("update queue is already running")

	// ErrQueueNotRunning is returned by Enqueue before Start.
	ErrQueueNotRunning = errors.New("update queue is not running")

	// ErrQueueClosed is returned by Enqueue after Shutdown.
	ErrQueueClosed = errors.New("update queue is closed")
)

// DefaultCapacity bounds the number of queued jobs.
const DefaultCapacity = 256

// OrderState is the in-memory order state the queue reads and optimistically writes.
type OrderState interface {
	Images(ctx context.Context, code kernel.OrderCode) ([]string, error)
	SetImages(ctx context.Context, code kernel.OrderCode, images []string)
	Adopt(ctx context.Context, o *order.Order)
}

// ImageAppender persists the full image list of an order.
type ImageAppender interface {
	AppendImages(ctx context.Context, code kernel.OrderCode, images []string) (*order.Order, error)
}

type job struct {
	id       uuid.UUID
	code     kernel.OrderCode
	imageURL string
	done     chan AppendResult
}

// UpdateQueue is a process-wide FIFO of image-append jobs drained by a single
// worker, so at most one append call is in flight at any instant and jobs
// reach the backend in enqueue order.
//
// Lifecycle: NewUpdateQueue -> Start -> Enqueue... -> Shutdown.
// A failed job never stops the queue and is never retried.
type UpdateQueue struct {
	state    OrderState
	appender ImageAppender
	logger   *slog.Logger

	jobs chan job

	running atomic.Bool
	closed  bool
	mu      sync.RWMutex

	closing   chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

// NewUpdateQueue creates a stopped queue holding at most capacity pending jobs.
// A non-positive capacity means DefaultCapacity.
func NewUpdateQueue(state OrderState, appender ImageAppender, capacity int, logger *slog.Logger) *UpdateQueue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &UpdateQueue{
		state:    state,
		appender: appender,
		logger:   logger.With("component", "update_queue"),
		jobs:     make(chan job, capacity),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the worker. Jobs run on a context detached from ctx's
// cancellation; use Shutdown to stop the queue.
func (q *UpdateQueue) Start(ctx context.Context) error {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return ErrQueueClosed
	}
	if !q.running.CompareAndSwap(false, true) {
		return ErrQueueAlreadyRunning
	}

	go q.run(context.WithoutCancel(ctx))
	q.logger.InfoContext(ctx, "update queue started", "capacity", cap(q.jobs))
	return nil
}

// Enqueue adds an append job and returns a channel that receives the job's
// result exactly once. It blocks while the queue is full until space frees
// up, ctx ends or the queue shuts down.
func (q *UpdateQueue) Enqueue(ctx context.Context, code kernel.OrderCode, imageURL string) (<-chan AppendResult, error) {
	if err := code.Validate(); err != nil {
		return nil, err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return nil, ErrQueueClosed
	}
	if !q.running.Load() {
		return nil, ErrQueueNotRunning
	}

	j := job{
		id:       uuid.New(),
		code:     code,
		imageURL: imageURL,
		done:     make(chan AppendResult, 1),
	}

	select {
	case q.jobs <- j:
		q.logger.DebugContext(ctx, "append job queued",
			"jobId", j.id,
			"orderCode", code.String(),
			"pending", len(q.jobs),
		)
		return j.done, nil
	case <-q.closing:
		return nil, ErrQueueClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Pending returns the number of jobs waiting for the worker.
func (q *UpdateQueue) Pending() int {
	return len(q.jobs)
}

// Shutdown stops intake and waits until every queued job has finished or
// ctx ends.
func (q *UpdateQueue) Shutdown(ctx context.Context) error {
	q.closeOnce.Do(func() {
		close(q.closing)

		q.mu.Lock()
		q.closed = true
		close(q.jobs)
		q.mu.Unlock()
	})

	if !q.running.Load() {
		return nil
	}

	select {
	case <-q.done:
		q.logger.InfoContext(ctx, "update queue drained")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("update queue shutdown: %w", ctx.Err())
	}
}

func (q *UpdateQueue) run(ctx context.Context) {
	defer close(q.done)

	for j := range q.jobs {
		result := q.process(ctx, j)
		j.done <- result
		close(j.done)
	}
}

// process runs one job. The optimistic merge is written back before the
// network call and is not rolled back on failure.
func (q *UpdateQueue) process(ctx context.Context, j job) (result AppendResult) {
	logger := q.logger.With("jobId", j.id, "orderCode", j.code.String())

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "append job panicked", "panic", r)
			result = Failed(j.id, j.code, fmt.Errorf("append job panicked: %v", r), nil)
		}
	}()

	images, err := q.state.Images(ctx, j.code)
	if err != nil {
		logger.ErrorContext(ctx, "append job could not read order state", "error", err)
		return Failed(j.id, j.code, err, nil)
	}

	merged := order.MergeImages(images, j.imageURL)
	q.state.SetImages(ctx, j.code, merged)

	persisted, err := q.appender.AppendImages(ctx, j.code, merged)
	if err != nil {
		logger.ErrorContext(ctx, "append job failed, keeping optimistic images", "error", err)
		return Failed(j.id, j.code, err, merged)
	}

	if persisted == nil {
		logger.InfoContext(ctx, "append job persisted", "images", len(merged))
		return Persisted(j.id, j.code, nil, merged)
	}

	q.state.Adopt(ctx, persisted)
	logger.InfoContext(ctx, "append job persisted", "images", len(persisted.Images()))
	return Persisted(j.id, j.code, persisted, persisted.Images())
}
