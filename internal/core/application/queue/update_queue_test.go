package queue_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/application/queue"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

type memoryState struct {
	mu     sync.Mutex
	images map[kernel.OrderCode][]string
	err    error
}

func newMemoryState() *memoryState {
	return &memoryState{images: make(map[kernel.OrderCode][]string)}
}

func (s *memoryState) Images(_ context.Context, code kernel.OrderCode) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]string(nil), s.images[code]...), nil
}

func (s *memoryState) SetImages(_ context.Context, code kernel.OrderCode, images []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[code] = append([]string(nil), images...)
}

func (s *memoryState) Adopt(_ context.Context, o *order.Order) {
	s.SetImages(context.Background(), o.Code(), o.Images())
}

func (s *memoryState) get(code kernel.OrderCode) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.images[code]...)
}

type call struct {
	code   kernel.OrderCode
	images []string
}

// fakeAppender records calls and echoes the images back as a persisted order.
type fakeAppender struct {
	mu       sync.Mutex
	calls    []call
	inFlight int
	maxSeen  int

	gate   chan struct{}
	failOn map[string]error
}

func (a *fakeAppender) AppendImages(_ context.Context, code kernel.OrderCode, images []string) (*order.Order, error) {
	a.mu.Lock()
	a.calls = append(a.calls, call{code: code, images: append([]string(nil), images...)})
	a.inFlight++
	a.maxSeen = max(a.maxSeen, a.inFlight)
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.inFlight--
		a.mu.Unlock()
	}()

	if a.gate != nil {
		<-a.gate
	}
	if err, ok := a.failOn[images[len(images)-1]]; ok {
		return nil, err
	}
	return order.RestoreOrder(order.Snapshot{Code: code.String(), Images: images})
}

func (a *fakeAppender) recorded() []call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]call(nil), a.calls...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startQueue(t *testing.T, state queue.OrderState, appender queue.ImageAppender, capacity int) *queue.UpdateQueue {
	t.Helper()
	q := queue.NewUpdateQueue(state, appender, capacity, discardLogger())
	require.NoError(t, q.Start(t.Context()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = q.Shutdown(ctx)
	})
	return q
}

func await(t *testing.T, ch <-chan queue.AppendResult) queue.AppendResult {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "result channel closed without a result")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("append job did not finish")
		return queue.AppendResult{}
	}
}

var (
	orderA = kernel.MustOrderCode("ORD-A")
	orderB = kernel.MustOrderCode("ORD-B")
)

func TestUpdateQueuePersists(t *testing.T) {
	state := newMemoryState()
	state.SetImages(t.Context(), orderA, []string{"a.jpg"})
	q := startQueue(t, state, &fakeAppender{}, 4)

	ch, err := q.Enqueue(t.Context(), orderA, "b.jpg")
	require.NoError(t, err)
	result := await(t, ch)

	require.True(t, result.IsPersisted())
	require.NoError(t, result.Err())
	assert.Equal(t, orderA, result.OrderCode())
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, result.Images())
	o, ok := result.Order()
	require.True(t, ok)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, o.Images())
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, state.get(orderA))
}

func TestUpdateQueueOrdering(t *testing.T) {
	gate := make(chan struct{})
	appender := &fakeAppender{gate: gate}
	q := startQueue(t, newMemoryState(), appender, 16)

	var results []<-chan queue.AppendResult
	for i := range 6 {
		code := orderA
		if i%2 == 1 {
			code = orderB
		}
		ch, err := q.Enqueue(t.Context(), code, fmt.Sprintf("%d.jpg", i))
		require.NoError(t, err)
		results = append(results, ch)
	}
	close(gate)
	for _, ch := range results {
		require.True(t, await(t, ch).IsPersisted())
	}

	calls := appender.recorded()
	require.Len(t, calls, 6)
	for i, c := range calls {
		assert.Equal(t, fmt.Sprintf("%d.jpg", i), c.images[len(c.images)-1])
	}
	assert.Equal(t, 1, appender.maxSeen, "at most one append in flight")
}

func TestUpdateQueueConcurrentAppendsSameOrder(t *testing.T) {
	state := newMemoryState()
	q := startQueue(t, state, &fakeAppender{}, 64)

	const n = 20
	var wg sync.WaitGroup
	results := make(chan queue.AppendResult, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch, err := q.Enqueue(context.Background(), orderA, fmt.Sprintf("img-%d.jpg", i))
			if err != nil {
				results <- queue.Failed(uuid.Nil, orderA, err, nil)
				return
			}
			results <- <-ch
		}()
	}
	wg.Wait()
	close(results)

	for r := range results {
		require.NoError(t, r.Err())
	}

	images := state.get(orderA)
	assert.Len(t, images, n)
	seen := make(map[string]struct{}, n)
	for _, img := range images {
		_, dup := seen[img]
		assert.False(t, dup, "duplicate image %s", img)
		seen[img] = struct{}{}
	}
}

func TestUpdateQueueFailureDoesNotHaltOrRollBack(t *testing.T) {
	state := newMemoryState()
	failure := errs.NewNetworkError("append images", 500, "boom")
	appender := &fakeAppender{failOn: map[string]error{"bad.jpg": failure}}
	q := startQueue(t, state, appender, 4)

	bad, err := q.Enqueue(t.Context(), orderA, "bad.jpg")
	require.NoError(t, err)
	good, err := q.Enqueue(t.Context(), orderA, "good.jpg")
	require.NoError(t, err)

	failed := await(t, bad)
	assert.False(t, failed.IsPersisted())
	assert.ErrorIs(t, failed.Err(), errs.ErrNetwork)
	assert.Equal(t, []string{"bad.jpg"}, failed.Images())
	_, ok := failed.Order()
	assert.False(t, ok)

	ok2 := await(t, good)
	assert.True(t, ok2.IsPersisted())
	assert.Equal(t, []string{"bad.jpg", "good.jpg"}, state.get(orderA))
}

func TestUpdateQueueStateReadFailure(t *testing.T) {
	state := newMemoryState()
	state.err = errors.New("order not loaded")
	appender := &fakeAppender{}
	q := startQueue(t, state, appender, 4)

	ch, err := q.Enqueue(t.Context(), orderA, "a.jpg")
	require.NoError(t, err)
	result := await(t, ch)

	assert.False(t, result.IsPersisted())
	assert.Nil(t, result.Images())
	assert.Empty(t, appender.recorded())
}

func TestUpdateQueueStartTwice(t *testing.T) {
	q := startQueue(t, newMemoryState(), &fakeAppender{}, 1)
	assert.ErrorIs(t, q.Start(t.Context()), queue.ErrQueueAlreadyRunning)
}

func TestUpdateQueueEnqueueBeforeStart(t *testing.T) {
	q := queue.NewUpdateQueue(newMemoryState(), &fakeAppender{}, 1, discardLogger())
	_, err := q.Enqueue(t.Context(), orderA, "a.jpg")
	assert.ErrorIs(t, err, queue.ErrQueueNotRunning)
}

func TestUpdateQueueEnqueueRequiresOrderCode(t *testing.T) {
	q := startQueue(t, newMemoryState(), &fakeAppender{}, 1)
	_, err := q.Enqueue(t.Context(), kernel.OrderCode{}, "a.jpg")
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestUpdateQueueShutdownDrains(t *testing.T) {
	gate := make(chan struct{})
	appender := &fakeAppender{gate: gate}
	q := queue.NewUpdateQueue(newMemoryState(), appender, 8, discardLogger())
	require.NoError(t, q.Start(t.Context()))

	var results []<-chan queue.AppendResult
	for i := range 3 {
		ch, err := q.Enqueue(t.Context(), orderA, fmt.Sprintf("%d.jpg", i))
		require.NoError(t, err)
		results = append(results, ch)
	}

	shutdownErr := make(chan error, 1)
	go func() {
		shutdownErr <- q.Shutdown(context.Background())
	}()

	time.Sleep(50 * time.Millisecond)
	_, err := q.Enqueue(t.Context(), orderA, "late.jpg")
	require.ErrorIs(t, err, queue.ErrQueueClosed)

	close(gate)
	require.NoError(t, <-shutdownErr)
	for _, ch := range results {
		assert.True(t, await(t, ch).IsPersisted())
	}
	assert.Len(t, appender.recorded(), 3)
	assert.ErrorIs(t, q.Start(t.Context()), queue.ErrQueueClosed)
}

func TestUpdateQueueShutdownTimeout(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	q := queue.NewUpdateQueue(newMemoryState(), &fakeAppender{gate: gate}, 1, discardLogger())
	require.NoError(t, q.Start(t.Context()))

	_, err := q.Enqueue(t.Context(), orderA, "a.jpg")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Shutdown(ctx), context.DeadlineExceeded)
}

func TestUpdateQueueFullBlocksUntilContextEnds(t *testing.T) {
	gate := make(chan struct{})
	appender := &fakeAppender{gate: gate}
	q := startQueue(t, newMemoryState(), appender, 1)
	defer close(gate)

	// the first job occupies the worker, the second fills the buffer
	_, err := q.Enqueue(t.Context(), orderA, "1.jpg")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(appender.recorded()) == 1 }, time.Second, time.Millisecond)
	_, err = q.Enqueue(t.Context(), orderA, "2.jpg")
	require.NoError(t, err)
	assert.Equal(t, 1, q.Pending())

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = q.Enqueue(ctx, orderA, "3.jpg")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
