package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/application/queue"
	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

func startedQueue(t *testing.T, registry *session.Registry, backend *MockOrderBackend) *queue.UpdateQueue {
	t.Helper()
	q := queue.NewUpdateQueue(registry, backend, 4, discardLogger())
	require.NoError(t, q.Start(t.Context()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = q.Shutdown(ctx)
	})
	return q
}

func TestAppendImageCommandHandler_Persisted(t *testing.T) {
	backend := new(MockOrderBackend)
	backend.On("GetOrder", mock.Anything, code).Return(mustOrder(t, "picked up", 0, 0, "a.jpg"), nil).Once()
	backend.On("AppendImages", mock.Anything, code, []string{"a.jpg", "https://cdn/b.jpg"}).
		Return(mustOrder(t, "picked up", 0, 0, "a.jpg", "https://cdn/b.jpg"), nil).Once()

	registry := session.NewRegistry(backend, nil, discardLogger())
	h := commands.NewAppendImageCommandHandler(startedQueue(t, registry, backend))

	cmd, err := commands.NewAppendImageCommand(rawCode, "https://cdn/b.jpg")
	require.NoError(t, err)
	result, err := h.Handle(t.Context(), cmd)
	require.NoError(t, err)

	assert.True(t, result.IsPersisted())
	assert.Equal(t, []string{"a.jpg", "https://cdn/b.jpg"}, result.Images())
	known, ok := registry.Known(code)
	require.True(t, ok)
	assert.Equal(t, []string{"a.jpg", "https://cdn/b.jpg"}, known.Images())
	backend.AssertExpectations(t)
}

func TestAppendImageCommandHandler_FailedJobIsAResult(t *testing.T) {
	backend := new(MockOrderBackend)
	backend.On("GetOrder", mock.Anything, code).Return(mustOrder(t, "picked up", 0, 0), nil).Once()
	backend.On("AppendImages", mock.Anything, code, []string{"https://cdn/b.jpg"}).
		Return(nil, errs.NewNetworkError("append images", 500, "")).Once()

	registry := session.NewRegistry(backend, nil, discardLogger())
	h := commands.NewAppendImageCommandHandler(startedQueue(t, registry, backend))

	cmd, err := commands.NewAppendImageCommand(rawCode, "https://cdn/b.jpg")
	require.NoError(t, err)
	result, err := h.Handle(t.Context(), cmd)
	require.NoError(t, err)

	assert.False(t, result.IsPersisted())
	assert.ErrorIs(t, result.Err(), errs.ErrNetwork)
	known, ok := registry.Known(code)
	require.True(t, ok)
	assert.Equal(t, []string{"https://cdn/b.jpg"}, known.Images(), "optimistic merge is kept")
}

type stuckQueue struct{}

func (stuckQueue) Enqueue(context.Context, kernel.OrderCode, string) (<-chan queue.AppendResult, error) {
	return make(chan queue.AppendResult), nil
}

func TestAppendImageCommandHandler_ContextEnds(t *testing.T) {
	h := commands.NewAppendImageCommandHandler(stuckQueue{})
	cmd, err := commands.NewAppendImageCommand(rawCode, "https://cdn/b.jpg")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	_, err = h.Handle(ctx, cmd)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCreatePaymentLinkCommandHandler(t *testing.T) {
	ctx := t.Context()
	payments := new(MockPaymentBackend)
	payments.On("CreatePaymentLink", ctx, code).Return("https://pay.example/abc", nil).Once()

	cmd, err := commands.NewCreatePaymentLinkCommand(rawCode)
	require.NoError(t, err)
	h := commands.NewCreatePaymentLinkCommandHandler(payments, discardLogger())

	link, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/abc", link)
	payments.AssertExpectations(t)
}

func TestCreatePaymentLinkCommandHandler_Failure(t *testing.T) {
	ctx := t.Context()
	payments := new(MockPaymentBackend)
	payments.On("CreatePaymentLink", ctx, code).Return("", errs.NewNetworkError("create payment link", 502, "")).Once()

	cmd, err := commands.NewCreatePaymentLinkCommand(rawCode)
	require.NoError(t, err)
	h := commands.NewCreatePaymentLinkCommandHandler(payments, discardLogger())

	_, err = h.Handle(ctx, cmd)
	assert.ErrorIs(t, err, errs.ErrNetwork)
}
