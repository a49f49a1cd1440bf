package commands

import (
	"context"

	"fulfillment/internal/core/application/queue"
)

// AppendImageCommandHandler enqueues the append and waits for its result.
// If ctx ends first the job still runs to completion in the queue.
type AppendImageCommandHandler struct {
	queue ImageQueue
}

// NewAppendImageCommandHandler creates an AppendImageCommandHandler.
func NewAppendImageCommandHandler(q ImageQueue) AppendImageCommandHandler {
	return AppendImageCommandHandler{queue: q}
}

// Handle returns the job result. A failed job is reported through the result,
// not the error, so the caller can inspect the stale optimistic images.
func (h *AppendImageCommandHandler) Handle(ctx context.Context, cmd AppendImageCommand) (queue.AppendResult, error) {
	if err := cmd.Validate(); err != nil {
		return queue.AppendResult{}, err
	}

	done, err := h.queue.Enqueue(ctx, cmd.OrderCode(), cmd.ImageURL())
	if err != nil {
		return queue.AppendResult{}, err
	}

	select {
	case result := <-done:
		return result, nil
	case <-ctx.Done():
		return queue.AppendResult{}, ctx.Err()
	}
}
