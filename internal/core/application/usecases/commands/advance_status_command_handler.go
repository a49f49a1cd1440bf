package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

const operationAdvance = "advance-status"

// AdvanceStatusCommandHandler requests the next step from the backend.
//
// Business rules:
//   - The status is never changed locally; after the call succeeds the order
//     and its details are refetched from the backend
//   - One advance per order at a time; a concurrent request gets a BusyError
//   - A delivered order is refused without a backend call
//   - On failure state is untouched and the caller may retry
type AdvanceStatusCommandHandler struct {
	registry OrderTracker
	backend  ports.OrderBackend
	flights  *SingleFlight
	logger   *slog.Logger
}

// NewAdvanceStatusCommandHandler creates an AdvanceStatusCommandHandler.
func NewAdvanceStatusCommandHandler(
	registry OrderTracker,
	backend ports.OrderBackend,
	flights *SingleFlight,
	logger *slog.Logger,
) AdvanceStatusCommandHandler {
	return AdvanceStatusCommandHandler{
		registry: registry,
		backend:  backend,
		flights:  flights,
		logger:   logger.With("component", "advance_status_handler"),
	}
}

// Handle returns the refetched order. If the advance succeeded but the refetch
// failed, the last known order is returned with a nil error.
func (h *AdvanceStatusCommandHandler) Handle(ctx context.Context, cmd AdvanceStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	code := cmd.OrderCode()
	release, err := h.flights.Acquire(operationAdvance, code.String())
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := h.registry.Order(ctx, code)
	if err != nil {
		return nil, err
	}
	if err = current.Step().ValidateAdvance(); err != nil {
		return nil, err
	}

	if err = h.backend.AdvanceStatus(ctx, code); err != nil {
		h.logger.ErrorContext(ctx, "advance status failed",
			"orderCode", code.String(),
			"step", current.Step().Key(),
			"error", err,
		)
		return nil, err
	}

	refreshed, err := h.registry.Reload(ctx, code)
	if err != nil {
		h.logger.WarnContext(ctx, "status advanced but refetch failed",
			"orderCode", code.String(),
			"error", err,
		)
		return current, nil
	}

	h.logger.InfoContext(ctx, "status advanced",
		"orderCode", code.String(),
		"from", current.Step().Key(),
		"to", refreshed.Step().Key(),
	)
	return refreshed, nil
}
