package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/ports"
)

const operationSubmit = "submit"

// SubmitOrderCommandHandler sends the working copy to the backend and adopts
// the response as the new baseline.
//
// Business rules:
//   - One submit per order at a time; a concurrent submit gets a BusyError
//   - On failure nothing changes, so the user can retry with the same edits
type SubmitOrderCommandHandler struct {
	registry SubmitRegistry
	backend  ports.OrderBackend
	flights  *SingleFlight
	logger   *slog.Logger
}

// NewSubmitOrderCommandHandler creates a submit handler. flights must be shared
// with every handler that guards the same orders.
func NewSubmitOrderCommandHandler(
	registry SubmitRegistry,
	backend ports.OrderBackend,
	flights *SingleFlight,
	logger *slog.Logger,
) SubmitOrderCommandHandler {
	return SubmitOrderCommandHandler{
		registry: registry,
		backend:  backend,
		flights:  flights,
		logger:   logger.With("component", "submit_order_handler"),
	}
}

// Handle builds the payload from the working copy, sends it and adopts the
// response. Edits made while the request is in flight survive the adoption.
//
// Returns:
//   - BusyError if a submit of the same order is running
//   - ObjectNotFoundError if no session is open for the order
//   - the backend error unchanged; the session is then left as it was
func (h *SubmitOrderCommandHandler) Handle(ctx context.Context, cmd SubmitOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	code := cmd.OrderCode()
	release, err := h.flights.Acquire(operationSubmit, code.String())
	if err != nil {
		return err
	}
	defer release()

	s, err := h.registry.Get(code)
	if err != nil {
		return err
	}

	payload := s.BuildPayload()
	result, err := h.backend.PutOrderWithDetails(ctx, code, payload)
	if err != nil {
		h.logger.ErrorContext(ctx, "submit failed", "orderCode", code.String(), "error", err)
		return err
	}

	h.registry.AdoptSubmitted(ctx, payload, result)
	h.logger.InfoContext(ctx, "order submitted",
		"orderCode", code.String(),
		"totalPrice", payload.Order.TotalPrice,
		"unpaidAmount", payload.Order.UnpaidAmount,
		"details", len(payload.Details),
	)
	return nil
}
