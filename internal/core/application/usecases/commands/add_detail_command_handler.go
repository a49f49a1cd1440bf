package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// AddDetailCommandHandler adds an auto-priced detail with a placeholder id.
type AddDetailCommandHandler struct {
	sessions SessionFinder
}

// NewAddDetailCommandHandler creates an AddDetailCommandHandler.
func NewAddDetailCommandHandler(sessions SessionFinder) AddDetailCommandHandler {
	return AddDetailCommandHandler{sessions: sessions}
}

// Handle returns the placeholder id of the new detail.
func (h *AddDetailCommandHandler) Handle(_ context.Context, cmd AddDetailCommand) (kernel.DetailID, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	s, err := h.sessions.Get(cmd.OrderCode())
	if err != nil {
		return 0, err
	}
	return s.AddDetail(), nil
}
