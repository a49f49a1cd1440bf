package commands

import (
	"context"
)

type UpdateOrderMetaCommandHandler struct {
	sessions SessionFinder
}

// NewUpdateOrderMetaCommandHandler creates an UpdateOrderMetaCommandHandler.
func NewUpdateOrderMetaCommandHandler(sessions SessionFinder) UpdateOrderMetaCommandHandler {
	return UpdateOrderMetaCommandHandler{sessions: sessions}
}

// Handle applies the metadata patch to the open session of the order.
// Returns ObjectNotFoundError if no session is open.
func (h *UpdateOrderMetaCommandHandler) Handle(_ context.Context, cmd UpdateOrderMetaCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	s, err := h.sessions.Get(cmd.OrderCode())
	if err != nil {
		return err
	}
	s.UpdateOrderMeta(cmd.Patch())
	return nil
}
