package commands

import (
	"context"
)

// UpdateDetailCommandHandler edits a working detail. Changing the container or
// product types reprices it from the catalog; setting a price makes it manual.
type UpdateDetailCommandHandler struct {
	sessions SessionFinder
}

// NewUpdateDetailCommandHandler creates an UpdateDetailCommandHandler.
func NewUpdateDetailCommandHandler(sessions SessionFinder) UpdateDetailCommandHandler {
	return UpdateDetailCommandHandler{sessions: sessions}
}

// Handle applies cmd to the open session of its order.
// Returns ObjectNotFoundError if no session or no such detail exists.
func (h *UpdateDetailCommandHandler) Handle(_ context.Context, cmd UpdateDetailCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	s, err := h.sessions.Get(cmd.OrderCode())
	if err != nil {
		return err
	}
	return s.UpdateDetail(cmd.DetailID(), cmd.Patch())
}
