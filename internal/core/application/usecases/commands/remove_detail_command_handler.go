package commands

import (
	"context"
)

// RemoveDetailCommandHandler soft-deletes persisted details (both quantities
// become zero) and drops session-only details.
type RemoveDetailCommandHandler struct {
	sessions SessionFinder
}

// NewRemoveDetailCommandHandler creates a RemoveDetailCommandHandler.
func NewRemoveDetailCommandHandler(sessions SessionFinder) RemoveDetailCommandHandler {
	return RemoveDetailCommandHandler{sessions: sessions}
}

// Handle applies cmd to the open session of its order.
// Returns ObjectNotFoundError if no session or no such detail exists.
func (h *RemoveDetailCommandHandler) Handle(_ context.Context, cmd RemoveDetailCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	s, err := h.sessions.Get(cmd.OrderCode())
	if err != nil {
		return err
	}
	return s.RemoveDetail(cmd.DetailID())
}
