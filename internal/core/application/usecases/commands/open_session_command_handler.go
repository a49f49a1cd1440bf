package commands

import (
	"context"
)

// OpenSessionCommandHandler loads an order, its details and builds the working copy.
type OpenSessionCommandHandler struct {
	sessions SessionOpener
}

// NewOpenSessionCommandHandler creates a OpenSessionCommandHandler.
func NewOpenSessionCommandHandler(sessions SessionOpener) OpenSessionCommandHandler {
	return OpenSessionCommandHandler{sessions: sessions}
}

// Handle opens the session. Backend failures are returned; an already open
// session is refreshed on a best-effort basis.
func (h *OpenSessionCommandHandler) Handle(ctx context.Context, cmd OpenSessionCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	_, err := h.sessions.Open(ctx, cmd.OrderCode())
	return err
}
