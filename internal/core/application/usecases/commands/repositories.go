// Package commands contains the operations that change order state.
// Every command follows the same pattern: a validated command object built
// by its constructor and a handler that executes it against the session
// registry and the backend.
package commands

import (
	"context"

	"fulfillment/internal/core/application/queue"
	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// Collaborators of the command handlers. *session.Registry and
// *queue.UpdateQueue implement them.
type (
	// SessionOpener starts or refreshes editing sessions.
	SessionOpener interface {
		Open(ctx context.Context, code kernel.OrderCode) (*session.EditSession, error)
	}

	// SessionFinder returns open editing sessions.
	SessionFinder interface {
		Get(code kernel.OrderCode) (*session.EditSession, error)
	}

	// OrderTracker exposes the known state of orders and accepts new
	// authoritative state.
	OrderTracker interface {
		Order(ctx context.Context, code kernel.OrderCode) (*order.Order, error)
		Reload(ctx context.Context, code kernel.OrderCode) (*order.Order, error)
		AdoptSubmitted(ctx context.Context, sent ports.SubmitPayload, result ports.OrderWithDetails)
	}

	// SubmitRegistry is what the submit handler needs from the registry.
	SubmitRegistry interface {
		SessionFinder
		OrderTracker
	}

	// ImageQueue accepts image-append jobs.
	ImageQueue interface {
		Enqueue(ctx context.Context, code kernel.OrderCode, imageURL string) (<-chan queue.AppendResult, error)
	}
)
