package ports

import "context"

// Order event types.
const (
	EventOrderImages  = "order.images"
	EventOrderUpdated = "order.updated"
)

// OrderEvent announces a change of the known state of an order.
type OrderEvent struct {
	Type      string `json:"type"`
	OrderCode string `json:"orderCode"`
	Payload   any    `json:"payload,omitempty"`
}

// EventPublisher fans order events out to interested clients.
// Publish must not block on slow consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent)
}
