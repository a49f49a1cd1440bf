package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderWithDetails is an order together with its line items.
type OrderWithDetails struct {
	Order   *order.Order
	Details []*order.Detail
}

// SubmitPayload is the full-replacement update sent when an editing session is submitted.
type SubmitPayload struct {
	Order   order.Snapshot
	Details []order.DetailSnapshot
}

// OrderBackend is the authoritative source of orders. Every call is a single
// round-trip; none is retried.
type OrderBackend interface {
	// GetOrder fetches the order header.
	GetOrder(ctx context.Context, code kernel.OrderCode) (*order.Order, error)

	// GetOrderDetails fetches the order's line items in backend order.
	GetOrderDetails(ctx context.Context, code kernel.OrderCode) ([]*order.Detail, error)

	// PutOrderWithDetails replaces the order and its line items.
	// When the response carries no order or details, the payload is echoed back.
	PutOrderWithDetails(ctx context.Context, code kernel.OrderCode, payload SubmitPayload) (OrderWithDetails, error)

	// AdvanceStatus asks the backend to move the order to its next step.
	AdvanceStatus(ctx context.Context, code kernel.OrderCode) error

	// AppendImages replaces the order's image list. The returned order is nil
	// when the response does not include one.
	AppendImages(ctx context.Context, code kernel.OrderCode, images []string) (*order.Order, error)
}

// PaymentBackend issues payment links for orders.
type PaymentBackend interface {
	CreatePaymentLink(ctx context.Context, code kernel.OrderCode) (string, error)
}

// EmployeeOrdersBackend lists orders assigned to an employee.
type EmployeeOrdersBackend interface {
	GetActiveOrders(ctx context.Context, employeeCode string) ([]*order.Order, error)
}
