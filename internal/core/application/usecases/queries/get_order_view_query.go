// Package queries contains read-only operations over the known order state.
package queries

import (
	"errors"

	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetOrderViewQueryIsNotConstructed = errors.New(
		"GetOrderViewQuery must be created via NewGetOrderViewQuery constructor",
	)
)

// GetOrderViewQuery retrieves everything a client renders for one order:
// the order, its step progress and, while it is being edited, the working
// details and price summary.
//
// Example:
//
//	query, err := NewGetOrderViewQuery("ORD-1")
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s is at step %s\n", view.Order.OrderCode, view.Order.Step)
type GetOrderViewQuery struct {
	orderCode kernel.OrderCode

	guard guard.ConstructorGuard
}

// NewGetOrderViewQuery creates a GetOrderViewQuery from raw input.
// Returns an error if the order code is blank.
func NewGetOrderViewQuery(rawOrderCode string) (GetOrderViewQuery, error) {
	code, err := kernel.NewOrderCode(rawOrderCode)
	if err != nil {
		return GetOrderViewQuery{}, err
	}
	return GetOrderViewQuery{orderCode: code, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderViewQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderViewQueryIsNotConstructed)
}

// OrderCode returns the validated order code.
func (q GetOrderViewQuery) OrderCode() kernel.OrderCode {
	return q.orderCode
}

// GetOrderViewQueryResponse is the client view of one order.
// Details and Totals are empty unless Editing is true.
type GetOrderViewQueryResponse struct {
	Order   session.OrderPayload
	Steps   []StepView
	Editing bool
	Details []session.DetailView
	Totals  *services.Totals
}

// StepView is one step of the lifecycle with its state for the order.
type StepView struct {
	Key   string
	Index int
	State order.StepState
}
