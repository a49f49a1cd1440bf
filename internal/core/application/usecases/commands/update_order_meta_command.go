package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrUpdateOrderMetaCommandIsNotConstructed = errors.New(
	"UpdateOrderMetaCommand must be created via NewUpdateOrderMetaCommand constructor",
)

// UpdateOrderMetaCommand edits the note, contact and dates of an order being edited.
type UpdateOrderMetaCommand struct { //nolint:recvcheck //using for validation
	orderCode kernel.OrderCode
	patch     order.MetaPatch

	guard guard.ConstructorGuard
}

// NewUpdateOrderMetaCommand creates an UpdateOrderMetaCommand from raw input.
// Returns an error if the order code is blank.
func NewUpdateOrderMetaCommand(rawOrderCode string, patch order.MetaPatch) (UpdateOrderMetaCommand, error) {
	code, err := kernel.NewOrderCode(rawOrderCode)
	if err != nil {
		return UpdateOrderMetaCommand{}, err
	}
	return UpdateOrderMetaCommand{orderCode: code, patch: patch, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the UpdateOrderMetaCommand was created through its constructor.
func (c UpdateOrderMetaCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderMetaCommandIsNotConstructed)
}

// OrderCode returns the validated order code.
func (c UpdateOrderMetaCommand) OrderCode() kernel.OrderCode {
	return c.orderCode
}

// Patch returns the fields to change.
func (c UpdateOrderMetaCommand) Patch() order.MetaPatch {
	return c.patch
}
