package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrSubmitOrderCommandIsNotConstructed = errors.New(
	"SubmitOrderCommand must be created via NewSubmitOrderCommand constructor",
)

// SubmitOrderCommand persists the working copy of an order as a full replacement.
type SubmitOrderCommand struct { //nolint:recvcheck //using for validation
	orderCode kernel.OrderCode

	guard guard.ConstructorGuard
}

// NewSubmitOrderCommand fails with kernel.ErrOrderCodeIsRequired for a blank code.
func NewSubmitOrderCommand(rawOrderCode string) (SubmitOrderCommand, error) {
	code, err := kernel.NewOrderCode(rawOrderCode)
	if err != nil {
		return SubmitOrderCommand{}, err
	}
	return SubmitOrderCommand{orderCode: code, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the SubmitOrderCommand was created through its constructor.
func (c SubmitOrderCommand) Validate() error {
	return c.guard.Validate(ErrSubmitOrderCommandIsNotConstructed)
}

// OrderCode returns the validated order code.
func (c SubmitOrderCommand) OrderCode() kernel.OrderCode {
	return c.orderCode
}
