package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrOpenSessionCommandIsNotConstructed = errors.New(
	"OpenSessionCommand must be created via NewOpenSessionCommand constructor",
)

// OpenSessionCommand starts editing an order, or refreshes the session if
// one is already open.
type OpenSessionCommand struct { //nolint:recvcheck //using for validation
	orderCode kernel.OrderCode

	guard guard.ConstructorGuard
}

// NewOpenSessionCommand validates the order code.
func NewOpenSessionCommand(rawOrderCode string) (OpenSessionCommand, error) {
	code, err := kernel.NewOrderCode(rawOrderCode)
	if err != nil {
		return OpenSessionCommand{}, err
	}
	return OpenSessionCommand{orderCode: code, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the OpenSessionCommand was created through its constructor.
func (c OpenSessionCommand) Validate() error {
	return c.guard.Validate(ErrOpenSessionCommandIsNotConstructed)
}

// OrderCode returns the validated order code.
func (c OpenSessionCommand) OrderCode() kernel.OrderCode {
	return c.orderCode
}
