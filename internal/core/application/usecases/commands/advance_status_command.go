package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrAdvanceStatusCommandIsNotConstructed = errors.New(
	"AdvanceStatusCommand must be created via NewAdvanceStatusCommand constructor",
)

// AdvanceStatusCommand asks the backend to move an order to its next step.
type AdvanceStatusCommand struct { //nolint:recvcheck //using for validation
	orderCode kernel.OrderCode

	guard guard.ConstructorGuard
}

// NewAdvanceStatusCommand creates an AdvanceStatusCommand from raw input.
// Returns an error if the order code is blank.
func NewAdvanceStatusCommand(rawOrderCode string) (AdvanceStatusCommand, error) {
	code, err := kernel.NewOrderCode(rawOrderCode)
	if err != nil {
		return AdvanceStatusCommand{}, err
	}
	return AdvanceStatusCommand{orderCode: code, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the AdvanceStatusCommand was created through its constructor.
func (c AdvanceStatusCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceStatusCommandIsNotConstructed)
}

// OrderCode returns the validated order code.
func (c AdvanceStatusCommand) OrderCode() kernel.OrderCode {
	return c.orderCode
}
