package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrAddDetailCommandIsNotConstructed = errors.New(
	"AddDetailCommand must be created via NewAddDetailCommand constructor",
)

// AddDetailCommand appends a new line item to an open session.
type AddDetailCommand struct { //nolint:recvcheck //using for validation
	orderCode kernel.OrderCode

	guard guard.ConstructorGuard
}

// NewAddDetailCommand creates an AddDetailCommand from raw input.
// Returns an error if the order code is blank.
func NewAddDetailCommand(rawOrderCode string) (AddDetailCommand, error) {
	code, err := kernel.NewOrderCode(rawOrderCode)
	if err != nil {
		return AddDetailCommand{}, err
	}
	return AddDetailCommand{orderCode: code, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the AddDetailCommand was created through its constructor.
func (c AddDetailCommand) Validate() error {
	return c.guard.Validate(ErrAddDetailCommandIsNotConstructed)
}

// OrderCode returns the validated order code.
func (c AddDetailCommand) OrderCode() kernel.OrderCode {
	return c.orderCode
}
