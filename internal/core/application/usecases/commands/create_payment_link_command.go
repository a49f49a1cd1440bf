package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrCreatePaymentLinkCommandIsNotConstructed = errors.New(
	"CreatePaymentLinkCommand must be created via NewCreatePaymentLinkCommand constructor",
)

// CreatePaymentLinkCommand requests a checkout link for an order.
type CreatePaymentLinkCommand struct { //nolint:recvcheck //using for validation
	orderCode kernel.OrderCode

	guard guard.ConstructorGuard
}

// NewCreatePaymentLinkCommand creates a CreatePaymentLinkCommand from raw input.
// Returns an error if the order code is blank.
func NewCreatePaymentLinkCommand(rawOrderCode string) (CreatePaymentLinkCommand, error) {
	code, err := kernel.NewOrderCode(rawOrderCode)
	if err != nil {
		return CreatePaymentLinkCommand{}, err
	}
	return CreatePaymentLinkCommand{orderCode: code, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the CreatePaymentLinkCommand was created through its constructor.
func (c CreatePaymentLinkCommand) Validate() error {
	return c.guard.Validate(ErrCreatePaymentLinkCommandIsNotConstructed)
}

// OrderCode returns the validated order code.
func (c CreatePaymentLinkCommand) OrderCode() kernel.OrderCode {
	return c.orderCode
}
