package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrRemoveDetailCommandIsNotConstructed = errors.New(
	"RemoveDetailCommand must be created via NewRemoveDetailCommand constructor",
)

// RemoveDetailCommand removes one line item from an open session.
type RemoveDetailCommand struct { //nolint:recvcheck //using for validation
	orderCode kernel.OrderCode
	detailID  kernel.DetailID

	guard guard.ConstructorGuard
}

// NewRemoveDetailCommand creates a RemoveDetailCommand from raw input.
// Returns the joined errors if the order code is blank or detailID is 0.
func NewRemoveDetailCommand(rawOrderCode string, detailID kernel.DetailID) (RemoveDetailCommand, error) {
	code, codeErr := kernel.NewOrderCode(rawOrderCode)
	var idErr error
	if detailID == 0 {
		idErr = ErrDetailIDIsRequired
	}
	if err := errors.Join(codeErr, idErr); err != nil {
		return RemoveDetailCommand{}, err
	}

	return RemoveDetailCommand{orderCode: code, detailID: detailID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the RemoveDetailCommand was created through its constructor.
func (c RemoveDetailCommand) Validate() error {
	return c.guard.Validate(ErrRemoveDetailCommandIsNotConstructed)
}

// OrderCode returns the validated order code.
func (c RemoveDetailCommand) OrderCode() kernel.OrderCode {
	return c.orderCode
}

// DetailID returns the id of the targeted detail.
func (c RemoveDetailCommand) DetailID() kernel.DetailID {
	return c.detailID
}
