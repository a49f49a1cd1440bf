package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrUpdateDetailCommandIsNotConstructed = errors.New(
		"UpdateDetailCommand must be created via NewUpdateDetailCommand constructor",
	)
	ErrDetailIDIsRequired = errs.NewValueIsRequiredError("detailId")
)

// UpdateDetailCommand applies a partial edit to one line item.
type UpdateDetailCommand struct { //nolint:recvcheck //using for validation
	orderCode kernel.OrderCode
	detailID  kernel.DetailID
	patch     order.DetailPatch

	guard guard.ConstructorGuard
}

// NewUpdateDetailCommand creates an UpdateDetailCommand from raw input.
// Returns the joined errors if the order code is blank or detailID is 0.
func NewUpdateDetailCommand(rawOrderCode string, detailID kernel.DetailID, patch order.DetailPatch) (UpdateDetailCommand, error) {
	cmd := UpdateDetailCommand{patch: patch, guard: guard.NewConstructorGuard()}

	code, codeErr := kernel.NewOrderCode(rawOrderCode)
	var idErr error
	if detailID == 0 {
		idErr = ErrDetailIDIsRequired
	}
	if err := errors.Join(codeErr, idErr); err != nil {
		return UpdateDetailCommand{}, err
	}

	cmd.orderCode = code
	cmd.detailID = detailID
	return cmd, nil
}

// Validate ensures the UpdateDetailCommand was created through its constructor.
func (c UpdateDetailCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDetailCommandIsNotConstructed)
}

// OrderCode returns the validated order code.
func (c UpdateDetailCommand) OrderCode() kernel.OrderCode {
	return c.orderCode
}

// DetailID returns the id of the targeted detail.
func (c UpdateDetailCommand) DetailID() kernel.DetailID {
	return c.detailID
}

// Patch returns the fields to change.
func (c UpdateDetailCommand) Patch() order.DetailPatch {
	return c.patch
}
