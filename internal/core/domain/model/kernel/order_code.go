package kernel

import (
	"strings"

	"fulfillment/internal/pkg/errs"
)

// ErrOrderCodeIsRequired is returned for an empty or blank order code.
var ErrOrderCodeIsRequired = errs.NewValueIsRequiredError("orderCode")

// OrderCode is the backend's immutable identifier of an order.
// The zero value is invalid.
type OrderCode struct {
	value string
}

// NewOrderCode trims surrounding whitespace and rejects an empty result.
func NewOrderCode(raw string) (OrderCode, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return OrderCode{}, ErrOrderCodeIsRequired
	}
	return OrderCode{value: v}, nil
}

// MustOrderCode is NewOrderCode for literals known to be valid.
func MustOrderCode(raw string) OrderCode {
	c, err := NewOrderCode(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate reports whether the code was built by NewOrderCode.
func (c OrderCode) Validate() error {
	if c.value == "" {
		return ErrOrderCodeIsRequired
	}
	return nil
}

// String returns the order code as the backend spells it.
func (c OrderCode) String() string {
	return c.value
}

// IsEqual compares two codes by value.
func (c OrderCode) IsEqual(other OrderCode) bool {
	return c.value == other.value
}
