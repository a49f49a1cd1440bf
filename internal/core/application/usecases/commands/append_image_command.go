package commands

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrAppendImageCommandIsNotConstructed = errors.New(
	"AppendImageCommand must be created via NewAppendImageCommand constructor",
)

// AppendImageCommand attaches a confirmation photo to an order.
type AppendImageCommand struct { //nolint:recvcheck //using for validation
	orderCode kernel.OrderCode
	imageURL  string

	guard guard.ConstructorGuard
}

// NewAppendImageCommand requires an absolute http(s) image URL.
func NewAppendImageCommand(rawOrderCode, imageURL string) (AppendImageCommand, error) {
	code, codeErr := kernel.NewOrderCode(rawOrderCode)
	imageURL = strings.TrimSpace(imageURL)
	urlErr := validateImageURL(imageURL)
	if err := errors.Join(codeErr, urlErr); err != nil {
		return AppendImageCommand{}, err
	}

	return AppendImageCommand{orderCode: code, imageURL: imageURL, guard: guard.NewConstructorGuard()}, nil
}

func validateImageURL(raw string) error {
	if raw == "" {
		return errs.NewValueIsRequiredError("imageUrl")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("imageUrl", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errs.NewValueIsInvalidErrorWithCause("imageUrl", fmt.Errorf("%q is not an absolute http(s) url", raw))
	}
	return nil
}

// Validate ensures the AppendImageCommand was created through its constructor.
func (c AppendImageCommand) Validate() error {
	return c.guard.Validate(ErrAppendImageCommandIsNotConstructed)
}

// OrderCode returns the validated order code.
func (c AppendImageCommand) OrderCode() kernel.OrderCode {
	return c.orderCode
}

// ImageURL returns the URL of the captured image.
func (c AppendImageCommand) ImageURL() string {
	return c.imageURL
}
