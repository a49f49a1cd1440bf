package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/ports"
)

type CreatePaymentLinkCommandHandler struct {
	payments ports.PaymentBackend
	logger   *slog.Logger
}

// NewCreatePaymentLinkCommandHandler creates a CreatePaymentLinkCommandHandler.
func NewCreatePaymentLinkCommandHandler(payments ports.PaymentBackend, logger *slog.Logger) CreatePaymentLinkCommandHandler {
	return CreatePaymentLinkCommandHandler{
		payments: payments,
		logger:   logger.With("component", "payment_link_handler"),
	}
}

// Handle returns the payment URL issued by the backend.
func (h *CreatePaymentLinkCommandHandler) Handle(ctx context.Context, cmd CreatePaymentLinkCommand) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	link, err := h.payments.CreatePaymentLink(ctx, cmd.OrderCode())
	if err != nil {
		h.logger.ErrorContext(ctx, "create payment link failed", "orderCode", cmd.OrderCode().String(), "error", err)
		return "", err
	}
	return link, nil
}
