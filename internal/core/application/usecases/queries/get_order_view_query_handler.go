package queries

import (
	"context"

	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderViewSource is the part of the session registry the view needs.
type OrderViewSource interface {
	Order(ctx context.Context, code kernel.OrderCode) (*order.Order, error)
	Get(code kernel.OrderCode) (*session.EditSession, error)
}

// GetOrderViewQueryHandler assembles the client view from the known order
// state and, if present, the editing session.
type GetOrderViewQueryHandler struct {
	source OrderViewSource
}

// NewGetOrderViewQueryHandler creates a GetOrderViewQueryHandler.
func NewGetOrderViewQueryHandler(source OrderViewSource) GetOrderViewQueryHandler {
	return GetOrderViewQueryHandler{source: source}
}

// Handle fetches the order from the backend only when it is not known yet.
func (h *GetOrderViewQueryHandler) Handle(ctx context.Context, query GetOrderViewQuery) (GetOrderViewQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderViewQueryResponse{}, err
	}

	known, err := h.source.Order(ctx, query.OrderCode())
	if err != nil {
		return GetOrderViewQueryResponse{}, err
	}

	response := GetOrderViewQueryResponse{
		Order:   session.NewOrderPayload(known),
		Steps:   stepViews(known.Step()),
		Details: []session.DetailView{},
	}

	s, err := h.source.Get(query.OrderCode())
	if err != nil {
		// not being edited
		return response, nil
	}

	working := s.Order()
	contact := working.Contact()
	response.Order.CustomerName = contact.CustomerName
	response.Order.Phone = contact.Phone
	response.Order.Email = contact.Email
	response.Order.Address = contact.Address
	response.Order.Note = working.Note()
	response.Order.DepositDate = working.DepositDate()
	response.Order.ReturnDate = working.ReturnDate()

	totals := s.Totals()
	response.Editing = true
	response.Details = s.Details()
	response.Totals = &totals
	return response, nil
}

func stepViews(current order.Step) []StepView {
	progress := current.Progress()
	views := make([]StepView, len(progress))
	for i, p := range progress {
		views[i] = StepView{Key: p.Key, Index: p.Index, State: p.State}
	}
	return views
}
