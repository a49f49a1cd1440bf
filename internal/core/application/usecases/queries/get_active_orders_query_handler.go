package queries

import (
	"context"
	"slices"
	"strings"
	"time"

	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

var depositDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// GetActiveOrdersQueryHandler fetches an employee's orders and keeps those in
// pending, wait-pick-up, verify, checkout or picked-up.
type GetActiveOrdersQueryHandler struct {
	backend ports.EmployeeOrdersBackend
}

// NewGetActiveOrdersQueryHandler creates a GetActiveOrdersQueryHandler.
func NewGetActiveOrdersQueryHandler(backend ports.EmployeeOrdersBackend) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{backend: backend}
}

// Handle lists the employee's active orders, newest deposit first, split into
// planned and processing buckets.
func (h *GetActiveOrdersQueryHandler) Handle(ctx context.Context, query GetActiveOrdersQuery) (GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetActiveOrdersQueryResponse{}, err
	}

	orders, err := h.backend.GetActiveOrders(ctx, query.EmployeeCode())
	if err != nil {
		return GetActiveOrdersQueryResponse{}, err
	}

	slices.SortStableFunc(orders, func(a, b *order.Order) int {
		return parseDepositDate(b.DepositDate()).Compare(parseDepositDate(a.DepositDate()))
	})

	response := GetActiveOrdersQueryResponse{
		Planned:    []session.OrderPayload{},
		Processing: []session.OrderPayload{},
	}
	for _, o := range orders {
		switch {
		case o.Step().IsPlanned():
			response.Planned = append(response.Planned, session.NewOrderPayload(o))
		case o.Step().IsProcessing():
			response.Processing = append(response.Processing, session.NewOrderPayload(o))
		}
	}
	response.PlannedCount = len(response.Planned)
	response.ProcessingCount = len(response.Processing)
	return response, nil
}

// parseDepositDate returns the zero time for blank or unparsable dates, which
// sorts them last.
func parseDepositDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range depositDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
