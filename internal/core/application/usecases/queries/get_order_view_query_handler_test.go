package queries_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

var viewCode = kernel.MustOrderCode("ORD-7")

func viewOrder(t *testing.T) *order.Order {
	t.Helper()
	return mustOrder(t, order.Snapshot{
		Code:         "ORD-7",
		Status:       "checkout",
		TotalPrice:   500_000,
		UnpaidAmount: 200_000,
		Contact:      order.Contact{CustomerName: "Lan", Phone: "0900"},
		Images:       []string{"https://cdn/a.png"},
	})
}

func TestNewGetOrderViewQuery_RequiresCode(t *testing.T) {
	_, err := queries.NewGetOrderViewQuery("  ")

	require.ErrorIs(t, err, kernel.ErrOrderCodeIsRequired)
}

func TestGetOrderViewQueryHandler_RejectsZeroQuery(t *testing.T) {
	handler := queries.NewGetOrderViewQueryHandler(session.NewRegistry(new(MockOrderBackend), nil, discardLogger()))

	_, err := handler.Handle(t.Context(), queries.GetOrderViewQuery{})

	require.ErrorIs(t, err, queries.ErrGetOrderViewQueryIsNotConstructed)
}

func TestGetOrderViewQueryHandler_WithoutSession(t *testing.T) {
	ctx := t.Context()
	backend := new(MockOrderBackend)
	backend.On("GetOrder", ctx, viewCode).Return(viewOrder(t), nil).Once()
	handler := queries.NewGetOrderViewQueryHandler(session.NewRegistry(backend, nil, discardLogger()))

	query, err := queries.NewGetOrderViewQuery("ORD-7")
	require.NoError(t, err)

	view, err := handler.Handle(ctx, query)
	require.NoError(t, err)

	assert.False(t, view.Editing)
	assert.Nil(t, view.Totals)
	assert.Empty(t, view.Details)
	assert.Equal(t, "checkout", view.Order.Step)
	assert.Equal(t, 3, view.Order.StepIndex)
	assert.Equal(t, []string{"https://cdn/a.png"}, view.Order.Images)

	require.Len(t, view.Steps, 6)
	assert.Equal(t, order.StepStateDone, view.Steps[2].State)
	assert.Equal(t, order.StepStateActive, view.Steps[3].State)
	assert.Equal(t, order.StepStatePending, view.Steps[4].State)

	// a second view comes from the known state
	_, err = handler.Handle(ctx, query)
	require.NoError(t, err)
	backend.AssertExpectations(t)
}

func TestGetOrderViewQueryHandler_WithSession(t *testing.T) {
	ctx := t.Context()
	backend := new(MockOrderBackend)
	backend.On("GetOrder", ctx, viewCode).Return(viewOrder(t), nil).Once()
	backend.On("GetOrderDetails", ctx, viewCode).Return([]*order.Detail{
		order.RestoreDetail(order.DetailSnapshot{ID: 4, Price: 100_000, Quantity: 2, ContainerQuantity: 1}),
	}, nil).Once()
	registry := session.NewRegistry(backend, nil, discardLogger())

	s, err := registry.Open(ctx, viewCode)
	require.NoError(t, err)
	note := "leave at gate"
	s.UpdateOrderMeta(order.MetaPatch{Note: &note})
	require.NoError(t, s.RemoveDetail(4))

	handler := queries.NewGetOrderViewQueryHandler(registry)
	query, err := queries.NewGetOrderViewQuery("ORD-7")
	require.NoError(t, err)

	view, err := handler.Handle(ctx, query)
	require.NoError(t, err)

	assert.True(t, view.Editing)
	assert.Equal(t, "leave at gate", view.Order.Note)
	assert.Equal(t, "Lan", view.Order.CustomerName)
	require.Len(t, view.Details, 1)
	assert.True(t, view.Details[0].SoftDeleted)
	require.NotNil(t, view.Totals)
	assert.Equal(t, int64(-200_000), view.Totals.Delta)
	assert.Equal(t, int64(300_000), view.Totals.FinalTotal)
	assert.Equal(t, int64(0), view.Totals.NewUnpaid)
	backend.AssertExpectations(t)
}

func TestGetOrderViewQueryHandler_BackendFailure(t *testing.T) {
	ctx := t.Context()
	backend := new(MockOrderBackend)
	boom := errors.New("backend down")
	backend.On("GetOrder", ctx, viewCode).Return(nil, boom).Once()
	handler := queries.NewGetOrderViewQueryHandler(session.NewRegistry(backend, nil, discardLogger()))

	query, err := queries.NewGetOrderViewQuery("ORD-7")
	require.NoError(t, err)

	_, err = handler.Handle(ctx, query)

	require.ErrorIs(t, err, boom)
}
