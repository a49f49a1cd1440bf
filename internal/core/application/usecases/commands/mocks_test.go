package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

type MockOrderBackend struct{ mock.Mock }

func (m *MockOrderBackend) GetOrder(ctx context.Context, code kernel.OrderCode) (*order.Order, error) {
	args := m.Called(ctx, code)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderBackend) GetOrderDetails(ctx context.Context, code kernel.OrderCode) ([]*order.Detail, error) {
	args := m.Called(ctx, code)
	d, _ := args.Get(0).([]*order.Detail)
	return d, args.Error(1)
}

func (m *MockOrderBackend) PutOrderWithDetails(
	ctx context.Context,
	code kernel.OrderCode,
	payload ports.SubmitPayload,
) (ports.OrderWithDetails, error) {
	args := m.Called(ctx, code, payload)
	result, _ := args.Get(0).(ports.OrderWithDetails)
	return result, args.Error(1)
}

func (m *MockOrderBackend) AdvanceStatus(ctx context.Context, code kernel.OrderCode) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockOrderBackend) AppendImages(ctx context.Context, code kernel.OrderCode, images []string) (*order.Order, error) {
	args := m.Called(ctx, code, images)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockPaymentBackend struct{ mock.Mock }

func (m *MockPaymentBackend) CreatePaymentLink(ctx context.Context, code kernel.OrderCode) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const rawCode = "ORD-1"

var code = kernel.MustOrderCode(rawCode)

func mustOrder(t *testing.T, status string, total, unpaid int64, images ...string) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(order.Snapshot{
		Code:         rawCode,
		Status:       status,
		TotalPrice:   total,
		UnpaidAmount: unpaid,
		Images:       images,
	})
	require.NoError(t, err)
	return o
}

func baselineDetails() []*order.Detail {
	return []*order.Detail{order.RestoreDetail(order.DetailSnapshot{
		ID:                11,
		ContainerTypeID:   1,
		ContainerQuantity: 1,
		Price:             1_000_000,
		Quantity:          1,
	})}
}

// openedRegistry returns a registry with an open session on ORD-1 at verify.
func openedRegistry(t *testing.T, backend *MockOrderBackend) *session.Registry {
	t.Helper()
	ctx := t.Context()
	backend.On("GetOrder", ctx, code).Return(mustOrder(t, "verify", 1_000_000, 300_000), nil).Once()
	backend.On("GetOrderDetails", ctx, code).Return(baselineDetails(), nil).Once()

	registry := session.NewRegistry(backend, nil, discardLogger())
	_, err := registry.Open(ctx, code)
	require.NoError(t, err)
	return registry
}
