package queries_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

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

type MockEmployeeOrdersBackend struct{ mock.Mock }

func (m *MockEmployeeOrdersBackend) GetActiveOrders(ctx context.Context, employeeCode string) ([]*order.Order, error) {
	args := m.Called(ctx, employeeCode)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustOrder(t *testing.T, snapshot order.Snapshot) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(snapshot)
	require.NoError(t, err)
	return o
}
