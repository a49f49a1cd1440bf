package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

func TestRestoreOrder(t *testing.T) {
	o, err := order.RestoreOrder(order.Snapshot{
		Code:         " ORD-1 ",
		Status:       "Wait Pick Up",
		TotalPrice:   1_000_000,
		UnpaidAmount: 400_000,
		Images:       []string{"a.jpg", "", "b.jpg", "a.jpg"},
	})
	require.NoError(t, err)
	require.NoError(t, o.Validate())

	assert.Equal(t, "ORD-1", o.Code().String())
	assert.Equal(t, "Wait Pick Up", o.Status())
	assert.Equal(t, order.StepWaitPickUp, o.Step())
	assert.Equal(t, int64(1_000_000), o.TotalPrice())
	assert.Equal(t, int64(400_000), o.UnpaidAmount())
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, o.Images())
}

func TestRestoreOrderRequiresCode(t *testing.T) {
	_, err := order.RestoreOrder(order.Snapshot{Status: "pending"})
	assert.ErrorIs(t, err, kernel.ErrOrderCodeIsRequired)
}

func TestOrderValidateZeroValue(t *testing.T) {
	var o order.Order
	assert.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)
}

func TestOrderMergeImages(t *testing.T) {
	o, err := order.RestoreOrder(order.Snapshot{Code: "ORD-1", Images: []string{"a.jpg"}})
	require.NoError(t, err)

	got := o.MergeImages("b.jpg", "a.jpg", " b.jpg ")
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, got)
	assert.Equal(t, got, o.Images())

	got[0] = "mutated"
	assert.Equal(t, "a.jpg", o.Images()[0])
}

func TestMergeImagesLeavesInputUntouched(t *testing.T) {
	existing := []string{"a.jpg"}
	merged := order.MergeImages(existing, "b.jpg")

	assert.Equal(t, []string{"a.jpg"}, existing)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, merged)
}

func TestOrderApplyMeta(t *testing.T) {
	o, err := order.RestoreOrder(order.Snapshot{
		Code:    "ORD-1",
		Note:    "old",
		Contact: order.Contact{CustomerName: "Linh", Phone: "0900"},
	})
	require.NoError(t, err)

	note := "handle with care"
	phone := "0911"
	o.ApplyMeta(order.MetaPatch{Note: &note, Phone: &phone})

	assert.Equal(t, "handle with care", o.Note())
	assert.Equal(t, "0911", o.Contact().Phone)
	assert.Equal(t, "Linh", o.Contact().CustomerName)
}

func TestOrderSnapshotRoundTrip(t *testing.T) {
	snap := order.Snapshot{
		Code:          "ORD-1",
		Status:        "verify",
		PaymentStatus: "unpaid",
		TotalPrice:    10,
		UnpaidAmount:  5,
		Images:        []string{"a.jpg"},
		ShelfQuantity: 2,
	}
	o, err := order.RestoreOrder(snap)
	require.NoError(t, err)

	assert.Equal(t, snap, o.Snapshot())
}

func TestOrderClone(t *testing.T) {
	o, err := order.RestoreOrder(order.Snapshot{Code: "ORD-1", Images: []string{"a.jpg"}})
	require.NoError(t, err)

	clone := o.Clone()
	clone.MergeImages("b.jpg")

	assert.Equal(t, []string{"a.jpg"}, o.Images())
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, clone.Images())
}
