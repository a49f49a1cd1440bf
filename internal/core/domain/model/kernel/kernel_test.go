package kernel_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderCode(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		code, err := kernel.NewOrderCode("  ORD-42 \n")

		require.NoError(t, err)
		assert.Equal(t, "ORD-42", code.String())
		require.NoError(t, code.Validate())
	})

	t.Run("rejects blank codes", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "\t"} {
			_, err := kernel.NewOrderCode(raw)
			require.ErrorIs(t, err, errs.ErrValueIsRequired)
		}
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var code kernel.OrderCode
		require.ErrorIs(t, code.Validate(), errs.ErrValueIsRequired)
	})

	t.Run("equality by value", func(t *testing.T) {
		assert.True(t, kernel.MustOrderCode("A").IsEqual(kernel.MustOrderCode(" A ")))
		assert.False(t, kernel.MustOrderCode("A").IsEqual(kernel.MustOrderCode("B")))
	})

	t.Run("MustOrderCode panics on blank input", func(t *testing.T) {
		assert.Panics(t, func() { kernel.MustOrderCode(" ") })
	})
}

func TestDetailID(t *testing.T) {
	assert.True(t, kernel.DetailID(7).IsPersisted())
	assert.False(t, kernel.DetailID(7).IsPlaceholder())
	assert.True(t, kernel.DetailID(-3).IsPlaceholder())
	assert.False(t, kernel.DetailID(0).IsPersisted())
	assert.False(t, kernel.DetailID(0).IsPlaceholder())
}

func TestDetailIDAllocator(t *testing.T) {
	t.Run("hands out a monotonic negative sequence", func(t *testing.T) {
		a := kernel.NewDetailIDAllocator()

		assert.Equal(t, kernel.DetailID(-1), a.Next())
		assert.Equal(t, kernel.DetailID(-2), a.Next())
		assert.Equal(t, kernel.DetailID(-3), a.Next())
	})

	t.Run("skips reserved placeholders", func(t *testing.T) {
		a := kernel.NewDetailIDAllocator(10, -1, -2, -4)

		assert.Equal(t, kernel.DetailID(-3), a.Next())
		assert.Equal(t, kernel.DetailID(-5), a.Next())
	})

	t.Run("never repeats an id", func(t *testing.T) {
		a := kernel.NewDetailIDAllocator()
		seen := make(map[kernel.DetailID]bool)
		for range 1000 {
			id := a.Next()
			require.False(t, seen[id], "id %d handed out twice", id)
			require.True(t, id.IsPlaceholder())
			seen[id] = true
		}
	})
}
