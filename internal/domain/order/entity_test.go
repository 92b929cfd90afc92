package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusProcessing))
	assert.True(t, CanTransition(StatusProcessing, StatusCompleted))
	assert.True(t, CanTransition(StatusError, StatusPending))
	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusCancelled, StatusProcessing))
	assert.False(t, CanTransition(StatusPending, StatusCompleted))
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusError.Valid())
	assert.False(t, Status("shipped").Valid())
}

func TestItemCount(t *testing.T) {
	o := Order{Items: []Item{{Quantity: 2}, {Quantity: 3}}}
	assert.Equal(t, 5, o.ItemCount())
}

func TestMergeItems(t *testing.T) {
	merged, err := mergeItems([]ItemRequest{
		{ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(100)},
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, uint(1), merged[0].ProductID)
	assert.Equal(t, 5, merged[0].Quantity)
	assert.Equal(t, 1, merged[1].Quantity)

	_, err = mergeItems(nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = mergeItems([]ItemRequest{{ProductID: 1, Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = mergeItems([]ItemRequest{{ProductID: 1, Quantity: 60}, {ProductID: 1, Quantity: 40}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestBuildOrderClause(t *testing.T) {
	assert.Equal(t, "total_price asc, id DESC", buildOrderClause("total_price", "asc"))
	assert.Equal(t, "created_at desc, id DESC", buildOrderClause("; drop", "sideways"))
}

func TestPageTotalPages(t *testing.T) {
	assert.Equal(t, 2, (&Page{Total: 21, Limit: 20}).TotalPages())
}
