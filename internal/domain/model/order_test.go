package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestOrder_ItemsTotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Quantity: 2, PriceAtOrder: dec("10.00")},
		{Quantity: 1, PriceAtOrder: dec("5.50")},
		{Quantity: 3, PriceAtOrder: dec("0.10")},
	}}

	assert.True(t, dec("25.80").Equal(o.ItemsTotal()), "got %s", o.ItemsTotal())

	//保存値が古くても作り直す
	o.TotalPrice = dec("999")
	o.RecalculateTotal()
	assert.True(t, dec("25.80").Equal(o.TotalPrice))
}

func TestOrder_ItemsTotal_Empty(t *testing.T) {
	o := Order{}
	assert.True(t, o.ItemsTotal().IsZero())
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := ParseOrderStatus("completed")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusCompleted, st)

	st, ok = ParseOrderStatus(" PREPARING ")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusPreparing, st)

	_, ok = ParseOrderStatus("Shipped")
	assert.False(t, ok)
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusPreparing, true},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusReady, OrderStatusDelivering, true},
		{OrderStatusDelivering, OrderStatusCompleted, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusDelivering, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusPending, true},

		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusReady, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrder_MutableAndDeletable(t *testing.T) {
	for _, st := range OrderStatuses {
		o := Order{Status: st}
		assert.Equal(t, st == OrderStatusPending, o.ItemsMutable(), st)
		assert.Equal(t, st == OrderStatusPending || st == OrderStatusCancelled, o.Deletable(), st)
	}
}

func TestOrder_FindItem(t *testing.T) {
	o := Order{Items: []OrderItem{{ID: 3}, {ID: 7}}}

	it, ok := o.FindItem(7)
	assert.True(t, ok)
	assert.Equal(t, int64(7), it.ID)

	_, ok = o.FindItem(8)
	assert.False(t, ok)
}

func TestValidQuantity(t *testing.T) {
	assert.False(t, ValidQuantity(0))
	assert.True(t, ValidQuantity(1))
	assert.True(t, ValidQuantity(100))
	assert.False(t, ValidQuantity(101))
}
