package domain

import (
	"math"
	"testing"
	"time"

	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newCart(t *testing.T) Cart {
	t.Helper()
	c, err := NewCart("customer-1", "choice-a", 3, now)
	require.NoError(t, err)
	return c
}

func TestNewCart(t *testing.T) {
	c := newCart(t)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, StatusPending, c.Status)
	assert.Equal(t, PaymentNone, c.PaymentMethod)
	assert.Equal(t, PaymentNotPaid, c.PaymentStatus)
	assert.Nil(t, c.PaymentTimestamp)
	assert.Equal(t, "customer-1", c.CreatorID)
	assert.Equal(t, "customer-1", c.LastOpID)
	assert.True(t, c.TramStatus)
	require.Len(t, c.Items, 1)
	assert.NotEmpty(t, c.Items[0].ID)

	_, err := NewCart("customer-1", "choice-a", 0, now)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAddItemUpsertsByChoice(t *testing.T) {
	c := newCart(t)
	firstID := c.Items[0].ID

	require.NoError(t, c.AddItem("choice-a", 2))
	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(5), c.Items[0].Quantity)
	assert.Equal(t, firstID, c.Items[0].ID)

	require.NoError(t, c.AddItem("choice-b", 1))
	require.Len(t, c.Items, 2)
	assert.Equal(t, "choice-b", c.Items[1].ProductChoiceID)

	for _, q := range []int64{0, -1} {
		err := c.AddItem("choice-c", q)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	}
	assert.Len(t, c.Items, 2)
}

func TestSetQuantity(t *testing.T) {
	c := newCart(t)

	require.NoError(t, c.SetQuantity("choice-a", 7))
	assert.Equal(t, int64(7), c.Items[0].Quantity)

	assert.ErrorIs(t, c.SetQuantity("choice-a", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.SetQuantity("choice-a", -2), ErrInvalidQuantity)
	assert.Equal(t, int64(7), c.Items[0].Quantity)

	err := c.SetQuantity("missing", 1)
	assert.ErrorIs(t, err, ErrLineItemNotFound)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestQuantityIsCapped(t *testing.T) {
	_, err := NewCart("customer-1", "choice-a", MaxQuantity+1, now)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	c := newCart(t)
	tests := []struct {
		name string
		qty  int64
	}{
		{"max int64", math.MaxInt64},
		{"large", math.MaxInt64 / 1000},
		{"just over the cap", MaxQuantity - 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.AddItem("choice-a", tt.qty)
			assert.ErrorIs(t, err, ErrInvalidQuantity)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
			assert.Equal(t, int64(3), c.Items[0].Quantity)
		})
	}

	require.NoError(t, c.AddItem("choice-a", MaxQuantity-3))
	assert.Equal(t, MaxQuantity, c.Items[0].Quantity)
	assert.ErrorIs(t, c.AddItem("choice-a", 1), ErrInvalidQuantity)

	assert.ErrorIs(t, c.AddItem("choice-b", MaxQuantity+1), ErrInvalidQuantity)
	assert.Len(t, c.Items, 1)

	assert.ErrorIs(t, c.SetQuantity("choice-a", math.MaxInt64), ErrInvalidQuantity)
	assert.Equal(t, MaxQuantity, c.Items[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	c := newCart(t)
	require.NoError(t, c.AddItem("choice-b", 1))

	assert.ErrorIs(t, c.RemoveItem("missing"), ErrLineItemNotFound)
	assert.Len(t, c.Items, 2)

	require.NoError(t, c.RemoveItem("choice-a"))
	require.Len(t, c.Items, 1)
	assert.Equal(t, "choice-b", c.Items[0].ProductChoiceID)
}

func TestClosedCartIsNotEditable(t *testing.T) {
	for _, s := range []Status{StatusReady, StatusProcessing, StatusCompleted, StatusCancelled} {
		t.Run(string(s), func(t *testing.T) {
			c := newCart(t)
			c.Status = s
			assert.ErrorIs(t, c.AddItem("choice-a", 1), ErrCartNotEditable)
			assert.ErrorIs(t, c.SetQuantity("choice-a", 1), ErrCartNotEditable)
			assert.ErrorIs(t, c.RemoveItem("choice-a"), ErrCartNotEditable)
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusActive, true},
		{StatusActive, StatusActive, true},
		{StatusActive, StatusPending, false},
		{StatusActive, StatusReady, true},
		{StatusReady, StatusProcessing, true},
		{StatusProcessing, StatusReady, false},
		{StatusPending, StatusCompleted, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusReady, StatusCancelled, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusActive, false},
		{StatusCompleted, StatusCompleted, false},
		{"", StatusActive, false},
		{StatusActive, "bogus", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCheckCheckout(t *testing.T) {
	c := newCart(t)
	assert.NoError(t, c.CheckCheckout())

	c.Status = ""
	assert.ErrorIs(t, c.CheckCheckout(), ErrCartNotCheckoutable)

	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		c.Status = s
		err := c.CheckCheckout()
		assert.ErrorIs(t, err, ErrCartNotCheckoutable)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	}

	c.Status = StatusActive
	c.Items = nil
	assert.ErrorIs(t, c.CheckCheckout(), ErrEmptyCart)
}

func TestComplete(t *testing.T) {
	c := newCart(t)
	later := now.Add(time.Hour)

	require.NoError(t, c.Complete(PaymentCreditCard, later))
	assert.Equal(t, StatusCompleted, c.Status)
	assert.Equal(t, PaymentCreditCard, c.PaymentMethod)
	assert.Equal(t, PaymentPaid, c.PaymentStatus)
	require.NotNil(t, c.PaymentTimestamp)
	assert.Equal(t, later, *c.PaymentTimestamp)
	assert.Equal(t, later, c.UpdatedAt)

	assert.ErrorIs(t, c.Complete(PaymentCreditCard, later), ErrCartNotCheckoutable)
}

func TestCancel(t *testing.T) {
	c := newCart(t)
	require.NoError(t, c.Cancel("customer-1", now))
	assert.Equal(t, StatusCancelled, c.Status)
	assert.ErrorIs(t, c.Cancel("customer-1", now), ErrCartNotCancellable)
}

func TestCloneIsDeep(t *testing.T) {
	c := newCart(t)
	require.NoError(t, c.Complete(PaymentCreditCard, now))

	cp := c.Clone()
	cp.Items[0].Quantity = 99
	*cp.PaymentTimestamp = now.Add(time.Hour)

	assert.Equal(t, int64(3), c.Items[0].Quantity)
	assert.Equal(t, now, *c.PaymentTimestamp)
}

func TestDistinctChoiceIDs(t *testing.T) {
	items := []LineItem{
		{ProductChoiceID: "b"}, {ProductChoiceID: "a"}, {ProductChoiceID: "b"},
	}
	assert.Equal(t, []string{"b", "a"}, DistinctChoiceIDs(items))
}
