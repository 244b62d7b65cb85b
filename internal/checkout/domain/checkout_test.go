package domain

import (
	"math"
	"testing"

	cartdomain "github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockPlan(t *testing.T) {
	plan, err := StockPlan([]cartdomain.LineItem{
		{ProductChoiceID: "c", Quantity: 1},
		{ProductChoiceID: "a", Quantity: 2},
		{ProductChoiceID: "c", Quantity: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, []StockLine{
		{ProductChoiceID: "a", Quantity: 2},
		{ProductChoiceID: "c", Quantity: 5},
	}, plan)
}

func TestStockPlanRejectsLinesThatWouldAddStock(t *testing.T) {
	tests := []struct {
		name  string
		items []cartdomain.LineItem
	}{
		{"zero", []cartdomain.LineItem{{ProductChoiceID: "a", Quantity: 0}}},
		{"negative", []cartdomain.LineItem{{ProductChoiceID: "a", Quantity: 3}, {ProductChoiceID: "b", Quantity: -1}}},
		{"wrapped sum", []cartdomain.LineItem{
			{ProductChoiceID: "a", Quantity: math.MaxInt64},
			{ProductChoiceID: "a", Quantity: 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := StockPlan(tt.items)
			require.ErrorIs(t, err, cartdomain.ErrInvalidQuantity)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
			assert.Nil(t, plan)
		})
	}
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod(" credit_card ")
	require.NoError(t, err)
	assert.Equal(t, cartdomain.PaymentCreditCard, m)

	for _, in := range []string{"", "none", "paypal"} {
		_, err := ParsePaymentMethod(in)
		assert.ErrorIs(t, err, ErrUnsupportedPaymentMethod, in)
	}
}
