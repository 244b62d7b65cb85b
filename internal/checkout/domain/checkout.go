package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	cartdomain "github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
)

const TopicCartCompleted = "cart.completed"

var (
	ErrUnsupportedPaymentMethod = fmt.Errorf("%w: unsupported payment method", apperr.ErrInvalidInput)
	ErrInsufficientStock        = fmt.Errorf("product choice has %w", apperr.ErrInsufficientStock)
)

// ParsePaymentMethod accepts the methods checkout can settle. Only credit
// cards are supported; "none" is a cart default, not a way to pay.
func ParsePaymentMethod(s string) (cartdomain.PaymentMethod, error) {
	switch cartdomain.PaymentMethod(strings.TrimSpace(s)) {
	case cartdomain.PaymentCreditCard:
		return cartdomain.PaymentCreditCard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPaymentMethod, s)
}

// StockLine is the quantity checkout takes from one product choice.
type StockLine struct {
	ProductChoiceID string
	Quantity        int64
}

// StockPlan folds the cart's line items per product choice and orders them by
// id, so every checkout locks catalog rows in the same order. A line that
// would not take stock away fails the plan.
func StockPlan(items []cartdomain.LineItem) ([]StockLine, error) {
	byChoice := make(map[string]int64, len(items))
	for _, it := range items {
		qty := byChoice[it.ProductChoiceID]
		if it.Quantity <= 0 || it.Quantity > math.MaxInt64-qty {
			return nil, fmt.Errorf("%w: %s has %d", cartdomain.ErrInvalidQuantity, it.ProductChoiceID, it.Quantity)
		}
		byChoice[it.ProductChoiceID] = qty + it.Quantity
	}
	out := make([]StockLine, 0, len(byChoice))
	for id, qty := range byChoice {
		out = append(out, StockLine{ProductChoiceID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductChoiceID < out[j].ProductChoiceID })
	return out, nil
}

type CompletedItem struct {
	ProductChoiceID string `json:"product_choice_id"`
	Quantity        int64  `json:"quantity"`
}

// CartCompleted is published once a checkout commits.
type CartCompleted struct {
	CartID        string          `json:"cart_id"`
	CustomerID    string          `json:"customer_id"`
	PaymentMethod string          `json:"payment_method"`
	TotalPrice    int64           `json:"total_price"`
	Items         []CompletedItem `json:"items"`
	CompletedAt   time.Time       `json:"completed_at"`
}

func NewCartCompleted(c cartdomain.Cart) CartCompleted {
	items := make([]CompletedItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, CompletedItem{ProductChoiceID: it.ProductChoiceID, Quantity: it.Quantity})
	}
	evt := CartCompleted{
		CartID:        c.ID,
		CustomerID:    c.CustomerID,
		PaymentMethod: string(c.PaymentMethod),
		TotalPrice:    c.TotalPrice,
		Items:         items,
		CompletedAt:   c.UpdatedAt,
	}
	if c.PaymentTimestamp != nil {
		evt.CompletedAt = *c.PaymentTimestamp
	}
	return evt
}

type QuoteLine struct {
	ProductChoiceID string
	ProductName     string
	Quantity        int64
	UnitPrice       int64
	LineTotal       int64
	Available       int64
	// Found is false when the choice is no longer in the catalog.
	Found bool
}

func (l QuoteLine) InStock() bool {
	return l.Found && l.Available >= l.Quantity
}

// Quote previews what checking out the cart would charge right now.
type Quote struct {
	CartID string
	Lines  []QuoteLine
	Total  int64
}

// Fulfillable reports whether every line can be served from current stock.
func (q Quote) Fulfillable() bool {
	for _, l := range q.Lines {
		if !l.InStock() {
			return false
		}
	}
	return len(q.Lines) > 0
}
