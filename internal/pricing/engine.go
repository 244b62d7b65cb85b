// Package pricing derives a cart's total price from its line items and the
// current catalog prices.
package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
)

type PriceReader interface {
	Prices(ctx context.Context, productChoiceIDs []string) (map[string]int64, error)
}

// MissingPolicy decides what a line item without a catalog price contributes.
type MissingPolicy int

const (
	// Degrade prices unknown choices at 0 and logs a warning.
	Degrade MissingPolicy = iota
	// Strict fails the computation with ErrPriceNotFound.
	Strict
)

func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "degrade":
		return Degrade, nil
	case "strict":
		return Strict, nil
	}
	return Degrade, fmt.Errorf("unknown missing price policy %q", s)
}

var (
	ErrPriceNotFound = fmt.Errorf("catalog price %w", apperr.ErrNotFound)
	ErrOutOfRange    = fmt.Errorf("%w: price is out of range", apperr.ErrInvalidInput)
)

// LineTotal returns price × quantity, refusing negative inputs and overflow.
func LineTotal(price, quantity int64) (int64, error) {
	switch {
	case price < 0:
		return 0, fmt.Errorf("%w: negative unit price %d", ErrOutOfRange, price)
	case quantity <= 0:
		return 0, fmt.Errorf("%w: quantity %d", domain.ErrInvalidQuantity, quantity)
	case price > math.MaxInt64/quantity:
		return 0, fmt.Errorf("%w: %d × %d overflows", ErrOutOfRange, price, quantity)
	}
	return price * quantity, nil
}

// AddTotal adds a non-negative line total to a running total.
func AddTotal(total, line int64) (int64, error) {
	if line > math.MaxInt64-total {
		return 0, fmt.Errorf("%w: total overflows", ErrOutOfRange)
	}
	return total + line, nil
}

type Engine struct {
	prices PriceReader
	policy MissingPolicy
	log    *slog.Logger
}

func NewEngine(prices PriceReader, policy MissingPolicy, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{prices: prices, policy: policy, log: log}
}

// WithReader returns a copy of e reading prices from r, e.g. a
// transaction-bound catalog view.
func (e *Engine) WithReader(r PriceReader) *Engine {
	cp := *e
	cp.prices = r
	return &cp
}

// Total returns Σ price × quantity over items using one bulk price lookup.
// It has no side effects.
func (e *Engine) Total(ctx context.Context, items []domain.LineItem) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	ids := domain.DistinctChoiceIDs(items)
	prices, err := e.prices.Prices(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("load prices: %w", err)
	}

	var total int64
	for _, it := range items {
		if it.Quantity <= 0 {
			return 0, fmt.Errorf("%w: %s has %d", domain.ErrInvalidQuantity, it.ProductChoiceID, it.Quantity)
		}
		price, ok := prices[it.ProductChoiceID]
		if !ok {
			if e.policy == Strict {
				return 0, fmt.Errorf("%w: %s", ErrPriceNotFound, it.ProductChoiceID)
			}
			e.log.WarnContext(ctx, "no catalog price for product choice, pricing at 0",
				slog.String("product_choice_id", it.ProductChoiceID))
			continue
		}
		line, err := LineTotal(price, it.Quantity)
		if err != nil {
			return 0, fmt.Errorf("price %s: %w", it.ProductChoiceID, err)
		}
		if total, err = AddTotal(total, line); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Reprice sets cart.TotalPrice. It is the explicit pre-save hook of every
// line-item mutation.
func (e *Engine) Reprice(ctx context.Context, cart *domain.Cart) error {
	total, err := e.Total(ctx, cart.Items)
	if err != nil {
		return err
	}
	cart.TotalPrice = total
	return nil
}
