package app

import (
	"context"

	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
)

type CartRepo interface {
	Get(ctx context.Context, cartID string) (domain.Cart, error)
	// FindOpenByCustomer returns the customer's non-terminal cart or domain.ErrCartNotFound.
	FindOpenByCustomer(ctx context.Context, customerID string) (domain.Cart, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Cart, error)
	// Create fails with domain.ErrOpenCartExists when the customer already has an open cart.
	Create(ctx context.Context, cart domain.Cart) (domain.Cart, error)
	// Update is a compare-and-swap on cart.Version; a stale version yields domain.ErrConcurrentUpdate.
	Update(ctx context.Context, cart domain.Cart) (domain.Cart, error)
}

type Pricer interface {
	Reprice(ctx context.Context, cart *domain.Cart) error
}

type CatalogReader interface {
	Details(ctx context.Context, productChoiceIDs []string) (map[string]ChoiceDetails, error)
}
