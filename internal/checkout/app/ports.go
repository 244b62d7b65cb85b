package app

import (
	"context"

	cartdomain "github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/dwikikusuma/shoping-cart/pkg/outbox"
)

type CartReader interface {
	GetCart(ctx context.Context, cartID string) (cartdomain.Cart, error)
}

type Product struct {
	ChoiceID string
	Name     string
	Price    int64
	Stock    int64
}

type CatalogReader interface {
	GetProducts(ctx context.Context, choiceIDs []string) (map[string]Product, error)
}

// Tx is the transactional view of the cart and catalog stores. Every call
// made through one Tx commits or rolls back together.
type Tx interface {
	// LockCart loads the cart and holds it until the transaction ends.
	LockCart(ctx context.Context, cartID string) (cartdomain.Cart, error)
	// DecrementStock subtracts qty and returns the remaining stock, which may
	// be negative; the caller decides whether to abort.
	DecrementStock(ctx context.Context, choiceID string, qty int64) (int64, error)
	Prices(ctx context.Context, choiceIDs []string) (map[string]int64, error)
	SaveCart(ctx context.Context, cart cartdomain.Cart) (cartdomain.Cart, error)
	AddEvent(ctx context.Context, evt outbox.Event) error
}

type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
