package postgres

import (
	"context"

	cartdomain "github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	cartpg "github.com/dwikikusuma/shoping-cart/internal/cart/infra/postgres"
	catalogpg "github.com/dwikikusuma/shoping-cart/internal/catalog/infra/postgres"
	checkoutapp "github.com/dwikikusuma/shoping-cart/internal/checkout/app"
	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
	"github.com/dwikikusuma/shoping-cart/pkg/outbox"
	"github.com/dwikikusuma/shoping-cart/pkg/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitOfWork runs checkout against carts, product_choices and outbox in one
// database transaction.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx checkoutapp.Tx) error) error {
	return postgres.WithTx(ctx, u.pool, func(pgTx pgx.Tx) error {
		return fn(ctx, &tx{
			carts:   cartpg.NewCartRepo(pgTx),
			choices: catalogpg.NewChoiceRepo(pgTx),
			outbox:  outbox.NewPGStore(pgTx),
		})
	})
}

type tx struct {
	carts   *cartpg.CartRepo
	choices *catalogpg.ChoiceRepo
	outbox  *outbox.PGStore
}

func (t *tx) LockCart(ctx context.Context, cartID string) (cartdomain.Cart, error) {
	return t.carts.Lock(ctx, cartID)
}

func (t *tx) DecrementStock(ctx context.Context, choiceID string, qty int64) (int64, error) {
	return t.choices.DecrementStock(ctx, choiceID, qty)
}

func (t *tx) Prices(ctx context.Context, choiceIDs []string) (map[string]int64, error) {
	return t.choices.Prices(ctx, choiceIDs)
}

// SaveCart relies on the row lock taken by LockCart, so the version check
// cannot fail here.
func (t *tx) SaveCart(ctx context.Context, cart cartdomain.Cart) (cartdomain.Cart, error) {
	return t.carts.Update(ctx, cart)
}

func (t *tx) AddEvent(ctx context.Context, evt outbox.Event) error {
	return apperr.Storage("insert outbox event", t.outbox.Insert(ctx, evt))
}
