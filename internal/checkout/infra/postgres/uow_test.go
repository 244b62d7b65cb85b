package postgres_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	cartapp "github.com/dwikikusuma/shoping-cart/internal/cart/app"
	cartdomain "github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	cartadapter "github.com/dwikikusuma/shoping-cart/internal/cart/infra/adapter"
	cartpg "github.com/dwikikusuma/shoping-cart/internal/cart/infra/postgres"
	catalogapp "github.com/dwikikusuma/shoping-cart/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/shoping-cart/internal/catalog/domain"
	catalogpg "github.com/dwikikusuma/shoping-cart/internal/catalog/infra/postgres"
	checkoutapp "github.com/dwikikusuma/shoping-cart/internal/checkout/app"
	"github.com/dwikikusuma/shoping-cart/internal/checkout/domain"
	"github.com/dwikikusuma/shoping-cart/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/shoping-cart/internal/checkout/infra/postgres"
	"github.com/dwikikusuma/shoping-cart/internal/pricing"
	"github.com/dwikikusuma/shoping-cart/pkg/logger"
	"github.com/dwikikusuma/shoping-cart/pkg/postgres/pgtest"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type env struct {
	pool     *pgxpool.Pool
	choices  *catalogpg.ChoiceRepo
	carts    *cartapp.Service
	checkout *checkoutapp.Service
}

func newEnv(t *testing.T, seed ...catalogdomain.Choice) *env {
	t.Helper()
	pool := pgtest.Open(t)

	choices := catalogpg.NewChoiceRepo(pool)
	require.NoError(t, choices.Seed(context.Background(), seed...))

	catalog := catalogapp.NewService(choices)
	engine := pricing.NewEngine(catalog, pricing.Degrade, logger.Discard())
	carts := cartapp.NewService(cartpg.NewCartRepo(pool), engine, cartadapter.NewCatalogServiceReader(catalog))
	checkout := checkoutapp.NewService(
		adapter.NewCartServiceReader(carts),
		adapter.NewCatalogServiceReader(catalog),
		postgres.NewUnitOfWork(pool),
		engine,
		checkoutapp.WithLogger(logger.Discard()),
	)
	return &env{pool: pool, choices: choices, carts: carts, checkout: checkout}
}

func (e *env) stock(t *testing.T, id string) int64 {
	t.Helper()
	var q int64
	require.NoError(t, e.pool.QueryRow(context.Background(), `SELECT quantity FROM product_choices WHERE id = $1::uuid`, id).Scan(&q))
	return q
}

func (e *env) events(t *testing.T, cartID string) int {
	t.Helper()
	var n int
	require.NoError(t, e.pool.QueryRow(context.Background(), `SELECT count(*) FROM outbox WHERE key = $1`, cartID).Scan(&n))
	return n
}

func (e *env) cart(t *testing.T, customer string, lines map[string]int64) cartdomain.Cart {
	t.Helper()
	var cart cartdomain.Cart
	for id, qty := range lines {
		var err error
		cart, _, err = e.carts.AddItem(context.Background(), cartapp.AddItemInput{
			CustomerID: customer, ProductChoiceID: id, Quantity: qty, CartID: cart.ID,
		})
		require.NoError(t, err)
	}
	return cart
}

func choice(price, stock int64) catalogdomain.Choice {
	return catalogdomain.Choice{ID: uuid.NewString(), ProductID: uuid.NewString(), ProductName: "p", Price: price, Quantity: stock}
}

func TestCompleteCart_CommitsEverything(t *testing.T) {
	a, b := choice(1000, 5), choice(250, 4)
	e := newEnv(t, a, b)
	cart := e.cart(t, uuid.NewString(), map[string]int64{a.ID: 2, b.ID: 4})

	done, err := e.checkout.CompleteCart(context.Background(), cart.ID, "credit_card")
	require.NoError(t, err)
	assert.Equal(t, cartdomain.StatusCompleted, done.Status)
	assert.Equal(t, int64(3000), done.TotalPrice)

	assert.Equal(t, int64(3), e.stock(t, a.ID))
	assert.Equal(t, int64(0), e.stock(t, b.ID))
	assert.Equal(t, 1, e.events(t, cart.ID))

	stored, err := e.carts.CartByID(context.Background(), cart.ID)
	require.NoError(t, err)
	assert.Equal(t, cartdomain.PaymentPaid, stored.PaymentStatus)
	require.NotNil(t, stored.PaymentTimestamp)
}

func TestCompleteCart_RollsBackOnShortage(t *testing.T) {
	a, b := choice(1000, 5), choice(250, 1)
	e := newEnv(t, a, b)
	cart := e.cart(t, uuid.NewString(), map[string]int64{a.ID: 2, b.ID: 3})

	_, err := e.checkout.CompleteCart(context.Background(), cart.ID, "credit_card")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(5), e.stock(t, a.ID))
	assert.Equal(t, int64(1), e.stock(t, b.ID))
	assert.Zero(t, e.events(t, cart.ID))

	stored, err := e.carts.CartByID(context.Background(), cart.ID)
	require.NoError(t, err)
	assert.Equal(t, cartdomain.StatusActive, stored.Status)
}

func TestCompleteCart_ExactlyOneWinsLastUnit(t *testing.T) {
	last := choice(1000, 1)
	e := newEnv(t, last)

	const N = 8
	ids := make([]string, 0, N)
	for i := 0; i < N; i++ {
		ids = append(ids, e.cart(t, uuid.NewString(), map[string]int64{last.ID: 1}).ID)
	}

	var wins, shortages atomic.Int32
	var g errgroup.Group
	for _, id := range ids {
		id := id
		g.Go(func() error {
			_, err := e.checkout.CompleteCart(context.Background(), id, "credit_card")
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				shortages.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(N-1), shortages.Load())
	assert.Equal(t, int64(0), e.stock(t, last.ID))
}
