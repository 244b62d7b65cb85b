package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dwikikusuma/shoping-cart/internal/cart/app"
	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/dwikikusuma/shoping-cart/internal/cart/infra/adapter"
	"github.com/dwikikusuma/shoping-cart/internal/cart/infra/postgres"
	catalogapp "github.com/dwikikusuma/shoping-cart/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/shoping-cart/internal/catalog/domain"
	catalogpg "github.com/dwikikusuma/shoping-cart/internal/catalog/infra/postgres"
	"github.com/dwikikusuma/shoping-cart/internal/pricing"
	"github.com/dwikikusuma/shoping-cart/pkg/logger"
	"github.com/dwikikusuma/shoping-cart/pkg/postgres/pgtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestCartRepo_RoundTrip(t *testing.T) {
	pool := pgtest.Open(t)
	repo := postgres.NewCartRepo(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	cart, err := domain.NewCart(uuid.NewString(), uuid.NewString(), 3, now)
	require.NoError(t, err)
	cart.TotalPrice = 4500

	created, err := repo.Create(ctx, cart)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Version)

	got, err := repo.Get(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, got.ID)
	assert.Equal(t, cart.Items, got.Items)
	assert.Equal(t, int64(4500), got.TotalPrice)
	assert.True(t, now.Equal(got.CreatedAt))
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Nil(t, got.PaymentTimestamp)

	open, err := repo.FindOpenByCustomer(ctx, cart.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, open.ID)

	_, err = repo.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCartRepo_OneOpenCartPerCustomer(t *testing.T) {
	pool := pgtest.Open(t)
	repo := postgres.NewCartRepo(pool)
	ctx := context.Background()
	customer := uuid.NewString()

	first, err := domain.NewCart(customer, uuid.NewString(), 1, time.Now())
	require.NoError(t, err)
	first, err = repo.Create(ctx, first)
	require.NoError(t, err)

	second, err := domain.NewCart(customer, uuid.NewString(), 1, time.Now())
	require.NoError(t, err)
	_, err = repo.Create(ctx, second)
	assert.ErrorIs(t, err, domain.ErrOpenCartExists)

	require.NoError(t, first.Cancel(customer, time.Now()))
	_, err = repo.Update(ctx, first)
	require.NoError(t, err)

	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	carts, err := repo.ListByCustomer(ctx, customer)
	require.NoError(t, err)
	assert.Len(t, carts, 2)
}

func TestCartRepo_UpdateComparesVersion(t *testing.T) {
	pool := pgtest.Open(t)
	repo := postgres.NewCartRepo(pool)
	ctx := context.Background()

	cart, err := domain.NewCart(uuid.NewString(), uuid.NewString(), 1, time.Now())
	require.NoError(t, err)
	cart, err = repo.Create(ctx, cart)
	require.NoError(t, err)

	stale := cart.Clone()
	require.NoError(t, cart.AddItem(uuid.NewString(), 2))
	saved, err := repo.Update(ctx, cart)
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.Version)

	_, err = repo.Update(ctx, stale)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	ghost, err := domain.NewCart(uuid.NewString(), uuid.NewString(), 1, time.Now())
	require.NoError(t, err)
	ghost.Version = 1
	_, err = repo.Update(ctx, ghost)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func newPGService(t *testing.T) (*app.Service, catalogdomain.Choice) {
	t.Helper()
	pool := pgtest.Open(t)

	choices := catalogpg.NewChoiceRepo(pool)
	choice := catalogdomain.Choice{ID: uuid.NewString(), ProductID: uuid.NewString(), ProductName: "Tee", Price: 1000, Quantity: 100}
	require.NoError(t, choices.Seed(context.Background(), choice))

	catalog := catalogapp.NewService(choices)
	engine := pricing.NewEngine(catalog, pricing.Degrade, logger.Discard())
	svc := app.NewService(postgres.NewCartRepo(pool), engine, adapter.NewCatalogServiceReader(catalog), app.WithMaxRetries(200))
	return svc, choice
}

func TestCart_ConcurrentFirstAdd_SingleOpenCart(t *testing.T) {
	svc, choice := newPGService(t)
	customer := uuid.NewString()

	const N = 30
	ids := make(map[string]struct{})
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			cart, _, err := svc.AddItem(ctx, app.AddItemInput{CustomerID: customer, ProductChoiceID: choice.ID, Quantity: 1})
			if err != nil {
				return err
			}
			mu.Lock()
			ids[cart.ID] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, ids, 1)

	open, err := svc.GetCart(context.Background(), customer)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, int64(N), open.Items[0].Quantity)
	assert.Equal(t, int64(N*1000), open.TotalPrice)
}

func TestCart_ConcurrentAddItemIncrement(t *testing.T) {
	svc, choice := newPGService(t)
	customer := uuid.NewString()

	cart, _, err := svc.AddItem(context.Background(), app.AddItemInput{CustomerID: customer, ProductChoiceID: choice.ID, Quantity: 1})
	require.NoError(t, err)

	const N = 50
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, _, err := svc.AddItem(ctx, app.AddItemInput{
				CustomerID: customer, ProductChoiceID: choice.ID, Quantity: 1, CartID: cart.ID,
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	got, err := svc.CartByID(context.Background(), cart.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(N+1), got.Items[0].Quantity)
}
