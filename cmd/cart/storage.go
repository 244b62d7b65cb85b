package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cartapp "github.com/dwikikusuma/shoping-cart/internal/cart/app"
	cartpg "github.com/dwikikusuma/shoping-cart/internal/cart/infra/postgres"
	catalogapp "github.com/dwikikusuma/shoping-cart/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/shoping-cart/internal/catalog/domain"
	catalogpg "github.com/dwikikusuma/shoping-cart/internal/catalog/infra/postgres"
	checkoutapp "github.com/dwikikusuma/shoping-cart/internal/checkout/app"
	checkoutpg "github.com/dwikikusuma/shoping-cart/internal/checkout/infra/postgres"
	"github.com/dwikikusuma/shoping-cart/internal/storage/memory"
	"github.com/dwikikusuma/shoping-cart/migrations"
	"github.com/dwikikusuma/shoping-cart/pkg/config"
	"github.com/dwikikusuma/shoping-cart/pkg/outbox"
	"github.com/dwikikusuma/shoping-cart/pkg/postgres"
)

type storage struct {
	carts   cartapp.CartRepo
	choices catalogapp.ChoiceRepo
	uow     checkoutapp.UnitOfWork
	outbox  outbox.Store
	seed    func(ctx context.Context, choices ...catalogdomain.Choice) error
	ready   func(ctx context.Context) error
	close   func()
}

func openStorage(ctx context.Context, cfg config.Config) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		st := memory.New()
		return &storage{
			carts:   st,
			choices: st,
			uow:     st,
			outbox:  st,
			seed:    st.Seed,
			ready:   func(context.Context) error { return nil },
			close:   func() {},
		}, nil
	}

	pool, err := postgres.Open(ctx, postgres.Config{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns})
	if err != nil {
		return nil, err
	}
	choices := catalogpg.NewChoiceRepo(pool)
	return &storage{
		carts:   cartpg.NewCartRepo(pool),
		choices: choices,
		uow:     checkoutpg.NewUnitOfWork(pool),
		outbox:  outbox.NewPGStore(pool),
		seed:    choices.Seed,
		ready:   pool.Ping,
		close:   pool.Close,
	}, nil
}

func migrate(ctx context.Context, cfg config.Config) error {
	if cfg.Storage == config.StorageMemory {
		return nil
	}
	pool, err := postgres.Open(ctx, postgres.Config{URL: cfg.DatabaseURL, MaxConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()
	return postgres.Migrate(ctx, pool, migrations.FS, cfg.MigrationDir)
}

// loadFixtures reads catalog choices from a JSON array file.
func loadFixtures(path string) ([]catalogdomain.Choice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	var rows []struct {
		ID          string `json:"id"`
		ProductID   string `json:"product_id"`
		ProductName string `json:"product_name"`
		Color       string `json:"color"`
		Size        string `json:"size"`
		ImageURL    string `json:"image_url"`
		Price       int64  `json:"price"`
		Quantity    int64  `json:"quantity"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	out := make([]catalogdomain.Choice, 0, len(rows))
	for _, r := range rows {
		out = append(out, catalogdomain.Choice{
			ID:          r.ID,
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Color:       r.Color,
			Size:        r.Size,
			ImageURL:    r.ImageURL,
			Price:       r.Price,
			Quantity:    r.Quantity,
		})
	}
	return out, nil
}
