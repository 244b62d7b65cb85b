package postgres

import (
	"context"
	"fmt"

	"github.com/dwikikusuma/shoping-cart/internal/catalog/domain"
	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
	"github.com/dwikikusuma/shoping-cart/pkg/postgres"
)

const findChoicesSQL = `
SELECT pc.id::text, p.id::text, p.name, pc.color, pc.size, pc.image_url, pc.price, pc.quantity
FROM product_choices pc
JOIN products p ON p.id = pc.product_id
WHERE pc.id = ANY($1::text[]::uuid[])`

const decrementStockSQL = `
UPDATE product_choices
SET quantity = quantity - $2, updated_at = now()
WHERE id = $1::uuid
RETURNING quantity`

type ChoiceRepo struct {
	db postgres.DBTX
}

// NewChoiceRepo binds the repo to a pool or to a running pgx.Tx.
func NewChoiceRepo(db postgres.DBTX) *ChoiceRepo {
	return &ChoiceRepo{db: db}
}

func (r *ChoiceRepo) FindChoices(ctx context.Context, ids []string) ([]domain.Choice, error) {
	rows, err := r.db.Query(ctx, findChoicesSQL, ids)
	if err != nil {
		return nil, apperr.Storage("find choices", err)
	}
	defer rows.Close()

	out := make([]domain.Choice, 0, len(ids))
	for rows.Next() {
		var c domain.Choice
		if err := rows.Scan(&c.ID, &c.ProductID, &c.ProductName, &c.Color, &c.Size, &c.ImageURL, &c.Price, &c.Quantity); err != nil {
			return nil, apperr.Storage("scan choice", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate choices", err)
	}
	return out, nil
}

// Prices satisfies pricing.PriceReader for callers that hold a tx-bound repo.
func (r *ChoiceRepo) Prices(ctx context.Context, ids []string) (map[string]int64, error) {
	choices, err := r.FindChoices(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(choices))
	for _, c := range choices {
		out[c.ID] = c.Price
	}
	return out, nil
}

// DecrementStock subtracts qty in one statement and returns the remaining
// stock. The row stays locked until the surrounding transaction ends, so
// concurrent decrements of the same choice serialize.
func (r *ChoiceRepo) DecrementStock(ctx context.Context, id string, qty int64) (int64, error) {
	var remaining int64
	err := r.db.QueryRow(ctx, decrementStockSQL, id, qty).Scan(&remaining)
	if postgres.IsNoRows(err) {
		return 0, fmt.Errorf("%w: %s", domain.ErrChoiceNotFound, id)
	}
	if err != nil {
		return 0, apperr.Storage("decrement stock", err)
	}
	return remaining, nil
}

// Seed upserts products and choices. It backs local fixtures and integration
// tests; the catalog itself is owned by another service.
func (r *ChoiceRepo) Seed(ctx context.Context, choices ...domain.Choice) error {
	for _, c := range choices {
		if _, err := r.db.Exec(ctx,
			`INSERT INTO products(id, name) VALUES ($1::uuid, $2)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()`,
			c.ProductID, c.ProductName,
		); err != nil {
			return apperr.Storage("seed product", err)
		}
		if _, err := r.db.Exec(ctx,
			`INSERT INTO product_choices(id, product_id, color, size, image_url, price, quantity)
			 VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET color = EXCLUDED.color, size = EXCLUDED.size,
			   image_url = EXCLUDED.image_url, price = EXCLUDED.price, quantity = EXCLUDED.quantity, updated_at = now()`,
			c.ID, c.ProductID, c.Color, c.Size, c.ImageURL, c.Price, c.Quantity,
		); err != nil {
			return apperr.Storage("seed choice", err)
		}
	}
	return nil
}
