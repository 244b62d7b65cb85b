package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
	"github.com/dwikikusuma/shoping-cart/pkg/postgres"
	"github.com/jackc/pgx/v5"
)

const cartColumns = `id::text, customer_id::text, status, payment_method, payment_status, payment_timestamp,
	line_items, total_price, create_timestamp, last_updated_timestamp, creator_id::text, last_op_id::text,
	tram_status, version`

type lineItemRow struct {
	ID              string `json:"id"`
	ProductChoiceID string `json:"product_choice_id"`
	Quantity        int64  `json:"quantity"`
}

type CartRepo struct {
	db postgres.DBTX
}

// NewCartRepo binds the repo to a pool or to a running pgx.Tx.
func NewCartRepo(db postgres.DBTX) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) Get(ctx context.Context, cartID string) (domain.Cart, error) {
	cart, err := scanCart(r.db.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1::uuid`, cartID))
	if postgres.IsNoRows(err) {
		return domain.Cart{}, fmt.Errorf("%w: %s", domain.ErrCartNotFound, cartID)
	}
	if err != nil {
		return domain.Cart{}, apperr.Storage("get cart", err)
	}
	return cart, nil
}

// Lock is Get with a row lock held until the surrounding transaction ends.
func (r *CartRepo) Lock(ctx context.Context, cartID string) (domain.Cart, error) {
	cart, err := scanCart(r.db.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1::uuid FOR UPDATE`, cartID))
	if postgres.IsNoRows(err) {
		return domain.Cart{}, fmt.Errorf("%w: %s", domain.ErrCartNotFound, cartID)
	}
	if err != nil {
		return domain.Cart{}, apperr.Storage("lock cart", err)
	}
	return cart, nil
}

func (r *CartRepo) FindOpenByCustomer(ctx context.Context, customerID string) (domain.Cart, error) {
	cart, err := scanCart(r.db.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM carts
		 WHERE customer_id = $1::uuid AND status IN ('pending', 'active', 'ready', 'processing')`,
		customerID,
	))
	if postgres.IsNoRows(err) {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	if err != nil {
		return domain.Cart{}, apperr.Storage("find open cart", err)
	}
	return cart, nil
}

func (r *CartRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Cart, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE customer_id = $1::uuid ORDER BY create_timestamp DESC, id`,
		customerID,
	)
	if err != nil {
		return nil, apperr.Storage("list carts", err)
	}
	defer rows.Close()

	out := []domain.Cart{}
	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, apperr.Storage("scan cart", err)
		}
		out = append(out, cart)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate carts", err)
	}
	return out, nil
}

func (r *CartRepo) Create(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	items, err := encodeItems(cart.Items)
	if err != nil {
		return domain.Cart{}, err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO carts (id, customer_id, status, payment_method, payment_status, payment_timestamp,
			line_items, total_price, create_timestamp, last_updated_timestamp, creator_id, last_op_id, tram_status, version)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11::uuid, $12::uuid, $13, 1)`,
		cart.ID, cart.CustomerID, string(cart.Status), string(cart.PaymentMethod), string(cart.PaymentStatus),
		cart.PaymentTimestamp, items, cart.TotalPrice, cart.CreatedAt, cart.UpdatedAt,
		cart.CreatorID, cart.LastOpID, cart.TramStatus,
	)
	if postgres.IsUniqueViolation(err) {
		return domain.Cart{}, domain.ErrOpenCartExists
	}
	if err != nil {
		return domain.Cart{}, apperr.Storage("create cart", err)
	}

	out := cart.Clone()
	out.Version = 1
	return out, nil
}

// Update writes cart only if the stored version still equals cart.Version.
func (r *CartRepo) Update(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	items, err := encodeItems(cart.Items)
	if err != nil {
		return domain.Cart{}, err
	}

	var version int64
	err = r.db.QueryRow(ctx,
		`UPDATE carts SET status = $3, payment_method = $4, payment_status = $5, payment_timestamp = $6,
			line_items = $7, total_price = $8, last_updated_timestamp = $9, last_op_id = $10::uuid,
			tram_status = $11, version = version + 1
		 WHERE id = $1::uuid AND version = $2
		 RETURNING version`,
		cart.ID, cart.Version, string(cart.Status), string(cart.PaymentMethod), string(cart.PaymentStatus),
		cart.PaymentTimestamp, items, cart.TotalPrice, cart.UpdatedAt, cart.LastOpID, cart.TramStatus,
	).Scan(&version)
	if postgres.IsNoRows(err) {
		// either gone or moved on; tell them apart for the caller
		if _, getErr := r.Get(ctx, cart.ID); getErr != nil {
			return domain.Cart{}, getErr
		}
		return domain.Cart{}, domain.ErrConcurrentUpdate
	}
	if postgres.IsUniqueViolation(err) {
		return domain.Cart{}, domain.ErrOpenCartExists
	}
	if err != nil {
		return domain.Cart{}, apperr.Storage("update cart", err)
	}

	out := cart.Clone()
	out.Version = version
	return out, nil
}

func encodeItems(items []domain.LineItem) ([]byte, error) {
	rows := make([]lineItemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, lineItemRow{ID: it.ID, ProductChoiceID: it.ProductChoiceID, Quantity: it.Quantity})
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode line items: %w", err)
	}
	return data, nil
}

func scanCart(row pgx.Row) (domain.Cart, error) {
	var (
		c                       domain.Cart
		status, method, payment string
		paidAt                  *time.Time
		items                   []byte
	)
	err := row.Scan(&c.ID, &c.CustomerID, &status, &method, &payment, &paidAt,
		&items, &c.TotalPrice, &c.CreatedAt, &c.UpdatedAt, &c.CreatorID, &c.LastOpID,
		&c.TramStatus, &c.Version)
	if err != nil {
		return domain.Cart{}, err
	}

	var rows []lineItemRow
	if err := json.Unmarshal(items, &rows); err != nil {
		return domain.Cart{}, fmt.Errorf("decode line items of cart %s: %w", c.ID, err)
	}
	c.Items = make([]domain.LineItem, 0, len(rows))
	for _, it := range rows {
		c.Items = append(c.Items, domain.LineItem{ID: it.ID, ProductChoiceID: it.ProductChoiceID, Quantity: it.Quantity})
	}

	c.Status = domain.Status(status)
	c.PaymentMethod = domain.PaymentMethod(method)
	c.PaymentStatus = domain.PaymentStatus(payment)
	c.PaymentTimestamp = paidAt
	return c, nil
}
