// Package memory is a process-local implementation of the cart, catalog,
// checkout and outbox stores. One mutex serializes every operation, so each
// checkout transaction runs in isolation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	cartdomain "github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/shoping-cart/internal/catalog/domain"
	checkoutapp "github.com/dwikikusuma/shoping-cart/internal/checkout/app"
	"github.com/dwikikusuma/shoping-cart/pkg/outbox"
)

type Store struct {
	mu      sync.Mutex
	carts   map[string]cartdomain.Cart
	choices map[string]catalogdomain.Choice
	events  []outbox.Record
	eventID int64
}

func New() *Store {
	return &Store{
		carts:   map[string]cartdomain.Cart{},
		choices: map[string]catalogdomain.Choice{},
	}
}

// Seed upserts catalog choices.
func (s *Store) Seed(_ context.Context, choices ...catalogdomain.Choice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range choices {
		s.choices[c.ID] = c
	}
	return nil
}

// Stock reports the committed stock of a choice.
func (s *Store) Stock(choiceID string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.choices[choiceID]
	return c.Quantity, ok
}

func (s *Store) FindChoices(ctx context.Context, ids []string) ([]catalogdomain.Choice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]catalogdomain.Choice, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.choices[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) Prices(ctx context.Context, ids []string) (map[string]int64, error) {
	choices, err := s.FindChoices(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(choices))
	for _, c := range choices {
		out[c.ID] = c.Price
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, cartID string) (cartdomain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return cartdomain.Cart{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[cartID]
	if !ok {
		return cartdomain.Cart{}, fmt.Errorf("%w: %s", cartdomain.ErrCartNotFound, cartID)
	}
	return c.Clone(), nil
}

func (s *Store) FindOpenByCustomer(ctx context.Context, customerID string) (cartdomain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return cartdomain.Cart{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.openCart(customerID); ok {
		return c.Clone(), nil
	}
	return cartdomain.Cart{}, cartdomain.ErrCartNotFound
}

func (s *Store) ListByCustomer(ctx context.Context, customerID string) ([]cartdomain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []cartdomain.Cart{}
	for _, c := range s.carts {
		if c.CustomerID == customerID {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Create(ctx context.Context, cart cartdomain.Cart) (cartdomain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return cartdomain.Cart{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[cart.ID]; ok {
		return cartdomain.Cart{}, fmt.Errorf("cart %s already exists", cart.ID)
	}
	if cart.Status.Open() {
		if _, ok := s.openCart(cart.CustomerID); ok {
			return cartdomain.Cart{}, cartdomain.ErrOpenCartExists
		}
	}

	cart = cart.Clone()
	cart.Version = 1
	s.carts[cart.ID] = cart
	return cart.Clone(), nil
}

func (s *Store) Update(ctx context.Context, cart cartdomain.Cart) (cartdomain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return cartdomain.Cart{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.carts[cart.ID]
	if !ok {
		return cartdomain.Cart{}, fmt.Errorf("%w: %s", cartdomain.ErrCartNotFound, cart.ID)
	}
	if stored.Version != cart.Version {
		return cartdomain.Cart{}, cartdomain.ErrConcurrentUpdate
	}

	cart = cart.Clone()
	cart.Version++
	s.carts[cart.ID] = cart
	return cart.Clone(), nil
}

func (s *Store) openCart(customerID string) (cartdomain.Cart, bool) {
	for _, c := range s.carts {
		if c.CustomerID == customerID && c.Status.Open() {
			return c, true
		}
	}
	return cartdomain.Cart{}, false
}

func (s *Store) FetchPending(ctx context.Context, limit int) ([]outbox.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []outbox.Record
	for _, rec := range s.events {
		if rec.SentAt != nil {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkSent(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == id {
			now := time.Now().UTC()
			s.events[i].SentAt = &now
			return nil
		}
	}
	return fmt.Errorf("outbox record %d not found", id)
}

// Events returns every outbox record, sent or not, in insertion order.
func (s *Store) Events() []outbox.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]outbox.Record(nil), s.events...)
}

// WithinTx runs fn against a private copy of the touched records and applies
// it only when fn succeeds and ctx is still live.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx checkoutapp.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	staged := &tx{
		store:   s,
		carts:   map[string]cartdomain.Cart{},
		choices: map[string]catalogdomain.Choice{},
	}
	if err := fn(ctx, staged); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for id, c := range staged.carts {
		s.carts[id] = c
	}
	for id, c := range staged.choices {
		s.choices[id] = c
	}
	for _, evt := range staged.events {
		s.eventID++
		s.events = append(s.events, outbox.Record{ID: s.eventID, Event: evt})
	}
	return nil
}

// tx reads through to the store; the store mutex is held by WithinTx.
type tx struct {
	store   *Store
	carts   map[string]cartdomain.Cart
	choices map[string]catalogdomain.Choice
	events  []outbox.Event
}

func (t *tx) cart(id string) (cartdomain.Cart, bool) {
	if c, ok := t.carts[id]; ok {
		return c, true
	}
	c, ok := t.store.carts[id]
	return c, ok
}

func (t *tx) choice(id string) (catalogdomain.Choice, bool) {
	if c, ok := t.choices[id]; ok {
		return c, true
	}
	c, ok := t.store.choices[id]
	return c, ok
}

func (t *tx) LockCart(ctx context.Context, cartID string) (cartdomain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return cartdomain.Cart{}, err
	}
	c, ok := t.cart(cartID)
	if !ok {
		return cartdomain.Cart{}, fmt.Errorf("%w: %s", cartdomain.ErrCartNotFound, cartID)
	}
	return c.Clone(), nil
}

func (t *tx) DecrementStock(ctx context.Context, choiceID string, qty int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c, ok := t.choice(choiceID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", catalogdomain.ErrChoiceNotFound, choiceID)
	}
	c.Quantity -= qty
	t.choices[choiceID] = c
	return c.Quantity, nil
}

func (t *tx) Prices(ctx context.Context, ids []string) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(ids))
	for _, id := range ids {
		if c, ok := t.choice(id); ok {
			out[id] = c.Price
		}
	}
	return out, nil
}

func (t *tx) SaveCart(ctx context.Context, cart cartdomain.Cart) (cartdomain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return cartdomain.Cart{}, err
	}
	stored, ok := t.cart(cart.ID)
	if !ok {
		return cartdomain.Cart{}, fmt.Errorf("%w: %s", cartdomain.ErrCartNotFound, cart.ID)
	}
	cart = cart.Clone()
	cart.Version = stored.Version + 1
	t.carts[cart.ID] = cart
	return cart.Clone(), nil
}

func (t *tx) AddEvent(ctx context.Context, evt outbox.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.events = append(t.events, evt)
	return nil
}
