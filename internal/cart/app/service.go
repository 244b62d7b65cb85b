package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const defaultMaxRetries = 8

type Service struct {
	repo       CartRepo
	pricer     Pricer
	catalog    CatalogReader
	now        func() time.Time
	maxRetries uint64
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMaxRetries bounds how often a mutation is replayed after losing a
// version race.
func WithMaxRetries(n uint64) Option {
	return func(s *Service) { s.maxRetries = n }
}

func NewService(repo CartRepo, pricer Pricer, catalog CatalogReader, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		pricer:     pricer,
		catalog:    catalog,
		now:        func() time.Time { return time.Now().UTC() },
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCart returns the customer's open cart, or nil when there is none.
func (s *Service) GetCart(ctx context.Context, customerID string) (*domain.Cart, error) {
	if err := validateID("customer_id", customerID); err != nil {
		return nil, err
	}
	cart, err := s.repo.FindOpenByCustomer(ctx, customerID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// CartByID loads any cart, open or closed.
func (s *Service) CartByID(ctx context.Context, cartID string) (domain.Cart, error) {
	if err := validateID("cart_id", cartID); err != nil {
		return domain.Cart{}, err
	}
	return s.repo.Get(ctx, cartID)
}

// ListCarts returns every cart of the customer, newest first.
func (s *Service) ListCarts(ctx context.Context, customerID string) ([]domain.Cart, error) {
	if err := validateID("customer_id", customerID); err != nil {
		return nil, err
	}
	return s.repo.ListByCustomer(ctx, customerID)
}

// CurrentCart decorates a client-held cart snapshot with live catalog details.
// Nothing is persisted.
func (s *Service) CurrentCart(ctx context.Context, snapshot *domain.Cart) (EnrichedCart, error) {
	if snapshot == nil {
		return EnrichedCart{}, domain.ErrCartNotFound
	}

	out := EnrichedCart{Cart: snapshot.Clone(), Items: make([]EnrichedItem, 0, len(snapshot.Items))}
	if snapshot.IsEmpty() {
		return out, nil
	}

	details, err := s.catalog.Details(ctx, snapshot.ProductChoiceIDs())
	if err != nil {
		return EnrichedCart{}, err
	}
	for _, it := range snapshot.Items {
		item := EnrichedItem{LineItem: it}
		if d, ok := details[it.ProductChoiceID]; ok {
			d := d
			item.Details = &d
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// AddItem adds quantity units of a product choice. Without a CartID the
// customer's open cart is used, or a new one is created; created reports the
// latter.
func (s *Service) AddItem(ctx context.Context, in AddItemInput) (cart domain.Cart, created bool, err error) {
	if in.Quantity <= 0 || in.Quantity > domain.MaxQuantity {
		return domain.Cart{}, false, domain.ErrInvalidQuantity
	}
	if err := validateID("customer_id", in.CustomerID); err != nil {
		return domain.Cart{}, false, err
	}
	if err := validateID("product_choice_id", in.ProductChoiceID); err != nil {
		return domain.Cart{}, false, err
	}

	add := func(c *domain.Cart) error {
		if err := c.AddItem(in.ProductChoiceID, in.Quantity); err != nil {
			return err
		}
		return c.Activate()
	}

	if in.CartID != "" {
		if err := validateID("cart_id", in.CartID); err != nil {
			return domain.Cart{}, false, err
		}
		cart, err := s.mutate(ctx, in.CartID, in.CustomerID, true, add)
		return cart, false, err
	}

	open, err := s.repo.FindOpenByCustomer(ctx, in.CustomerID)
	switch {
	case err == nil:
		cart, err := s.mutate(ctx, open.ID, in.CustomerID, true, add)
		return cart, false, err
	case !errors.Is(err, domain.ErrCartNotFound):
		return domain.Cart{}, false, err
	}

	fresh, err := domain.NewCart(in.CustomerID, in.ProductChoiceID, in.Quantity, s.now())
	if err != nil {
		return domain.Cart{}, false, err
	}
	if err := s.pricer.Reprice(ctx, &fresh); err != nil {
		return domain.Cart{}, false, err
	}
	cart, err = s.repo.Create(ctx, fresh)
	if errors.Is(err, domain.ErrOpenCartExists) {
		// another request created the open cart first
		open, err := s.repo.FindOpenByCustomer(ctx, in.CustomerID)
		if err != nil {
			return domain.Cart{}, false, err
		}
		cart, err := s.mutate(ctx, open.ID, in.CustomerID, true, add)
		return cart, false, err
	}
	if err != nil {
		return domain.Cart{}, false, err
	}
	return cart, true, nil
}

// UpdateItemQuantity overwrites the quantity of an existing line item.
func (s *Service) UpdateItemQuantity(ctx context.Context, in ItemInput) (domain.Cart, error) {
	if in.Quantity <= 0 || in.Quantity > domain.MaxQuantity {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}
	if err := validateItemInput(in); err != nil {
		return domain.Cart{}, err
	}
	return s.mutate(ctx, in.CartID, in.CustomerID, true, func(c *domain.Cart) error {
		return c.SetQuantity(in.ProductChoiceID, in.Quantity)
	})
}

// RemoveItem drops the line item of a product choice. The cart may end up empty.
func (s *Service) RemoveItem(ctx context.Context, in ItemInput) (domain.Cart, error) {
	if err := validateItemInput(in); err != nil {
		return domain.Cart{}, err
	}
	return s.mutate(ctx, in.CartID, in.CustomerID, true, func(c *domain.Cart) error {
		return c.RemoveItem(in.ProductChoiceID)
	})
}

// CancelCart abandons an open cart, freeing the customer to start a new one.
func (s *Service) CancelCart(ctx context.Context, customerID, cartID string) (domain.Cart, error) {
	if err := validateID("customer_id", customerID); err != nil {
		return domain.Cart{}, err
	}
	if cartID == "" {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	if err := validateID("cart_id", cartID); err != nil {
		return domain.Cart{}, err
	}
	return s.mutate(ctx, cartID, customerID, false, func(c *domain.Cart) error {
		return c.Cancel(customerID, s.now())
	})
}

// mutate runs load, fn, reprice and a versioned save, replaying the whole
// sequence when another writer saved the cart in between.
func (s *Service) mutate(ctx context.Context, cartID, actor string, reprice bool, fn func(*domain.Cart) error) (domain.Cart, error) {
	var out domain.Cart

	backoff := retry.NewExponential(2 * time.Millisecond)
	backoff = retry.WithCappedDuration(100*time.Millisecond, backoff)
	backoff = retry.WithJitterPercent(25, backoff)
	backoff = retry.WithMaxRetries(s.maxRetries, backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		cart, err := s.repo.Get(ctx, cartID)
		if err != nil {
			return err
		}
		if err := fn(&cart); err != nil {
			return err
		}
		cart.Touch(actor, s.now())
		if reprice {
			if err := s.pricer.Reprice(ctx, &cart); err != nil {
				return err
			}
		}

		saved, err := s.repo.Update(ctx, cart)
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return out, nil
}

func validateItemInput(in ItemInput) error {
	if err := validateID("customer_id", in.CustomerID); err != nil {
		return err
	}
	if err := validateID("product_choice_id", in.ProductChoiceID); err != nil {
		return err
	}
	if in.CartID == "" {
		return domain.ErrCartNotFound
	}
	return validateID("cart_id", in.CartID)
}

func validateID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Invalid("%s is required", field)
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Invalid("%s %q is not a valid id", field, id)
	}
	return nil
}
