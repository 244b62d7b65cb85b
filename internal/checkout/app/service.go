package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	cartdomain "github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/dwikikusuma/shoping-cart/internal/checkout/domain"
	"github.com/dwikikusuma/shoping-cart/internal/pricing"
	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
	"github.com/dwikikusuma/shoping-cart/pkg/metrics"
	"github.com/dwikikusuma/shoping-cart/pkg/outbox"
	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

type Service struct {
	Cart    CartReader
	Catalog CatalogReader

	uow     UnitOfWork
	pricing *pricing.Engine
	metrics *metrics.CheckoutMetrics
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Service)

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(cart CartReader, catalog CatalogReader, uow UnitOfWork, engine *pricing.Engine, opts ...Option) *Service {
	s := &Service{
		Cart:    cart,
		Catalog: catalog,
		uow:     uow,
		pricing: engine,
		log:     slog.Default(),
		timeout: defaultTimeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CompleteCart settles the cart: every line item's stock is decremented, the
// cart is marked completed and paid, and a cart.completed event is queued. Any
// failure leaves stock, cart and outbox exactly as they were.
func (s *Service) CompleteCart(ctx context.Context, cartID, paymentMethod string) (cart cartdomain.Cart, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(outcome(err), time.Since(start)) }()

	method, err := domain.ParsePaymentMethod(paymentMethod)
	if err != nil {
		return cartdomain.Cart{}, err
	}
	if _, err := uuid.Parse(cartID); err != nil {
		return cartdomain.Cart{}, apperr.Invalid("cart_id %q is not a valid id", cartID)
	}

	current, err := s.Cart.GetCart(ctx, cartID)
	if err != nil {
		return cartdomain.Cart{}, err
	}
	if err := current.CheckCheckout(); err != nil {
		return cartdomain.Cart{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var completed cartdomain.Cart
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		locked, err := tx.LockCart(ctx, cartID)
		if err != nil {
			return err
		}
		// another request may have settled or emptied it since the first read
		if err := locked.CheckCheckout(); err != nil {
			return err
		}

		plan, err := domain.StockPlan(locked.Items)
		if err != nil {
			return err
		}
		for _, line := range plan {
			remaining, err := tx.DecrementStock(ctx, line.ProductChoiceID, line.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock of %s: %w", line.ProductChoiceID, err)
			}
			if remaining < 0 {
				return fmt.Errorf("%w: %s is short by %d", domain.ErrInsufficientStock, line.ProductChoiceID, -remaining)
			}
		}

		if err := s.pricing.WithReader(tx).Reprice(ctx, &locked); err != nil {
			return err
		}
		if err := locked.Complete(method, s.now()); err != nil {
			return err
		}

		saved, err := tx.SaveCart(ctx, locked)
		if err != nil {
			return err
		}

		evt, err := outbox.NewEvent(domain.TopicCartCompleted, saved.ID, domain.NewCartCompleted(saved))
		if err != nil {
			return err
		}
		if err := tx.AddEvent(ctx, evt); err != nil {
			return fmt.Errorf("enqueue %s: %w", domain.TopicCartCompleted, err)
		}

		completed = saved
		return nil
	})
	if err != nil {
		s.log.WarnContext(ctx, "checkout aborted",
			slog.String("cart_id", cartID),
			slog.Any("err", err),
		)
		return cartdomain.Cart{}, err
	}

	s.log.InfoContext(ctx, "checkout completed",
		slog.String("cart_id", completed.ID),
		slog.String("customer_id", completed.CustomerID),
		slog.Int64("total_price", completed.TotalPrice),
	)
	return completed, nil
}

// Quote prices the cart against the live catalog without touching stock.
func (s *Service) Quote(ctx context.Context, cartID string) (domain.Quote, error) {
	if _, err := uuid.Parse(cartID); err != nil {
		return domain.Quote{}, apperr.Invalid("cart_id %q is not a valid id", cartID)
	}

	cart, err := s.Cart.GetCart(ctx, cartID)
	if err != nil {
		return domain.Quote{}, err
	}
	if cart.IsEmpty() {
		return domain.Quote{}, cartdomain.ErrEmptyCart
	}

	products, err := s.Catalog.GetProducts(ctx, cart.ProductChoiceIDs())
	if err != nil {
		return domain.Quote{}, fmt.Errorf("failed to get products: %w", err)
	}

	quote := domain.Quote{CartID: cart.ID, Lines: make([]domain.QuoteLine, 0, len(cart.Items))}
	for _, it := range cart.Items {
		line := domain.QuoteLine{ProductChoiceID: it.ProductChoiceID, Quantity: it.Quantity}
		if p, ok := products[it.ProductChoiceID]; ok {
			lineTotal, err := pricing.LineTotal(p.Price, it.Quantity)
			if err != nil {
				return domain.Quote{}, fmt.Errorf("quote %s: %w", it.ProductChoiceID, err)
			}
			line.Found = true
			line.ProductName = p.Name
			line.UnitPrice = p.Price
			line.LineTotal = lineTotal
			line.Available = p.Stock
		}
		if quote.Total, err = pricing.AddTotal(quote.Total, line.LineTotal); err != nil {
			return domain.Quote{}, err
		}
		quote.Lines = append(quote.Lines, line)
	}
	return quote, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, apperr.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, apperr.ErrConflict):
		return "conflict"
	}
	return "error"
}
