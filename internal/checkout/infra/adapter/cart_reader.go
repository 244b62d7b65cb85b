package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/shoping-cart/internal/cart/app"
	cartdomain "github.com/dwikikusuma/shoping-cart/internal/cart/domain"
)

type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) GetCart(ctx context.Context, cartID string) (cartdomain.Cart, error) {
	return r.svc.CartByID(ctx, cartID)
}
