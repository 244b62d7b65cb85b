package adapter

import (
	"context"

	catalogapp "github.com/dwikikusuma/shoping-cart/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/shoping-cart/internal/checkout/app"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) GetProducts(ctx context.Context, choiceIDs []string) (map[string]checkoutapp.Product, error) {
	choices, err := r.svc.Choices(ctx, choiceIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]checkoutapp.Product, len(choices))
	for id, c := range choices {
		out[id] = checkoutapp.Product{
			ChoiceID: c.ID,
			Name:     c.ProductName,
			Price:    c.Price,
			Stock:    c.Quantity,
		}
	}
	return out, nil
}
