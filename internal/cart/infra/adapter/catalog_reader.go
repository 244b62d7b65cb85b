package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/shoping-cart/internal/cart/app"
	catalogapp "github.com/dwikikusuma/shoping-cart/internal/catalog/app"
)

// CatalogServiceReader serves cart enrichment from the catalog service.
type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) Details(ctx context.Context, choiceIDs []string) (map[string]cartapp.ChoiceDetails, error) {
	choices, err := r.svc.Choices(ctx, choiceIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]cartapp.ChoiceDetails, len(choices))
	for id, c := range choices {
		out[id] = cartapp.ChoiceDetails{
			ProductName: c.ProductName,
			Color:       c.Color,
			Size:        c.Size,
			ImageURL:    c.ImageURL,
			Price:       c.Price,
		}
	}
	return out, nil
}
