package app

import (
	"context"

	"github.com/dwikikusuma/shoping-cart/internal/catalog/domain"
)

type ChoiceRepo interface {
	// FindChoices returns the choices among ids that exist, joined with their
	// product. Missing ids are simply absent from the result.
	FindChoices(ctx context.Context, ids []string) ([]domain.Choice, error)
}
