package app

import (
	"context"
	"strings"

	"github.com/dwikikusuma/shoping-cart/internal/catalog/domain"
	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
	"github.com/google/uuid"
)

// Service is the read-only catalog view used by pricing and cart enrichment.
type Service struct {
	repo ChoiceRepo
}

func NewService(repo ChoiceRepo) *Service {
	return &Service{
		repo: repo,
	}
}

// Choices looks up every distinct id in one round trip, keyed by choice id.
func (s *Service) Choices(ctx context.Context, ids []string) (map[string]domain.Choice, error) {
	ids, err := normalizeIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return map[string]domain.Choice{}, nil
	}

	rows, err := s.repo.FindChoices(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[string]domain.Choice, len(rows))
	for _, c := range rows {
		out[c.ID] = c
	}
	return out, nil
}

// Prices returns the current unit price per choice id.
func (s *Service) Prices(ctx context.Context, ids []string) (map[string]int64, error) {
	choices, err := s.Choices(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(choices))
	for id, c := range choices {
		out[id] = c.Price
	}
	return out, nil
}

func normalizeIDs(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, err := uuid.Parse(id); err != nil {
			return nil, apperr.Invalid("product choice id %q is not a valid id", id)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
