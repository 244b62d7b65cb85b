package domain

import (
	"fmt"

	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
)

var ErrChoiceNotFound = fmt.Errorf("product choice %w", apperr.ErrNotFound)
