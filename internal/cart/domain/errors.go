package domain

import (
	"fmt"

	"github.com/dwikikusuma/shoping-cart/pkg/apperr"
)

var (
	ErrCartNotFound     = fmt.Errorf("cart %w", apperr.ErrNotFound)
	ErrLineItemNotFound = fmt.Errorf("item %w in cart", apperr.ErrNotFound)

	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be a positive integer no greater than %d", apperr.ErrInvalidInput, MaxQuantity)

	ErrCartNotEditable     = fmt.Errorf("%w: cart cannot be modified in its current status", apperr.ErrConflict)
	ErrCartNotCheckoutable = fmt.Errorf("%w: cart is not in a valid state for completion", apperr.ErrConflict)
	ErrCartNotCancellable  = fmt.Errorf("%w: cart is already closed", apperr.ErrConflict)
	ErrEmptyCart           = fmt.Errorf("%w: cart is empty", apperr.ErrConflict)
	ErrInvalidTransition   = fmt.Errorf("%w: invalid cart status transition", apperr.ErrConflict)
	ErrConcurrentUpdate    = fmt.Errorf("%w: cart was modified concurrently", apperr.ErrConflict)
	ErrOpenCartExists      = fmt.Errorf("%w: customer already has an open cart", apperr.ErrConflict)
)
