package app

import "github.com/dwikikusuma/shoping-cart/internal/cart/domain"

// ChoiceDetails are the live catalog fields shown next to a line item.
type ChoiceDetails struct {
	ProductName string
	Color       string
	Size        string
	ImageURL    string
	Price       int64
}

type EnrichedItem struct {
	domain.LineItem
	// Details is nil when the choice is no longer in the catalog.
	Details *ChoiceDetails
}

type EnrichedCart struct {
	Cart  domain.Cart
	Items []EnrichedItem
}

type AddItemInput struct {
	CustomerID      string
	ProductChoiceID string
	Quantity        int64
	// CartID is the client-held cart, empty when the client has none.
	CartID string
}

type ItemInput struct {
	CustomerID      string
	ProductChoiceID string
	Quantity        int64
	CartID          string
}
