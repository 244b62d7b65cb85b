package gateway

import (
	"time"

	cartapp "github.com/dwikikusuma/shoping-cart/internal/cart/app"
	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	checkoutdomain "github.com/dwikikusuma/shoping-cart/internal/checkout/domain"
)

type envelope struct {
	Success bool      `json:"success"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message"`
	Cart    *cartDTO  `json:"cart,omitempty"`
	Carts   []cartDTO `json:"carts,omitempty"`
	Quote   *quoteDTO `json:"quote,omitempty"`
}

type lineItemDTO struct {
	ID              string `json:"id"`
	ProductChoiceID string `json:"product_choice_id"`
	Quantity        int64  `json:"quantity"`

	ProductName *string `json:"product_name,omitempty"`
	Color       *string `json:"color,omitempty"`
	Size        *string `json:"size,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

type cartDTO struct {
	ID                   string        `json:"id"`
	CustomerID           string        `json:"customer_id"`
	Status               string        `json:"status"`
	PaymentMethod        string        `json:"payment_method"`
	PaymentStatus        string        `json:"payment_status"`
	PaymentTimestamp     *time.Time    `json:"payment_timestamp"`
	LineItems            []lineItemDTO `json:"line_items"`
	TotalPrice           int64         `json:"total_price"`
	CreateTimestamp      time.Time     `json:"create_timestamp"`
	LastUpdatedTimestamp time.Time     `json:"last_updated_timestamp"`
	CreatorID            string        `json:"creator_id"`
	LastOpID             string        `json:"last_op_id"`
	TramStatus           bool          `json:"tram_status"`
	Version              int64         `json:"version"`
}

func toCartDTO(c domain.Cart) cartDTO {
	items := make([]lineItemDTO, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, lineItemDTO{ID: it.ID, ProductChoiceID: it.ProductChoiceID, Quantity: it.Quantity})
	}
	return cartDTO{
		ID:                   c.ID,
		CustomerID:           c.CustomerID,
		Status:               string(c.Status),
		PaymentMethod:        string(c.PaymentMethod),
		PaymentStatus:        string(c.PaymentStatus),
		PaymentTimestamp:     c.PaymentTimestamp,
		LineItems:            items,
		TotalPrice:           c.TotalPrice,
		CreateTimestamp:      c.CreatedAt,
		LastUpdatedTimestamp: c.UpdatedAt,
		CreatorID:            c.CreatorID,
		LastOpID:             c.LastOpID,
		TramStatus:           c.TramStatus,
		Version:              c.Version,
	}
}

func toEnrichedCartDTO(ec cartapp.EnrichedCart) cartDTO {
	out := toCartDTO(ec.Cart)
	out.LineItems = make([]lineItemDTO, 0, len(ec.Items))
	for _, it := range ec.Items {
		item := lineItemDTO{ID: it.ID, ProductChoiceID: it.ProductChoiceID, Quantity: it.Quantity}
		if d := it.Details; d != nil {
			item.ProductName = &d.ProductName
			item.Color = &d.Color
			item.Size = &d.Size
			item.Price = &d.Price
			item.ImageURL = &d.ImageURL
		}
		out.LineItems = append(out.LineItems, item)
	}
	return out
}

// toDomain rebuilds a client-held snapshot. Catalog fields are ignored.
func (d cartDTO) toDomain() domain.Cart {
	items := make([]domain.LineItem, 0, len(d.LineItems))
	for _, it := range d.LineItems {
		items = append(items, domain.LineItem{ID: it.ID, ProductChoiceID: it.ProductChoiceID, Quantity: it.Quantity})
	}
	return domain.Cart{
		ID:               d.ID,
		CustomerID:       d.CustomerID,
		Status:           domain.Status(d.Status),
		PaymentMethod:    domain.PaymentMethod(d.PaymentMethod),
		PaymentStatus:    domain.PaymentStatus(d.PaymentStatus),
		PaymentTimestamp: d.PaymentTimestamp,
		Items:            items,
		TotalPrice:       d.TotalPrice,
		CreatedAt:        d.CreateTimestamp,
		UpdatedAt:        d.LastUpdatedTimestamp,
		CreatorID:        d.CreatorID,
		LastOpID:         d.LastOpID,
		TramStatus:       d.TramStatus,
		Version:          d.Version,
	}
}

type quoteLineDTO struct {
	ProductChoiceID string `json:"product_choice_id"`
	ProductName     string `json:"product_name"`
	Quantity        int64  `json:"quantity"`
	UnitPrice       int64  `json:"unit_price"`
	LineTotal       int64  `json:"line_total"`
	Available       int64  `json:"available"`
	InStock         bool   `json:"in_stock"`
}

type quoteDTO struct {
	CartID      string         `json:"cart_id"`
	Lines       []quoteLineDTO `json:"lines"`
	Total       int64          `json:"total"`
	Fulfillable bool           `json:"fulfillable"`
}

func toQuoteDTO(q checkoutdomain.Quote) quoteDTO {
	lines := make([]quoteLineDTO, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, quoteLineDTO{
			ProductChoiceID: l.ProductChoiceID,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			LineTotal:       l.LineTotal,
			Available:       l.Available,
			InStock:         l.InStock(),
		})
	}
	return quoteDTO{CartID: q.CartID, Lines: lines, Total: q.Total, Fulfillable: q.Fulfillable()}
}

// cartRef lets clients send either a bare cart_id or the whole cart they hold.
type cartRef struct {
	CartID string   `json:"cart_id"`
	Cart   *cartDTO `json:"cart"`
}

func (r cartRef) id() string {
	if r.CartID != "" {
		return r.CartID
	}
	if r.Cart != nil {
		return r.Cart.ID
	}
	return ""
}

type addItemRequest struct {
	CustomerID      string `json:"customer_id" binding:"required"`
	ProductChoiceID string `json:"product_choice_id" binding:"required"`
	Quantity        int64  `json:"quantity"`
	cartRef
}

type itemRequest struct {
	CustomerID      string `json:"customer_id" binding:"required"`
	ProductChoiceID string `json:"product_choice_id" binding:"required"`
	Quantity        int64  `json:"quantity"`
	cartRef
}

type currentCartRequest struct {
	Cart *cartDTO `json:"cart"`
}

type completeRequest struct {
	PaymentMethod string `json:"payment_method"`
	cartRef
}

type cancelRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	cartRef
}
