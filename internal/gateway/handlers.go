package gateway

import (
	"errors"
	"io"
	"net/http"

	cartapp "github.com/dwikikusuma/shoping-cart/internal/cart/app"
	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	checkoutapp "github.com/dwikikusuma/shoping-cart/internal/checkout/app"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	carts    *cartapp.Service
	checkout *checkoutapp.Service
}

func NewHandler(carts *cartapp.Service, checkout *checkoutapp.Service) *Handler {
	return &Handler{carts: carts, checkout: checkout}
}

func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.carts.GetCart(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if cart == nil {
		c.JSON(http.StatusOK, envelope{Success: true, Message: "No open cart"})
		return
	}
	dto := toCartDTO(*cart)
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Cart found", Cart: &dto})
}

func (h *Handler) listCarts(c *gin.Context) {
	carts, err := h.carts.ListCarts(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]cartDTO, 0, len(carts))
	for _, cart := range carts {
		out = append(out, toCartDTO(cart))
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Carts found", Carts: out})
}

func (h *Handler) currentCart(c *gin.Context) {
	var req currentCartRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBindError(c, err)
		return
	}

	var snapshot *domain.Cart
	if req.Cart != nil {
		cart := req.Cart.toDomain()
		snapshot = &cart
	}
	enriched, err := h.carts.CurrentCart(c.Request.Context(), snapshot)
	if err != nil {
		writeError(c, err)
		return
	}

	dto := toEnrichedCartDTO(enriched)
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Cart found", Cart: &dto})
}

func (h *Handler) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	cart, created, err := h.carts.AddItem(c.Request.Context(), cartapp.AddItemInput{
		CustomerID:      req.CustomerID,
		ProductChoiceID: req.ProductChoiceID,
		Quantity:        req.Quantity,
		CartID:          req.id(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	dto := toCartDTO(cart)
	if created {
		c.JSON(http.StatusCreated, envelope{Success: true, Message: "Cart created", Cart: &dto})
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Cart updated", Cart: &dto})
}

func (h *Handler) updateItemQuantity(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	cart, err := h.carts.UpdateItemQuantity(c.Request.Context(), cartapp.ItemInput{
		CustomerID:      req.CustomerID,
		ProductChoiceID: req.ProductChoiceID,
		Quantity:        req.Quantity,
		CartID:          req.id(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	dto := toCartDTO(cart)
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Item quantity updated", Cart: &dto})
}

func (h *Handler) removeItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	cart, err := h.carts.RemoveItem(c.Request.Context(), cartapp.ItemInput{
		CustomerID:      req.CustomerID,
		ProductChoiceID: req.ProductChoiceID,
		CartID:          req.id(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	dto := toCartDTO(cart)
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Item removed from cart", Cart: &dto})
}

func (h *Handler) completeCart(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	cart, err := h.checkout.CompleteCart(c.Request.Context(), req.id(), req.PaymentMethod)
	if err != nil {
		writeError(c, err)
		return
	}
	dto := toCartDTO(cart)
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Cart completed", Cart: &dto})
}

func (h *Handler) cancelCart(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	cart, err := h.carts.CancelCart(c.Request.Context(), req.CustomerID, req.id())
	if err != nil {
		writeError(c, err)
		return
	}
	dto := toCartDTO(cart)
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Cart cancelled", Cart: &dto})
}

func (h *Handler) quote(c *gin.Context) {
	q, err := h.checkout.Quote(c.Request.Context(), c.Param("cart_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	dto := toQuoteDTO(q)
	c.JSON(http.StatusOK, envelope{Success: true, Message: "Quote computed", Quote: &dto})
}
