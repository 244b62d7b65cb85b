package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusActive     Status = "active"
	StatusReady      Status = "ready"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// progression order; cancelled sits outside it
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusActive:     1,
	StatusReady:      2,
	StatusProcessing: 3,
	StatusCompleted:  4,
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == StatusCancelled
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Open carts count against the one-open-cart-per-customer rule.
func (s Status) Open() bool {
	return s.Valid() && !s.Terminal()
}

// CanTransition reports whether from -> to respects the lifecycle: forward
// only along pending, active, ready, processing, completed, with cancelled
// reachable from any non-terminal status.
func CanTransition(from, to Status) bool {
	if !from.Open() || !to.Valid() {
		return false
	}
	if from == to || to == StatusCancelled {
		return true
	}
	return statusRank[to] > statusRank[from]
}

type PaymentMethod string

const (
	PaymentNone       PaymentMethod = "none"
	PaymentCreditCard PaymentMethod = "credit_card"
)

type PaymentStatus string

const (
	PaymentNotPaid    PaymentStatus = "not_paid"
	PaymentInProgress PaymentStatus = "in_progress"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
)

// MaxQuantity caps a single line item.
const MaxQuantity int64 = 1_000_000

func validQuantity(q int64) bool {
	return q > 0 && q <= MaxQuantity
}

type LineItem struct {
	ID              string
	ProductChoiceID string
	Quantity        int64
}

type Cart struct {
	ID               string
	CustomerID       string
	Status           Status
	PaymentMethod    PaymentMethod
	PaymentStatus    PaymentStatus
	PaymentTimestamp *time.Time
	Items            []LineItem
	TotalPrice       int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CreatorID        string
	LastOpID         string
	TramStatus       bool
	// Version is bumped by the store on every write and checked on update.
	Version int64
}

// NewCart starts a pending cart for customerID holding one line item.
func NewCart(customerID, productChoiceID string, quantity int64, now time.Time) (Cart, error) {
	if !validQuantity(quantity) {
		return Cart{}, ErrInvalidQuantity
	}
	return Cart{
		ID:            uuid.NewString(),
		CustomerID:    customerID,
		Status:        StatusPending,
		PaymentMethod: PaymentNone,
		PaymentStatus: PaymentNotPaid,
		Items: []LineItem{{
			ID:              uuid.NewString(),
			ProductChoiceID: productChoiceID,
			Quantity:        quantity,
		}},
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatorID:  customerID,
		LastOpID:   customerID,
		TramStatus: true,
	}, nil
}

func (c *Cart) Editable() bool {
	return c.Status == StatusPending || c.Status == StatusActive
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) itemIndex(productChoiceID string) int {
	for i, it := range c.Items {
		if it.ProductChoiceID == productChoiceID {
			return i
		}
	}
	return -1
}

func (c *Cart) Item(productChoiceID string) (LineItem, bool) {
	if i := c.itemIndex(productChoiceID); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

// AddItem increments the line item of productChoiceID, or appends a new one.
// The resulting quantity may not exceed MaxQuantity.
func (c *Cart) AddItem(productChoiceID string, quantity int64) error {
	if !validQuantity(quantity) {
		return ErrInvalidQuantity
	}
	if !c.Editable() {
		return ErrCartNotEditable
	}
	if i := c.itemIndex(productChoiceID); i >= 0 {
		if quantity > MaxQuantity-c.Items[i].Quantity {
			return ErrInvalidQuantity
		}
		c.Items[i].Quantity += quantity
		return nil
	}
	c.Items = append(c.Items, LineItem{
		ID:              uuid.NewString(),
		ProductChoiceID: productChoiceID,
		Quantity:        quantity,
	})
	return nil
}

// SetQuantity overwrites the quantity of an existing line item.
func (c *Cart) SetQuantity(productChoiceID string, quantity int64) error {
	if !validQuantity(quantity) {
		return ErrInvalidQuantity
	}
	if !c.Editable() {
		return ErrCartNotEditable
	}
	i := c.itemIndex(productChoiceID)
	if i < 0 {
		return ErrLineItemNotFound
	}
	c.Items[i].Quantity = quantity
	return nil
}

func (c *Cart) RemoveItem(productChoiceID string) error {
	if !c.Editable() {
		return ErrCartNotEditable
	}
	i := c.itemIndex(productChoiceID)
	if i < 0 {
		return ErrLineItemNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}

// Touch records a mutation by actor.
func (c *Cart) Touch(actor string, now time.Time) {
	c.LastOpID = actor
	c.UpdatedAt = now
}

// Activate moves a pending cart to active after a line-item change.
func (c *Cart) Activate() error {
	return c.transition(StatusActive)
}

func (c *Cart) transition(to Status) error {
	if !CanTransition(c.Status, to) {
		return ErrInvalidTransition
	}
	c.Status = to
	return nil
}

// CheckCheckout reports why the cart cannot be checked out, if anything.
func (c *Cart) CheckCheckout() error {
	if !c.Status.Open() {
		return ErrCartNotCheckoutable
	}
	if c.IsEmpty() {
		return ErrEmptyCart
	}
	return nil
}

// Complete marks the cart paid. Stock must already be settled by the caller.
func (c *Cart) Complete(method PaymentMethod, now time.Time) error {
	if err := c.CheckCheckout(); err != nil {
		return err
	}
	if err := c.transition(StatusCompleted); err != nil {
		return err
	}
	c.PaymentMethod = method
	c.PaymentStatus = PaymentPaid
	paidAt := now
	c.PaymentTimestamp = &paidAt
	c.UpdatedAt = now
	return nil
}

func (c *Cart) Cancel(actor string, now time.Time) error {
	if !c.Status.Open() {
		return ErrCartNotCancellable
	}
	if err := c.transition(StatusCancelled); err != nil {
		return err
	}
	c.Touch(actor, now)
	return nil
}

// ProductChoiceIDs returns the distinct product choice ids in item order.
func (c *Cart) ProductChoiceIDs() []string {
	return DistinctChoiceIDs(c.Items)
}

func DistinctChoiceIDs(items []LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductChoiceID]; ok {
			continue
		}
		seen[it.ProductChoiceID] = struct{}{}
		out = append(out, it.ProductChoiceID)
	}
	return out
}

// Clone returns a deep copy.
func (c Cart) Clone() Cart {
	out := c
	out.Items = append([]LineItem(nil), c.Items...)
	if c.PaymentTimestamp != nil {
		ts := *c.PaymentTimestamp
		out.PaymentTimestamp = &ts
	}
	return out
}
