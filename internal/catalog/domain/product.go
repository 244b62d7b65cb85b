package domain

// Choice is one purchasable variant of a product with its own price and stock.
type Choice struct {
	ID          string
	ProductID   string
	ProductName string
	Color       string
	Size        string
	ImageURL    string
	Price       int64
	Quantity    int64
}
