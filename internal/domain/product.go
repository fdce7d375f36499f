package domain

// Product mirrors the backend catalog representation. Prices are forwarded
// as-is; the backend owns authoritative decimal arithmetic.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Barcode       string  `json:"barcode"`
	CategoryName  string  `json:"category_name"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
}

// InStock reports whether at least one unit can be sold.
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}
