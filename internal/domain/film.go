package domain

import "github.com/shopspring/decimal"

type Film struct {
	ID          int32           `json:"id"`
	Title       string          `json:"title"`
	RentalPrice decimal.Decimal `json:"rental_price"`
	StockCount  int32           `json:"stock_count"`
}

// InStock reports whether at least one copy is available to rent.
func (f Film) InStock() bool {
	return f.StockCount > 0
}
