// Package domain holds the catalog and cart models and the classified errors
// shared by the stores, the page builder and the dispatcher.
package domain

import "github.com/shopspring/decimal"

// Category groups services under one shop menu entry.
type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Service is a purchasable catalog item.
type Service struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Price       decimal.Decimal `db:"price"`
	Description string          `db:"description"`
	CategoryID  int64           `db:"category_id"`
}

// CartLine is one cart entry joined with its service.
type CartLine struct {
	Service  Service
	Quantity int
}

// Subtotal returns price times quantity for the line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Service.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotal sums line subtotals.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
