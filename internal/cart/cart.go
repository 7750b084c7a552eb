// Package cart holds the cashier's in-progress line items before checkout.
//
// A Cart is a value: every operation goes through Reduce and returns a new Cart, so the
// same state can be replayed, persisted through the versioned codec, or discarded.
package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultName is the cart a terminal starts with.
const DefaultName = "default"

// Line is one product in a cart. StockAtAddTime is the stock the product had when the
// line was last touched; quantity is kept within it, but the authoritative check happens
// when the sale is submitted.
type Line struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	StockAtAddTime int             `json:"stock_at_add_time"`
}

// Total is unit price × quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of lines, at most one per product.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Subtotal is Σ unit price × quantity. There is no tax or discount model.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// TotalItems is Σ quantity.
func (c Cart) TotalItems() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool { return len(c.Lines) == 0 }

func (c Cart) indexOf(productID uuid.UUID) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}
