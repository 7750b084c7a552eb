package dto

import "github.com/shopspring/decimal"

// CartActionRequest applies one reducer action to a named cart.
// For ADD_ITEM either ProductID or Barcode identifies the product.
type CartActionRequest struct {
	Type      string `json:"type"       validate:"required,oneof=ADD_ITEM SET_QUANTITY REMOVE_ITEM CLEAR"`
	ProductID string `json:"product_id" validate:"omitempty,uuid"`
	Barcode   string `json:"barcode"`
	Quantity  int    `json:"quantity"`
}

type CartLineResponse struct {
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	StockAtAddTime int             `json:"stock_at_add_time"`
}

type CartResponse struct {
	Name       string             `json:"name"`
	Lines      []CartLineResponse `json:"lines"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	TotalItems int                `json:"total_items"`
	Notice     string             `json:"notice,omitempty"`
}

// CartCheckoutRequest completes the sale of a named cart.
type CartCheckoutRequest struct {
	PaymentType string  `json:"payment_type" validate:"omitempty,oneof=cash card transfer credit"`
	CustomerID  *string `json:"customer_id"  validate:"omitempty,uuid"`
}
