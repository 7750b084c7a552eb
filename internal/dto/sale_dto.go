package dto

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// MaxLineQuantity bounds the units of one product in a sale, summed across lines.
const MaxLineQuantity = 1_000_000

// SaleLineRequest is one cart line as submitted at checkout.
type SaleLineRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,min=1,max=1000000"`
	Price     decimal.Decimal `json:"price"      validate:"min=0"`
	Name      string          `json:"name"`
}

// CompleteSaleRequest is the body of POST /api/sales.
// The body may also be a bare JSON array of lines; payment type then defaults to cash.
type CompleteSaleRequest struct {
	Items       []SaleLineRequest `json:"items"        validate:"dive"`
	PaymentType string            `json:"payment_type" validate:"omitempty,oneof=cash card transfer credit"`
	CustomerID  *string           `json:"customer_id"  validate:"omitempty,uuid"`
}

// UnmarshalJSON accepts both the object form and a bare array of lines.
func (r *CompleteSaleRequest) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []SaleLineRequest
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*r = CompleteSaleRequest{Items: items}
		return nil
	}
	type plain CompleteSaleRequest
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*r = CompleteSaleRequest(p)
	return nil
}

// SaleFilter is bound from the query string of GET /api/sales.
type SaleFilter struct {
	From  string `form:"from"  validate:"omitempty,datetime=2006-01-02"` // inclusive
	To    string `form:"to"    validate:"omitempty,datetime=2006-01-02"` // inclusive
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleLineResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type SaleResponse struct {
	ID          string             `json:"id"`
	SaleDate    string             `json:"sale_date"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	PaymentType string             `json:"payment_type"`
	CustomerID  *string            `json:"customer_id"`
	CashierID   *string            `json:"cashier_id"`
	Lines       []SaleLineResponse `json:"lines"`
}

// SaleResult is the envelope of the sale completion endpoint.
type SaleResult struct {
	Success bool          `json:"success"`
	Sale    *SaleResponse `json:"sale,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
