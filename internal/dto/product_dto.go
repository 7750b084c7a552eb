package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Barcode     string          `json:"barcode"     validate:"required,min=3,max=64"`
	Name        string          `json:"name"        validate:"required,min=2,max=120"`
	Description *string         `json:"description"`
	Category    string          `json:"category"    validate:"max=60"`
	Price       decimal.Decimal `json:"price"       validate:"min=0"`
	CostPrice   decimal.Decimal `json:"cost_price"  validate:"min=0"`
	Stock       int             `json:"stock"       validate:"min=0"`
	MinStock    int             `json:"min_stock"   validate:"min=0"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=2,max=120"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"    validate:"omitempty,max=60"`
	Price       *decimal.Decimal `json:"price"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	MinStock    *int             `json:"min_stock"   validate:"omitempty,min=0"`
}

// AdjustStockRequest is a manual stock edit; Delta may be negative.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,min=3,max=200"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Name     string `form:"name"`
	Category string `form:"category"`
	LowStock bool   `form:"low_stock"`
	Active   string `form:"active"` // "" / "true" = active only, "false" = inactive, "all"
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type StockMovementFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Kind      string `form:"kind"       validate:"omitempty,oneof=sale adjustment"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          string          `json:"id"`
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"min_stock"`
	LowStock    bool            `json:"low_stock"`
	Active      bool            `json:"active"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type StockMovementResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Kind        string  `json:"kind"`
	Delta       int     `json:"delta"`
	StockBefore int     `json:"stock_before"`
	StockAfter  int     `json:"stock_after"`
	Reason      string  `json:"reason"`
	ReferenceID *string `json:"reference_id"`
	CreatedAt   string  `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
