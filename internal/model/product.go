package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry and the authoritative stock counter.
// Stock is mutated by sales, manual adjustments and inventory edits; it never goes below zero.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_barcode"`
	Barcode     string          `gorm:"not null;uniqueIndex:idx_products_tenant_barcode"`
	Name        string          `gorm:"index;not null"`
	Description *string
	Category    string          `gorm:"not null;default:''"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Stock       int             `gorm:"not null;default:0"`
	MinStock    int             `gorm:"not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LowStock reports whether the product is at or below its reorder threshold.
func (p *Product) LowStock() bool { return p.Stock <= p.MinStock }
