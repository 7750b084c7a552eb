package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement kinds.
const (
	MovementSale       = "sale"
	MovementAdjustment = "adjustment"
)

// StockMovement records one change to Product.Stock made by this service.
// Rows are append-only.
type StockMovement struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Kind        string     `gorm:"type:varchar(20);not null"`
	Delta       int        `gorm:"not null"` // positive = in, negative = out
	StockBefore int        `gorm:"not null"`
	StockAfter  int        `gorm:"not null"`
	Reason      string
	ReferenceID *uuid.UUID `gorm:"type:uuid"` // sale id when Kind is "sale"
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
