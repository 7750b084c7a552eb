package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment types accepted on a sale.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentCredit   = "credit"
)

// Sale is an immutable record of a completed checkout.
// It is written once, together with its lines, inside the sale transaction.
type Sale struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleDate    time.Time       `gorm:"not null;index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentType string          `gorm:"type:varchar(20);not null"`
	CustomerID  *uuid.UUID      `gorm:"type:uuid"`
	CashierID   *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt   time.Time

	Lines []SaleLine `gorm:"foreignKey:SaleID"`
}

// SaleLine is one product row of a Sale, priced at the moment of sale.
type SaleLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// LineTotal is quantity × unit price.
func (l SaleLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
