package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Business errors. Handlers map them to HTTP statuses; anything else is a 500.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidInput       = errors.New("invalid input")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductInactive    = errors.New("product is inactive")
	ErrSaleNotFound       = errors.New("sale not found")
	ErrSaleFailed         = errors.New("failed to complete sale")
	ErrNegativeStock      = errors.New("stock cannot go below zero")
	ErrDuplicateBarcode   = errors.New("a product with this barcode already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCartNotFound       = errors.New("cart not found")
)

// InsufficientStockError reports the first line whose quantity exceeds available stock.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available, %d requested", e.ProductName, e.Available, e.Requested)
}

// Actor identifies who performs an operation and for which tenant.
type Actor struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}
