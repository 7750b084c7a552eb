package infra

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Safwa9amar/safwanPos-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSale() *model.Sale {
	return &model.Sale{
		ID:          uuid.New(),
		SaleDate:    time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		TotalAmount: decimal.RequireFromString("7.50"),
		PaymentType: model.PaymentCash,
		Lines: []model.SaleLine{
			{ProductID: uuid.New(), Quantity: 3, UnitPrice: decimal.RequireFromString("1.50"), Product: &model.Product{Name: "Cola 500ml"}},
			{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.RequireFromString("3.00")},
		},
	}
}

func TestRenderReceipt(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReceipt(&buf, sampleSale(), "Corner Shop"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestGenerateReceiptPDF(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	sale := sampleSale()

	path, err := GenerateReceiptPDF(sale, "Corner Shop", dir)
	require.NoError(t, err)
	assert.Equal(t, ReceiptPath(dir, sale.ID), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
