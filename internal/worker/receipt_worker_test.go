package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Safwa9amar/safwanPos-sub000/internal/infra"
	"github.com/Safwa9amar/safwanPos-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSaleFinder struct {
	sales map[uuid.UUID]*model.Sale
}

func (s *stubSaleFinder) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	sale, ok := s.sales[id]
	if !ok || sale.TenantID != tenantID {
		return nil, errors.New("record not found")
	}
	return sale, nil
}

func payloadFor(t *testing.T, tenantID, saleID string) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(ReceiptJobPayload{TenantID: tenantID, SaleID: saleID})
	require.NoError(t, err)
	return b
}

func TestReceiptWorker_WritesPDF(t *testing.T) {
	tenant := uuid.New()
	sale := &model.Sale{
		ID:          uuid.New(),
		TenantID:    tenant,
		SaleDate:    time.Now(),
		TotalAmount: decimal.RequireFromString("2.00"),
		PaymentType: model.PaymentCard,
		Lines: []model.SaleLine{
			{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.RequireFromString("1.00"), Product: &model.Product{Name: "Gum"}},
		},
	}
	dir := t.TempDir()
	w := NewReceiptWorker(&stubSaleFinder{sales: map[uuid.UUID]*model.Sale{sale.ID: sale}}, "Shop", dir)

	require.NoError(t, w.Process(context.Background(), payloadFor(t, tenant.String(), sale.ID.String())))

	_, err := os.Stat(infra.ReceiptPath(dir, sale.ID))
	assert.NoError(t, err)
}

func TestReceiptWorker_Errors(t *testing.T) {
	w := NewReceiptWorker(&stubSaleFinder{sales: map[uuid.UUID]*model.Sale{}}, "Shop", t.TempDir())
	ctx := context.Background()

	assert.Error(t, w.Process(ctx, json.RawMessage(`{`)))
	assert.Error(t, w.Process(ctx, payloadFor(t, "nope", uuid.NewString())))
	assert.Error(t, w.Process(ctx, payloadFor(t, uuid.NewString(), "nope")))
	assert.Error(t, w.Process(ctx, payloadFor(t, uuid.NewString(), uuid.NewString())))
}
