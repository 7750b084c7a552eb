package service_test

import (
	"context"
	"testing"

	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/model"
	"github.com/Safwa9amar/safwanPos-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustStock(t *testing.T) {
	actor := service.Actor{TenantID: uuid.New(), UserID: uuid.New()}
	p := newProduct(actor.TenantID, "Flour", "2.00", 4)
	products := newStubProductRepo(p)
	movements := &stubMovementRepo{}
	cache := newStubBarcodeCache()
	svc := service.NewInventoryService(products, movements, cache)
	ctx := context.Background()

	mov, err := svc.AdjustStock(ctx, actor, p.ID, dto.AdjustStockRequest{Delta: 6, Reason: "delivery"})
	require.NoError(t, err)
	assert.Equal(t, 4, mov.StockBefore)
	assert.Equal(t, 10, mov.StockAfter)
	assert.Equal(t, "Flour", mov.ProductName)
	assert.Equal(t, 10, products.stock(p.ID))
	assert.Contains(t, cache.invalidated, p.Barcode)

	_, err = svc.AdjustStock(ctx, actor, p.ID, dto.AdjustStockRequest{Delta: -11, Reason: "shrinkage"})
	assert.ErrorIs(t, err, service.ErrNegativeStock)
	assert.Equal(t, 10, products.stock(p.ID))

	_, err = svc.AdjustStock(ctx, actor, uuid.New(), dto.AdjustStockRequest{Delta: 1, Reason: "x"})
	assert.ErrorIs(t, err, service.ErrProductNotFound)

	list, err := svc.ListMovements(ctx, actor.TenantID, dto.StockMovementFilter{ProductID: p.ID.String(), Kind: model.MovementAdjustment, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	_, err = svc.ListMovements(ctx, actor.TenantID, dto.StockMovementFilter{ProductID: "bad"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
