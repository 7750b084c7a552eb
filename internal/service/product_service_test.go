package service_test

import (
	"context"
	"testing"

	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetByBarcode_UsesCache(t *testing.T) {
	tenant := uuid.New()
	p := newProduct(tenant, "Cola", "1.50", 7)
	repo := newStubProductRepo(p)
	cache := newStubBarcodeCache()
	svc := service.NewProductService(repo, cache)
	ctx := context.Background()

	first, err := svc.GetByBarcode(ctx, tenant, p.Barcode)
	require.NoError(t, err)
	assert.Equal(t, "Cola", first.Name)
	assert.Len(t, cache.entries, 1)

	// Served from cache even after the row changes underneath.
	repo.products[p.ID].Name = "Renamed"
	second, err := svc.GetByBarcode(ctx, tenant, p.Barcode)
	require.NoError(t, err)
	assert.Equal(t, "Cola", second.Name)
}

func TestProductService_GetByBarcode_NotFound(t *testing.T) {
	svc := service.NewProductService(newStubProductRepo(), newStubBarcodeCache())

	_, err := svc.GetByBarcode(context.Background(), uuid.New(), "000")
	assert.ErrorIs(t, err, service.ErrProductNotFound)
}

func TestProductService_CreateRejectsDuplicateBarcode(t *testing.T) {
	tenant := uuid.New()
	svc := service.NewProductService(newStubProductRepo(), newStubBarcodeCache())
	req := dto.CreateProductRequest{Barcode: "7791234", Name: "Yerba", Price: decimal.RequireFromString("4.00"), Stock: 3}

	created, err := svc.Create(context.Background(), tenant, req)
	require.NoError(t, err)
	assert.True(t, created.Active)

	_, err = svc.Create(context.Background(), tenant, req)
	assert.ErrorIs(t, err, service.ErrDuplicateBarcode)

	// Barcodes are unique per tenant only.
	_, err = svc.Create(context.Background(), uuid.New(), req)
	assert.NoError(t, err)
}

func TestProductService_UpdateInvalidatesCache(t *testing.T) {
	tenant := uuid.New()
	p := newProduct(tenant, "Cola", "1.50", 7)
	cache := newStubBarcodeCache()
	svc := service.NewProductService(newStubProductRepo(p), cache)
	ctx := context.Background()

	_, err := svc.GetByBarcode(ctx, tenant, p.Barcode)
	require.NoError(t, err)

	price := decimal.RequireFromString("1.75")
	updated, err := svc.Update(ctx, tenant, p.ID, dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))
	assert.Empty(t, cache.entries)

	again, err := svc.GetByBarcode(ctx, tenant, p.Barcode)
	require.NoError(t, err)
	assert.True(t, price.Equal(again.Price))
}

func TestProductService_UpdateKeepsConcurrentStockChange(t *testing.T) {
	tenant := uuid.New()
	p := newProduct(tenant, "Cola", "1.50", 5)
	repo := newStubProductRepo(p)
	repo.beforeUpdate = func() {
		_, ok, err := repo.AddStockTx(nil, tenant, p.ID, -3)
		require.NoError(t, err)
		require.True(t, ok)
	}
	svc := service.NewProductService(repo, newStubBarcodeCache())

	price := decimal.RequireFromString("1.95")
	updated, err := svc.Update(context.Background(), tenant, p.ID, dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, 2, updated.Stock)
	assert.Equal(t, 2, repo.stock(p.ID))
}

func TestProductService_DeactivateAndReactivate(t *testing.T) {
	tenant := uuid.New()
	p := newProduct(tenant, "Cola", "1.50", 7)
	svc := service.NewProductService(newStubProductRepo(p), newStubBarcodeCache())
	ctx := context.Background()

	require.NoError(t, svc.Deactivate(ctx, tenant, p.ID))
	_, err := svc.GetByBarcode(ctx, tenant, p.Barcode)
	assert.ErrorIs(t, err, service.ErrProductNotFound)

	_, err = svc.Snapshot(ctx, tenant, &p.ID, "")
	assert.ErrorIs(t, err, service.ErrProductInactive)

	require.NoError(t, svc.Reactivate(ctx, tenant, p.ID))
	snap, err := svc.Snapshot(ctx, tenant, nil, p.Barcode)
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Stock)

	assert.ErrorIs(t, svc.Deactivate(ctx, tenant, uuid.New()), service.ErrProductNotFound)
}

func TestProductService_ListMarksLowStock(t *testing.T) {
	tenant := uuid.New()
	low := newProduct(tenant, "A-low", "1.00", 1)
	low.MinStock = 2
	ok := newProduct(tenant, "B-ok", "1.00", 10)
	svc := service.NewProductService(newStubProductRepo(low, ok), nil)

	list, err := svc.List(context.Background(), tenant, dto.ProductFilter{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, 2, list.TotalPages)
	assert.True(t, list.Data[0].LowStock)
	assert.False(t, list.Data[1].LowStock)
}
