package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/model"
	"github.com/Safwa9amar/safwanPos-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InventoryService handles manual stock edits and the movement ledger.
type InventoryService interface {
	AdjustStock(ctx context.Context, actor Actor, productID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockMovementResponse, error)
	ListMovements(ctx context.Context, tenantID uuid.UUID, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error)
}

type inventoryService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	cache     repository.BarcodeCache
}

func NewInventoryService(products repository.ProductRepository, movements repository.StockMovementRepository, cache repository.BarcodeCache) InventoryService {
	return &inventoryService{products: products, movements: movements, cache: cache}
}

// AdjustStock applies delta with the same conditional update sales use, so a negative
// adjustment racing a sale can never drive stock below zero.
func (s *inventoryService) AdjustStock(ctx context.Context, actor Actor, productID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockMovementResponse, error) {
	if req.Delta == 0 {
		return nil, fmt.Errorf("%w: delta must not be zero", ErrInvalidInput)
	}
	p, err := s.products.FindByID(ctx, actor.TenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	var mov model.StockMovement
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		after, ok, err := s.products.AddStockTx(tx, actor.TenantID, productID, req.Delta)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNegativeStock
		}
		mov = model.StockMovement{
			ID:          uuid.New(),
			TenantID:    actor.TenantID,
			ProductID:   productID,
			Kind:        model.MovementAdjustment,
			Delta:       req.Delta,
			StockBefore: after - req.Delta,
			StockAfter:  after,
			Reason:      req.Reason,
			CreatedAt:   time.Now().UTC(),
		}
		return s.movements.CreateTx(tx, &mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, actor.TenantID, p.Barcode); err != nil {
			log.Warn().Err(err).Msg("inventory: barcode cache invalidation failed")
		}
	}
	mov.Product = p
	return movementToResponse(&mov), nil
}

func (s *inventoryService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	f := repository.StockMovementFilter{Kind: filter.Kind, Page: filter.Page, Limit: filter.Limit}
	if filter.ProductID != "" {
		id, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product_id", ErrInvalidInput)
		}
		f.ProductID = &id
	}
	movements, total, err := s.movements.List(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		data = append(data, *movementToResponse(&movements[i]))
	}
	return &dto.StockMovementListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func movementToResponse(m *model.StockMovement) *dto.StockMovementResponse {
	name := ""
	if m.Product != nil {
		name = m.Product.Name
	}
	return &dto.StockMovementResponse{
		ID:          m.ID.String(),
		ProductID:   m.ProductID.String(),
		ProductName: name,
		Kind:        m.Kind,
		Delta:       m.Delta,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Reason:      m.Reason,
		ReferenceID: uuidPtrString(m.ReferenceID),
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}
