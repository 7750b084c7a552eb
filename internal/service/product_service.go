package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Safwa9amar/safwanPos-sub000/internal/cart"
	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/model"
	"github.com/Safwa9amar/safwanPos-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProductService is the product read-model plus catalog maintenance.
type ProductService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*dto.ProductResponse, error)
	GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*dto.ProductResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, tenantID, id uuid.UUID) error
	Reactivate(ctx context.Context, tenantID, id uuid.UUID) error
	// Snapshot resolves a product by id, or by barcode when id is nil, for a cart line.
	Snapshot(ctx context.Context, tenantID uuid.UUID, id *uuid.UUID, barcode string) (cart.Product, error)
}

type productService struct {
	repo  repository.ProductRepository
	cache repository.BarcodeCache
}

func NewProductService(repo repository.ProductRepository, cache repository.BarcodeCache) ProductService {
	return &productService{repo: repo, cache: cache}
}

func (s *productService) Create(ctx context.Context, tenantID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Barcode:     strings.TrimSpace(req.Barcode),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		Active:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateBarcode) {
			return nil, ErrDuplicateBarcode
		}
		return nil, err
	}
	s.invalidate(ctx, tenantID, p.Barcode)
	return productToResponse(p), nil
}

func (s *productService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

// GetByBarcode reads through the barcode cache. Cache failures degrade to a database read.
func (s *productService) GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*dto.ProductResponse, error) {
	p, err := s.findByBarcode(ctx, tenantID, barcode)
	if err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) findByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*model.Product, error) {
	if s.cache != nil {
		if p, err := s.cache.Get(ctx, tenantID, barcode); err == nil {
			return p, nil
		} else if !errors.Is(err, repository.ErrCacheMiss) {
			log.Warn().Err(err).Msg("product: barcode cache read failed")
		}
	}

	p, err := s.repo.FindByBarcode(ctx, tenantID, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			log.Warn().Err(err).Msg("product: barcode cache write failed")
		}
	}
	return p, nil
}

func (s *productService) List(ctx context.Context, tenantID uuid.UUID, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	products, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// Update edits catalog fields. Stock is not editable here; use a stock adjustment.
func (s *productService) Update(ctx context.Context, tenantID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		p.Price = *req.Price
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, fmt.Errorf("%w: cost_price must not be negative", ErrInvalidInput)
		}
		p.CostPrice = *req.CostPrice
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateBarcode) {
			return nil, ErrDuplicateBarcode
		}
		return nil, err
	}
	s.invalidate(ctx, tenantID, p.Barcode)
	return productToResponse(p), nil
}

func (s *productService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.setActive(ctx, tenantID, id, false)
}

func (s *productService) Reactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.setActive(ctx, tenantID, id, true)
}

func (s *productService) setActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error {
	p, err := s.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, tenantID, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.invalidate(ctx, tenantID, p.Barcode)
	return nil
}

func (s *productService) Snapshot(ctx context.Context, tenantID uuid.UUID, id *uuid.UUID, barcode string) (cart.Product, error) {
	var (
		p   *model.Product
		err error
	)
	switch {
	case id != nil:
		p, err = s.find(ctx, tenantID, *id)
	case barcode != "":
		p, err = s.findByBarcode(ctx, tenantID, barcode)
	default:
		return cart.Product{}, fmt.Errorf("%w: product_id or barcode is required", ErrInvalidInput)
	}
	if err != nil {
		return cart.Product{}, err
	}
	if !p.Active {
		return cart.Product{}, fmt.Errorf("%w: %s", ErrProductInactive, p.Name)
	}
	return cart.Product{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock}, nil
}

func (s *productService) find(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *productService) invalidate(ctx context.Context, tenantID uuid.UUID, barcode string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tenantID, barcode); err != nil {
		log.Warn().Err(err).Str("barcode", barcode).Msg("product: barcode cache invalidation failed")
	}
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID.String(),
		Barcode:     p.Barcode,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		CostPrice:   p.CostPrice,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		LowStock:    p.LowStock(),
		Active:      p.Active,
	}
}
