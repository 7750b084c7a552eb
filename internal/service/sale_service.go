package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/Safwa9amar/safwanPos-sub000/internal/config"
	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/infra"
	"github.com/Safwa9amar/safwanPos-sub000/internal/model"
	"github.com/Safwa9amar/safwanPos-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	CompleteSale(ctx context.Context, actor Actor, req dto.CompleteSaleRequest) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, tenantID, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, tenantID uuid.UUID, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	Receipt(ctx context.Context, tenantID, id uuid.UUID) (*Receipt, error)
}

// ReceiptQueue schedules receipt rendering for a committed sale.
type ReceiptQueue interface {
	EnqueueReceipt(ctx context.Context, tenantID, saleID uuid.UUID) error
}

// Receipt is either a pre-rendered file on disk or an in-memory PDF.
type Receipt struct {
	Path string
	Data []byte
}

// SaleOptions carries the settings of SaleService that come from config.
type SaleOptions struct {
	PriceSource    string
	BusinessName   string
	PDFStoragePath string
}

type saleService struct {
	repo      repository.SaleRepository
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	cache     repository.BarcodeCache
	receipts  ReceiptQueue
	opts      SaleOptions
	now       func() time.Time
}

func NewSaleService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	cache repository.BarcodeCache,
	receipts ReceiptQueue,
	opts SaleOptions,
) SaleService {
	if opts.PriceSource == "" {
		opts.PriceSource = config.PriceSourceCart
	}
	return &saleService{
		repo:      repo,
		products:  products,
		movements: movements,
		cache:     cache,
		receipts:  receipts,
		opts:      opts,
		now:       time.Now,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

type saleLine struct {
	productID uuid.UUID
	quantity  int
	price     decimal.Decimal
}

// ── CompleteSale ──────────────────────────────────────────────────────────────
//  1. Reject an empty or malformed cart before touching the database
//  2. Bulk-read the products, check existence, active flag and stock per product
//  3. BEGIN TX: conditionally decrement each product, log movements, insert sale + lines
//  4. COMMIT, re-read the sale with product names
//  5. (async) enqueue receipt rendering, best effort

func (s *saleService) CompleteSale(ctx context.Context, actor Actor, req dto.CompleteSaleRequest) (*dto.SaleResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	lines, err := parseSaleLines(req.Items)
	if err != nil {
		return nil, err
	}
	paymentType := req.PaymentType
	if paymentType == "" {
		paymentType = model.PaymentCash
	}
	var customerID *uuid.UUID
	if req.CustomerID != nil && *req.CustomerID != "" {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("%w: customer_id", ErrInvalidInput)
		}
		customerID = &id
	}

	// Quantities are summed per product: two lines of the same product draw from one counter.
	requested := make(map[uuid.UUID]int, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if _, seen := requested[l.productID]; !seen {
			ids = append(ids, l.productID)
		}
		requested[l.productID] += l.quantity
		if requested[l.productID] > dto.MaxLineQuantity {
			return nil, fmt.Errorf("%w: product %s: total quantity exceeds %d", ErrInvalidInput, l.productID, dto.MaxLineQuantity)
		}
	}

	found, err := s.products.FindByIDs(ctx, actor.TenantID, ids)
	if err != nil {
		log.Error().Err(err).Str("tenant_id", actor.TenantID.String()).Msg("sale: product lookup failed")
		return nil, ErrSaleFailed
	}
	catalog := make(map[uuid.UUID]model.Product, len(found))
	for _, p := range found {
		catalog[p.ID] = p
	}
	for _, id := range ids {
		p, ok := catalog[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		if !p.Active {
			return nil, fmt.Errorf("%w: %s", ErrProductInactive, p.Name)
		}
		if p.Stock < requested[id] {
			return nil, &InsufficientStockError{ProductID: id, ProductName: p.Name, Available: p.Stock, Requested: requested[id]}
		}
	}

	sale := model.Sale{
		ID:          uuid.New(),
		TenantID:    actor.TenantID,
		SaleDate:    s.now().UTC(),
		PaymentType: paymentType,
		CustomerID:  customerID,
	}
	if actor.UserID != uuid.Nil {
		cashier := actor.UserID
		sale.CashierID = &cashier
	}
	total := decimal.Zero
	for _, l := range lines {
		price := s.priceFor(l, catalog[l.productID])
		sale.Lines = append(sale.Lines, model.SaleLine{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			ProductID: l.productID,
			Quantity:  l.quantity,
			UnitPrice: price,
		})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.quantity))))
	}
	sale.TotalAmount = total

	// Fixed lock order so concurrent sales over the same products cannot deadlock.
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, id := range ids {
			qty := requested[id]
			after, ok, err := s.products.AddStockTx(tx, actor.TenantID, id, -qty)
			if err != nil {
				return err
			}
			if !ok {
				// Another sale won the race since the pre-check.
				available := 0
				if p, err := s.products.FindByIDTx(tx, actor.TenantID, id); err == nil {
					available = p.Stock
				}
				return &InsufficientStockError{ProductID: id, ProductName: catalog[id].Name, Available: available, Requested: qty}
			}
			saleRef := sale.ID
			mov := &model.StockMovement{
				ID:          uuid.New(),
				TenantID:    actor.TenantID,
				ProductID:   id,
				Kind:        model.MovementSale,
				Delta:       -qty,
				StockBefore: after + qty,
				StockAfter:  after,
				Reason:      "sale",
				ReferenceID: &saleRef,
			}
			if err := s.movements.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return s.repo.CreateTx(tx, &sale)
	})
	if txErr != nil {
		var stockErr *InsufficientStockError
		if errors.As(txErr, &stockErr) {
			return nil, stockErr
		}
		log.Error().Err(txErr).
			Str("tenant_id", actor.TenantID.String()).
			Str("sale_id", sale.ID.String()).
			Msg("sale: transaction failed")
		return nil, ErrSaleFailed
	}

	s.invalidateBarcodes(ctx, actor.TenantID, catalog)

	if s.receipts != nil {
		if err := s.receipts.EnqueueReceipt(ctx, actor.TenantID, sale.ID); err != nil {
			log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("sale: failed to enqueue receipt")
		}
	}

	stored, err := s.repo.FindByID(ctx, actor.TenantID, sale.ID)
	if err != nil {
		// The sale is committed; answer from memory rather than report a failure.
		log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("sale: re-read after commit failed")
		for i := range sale.Lines {
			p := catalog[sale.Lines[i].ProductID]
			sale.Lines[i].Product = &p
		}
		stored = &sale
	}
	return saleToResponse(stored), nil
}

// priceFor applies the configured price source. With the cart source the submitted
// price stands, but a drift from the catalog is logged.
func (s *saleService) priceFor(l saleLine, p model.Product) decimal.Decimal {
	if s.opts.PriceSource == config.PriceSourceCatalog {
		return p.Price
	}
	if !l.price.Equal(p.Price) {
		log.Warn().
			Str("product_id", p.ID.String()).
			Str("submitted", l.price.String()).
			Str("catalog", p.Price.String()).
			Msg("sale: submitted price differs from catalog")
	}
	return l.price
}

func (s *saleService) invalidateBarcodes(ctx context.Context, tenantID uuid.UUID, products map[uuid.UUID]model.Product) {
	if s.cache == nil {
		return
	}
	barcodes := make([]string, 0, len(products))
	for _, p := range products {
		barcodes = append(barcodes, p.Barcode)
	}
	if err := s.cache.Invalidate(ctx, tenantID, barcodes...); err != nil {
		log.Warn().Err(err).Msg("sale: barcode cache invalidation failed")
	}
}

func parseSaleLines(items []dto.SaleLineRequest) ([]saleLine, error) {
	lines := make([]saleLine, 0, len(items))
	for i, item := range items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: product_id", ErrInvalidInput, i+1)
		}
		if item.Quantity < 1 || item.Quantity > dto.MaxLineQuantity {
			return nil, fmt.Errorf("%w: line %d: quantity must be between 1 and %d", ErrInvalidInput, i+1, dto.MaxLineQuantity)
		}
		if item.Price.IsNegative() {
			return nil, fmt.Errorf("%w: line %d: price must not be negative", ErrInvalidInput, i+1)
		}
		lines = append(lines, saleLine{productID: id, quantity: item.Quantity, price: item.Price})
	}
	return lines, nil
}

func (s *saleService) GetSale(ctx context.Context, tenantID, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return saleToResponse(sale), nil
}

// ListSales returns a page of sales, newest first.
func (s *saleService) ListSales(ctx context.Context, tenantID uuid.UUID, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		data = append(data, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Receipt serves the file the worker rendered, or renders one now.
func (s *saleService) Receipt(ctx context.Context, tenantID, id uuid.UUID) (*Receipt, error) {
	sale, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	if s.opts.PDFStoragePath != "" {
		path := infra.ReceiptPath(s.opts.PDFStoragePath, sale.ID)
		if _, err := os.Stat(path); err == nil {
			return &Receipt{Path: path}, nil
		}
	}
	var buf bytes.Buffer
	if err := infra.RenderReceipt(&buf, sale, s.opts.BusinessName); err != nil {
		return nil, err
	}
	return &Receipt{Data: buf.Bytes()}, nil
}

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	lines := make([]dto.SaleLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		name := ""
		if l.Product != nil {
			name = l.Product.Name
		}
		lines = append(lines, dto.SaleLineResponse{
			ProductID:   l.ProductID.String(),
			ProductName: name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal(),
		})
	}
	return &dto.SaleResponse{
		ID:          s.ID.String(),
		SaleDate:    s.SaleDate.Format(time.RFC3339),
		TotalAmount: s.TotalAmount,
		PaymentType: s.PaymentType,
		CustomerID:  uuidPtrString(s.CustomerID),
		CashierID:   uuidPtrString(s.CashierID),
		Lines:       lines,
	}
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
