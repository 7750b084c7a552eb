package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/model"
	"github.com/Safwa9amar/safwanPos-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductRepo is an in-memory ProductRepository. AddStockTx holds the mutex
// across check and write, like the conditional UPDATE it stands in for.
type stubProductRepo struct {
	mu        sync.Mutex
	products  map[uuid.UUID]*model.Product
	findCalls int
	// afterFind runs once after FindByIDs, to simulate a competing writer.
	afterFind func()
	// beforeUpdate runs once at the start of Update, to simulate a competing sale.
	beforeUpdate func()
}

func newStubProductRepo(products ...*model.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.products {
		if existing.TenantID == p.TenantID && existing.Barcode == p.Barcode {
			return repository.ErrDuplicateBarcode
		}
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) get(tenantID, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(tenantID, id)
}

func (r *stubProductRepo) FindByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	r.mu.Lock()
	r.findCalls++
	var out []model.Product
	for _, id := range ids {
		if p, err := r.get(tenantID, id); err == nil {
			out = append(out, *p)
		}
	}
	hook := r.afterFind
	r.afterFind = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, tenantID uuid.UUID, barcode string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.TenantID == tenantID && p.Barcode == barcode && p.Active {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, tenantID uuid.UUID, filter dto.ProductFilter) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if p.TenantID == tenantID && p.Active {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

// Update mirrors the column-restricted UPDATE: stock is never written and is read back.
func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	if hook := r.beforeUpdate; hook != nil {
		r.beforeUpdate = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.products[p.ID]
	if !ok || stored.TenantID != p.TenantID {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Stock = stored.Stock
	r.products[p.ID] = &cp
	p.Stock = stored.Stock
	return nil
}

func (r *stubProductRepo) SetActive(_ context.Context, tenantID, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.TenantID != tenantID {
		return gorm.ErrRecordNotFound
	}
	p.Active = active
	return nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, tenantID, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(tenantID, id)
}

func (r *stubProductRepo) AddStockTx(_ *gorm.DB, tenantID, id uuid.UUID, delta int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.TenantID != tenantID || p.Stock+delta < 0 {
		return 0, false, nil
	}
	p.Stock += delta
	return p.Stock, true, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Stock
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// stubSaleRepo is an in-memory SaleRepository. FindByID attaches products the way
// Preload("Lines.Product") does.
type stubSaleRepo struct {
	mu        sync.Mutex
	sales     map[uuid.UUID]*model.Sale
	products  *stubProductRepo
	createErr error
}

func newStubSaleRepo(products *stubProductRepo) *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale), products: products}
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.Lines = append([]model.SaleLine(nil), s.Lines...)
	r.sales[s.ID] = &cp
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	s, ok := r.sales[id]
	r.mu.Unlock()
	if !ok || s.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	cp.Lines = make([]model.SaleLine, len(s.Lines))
	for i, l := range s.Lines {
		if p, err := r.products.FindByID(context.Background(), tenantID, l.ProductID); err == nil {
			l.Product = p
		}
		cp.Lines[i] = l
	}
	return &cp, nil
}

func (r *stubSaleRepo) List(_ context.Context, tenantID uuid.UUID, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		if s.TenantID == tenantID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

func (r *stubSaleRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sales)
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

type stubMovementRepo struct {
	mu        sync.Mutex
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, tenantID uuid.UUID, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.TenantID != tenantID {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

type stubBarcodeCache struct {
	mu          sync.Mutex
	entries     map[string]model.Product
	gets        int
	invalidated []string
}

func newStubBarcodeCache() *stubBarcodeCache {
	return &stubBarcodeCache{entries: make(map[string]model.Product)}
}

func (c *stubBarcodeCache) Get(_ context.Context, tenantID uuid.UUID, barcode string) (*model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	p, ok := c.entries[repository.BarcodeCacheKey(tenantID, barcode)]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return &p, nil
}

func (c *stubBarcodeCache) Set(_ context.Context, p *model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[repository.BarcodeCacheKey(p.TenantID, p.Barcode)] = *p
	return nil
}

func (c *stubBarcodeCache) Invalidate(_ context.Context, tenantID uuid.UUID, barcodes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range barcodes {
		delete(c.entries, repository.BarcodeCacheKey(tenantID, b))
		c.invalidated = append(c.invalidated, b)
	}
	return nil
}

var _ repository.BarcodeCache = (*stubBarcodeCache)(nil)

type stubReceiptQueue struct {
	mu    sync.Mutex
	sales []uuid.UUID
	err   error
}

func (q *stubReceiptQueue) EnqueueReceipt(_ context.Context, _, saleID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.sales = append(q.sales, saleID)
	return nil
}

type stubDraftStore struct {
	data    map[uuid.UUID][]byte
	saveErr error
}

func newStubDraftStore() *stubDraftStore {
	return &stubDraftStore{data: make(map[uuid.UUID][]byte)}
}

func (s *stubDraftStore) Load(_ context.Context, userID uuid.UUID) ([]byte, error) {
	return s.data[userID], nil
}

func (s *stubDraftStore) Save(_ context.Context, userID uuid.UUID, payload []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data[userID] = payload
	return nil
}

var _ repository.DraftStore = (*stubDraftStore)(nil)

type stubUserRepo struct {
	users map[string]*model.User
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	r.users[u.Email] = u
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := r.users[email]
	if !ok || !u.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubTenantRepo struct {
	tenants map[uuid.UUID]*model.Tenant
}

func (r *stubTenantRepo) Create(_ context.Context, t *model.Tenant) error {
	r.tenants[t.ID] = t
	return nil
}

func (r *stubTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

var errBoom = errors.New("boom")

func newProduct(tenantID uuid.UUID, name, price string, stock int) *model.Product {
	return &model.Product{
		ID:       uuid.New(),
		TenantID: tenantID,
		Barcode:  "BC-" + name,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Active:   true,
	}
}

func line(p *model.Product, qty int) dto.SaleLineRequest {
	return dto.SaleLineRequest{ProductID: p.ID.String(), Quantity: qty, Price: p.Price, Name: p.Name}
}
