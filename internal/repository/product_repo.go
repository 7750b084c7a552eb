package repository

import (
	"context"
	"errors"

	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateBarcode is returned when a tenant already has a product with the barcode.
var ErrDuplicateBarcode = errors.New("barcode already exists")

const pgUniqueViolation = "23505"

// ProductRepository defines the data access contract for products.
// Every query is scoped to a tenant.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Product, error)
	FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*model.Product, error)
	List(ctx context.Context, tenantID uuid.UUID, filter dto.ProductFilter) ([]model.Product, int64, error)
	// Update writes the catalog columns of p only. Stock is owned by AddStockTx;
	// p.Stock is refreshed from the row.
	Update(ctx context.Context, p *model.Product) error
	SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error

	// Used inside transactions, callers must pass the tx instance.
	FindByIDTx(tx *gorm.DB, tenantID, id uuid.UUID) (*model.Product, error)
	// AddStockTx applies delta only if the resulting stock stays >= 0, in a single
	// conditional UPDATE. It returns the new stock, or ok=false when no row matched.
	AddStockTx(tx *gorm.DB, tenantID, id uuid.UUID, delta int) (stock int, ok bool, err error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return translateUnique(r.db.WithContext(ctx).Create(p).Error)
}

func (r *productRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), tenantID, id)
}

func (r *productRepo) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND barcode = ? AND active = true", tenantID, barcode).
		First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, tenantID uuid.UUID, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("tenant_id = ?", tenantID)

	// Active filter: "false" = inactive, "all" = both, anything else = active only
	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
	default:
		q = q.Where("active = true")
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.LowStock {
		q = q.Where("stock <= min_stock")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

// catalogColumns are the only columns Update may write.
var catalogColumns = []string{"name", "description", "category", "price", "cost_price", "min_stock", "updated_at"}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	res := r.db.WithContext(ctx).Model(p).
		Clauses(clause.Returning{}).
		Where("tenant_id = ?", p.TenantID).
		Select(catalogColumns).
		Updates(p)
	if res.Error != nil {
		return translateUnique(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, tenantID, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Where("id = ? AND tenant_id = ?", id, tenantID).First(&p).Error
	return &p, err
}

func (r *productRepo) AddStockTx(tx *gorm.DB, tenantID, id uuid.UUID, delta int) (int, bool, error) {
	var p model.Product
	res := tx.Model(&p).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "stock"}}}).
		Where("id = ? AND tenant_id = ? AND stock + ? >= 0", id, tenantID, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	return p.Stock, true, nil
}

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateBarcode
	}
	return err
}
