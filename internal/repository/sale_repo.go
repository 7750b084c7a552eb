package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type SaleRepository interface {
	// CreateTx inserts the sale together with its lines.
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, tenantID uuid.UUID, filter dto.SaleFilter) ([]model.Sale, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Lines.Product").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&s).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context, tenantID uuid.UUID, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sale{}).Where("tenant_id = ?", tenantID)
	if filter.From != "" {
		from, err := time.Parse(dateLayout, filter.From)
		if err != nil {
			return nil, 0, fmt.Errorf("sale filter from: %w", err)
		}
		q = q.Where("sale_date >= ?", from)
	}
	if filter.To != "" {
		to, err := time.Parse(dateLayout, filter.To)
		if err != nil {
			return nil, 0, fmt.Errorf("sale filter to: %w", err)
		}
		q = q.Where("sale_date < ?", to.AddDate(0, 0, 1))
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Lines.Product").
		Order("sale_date DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}
