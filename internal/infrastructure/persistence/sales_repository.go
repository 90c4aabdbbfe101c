package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailerp/backend/internal/domain/sales"
	"github.com/retailerp/backend/internal/domain/shared"
)

// GormSaleRepository implements sales.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Save persists a new sale with its lines
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID returns a sale with its lines loaded
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).Preload("Lines").First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindByNumber returns a sale by its document number
func (r *GormSaleRepository) FindByNumber(ctx context.Context, number string) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).Preload("Lines").First(&sale, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// Update persists status and line changes with optimistic locking. The
// aggregate has already incremented its version; the WHERE clause pins
// the previous one, so a concurrent writer loses cleanly.
func (r *GormSaleRepository) Update(ctx context.Context, sale *sales.Sale) error {
	result := r.db.WithContext(ctx).
		Model(&sales.Sale{}).
		Where("id = ? AND version = ?", sale.ID, sale.Version-1).
		Updates(map[string]any{
			"status":     sale.Status,
			"version":    sale.Version,
			"updated_at": sale.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	for i := range sale.Lines {
		line := &sale.Lines[i]
		if err := r.db.WithContext(ctx).
			Model(&sales.SaleLine{}).
			Where("id = ?", line.ID).
			Update("refunded_quantity", line.RefundedQuantity).Error; err != nil {
			return err
		}
	}
	return nil
}

// GormSaleActionRepository implements sales.ActionRepository using GORM
type GormSaleActionRepository struct {
	db *gorm.DB
}

// NewGormSaleActionRepository creates a new GormSaleActionRepository
func NewGormSaleActionRepository(db *gorm.DB) *GormSaleActionRepository {
	return &GormSaleActionRepository{db: db}
}

// Save appends an action record
func (r *GormSaleActionRepository) Save(ctx context.Context, action *sales.Action) error {
	return r.db.WithContext(ctx).Create(action).Error
}

// FindBySale returns all actions for a sale, oldest first
func (r *GormSaleActionRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]*sales.Action, error) {
	var actions []*sales.Action
	if err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Order("created_at").Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

var _ sales.SaleRepository = (*GormSaleRepository)(nil)
var _ sales.ActionRepository = (*GormSaleActionRepository)(nil)
