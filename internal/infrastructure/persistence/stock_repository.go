package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailerp/backend/internal/domain/inventory"
	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

// GormStockRepository implements inventory.StockRepository using GORM.
// Quantity changes go through one conditional UPDATE so the
// non-negative invariant holds under any concurrency, without
// row locks or retries in application code.
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// EnsureExists creates the stock row at zero quantity if absent.
// ON CONFLICT DO NOTHING makes concurrent creation safe and keeps an
// existing row's barcode.
func (r *GormStockRepository) EnsureExists(ctx context.Context, productID uuid.UUID, location valueobject.Location, barcode string) error {
	item, err := inventory.NewStockItem(productID, location)
	if err != nil {
		return err
	}
	item.Barcode = barcode
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "store_id"}},
			DoNothing: true,
		}).
		Create(item).Error
}

// AdjustQuantity applies delta in a single conditional statement.
// The WHERE guard refuses a decrement that would go below zero; IS NOT
// DISTINCT FROM matches the NULL store_id of the central DC.
func (r *GormStockRepository) AdjustQuantity(ctx context.Context, productID uuid.UUID, location valueobject.Location, delta int64) (int64, error) {
	var quantity int64
	result := r.db.WithContext(ctx).Raw(
		`UPDATE stock_items SET quantity = quantity + ?, updated_at = NOW() `+
			`WHERE product_id = ? AND store_id IS NOT DISTINCT FROM ? AND quantity + ? >= 0 `+
			`RETURNING quantity`,
		delta, productID, location.StoreIDPtr(), delta,
	).Scan(&quantity)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		// Either the row does not exist or the guard refused the
		// decrement; tell them apart for the caller.
		var count int64
		if err := r.locationScope(ctx, productID, location).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, shared.ErrNotFound
		}
		return 0, shared.ErrInsufficientStock
	}
	return quantity, nil
}

// Find returns the stock item for a (product, location) pair
func (r *GormStockRepository) Find(ctx context.Context, productID uuid.UUID, location valueobject.Location) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.locationScope(ctx, productID, location).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByLocation returns all stock items held at a location
func (r *GormStockRepository) FindByLocation(ctx context.Context, location valueobject.Location) ([]*inventory.StockItem, error) {
	var items []*inventory.StockItem
	query := r.db.WithContext(ctx)
	if location.IsCentralDC() {
		query = query.Where("store_id IS NULL")
	} else {
		query = query.Where("store_id = ?", location.StoreID)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByProduct returns the product's stock across all locations
func (r *GormStockRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]*inventory.StockItem, error) {
	var items []*inventory.StockItem
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormStockRepository) locationScope(ctx context.Context, productID uuid.UUID, location valueobject.Location) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&inventory.StockItem{}).Where("product_id = ?", productID)
	if location.IsCentralDC() {
		return query.Where("store_id IS NULL")
	}
	return query.Where("store_id = ?", location.StoreID)
}

// GormMovementRepository implements inventory.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Save appends a movement record
func (r *GormMovementRepository) Save(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByProduct returns movements for a product, newest first
func (r *GormMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*inventory.StockMovement, error) {
	var movements []*inventory.StockMovement
	query := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByReference returns all movements tied to a document number
func (r *GormMovementRepository) FindByReference(ctx context.Context, reference string) ([]*inventory.StockMovement, error) {
	var movements []*inventory.StockMovement
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).Order("created_at").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

var _ inventory.StockRepository = (*GormStockRepository)(nil)
var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
