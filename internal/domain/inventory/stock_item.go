package inventory

import (
	"github.com/google/uuid"

	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

// StockItem tracks the on-hand quantity of one product at one location.
// One row exists per (product, location) pair. Quantity never goes
// negative; decrements that would breach zero fail instead.
type StockItem struct {
	shared.BaseEntity
	ProductID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_stock_product_location" json:"product_id"`
	StoreID   *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_stock_product_location" json:"store_id,omitempty"`
	Quantity  int64      `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	// Barcode identifies the physical stock record on shelf labels.
	// Assigned when the row is first created by an inbound movement.
	Barcode       string `gorm:"size:64;index" json:"barcode,omitempty"`
	ShelfLocation string `gorm:"size:100" json:"shelf_location,omitempty"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a stock item at zero quantity
func NewStockItem(productID uuid.UUID, location valueobject.Location) (*StockItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	if err := location.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	return &StockItem{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		StoreID:    location.StoreIDPtr(),
		Quantity:   0,
	}, nil
}

// IsLowStock reports whether the on-hand quantity is below the
// product's advisory minimum.
func (s *StockItem) IsLowStock(minLevel int64) bool {
	return minLevel > 0 && s.Quantity < minLevel
}

// Location returns the stock item's location
func (s *StockItem) Location() valueobject.Location {
	return valueobject.LocationFromStoreIDPtr(s.StoreID)
}

// CanDecrement reports whether qty units can be removed without going negative
func (s *StockItem) CanDecrement(qty int64) bool {
	return qty > 0 && s.Quantity >= qty
}

// Increment adds stock. Used by receiving, refunds and transfer arrivals.
func (s *StockItem) Increment(qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	s.Quantity += qty
	return nil
}

// Decrement removes stock, enforcing the non-negative invariant
func (s *StockItem) Decrement(qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	if s.Quantity < qty {
		return shared.ErrInsufficientStock
	}
	s.Quantity -= qty
	return nil
}
