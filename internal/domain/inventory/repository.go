package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

// StockRepository defines persistence operations for stock items.
// AdjustQuantity must be a single atomic statement so that concurrent
// decrements against the same row cannot breach the non-negative
// invariant.
type StockRepository interface {
	// EnsureExists creates the (product, location) row at zero quantity
	// with the given barcode if it does not exist. Safe to call
	// concurrently; an existing row keeps its barcode.
	EnsureExists(ctx context.Context, productID uuid.UUID, location valueobject.Location, barcode string) error

	// AdjustQuantity atomically applies delta to the stock row and
	// returns the resulting quantity. A negative delta that would take
	// the quantity below zero fails with ErrInsufficientStock and
	// leaves the row unchanged.
	AdjustQuantity(ctx context.Context, productID uuid.UUID, location valueobject.Location, delta int64) (int64, error)

	// Find returns the stock item for a (product, location) pair
	Find(ctx context.Context, productID uuid.UUID, location valueobject.Location) (*StockItem, error)

	// FindByLocation returns all stock items held at a location
	FindByLocation(ctx context.Context, location valueobject.Location) ([]*StockItem, error)

	// FindByProduct returns the product's stock across all locations
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]*StockItem, error)
}

// MovementRepository defines persistence operations for the movement audit log
type MovementRepository interface {
	// Save appends a movement record. Movements are never updated or deleted.
	Save(ctx context.Context, movement *StockMovement) error

	// FindByProduct returns movements for a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*StockMovement, error)

	// FindByReference returns all movements tied to a document number
	FindByReference(ctx context.Context, reference string) ([]*StockMovement, error)
}
