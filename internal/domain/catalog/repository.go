package catalog

import (
	"context"

	"github.com/google/uuid"
)

// StoreRepository defines persistence operations for stores
type StoreRepository interface {
	Save(ctx context.Context, store *Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)
	FindByCode(ctx context.Context, code int) (*Store, error)
	FindAll(ctx context.Context) ([]*Store, error)
	Update(ctx context.Context, store *Store) error
}

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
	Update(ctx context.Context, product *Product) error
}
