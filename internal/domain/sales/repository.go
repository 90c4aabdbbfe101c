package sales

import (
	"context"

	"github.com/google/uuid"
)

// SaleRepository defines persistence operations for sales transactions
type SaleRepository interface {
	// Save persists a new sale with its lines
	Save(ctx context.Context, sale *Sale) error

	// FindByID returns a sale with its lines loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByNumber returns a sale by its document number
	FindByNumber(ctx context.Context, number string) (*Sale, error)

	// Update persists status and line changes with optimistic locking
	Update(ctx context.Context, sale *Sale) error
}

// ActionRepository defines persistence operations for the sale audit trail
type ActionRepository interface {
	// Save appends an action. Actions are never updated or deleted.
	Save(ctx context.Context, action *Action) error

	// FindBySale returns all actions for a sale, oldest first
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]*Action, error)
}
