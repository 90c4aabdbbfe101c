package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/retailerp/backend/internal/domain/inventory"
	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

// The ledger helpers operate on explicit repositories so that other
// services (sales, transfers) can run them inside their own
// transaction scopes. Every quantity change writes exactly one
// movement row alongside the stock update.

// IncreaseStock adds qty units at a location, creating the stock row on
// first use, and records a movement. Returns the resulting quantity.
func IncreaseStock(
	ctx context.Context,
	stocks inventory.StockRepository,
	movements inventory.MovementRepository,
	productID uuid.UUID,
	location valueobject.Location,
	qty int64,
	movementType inventory.MovementType,
	reference string,
	barcode string,
) (int64, error) {
	if qty <= 0 {
		return 0, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}

	if err := stocks.EnsureExists(ctx, productID, location, barcode); err != nil {
		return 0, err
	}
	after, err := stocks.AdjustQuantity(ctx, productID, location, qty)
	if err != nil {
		return 0, err
	}

	movement, err := inventory.NewStockMovement(productID, location, movementType, qty, after, reference)
	if err != nil {
		return 0, err
	}
	if err := movements.Save(ctx, movement); err != nil {
		return 0, err
	}
	return after, nil
}

// DecreaseStock removes qty units at a location and records a movement.
// The decrement is a single conditional statement: it fails with
// ErrInsufficientStock rather than taking the quantity below zero.
func DecreaseStock(
	ctx context.Context,
	stocks inventory.StockRepository,
	movements inventory.MovementRepository,
	productID uuid.UUID,
	location valueobject.Location,
	qty int64,
	movementType inventory.MovementType,
	reference string,
) (int64, error) {
	if qty <= 0 {
		return 0, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}

	after, err := stocks.AdjustQuantity(ctx, productID, location, -qty)
	if err != nil {
		return 0, err
	}

	movement, err := inventory.NewStockMovement(productID, location, movementType, -qty, after, reference)
	if err != nil {
		return 0, err
	}
	if err := movements.Save(ctx, movement); err != nil {
		return 0, err
	}
	return after, nil
}

// MoveStock moves qty units between two locations, writing an outbound
// and an inbound movement. Callers must run it inside one transaction
// scope so the pair commits or rolls back together.
func MoveStock(
	ctx context.Context,
	stocks inventory.StockRepository,
	movements inventory.MovementRepository,
	productID uuid.UUID,
	from, to valueobject.Location,
	qty int64,
	reference string,
	destBarcode string,
) error {
	if from.Equals(to) {
		return shared.ErrSameLocation
	}

	if _, err := DecreaseStock(ctx, stocks, movements, productID, from, qty, inventory.MovementTypeTransferOut, reference); err != nil {
		return err
	}
	_, err := IncreaseStock(ctx, stocks, movements, productID, to, qty, inventory.MovementTypeTransferIn, reference, destBarcode)
	return err
}
