package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

// MovementType classifies why stock changed
type MovementType string

const (
	MovementTypeReceive     MovementType = "receive"
	MovementTypeSale        MovementType = "sale"
	MovementTypeRefund      MovementType = "refund"
	MovementTypeCancel      MovementType = "cancel"
	MovementTypeTransferOut MovementType = "transfer_out"
	MovementTypeTransferIn  MovementType = "transfer_in"
	MovementTypeAdjustment  MovementType = "adjustment"
)

// IsValid checks if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeReceive, MovementTypeSale, MovementTypeRefund,
		MovementTypeCancel, MovementTypeTransferOut, MovementTypeTransferIn,
		MovementTypeAdjustment:
		return true
	}
	return false
}

// StockMovement is an append-only audit record of one stock change.
// QuantityDelta is positive for additions and negative for removals;
// QuantityAfter is the on-hand balance right after the change applied.
type StockMovement struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	StoreID       *uuid.UUID   `gorm:"type:uuid;index" json:"store_id,omitempty"`
	Type          MovementType `gorm:"size:20;not null" json:"type"`
	QuantityDelta int64        `gorm:"not null" json:"quantity_delta"`
	QuantityAfter int64        `gorm:"not null" json:"quantity_after"`
	// Reference is the document number that caused the movement
	// (sale number, transfer number) when one exists.
	Reference string    `gorm:"size:64;index" json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a movement record
func NewStockMovement(productID uuid.UUID, location valueobject.Location, movementType MovementType, delta, after int64, reference string) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid movement type")
	}
	if delta == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity delta cannot be zero")
	}
	if after < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Resulting quantity cannot be negative")
	}

	return &StockMovement{
		ID:            uuid.New(),
		ProductID:     productID,
		StoreID:       location.StoreIDPtr(),
		Type:          movementType,
		QuantityDelta: delta,
		QuantityAfter: after,
		Reference:     reference,
		CreatedAt:     time.Now(),
	}, nil
}

// Location returns where the movement happened
func (m *StockMovement) Location() valueobject.Location {
	return valueobject.LocationFromStoreIDPtr(m.StoreID)
}
