package transfer

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

// History records one physically executed line movement: which product
// moved, between which locations, how much and who moved it. One row is
// written per line at execution time; rows are never updated.
type History struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TransferID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"transfer_id"`
	LineID        uuid.UUID  `gorm:"type:uuid;not null" json:"line_id"`
	ProductID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	SourceStoreID *uuid.UUID `gorm:"type:uuid" json:"source_store_id,omitempty"`
	DestStoreID   *uuid.UUID `gorm:"type:uuid" json:"dest_store_id,omitempty"`
	Quantity      int64      `gorm:"not null" json:"quantity"`
	MoverID       uuid.UUID  `gorm:"type:uuid;not null" json:"mover_id"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TableName returns the table name for GORM
func (History) TableName() string {
	return "transfer_history"
}

// NewHistory creates a history record for one executed line
func NewHistory(transferID, lineID, productID uuid.UUID, source, dest valueobject.Location, quantity int64, moverID uuid.UUID) (*History, error) {
	if transferID == uuid.Nil || lineID == uuid.Nil || productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transfer, line and product IDs are required")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	if moverID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Mover ID is required")
	}

	return &History{
		ID:            uuid.New(),
		TransferID:    transferID,
		LineID:        lineID,
		ProductID:     productID,
		SourceStoreID: source.StoreIDPtr(),
		DestStoreID:   dest.StoreIDPtr(),
		Quantity:      quantity,
		MoverID:       moverID,
		CreatedAt:     time.Now(),
	}, nil
}
