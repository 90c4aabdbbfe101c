package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailerp/backend/internal/domain/shared"
)

// ActionType classifies entries in the sale's append-only audit trail
type ActionType string

const (
	ActionTypeCompleted ActionType = "sale_completed"
	ActionTypeRefunded  ActionType = "refunded"
	ActionTypeCancelled ActionType = "cancelled"
)

// IsValid checks if the action type is valid
func (t ActionType) IsValid() bool {
	switch t {
	case ActionTypeCompleted, ActionTypeRefunded, ActionTypeCancelled:
		return true
	}
	return false
}

// Action is one append-only audit row on a sale. Actions record who did
// what and the money involved; they are never updated or deleted.
type Action struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	Type      ActionType      `gorm:"size:20;not null" json:"type"`
	ActorID   uuid.UUID       `gorm:"type:uuid;not null" json:"actor_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Note      string          `gorm:"size:500" json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName returns the table name for GORM
func (Action) TableName() string {
	return "sales_actions"
}

// NewAction creates an audit record for a sale
func NewAction(saleID uuid.UUID, actionType ActionType, actorID uuid.UUID, amount decimal.Decimal, note string) (*Action, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sale ID is required")
	}
	if !actionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid action type")
	}
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Actor ID is required")
	}

	return &Action{
		ID:        uuid.New(),
		SaleID:    saleID,
		Type:      actionType,
		ActorID:   actorID,
		Amount:    amount,
		Note:      note,
		CreatedAt: time.Now(),
	}, nil
}
