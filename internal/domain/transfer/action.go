package transfer

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailerp/backend/internal/domain/shared"
)

// ActionType classifies entries in the transfer's append-only audit trail
type ActionType string

const (
	ActionTypeCreated   ActionType = "created"
	ActionTypeApproved  ActionType = "approved"
	ActionTypeRejected  ActionType = "rejected"
	ActionTypeExecuted  ActionType = "executed"
	ActionTypeCancelled ActionType = "cancelled"
)

// IsValid checks if the action type is valid
func (t ActionType) IsValid() bool {
	switch t {
	case ActionTypeCreated, ActionTypeApproved, ActionTypeRejected,
		ActionTypeExecuted, ActionTypeCancelled:
		return true
	}
	return false
}

// Action is one append-only audit row on a transfer request
type Action struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TransferID uuid.UUID  `gorm:"type:uuid;not null;index" json:"transfer_id"`
	Type       ActionType `gorm:"size:20;not null" json:"type"`
	ActorID    uuid.UUID  `gorm:"type:uuid;not null" json:"actor_id"`
	Note       string     `gorm:"size:500" json:"note,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TableName returns the table name for GORM
func (Action) TableName() string {
	return "transfer_actions"
}

// NewAction creates an audit record for a transfer
func NewAction(transferID uuid.UUID, actionType ActionType, actorID uuid.UUID, note string) (*Action, error) {
	if transferID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transfer ID is required")
	}
	if !actionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid action type")
	}
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Actor ID is required")
	}

	return &Action{
		ID:         uuid.New(),
		TransferID: transferID,
		Type:       actionType,
		ActorID:    actorID,
		Note:       note,
		CreatedAt:  time.Now(),
	}, nil
}
