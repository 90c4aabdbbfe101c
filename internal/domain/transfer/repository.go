package transfer

import (
	"context"

	"github.com/google/uuid"
)

// TransferRepository defines persistence operations for transfer requests
type TransferRepository interface {
	// Save persists a new transfer request with its lines
	Save(ctx context.Context, req *TransferRequest) error

	// FindByID returns a request with its lines loaded
	FindByID(ctx context.Context, id uuid.UUID) (*TransferRequest, error)

	// FindByNumber returns a request by its document number
	FindByNumber(ctx context.Context, number string) (*TransferRequest, error)

	// FindByStatus lists requests in a given status, newest first
	FindByStatus(ctx context.Context, status TransferStatus, limit int) ([]*TransferRequest, error)

	// Update persists status and line changes with optimistic locking
	Update(ctx context.Context, req *TransferRequest) error
}

// ActionRepository defines persistence operations for the transfer audit trail
type ActionRepository interface {
	// Save appends an action. Actions are never updated or deleted.
	Save(ctx context.Context, action *Action) error

	// FindByTransfer returns all actions for a request, oldest first
	FindByTransfer(ctx context.Context, transferID uuid.UUID) ([]*Action, error)
}

// HistoryRepository defines persistence operations for executed line movements
type HistoryRepository interface {
	// Save appends a history record. History is never updated or deleted.
	Save(ctx context.Context, history *History) error

	// FindByTransfer returns all history rows for a request, oldest first
	FindByTransfer(ctx context.Context, transferID uuid.UUID) ([]*History, error)
}
