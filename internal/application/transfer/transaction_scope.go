package transfer

import (
	"context"

	"github.com/retailerp/backend/internal/domain/inventory"
	"github.com/retailerp/backend/internal/domain/transfer"
)

// TransactionScope provides transactional access to the repositories a
// transfer touches. Executing a transfer moves stock on both sides and
// writes audit rows; all of it commits or rolls back as one unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories a
// transfer operation needs within one transaction.
type TransactionalRepositories interface {
	// TransferRepo returns the transfer repository scoped to the current transaction
	TransferRepo() transfer.TransferRepository
	// TransferActionRepo returns the transfer audit repository scoped to the current transaction
	TransferActionRepo() transfer.ActionRepository
	// HistoryRepo returns the transfer history repository scoped to the current transaction
	HistoryRepo() transfer.HistoryRepository
	// StockRepo returns the stock repository scoped to the current transaction
	StockRepo() inventory.StockRepository
	// MovementRepo returns the movement repository scoped to the current transaction
	MovementRepo() inventory.MovementRepository
}

// NoOpTransactionScope runs functions without a real transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	transferRepo transfer.TransferRepository
	actionRepo   transfer.ActionRepository
	historyRepo  transfer.HistoryRepository
	stockRepo    inventory.StockRepository
	movementRepo inventory.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	transferRepo transfer.TransferRepository,
	actionRepo transfer.ActionRepository,
	historyRepo transfer.HistoryRepository,
	stockRepo inventory.StockRepository,
	movementRepo inventory.MovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		transferRepo: transferRepo,
		actionRepo:   actionRepo,
		historyRepo:  historyRepo,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// TransferRepo returns the transfer repository
func (s *NoOpTransactionScope) TransferRepo() transfer.TransferRepository { return s.transferRepo }

// TransferActionRepo returns the transfer audit repository
func (s *NoOpTransactionScope) TransferActionRepo() transfer.ActionRepository { return s.actionRepo }

// HistoryRepo returns the transfer history repository
func (s *NoOpTransactionScope) HistoryRepo() transfer.HistoryRepository { return s.historyRepo }

// StockRepo returns the stock repository
func (s *NoOpTransactionScope) StockRepo() inventory.StockRepository { return s.stockRepo }

// MovementRepo returns the movement repository
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository { return s.movementRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
