package sales

import (
	"context"

	"github.com/retailerp/backend/internal/domain/inventory"
	"github.com/retailerp/backend/internal/domain/sales"
	"github.com/retailerp/backend/internal/domain/sequence"
)

// TransactionScope provides transactional access to the repositories a
// sale touches. Creating a sale mutates the counter, the stock ledger
// and the sale tables; all of it commits or rolls back as one unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories a sale
// operation needs within one transaction.
type TransactionalRepositories interface {
	// SaleRepo returns the sale repository scoped to the current transaction
	SaleRepo() sales.SaleRepository
	// SaleActionRepo returns the sale audit repository scoped to the current transaction
	SaleActionRepo() sales.ActionRepository
	// StockRepo returns the stock repository scoped to the current transaction
	StockRepo() inventory.StockRepository
	// MovementRepo returns the movement repository scoped to the current transaction
	MovementRepo() inventory.MovementRepository
	// CounterRepo returns the counter repository scoped to the current transaction
	CounterRepo() sequence.CounterRepository
}

// NoOpTransactionScope runs functions without a real transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	saleRepo     sales.SaleRepository
	actionRepo   sales.ActionRepository
	stockRepo    inventory.StockRepository
	movementRepo inventory.MovementRepository
	counterRepo  sequence.CounterRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	saleRepo sales.SaleRepository,
	actionRepo sales.ActionRepository,
	stockRepo inventory.StockRepository,
	movementRepo inventory.MovementRepository,
	counterRepo sequence.CounterRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		saleRepo:     saleRepo,
		actionRepo:   actionRepo,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		counterRepo:  counterRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// SaleRepo returns the sale repository
func (s *NoOpTransactionScope) SaleRepo() sales.SaleRepository { return s.saleRepo }

// SaleActionRepo returns the sale audit repository
func (s *NoOpTransactionScope) SaleActionRepo() sales.ActionRepository { return s.actionRepo }

// StockRepo returns the stock repository
func (s *NoOpTransactionScope) StockRepo() inventory.StockRepository { return s.stockRepo }

// MovementRepo returns the movement repository
func (s *NoOpTransactionScope) MovementRepo() inventory.MovementRepository { return s.movementRepo }

// CounterRepo returns the counter repository
func (s *NoOpTransactionScope) CounterRepo() sequence.CounterRepository { return s.counterRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
