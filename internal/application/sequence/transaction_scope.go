package sequence

import (
	"context"

	"github.com/retailerp/backend/internal/domain/sequence"
)

// TransactionScope provides transactional access to sequence repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to sequence repositories
// within a transaction.
type TransactionalRepositories interface {
	// CounterRepo returns the counter repository scoped to the current transaction
	CounterRepo() sequence.CounterRepository
}

// NoOpTransactionScope runs functions without a real transaction.
// Useful for tests.
type NoOpTransactionScope struct {
	counterRepo sequence.CounterRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(counterRepo sequence.CounterRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{counterRepo: counterRepo}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// CounterRepo returns the counter repository
func (s *NoOpTransactionScope) CounterRepo() sequence.CounterRepository {
	return s.counterRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
