package testutil

import (
	"context"

	invapp "github.com/retailerp/backend/internal/application/inventory"
	salesapp "github.com/retailerp/backend/internal/application/sales"
	seqapp "github.com/retailerp/backend/internal/application/sequence"
	transferapp "github.com/retailerp/backend/internal/application/transfer"
)

// The scope adapters expose one World through each application
// package's TransactionScope interface. Execute runs against a deep
// copy that only replaces the world on success, so tests observe real
// rollback behavior.

// SequenceScope adapts a World to the sequence TransactionScope
type SequenceScope struct{ W *World }

// Execute implements seqapp.TransactionScope
func (s SequenceScope) Execute(_ context.Context, fn func(repos seqapp.TransactionalRepositories) error) error {
	return s.W.RunTx(func(tx *World) error {
		return fn(seqapp.NewNoOpTransactionScope(tx.CounterRepo()))
	})
}

// InventoryScope adapts a World to the stock ledger TransactionScope
type InventoryScope struct{ W *World }

// Execute implements invapp.TransactionScope
func (s InventoryScope) Execute(_ context.Context, fn func(repos invapp.TransactionalRepositories) error) error {
	return s.W.RunTx(func(tx *World) error {
		return fn(invapp.NewNoOpTransactionScope(tx.StockRepo(), tx.MovementRepo()))
	})
}

// SalesScope adapts a World to the sales TransactionScope
type SalesScope struct{ W *World }

// Execute implements salesapp.TransactionScope
func (s SalesScope) Execute(_ context.Context, fn func(repos salesapp.TransactionalRepositories) error) error {
	return s.W.RunTx(func(tx *World) error {
		return fn(salesapp.NewNoOpTransactionScope(
			tx.SaleRepo(), tx.SaleActionRepo(), tx.StockRepo(), tx.MovementRepo(), tx.CounterRepo()))
	})
}

// TransferScope adapts a World to the transfer TransactionScope
type TransferScope struct{ W *World }

// Execute implements transferapp.TransactionScope
func (s TransferScope) Execute(_ context.Context, fn func(repos transferapp.TransactionalRepositories) error) error {
	return s.W.RunTx(func(tx *World) error {
		return fn(transferapp.NewNoOpTransactionScope(
			tx.TransferRepo(), tx.TransferActionRepo(), tx.HistoryRepo(), tx.StockRepo(), tx.MovementRepo()))
	})
}
