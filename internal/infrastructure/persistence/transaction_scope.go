package persistence

import (
	"context"

	"gorm.io/gorm"

	appinventory "github.com/retailerp/backend/internal/application/inventory"
	appsales "github.com/retailerp/backend/internal/application/sales"
	appsequence "github.com/retailerp/backend/internal/application/sequence"
	apptransfer "github.com/retailerp/backend/internal/application/transfer"
	"github.com/retailerp/backend/internal/domain/inventory"
	"github.com/retailerp/backend/internal/domain/sales"
	"github.com/retailerp/backend/internal/domain/sequence"
	"github.com/retailerp/backend/internal/domain/transfer"
)

// gormTransactionalRepositories bundles every repository rebuilt on the
// transaction's *gorm.DB. The accessor names are unique across the four
// application scope interfaces, so one bundle satisfies them all.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) CounterRepo() sequence.CounterRepository {
	return NewGormCounterRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockRepo() inventory.StockRepository {
	return NewGormStockRepository(r.tx)
}

func (r *gormTransactionalRepositories) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) SaleRepo() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormTransactionalRepositories) SaleActionRepo() sales.ActionRepository {
	return NewGormSaleActionRepository(r.tx)
}

func (r *gormTransactionalRepositories) TransferRepo() transfer.TransferRepository {
	return NewGormTransferRepository(r.tx)
}

func (r *gormTransactionalRepositories) TransferActionRepo() transfer.ActionRepository {
	return NewGormTransferActionRepository(r.tx)
}

func (r *gormTransactionalRepositories) HistoryRepo() transfer.HistoryRepository {
	return NewGormHistoryRepository(r.tx)
}

// GormSequenceScope implements the sequence service's transaction scope
// on top of gorm's Transaction helper.
type GormSequenceScope struct {
	db *gorm.DB
}

// NewGormSequenceScope creates a new GormSequenceScope
func NewGormSequenceScope(db *gorm.DB) *GormSequenceScope {
	return &GormSequenceScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormSequenceScope) Execute(ctx context.Context, fn func(repos appsequence.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormInventoryScope implements the inventory service's transaction scope
type GormInventoryScope struct {
	db *gorm.DB
}

// NewGormInventoryScope creates a new GormInventoryScope
func NewGormInventoryScope(db *gorm.DB) *GormInventoryScope {
	return &GormInventoryScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormInventoryScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormSalesScope implements the sales service's transaction scope
type GormSalesScope struct {
	db *gorm.DB
}

// NewGormSalesScope creates a new GormSalesScope
func NewGormSalesScope(db *gorm.DB) *GormSalesScope {
	return &GormSalesScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormSalesScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormTransferScope implements the transfer service's transaction scope
type GormTransferScope struct {
	db *gorm.DB
}

// NewGormTransferScope creates a new GormTransferScope
func NewGormTransferScope(db *gorm.DB) *GormTransferScope {
	return &GormTransferScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormTransferScope) Execute(ctx context.Context, fn func(repos apptransfer.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

var _ appsequence.TransactionScope = (*GormSequenceScope)(nil)
var _ appinventory.TransactionScope = (*GormInventoryScope)(nil)
var _ appsales.TransactionScope = (*GormSalesScope)(nil)
var _ apptransfer.TransactionScope = (*GormTransferScope)(nil)

var _ appsequence.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
var _ appinventory.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
var _ appsales.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
var _ apptransfer.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
