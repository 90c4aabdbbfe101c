package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/transfer"
)

// GormTransferRepository implements transfer.TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// Save persists a new transfer request with its lines
func (r *GormTransferRepository) Save(ctx context.Context, req *transfer.TransferRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID returns a request with its lines loaded
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*transfer.TransferRequest, error) {
	var req transfer.TransferRequest
	if err := r.db.WithContext(ctx).Preload("Lines").First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindByNumber returns a request by its document number
func (r *GormTransferRepository) FindByNumber(ctx context.Context, number string) (*transfer.TransferRequest, error) {
	var req transfer.TransferRequest
	if err := r.db.WithContext(ctx).Preload("Lines").First(&req, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindByStatus lists requests in a given status, newest first
func (r *GormTransferRepository) FindByStatus(ctx context.Context, status transfer.TransferStatus, limit int) ([]*transfer.TransferRequest, error) {
	var reqs []*transfer.TransferRequest
	query := r.db.WithContext(ctx).Preload("Lines").
		Where("status = ?", status).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// Update persists status and line changes with optimistic locking. The
// aggregate has already incremented its version; the WHERE clause pins
// the previous one, so a concurrent writer loses cleanly.
func (r *GormTransferRepository) Update(ctx context.Context, req *transfer.TransferRequest) error {
	result := r.db.WithContext(ctx).
		Model(&transfer.TransferRequest{}).
		Where("id = ? AND version = ?", req.ID, req.Version-1).
		Updates(map[string]any{
			"status":     req.Status,
			"note":       req.Note,
			"version":    req.Version,
			"updated_at": req.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	for i := range req.Lines {
		line := &req.Lines[i]
		if err := r.db.WithContext(ctx).
			Model(&transfer.TransferLine{}).
			Where("id = ?", line.ID).
			Updates(map[string]any{
				"approved_quantity":    line.ApprovedQuantity,
				"transferred_quantity": line.TransferredQuantity,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

// GormTransferActionRepository implements transfer.ActionRepository using GORM
type GormTransferActionRepository struct {
	db *gorm.DB
}

// NewGormTransferActionRepository creates a new GormTransferActionRepository
func NewGormTransferActionRepository(db *gorm.DB) *GormTransferActionRepository {
	return &GormTransferActionRepository{db: db}
}

// Save appends an action record
func (r *GormTransferActionRepository) Save(ctx context.Context, action *transfer.Action) error {
	return r.db.WithContext(ctx).Create(action).Error
}

// FindByTransfer returns all actions for a request, oldest first
func (r *GormTransferActionRepository) FindByTransfer(ctx context.Context, transferID uuid.UUID) ([]*transfer.Action, error) {
	var actions []*transfer.Action
	if err := r.db.WithContext(ctx).Where("transfer_id = ?", transferID).Order("created_at").Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

// GormHistoryRepository implements transfer.HistoryRepository using GORM
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Save appends a history record
func (r *GormHistoryRepository) Save(ctx context.Context, history *transfer.History) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// FindByTransfer returns all history rows for a request, oldest first
func (r *GormHistoryRepository) FindByTransfer(ctx context.Context, transferID uuid.UUID) ([]*transfer.History, error) {
	var rows []*transfer.History
	if err := r.db.WithContext(ctx).Where("transfer_id = ?", transferID).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

var _ transfer.TransferRepository = (*GormTransferRepository)(nil)
var _ transfer.ActionRepository = (*GormTransferActionRepository)(nil)
var _ transfer.HistoryRepository = (*GormHistoryRepository)(nil)
