package transfer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

// TransferStatus represents the status of a transfer request
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusApproved  TransferStatus = "approved"
	TransferStatusRejected  TransferStatus = "rejected"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusCancelled TransferStatus = "cancelled"
)

// IsValid checks if the transfer status is valid
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusPending, TransferStatusApproved, TransferStatusRejected,
		TransferStatusCompleted, TransferStatusCancelled:
		return true
	}
	return false
}

// TransferPriority ranks how urgently a request should be picked up
type TransferPriority string

const (
	TransferPriorityLow    TransferPriority = "low"
	TransferPriorityNormal TransferPriority = "normal"
	TransferPriorityHigh   TransferPriority = "high"
)

// IsValid checks if the transfer priority is valid
func (p TransferPriority) IsValid() bool {
	switch p {
	case TransferPriorityLow, TransferPriorityNormal, TransferPriorityHigh:
		return true
	}
	return false
}

// CanTransitionTo checks if transitioning to the target status is allowed
func (s TransferStatus) CanTransitionTo(target TransferStatus) bool {
	switch s {
	case TransferStatusPending:
		return target == TransferStatusApproved ||
			target == TransferStatusRejected ||
			target == TransferStatusCancelled
	case TransferStatusApproved:
		return target == TransferStatusCompleted ||
			target == TransferStatusCancelled
	default:
		return false
	}
}

// TransferRequest moves stock between two locations through an
// approval workflow. Stock only moves at execution time; creation and
// approval never touch the ledger.
type TransferRequest struct {
	shared.BaseAggregateRoot
	Number string `gorm:"uniqueIndex;size:32;not null" json:"number"`
	// Source/destination persisted as nullable store IDs, NULL = central DC
	SourceStoreID *uuid.UUID       `gorm:"type:uuid;index" json:"source_store_id,omitempty"`
	DestStoreID   *uuid.UUID       `gorm:"type:uuid;index" json:"dest_store_id,omitempty"`
	RequesterID   uuid.UUID        `gorm:"type:uuid;not null" json:"requester_id"`
	Status        TransferStatus   `gorm:"size:20;not null" json:"status"`
	Priority      TransferPriority `gorm:"size:10;not null;default:'normal'" json:"priority"`
	Note          string           `gorm:"size:500" json:"note,omitempty"`
	Lines         []TransferLine   `gorm:"foreignKey:TransferID" json:"lines"`
}

// TableName returns the table name for GORM
func (TransferRequest) TableName() string {
	return "transfer_requests"
}

// TransferLine is one product position on a transfer request
type TransferLine struct {
	shared.BaseEntity
	TransferID          uuid.UUID `gorm:"type:uuid;not null;index" json:"transfer_id"`
	ProductID           uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	RequestedQuantity   int64     `gorm:"not null" json:"requested_quantity"`
	ApprovedQuantity    int64     `gorm:"not null;default:0" json:"approved_quantity"`
	TransferredQuantity int64     `gorm:"not null;default:0" json:"transferred_quantity"`
}

// TableName returns the table name for GORM
func (TransferLine) TableName() string {
	return "transfer_request_lines"
}

// NewTransferLine creates a transfer line
func NewTransferLine(productID uuid.UUID, requested int64) (*TransferLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	if requested <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Requested quantity must be positive")
	}
	return &TransferLine{
		BaseEntity:        shared.NewBaseEntity(),
		ProductID:         productID,
		RequestedQuantity: requested,
	}, nil
}

// NewTransferNumber builds a transfer document number. Transfers are
// rarer than sales and carry a uuid-derived suffix instead of a daily
// counter, so issuing one never contends on the sequence table.
func NewTransferNumber(at time.Time) string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("TRF-%s-%s", at.Format("20060102"), suffix)
}

// NewTransferRequest creates a pending transfer request. An empty
// priority defaults to normal.
func NewTransferRequest(number string, source, dest valueobject.Location, requesterID uuid.UUID, priority TransferPriority, note string, lines []*TransferLine) (*TransferRequest, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transfer number is required")
	}
	if priority == "" {
		priority = TransferPriorityNormal
	}
	if !priority.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid transfer priority")
	}
	if err := source.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	if err := dest.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	if source.Equals(dest) {
		return nil, shared.ErrSameLocation
	}
	if requesterID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Requester ID is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transfer requires at least one line")
	}

	req := &TransferRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		SourceStoreID:     source.StoreIDPtr(),
		DestStoreID:       dest.StoreIDPtr(),
		RequesterID:       requesterID,
		Status:            TransferStatusPending,
		Priority:          priority,
		Note:              note,
	}

	for _, line := range lines {
		line.TransferID = req.ID
		req.Lines = append(req.Lines, *line)
	}

	return req, nil
}

// NewQuickTransfer creates a transfer that is already completed. Quick
// transfers skip the approval workflow but leave the same paper trail:
// requested, approved and transferred quantities all equal the moved
// quantity.
func NewQuickTransfer(number string, source, dest valueobject.Location, operatorID uuid.UUID, priority TransferPriority, note string, lines []*TransferLine) (*TransferRequest, error) {
	req, err := NewTransferRequest(number, source, dest, operatorID, priority, note, lines)
	if err != nil {
		return nil, err
	}
	for i := range req.Lines {
		req.Lines[i].ApprovedQuantity = req.Lines[i].RequestedQuantity
		req.Lines[i].TransferredQuantity = req.Lines[i].RequestedQuantity
	}
	req.Status = TransferStatusCompleted
	return req, nil
}

// Source returns the source location
func (r *TransferRequest) Source() valueobject.Location {
	return valueobject.LocationFromStoreIDPtr(r.SourceStoreID)
}

// Destination returns the destination location
func (r *TransferRequest) Destination() valueobject.Location {
	return valueobject.LocationFromStoreIDPtr(r.DestStoreID)
}

// LineApproval names a line and the quantity the approver grants
type LineApproval struct {
	LineID   uuid.UUID
	Quantity int64
}

// Approve moves a pending request to approved. Every line must receive
// an approved quantity between one and its requested quantity.
func (r *TransferRequest) Approve(approvals []LineApproval) error {
	if !r.Status.CanTransitionTo(TransferStatusApproved) {
		return shared.ErrInvalidState
	}

	byLine := make(map[uuid.UUID]int64, len(approvals))
	for _, a := range approvals {
		if _, dup := byLine[a.LineID]; dup {
			return shared.NewDomainError("INVALID_INPUT", "Duplicate line in approval")
		}
		byLine[a.LineID] = a.Quantity
	}

	for i := range r.Lines {
		qty, ok := byLine[r.Lines[i].ID]
		if !ok {
			return shared.NewDomainError("INVALID_INPUT", "Approval must cover every line")
		}
		if qty <= 0 {
			return shared.NewDomainError("INVALID_INPUT", "Approved quantity must be positive")
		}
		if qty > r.Lines[i].RequestedQuantity {
			return shared.ErrQuantityExceedsRequested
		}
		delete(byLine, r.Lines[i].ID)
	}
	if len(byLine) > 0 {
		return shared.NewDomainError("INVALID_INPUT", "Approval names unknown lines")
	}

	for i := range r.Lines {
		for _, a := range approvals {
			if a.LineID == r.Lines[i].ID {
				r.Lines[i].ApprovedQuantity = a.Quantity
			}
		}
	}

	r.Status = TransferStatusApproved
	r.IncrementVersion()
	return nil
}

// Reject moves a pending request to the terminal rejected status
func (r *TransferRequest) Reject(reason string) error {
	if !r.Status.CanTransitionTo(TransferStatusRejected) {
		return shared.ErrInvalidState
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Rejection reason is required")
	}
	r.Status = TransferStatusRejected
	r.IncrementVersion()
	return nil
}

// MarkExecuted records that every approved quantity physically moved
// and completes the request. Called after the stock movements commit.
func (r *TransferRequest) MarkExecuted() error {
	if !r.Status.CanTransitionTo(TransferStatusCompleted) {
		return shared.ErrInvalidState
	}
	for i := range r.Lines {
		r.Lines[i].TransferredQuantity = r.Lines[i].ApprovedQuantity
	}
	r.Status = TransferStatusCompleted
	r.IncrementVersion()
	return nil
}

// Cancel withdraws a pending or approved request before execution
func (r *TransferRequest) Cancel() error {
	if !r.Status.CanTransitionTo(TransferStatusCancelled) {
		return shared.ErrInvalidState
	}
	r.Status = TransferStatusCancelled
	r.IncrementVersion()
	return nil
}
