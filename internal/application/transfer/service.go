package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	invapp "github.com/retailerp/backend/internal/application/inventory"
	"github.com/retailerp/backend/internal/domain/catalog"
	"github.com/retailerp/backend/internal/domain/inventory"
	"github.com/retailerp/backend/internal/domain/sequence"
	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
	"github.com/retailerp/backend/internal/domain/transfer"
)

// Service handles stock transfers between locations through the
// request, decide, execute workflow. Stock only moves at execution
// time; execution is all-or-nothing across every line.
type Service struct {
	scope       TransactionScope
	productRepo catalog.ProductRepository
	storeRepo   catalog.StoreRepository
	stockRepo   inventory.StockRepository
	now         func() time.Time
}

// NewService creates a new transfer Service
func NewService(
	scope TransactionScope,
	productRepo catalog.ProductRepository,
	storeRepo catalog.StoreRepository,
	stockRepo inventory.StockRepository,
) *Service {
	return &Service{
		scope:       scope,
		productRepo: productRepo,
		storeRepo:   storeRepo,
		stockRepo:   stockRepo,
		now:         time.Now,
	}
}

// CreateLineInput is one requested line on a new transfer
type CreateLineInput struct {
	ProductID uuid.UUID
	Quantity  int64
}

// CreateInput describes a new transfer request
type CreateInput struct {
	Source      valueobject.Location
	Destination valueobject.Location
	RequesterID uuid.UUID
	// Priority is optional; empty means normal
	Priority transfer.TransferPriority
	Note     string
	Lines    []CreateLineInput
}

// CreateResult carries the created request plus advisory warnings.
// Warnings flag lines whose source stock is short right now; nothing
// is reserved, the binding check happens at execution.
type CreateResult struct {
	Request  *transfer.TransferRequest `json:"request"`
	Warnings []string                  `json:"warnings,omitempty"`
}

// Create records a pending transfer request. Availability at the
// source is checked advisorily only.
func (s *Service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	lines := make([]*transfer.TransferLine, 0, len(input.Lines))
	for _, in := range input.Lines {
		line, err := transfer.NewTransferLine(in.ProductID, in.Quantity)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	req, err := transfer.NewTransferRequest(transfer.NewTransferNumber(s.now()),
		input.Source, input.Destination, input.RequesterID, input.Priority, input.Note, lines)
	if err != nil {
		return nil, err
	}

	products, err := s.loadProducts(ctx, req)
	if err != nil {
		return nil, err
	}

	warnings := s.availabilityWarnings(ctx, req, products)

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.TransferRepo().Save(ctx, req); err != nil {
			return err
		}
		action, err := transfer.NewAction(req.ID, transfer.ActionTypeCreated, input.RequesterID, input.Note)
		if err != nil {
			return err
		}
		return repos.TransferActionRepo().Save(ctx, action)
	})
	if err != nil {
		return nil, err
	}

	return &CreateResult{Request: req, Warnings: warnings}, nil
}

// DecideInput describes an approval or rejection of a pending request
type DecideInput struct {
	TransferID uuid.UUID
	ActorID    uuid.UUID
	Approve    bool
	// Approvals must cover every line when approving
	Approvals []transfer.LineApproval
	// Reason is required when rejecting
	Reason string
}

// Decide approves or rejects a pending transfer request
func (s *Service) Decide(ctx context.Context, input DecideInput) (*transfer.TransferRequest, error) {
	var req *transfer.TransferRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		req, err = repos.TransferRepo().FindByID(ctx, input.TransferID)
		if err != nil {
			return err
		}

		actionType := transfer.ActionTypeApproved
		note := ""
		if input.Approve {
			if err := req.Approve(input.Approvals); err != nil {
				return err
			}
		} else {
			if err := req.Reject(input.Reason); err != nil {
				return err
			}
			actionType = transfer.ActionTypeRejected
			note = input.Reason
		}

		if err := repos.TransferRepo().Update(ctx, req); err != nil {
			return err
		}

		action, err := transfer.NewAction(req.ID, actionType, input.ActorID, note)
		if err != nil {
			return err
		}
		return repos.TransferActionRepo().Save(ctx, action)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Execute physically moves every approved line from source to
// destination in one transaction. Availability is re-validated by the
// conditional decrements themselves: if any line lacks stock the whole
// execution fails, every movement rolls back and the request stays
// approved.
func (s *Service) Execute(ctx context.Context, transferID, actorID uuid.UUID) (*transfer.TransferRequest, error) {
	var req *transfer.TransferRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		req, err = repos.TransferRepo().FindByID(ctx, transferID)
		if err != nil {
			return err
		}
		if req.Status != transfer.TransferStatusApproved {
			return shared.ErrInvalidState
		}

		products, err := s.loadProducts(ctx, req)
		if err != nil {
			return err
		}
		destPrefix, err := s.locationPrefix(ctx, req.Destination())
		if err != nil {
			return err
		}

		for i := range req.Lines {
			line := &req.Lines[i]
			barcode := inventory.GenerateBarcode(destPrefix, products[line.ProductID].SKU)

			err := invapp.MoveStock(ctx, repos.StockRepo(), repos.MovementRepo(),
				line.ProductID, req.Source(), req.Destination(),
				line.ApprovedQuantity, req.Number, barcode)
			if err != nil {
				return s.describeStockError(err, products[line.ProductID])
			}

			history, err := transfer.NewHistory(req.ID, line.ID, line.ProductID,
				req.Source(), req.Destination(), line.ApprovedQuantity, actorID)
			if err != nil {
				return err
			}
			if err := repos.HistoryRepo().Save(ctx, history); err != nil {
				return err
			}
		}

		if err := req.MarkExecuted(); err != nil {
			return err
		}
		if err := repos.TransferRepo().Update(ctx, req); err != nil {
			return err
		}

		action, err := transfer.NewAction(req.ID, transfer.ActionTypeExecuted, actorID, "")
		if err != nil {
			return err
		}
		return repos.TransferActionRepo().Save(ctx, action)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Cancel withdraws a pending or approved request before execution
func (s *Service) Cancel(ctx context.Context, transferID, actorID uuid.UUID, note string) (*transfer.TransferRequest, error) {
	var req *transfer.TransferRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		req, err = repos.TransferRepo().FindByID(ctx, transferID)
		if err != nil {
			return err
		}
		if err := req.Cancel(); err != nil {
			return err
		}
		if err := repos.TransferRepo().Update(ctx, req); err != nil {
			return err
		}

		action, err := transfer.NewAction(req.ID, transfer.ActionTypeCancelled, actorID, note)
		if err != nil {
			return err
		}
		return repos.TransferActionRepo().Save(ctx, action)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// QuickTransfer moves stock immediately, skipping the approval
// workflow. The persisted request looks exactly like an executed one:
// same lines, actions and history rows.
func (s *Service) QuickTransfer(ctx context.Context, input CreateInput) (*transfer.TransferRequest, error) {
	lines := make([]*transfer.TransferLine, 0, len(input.Lines))
	for _, in := range input.Lines {
		line, err := transfer.NewTransferLine(in.ProductID, in.Quantity)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	req, err := transfer.NewQuickTransfer(transfer.NewTransferNumber(s.now()),
		input.Source, input.Destination, input.RequesterID, input.Priority, input.Note, lines)
	if err != nil {
		return nil, err
	}

	products, err := s.loadProducts(ctx, req)
	if err != nil {
		return nil, err
	}
	destPrefix, err := s.locationPrefix(ctx, req.Destination())
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		for i := range req.Lines {
			line := &req.Lines[i]
			barcode := inventory.GenerateBarcode(destPrefix, products[line.ProductID].SKU)

			err := invapp.MoveStock(ctx, repos.StockRepo(), repos.MovementRepo(),
				line.ProductID, req.Source(), req.Destination(),
				line.TransferredQuantity, req.Number, barcode)
			if err != nil {
				return s.describeStockError(err, products[line.ProductID])
			}

			history, err := transfer.NewHistory(req.ID, line.ID, line.ProductID,
				req.Source(), req.Destination(), line.TransferredQuantity, input.RequesterID)
			if err != nil {
				return err
			}
			if err := repos.HistoryRepo().Save(ctx, history); err != nil {
				return err
			}
		}

		if err := repos.TransferRepo().Save(ctx, req); err != nil {
			return err
		}

		for _, actionType := range []transfer.ActionType{transfer.ActionTypeCreated, transfer.ActionTypeExecuted} {
			action, err := transfer.NewAction(req.ID, actionType, input.RequesterID, input.Note)
			if err != nil {
				return err
			}
			if err := repos.TransferActionRepo().Save(ctx, action); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// TransferDetails bundles a request with its audit trail and history
type TransferDetails struct {
	Request *transfer.TransferRequest `json:"request"`
	Actions []*transfer.Action        `json:"actions"`
	History []*transfer.History       `json:"history"`
}

// Get returns a transfer request with its lines, actions and history
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TransferDetails, error) {
	var details TransferDetails
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		req, err := repos.TransferRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		actions, err := repos.TransferActionRepo().FindByTransfer(ctx, id)
		if err != nil {
			return err
		}
		history, err := repos.HistoryRepo().FindByTransfer(ctx, id)
		if err != nil {
			return err
		}
		details.Request = req
		details.Actions = actions
		details.History = history
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// ListByStatus lists transfer requests in a given status, newest first
func (s *Service) ListByStatus(ctx context.Context, status transfer.TransferStatus, limit int) ([]*transfer.TransferRequest, error) {
	switch status {
	case transfer.TransferStatusPending, transfer.TransferStatusApproved,
		transfer.TransferStatusRejected, transfer.TransferStatusCompleted,
		transfer.TransferStatusCancelled:
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown transfer status %q", status))
	}

	var requests []*transfer.TransferRequest
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		requests, err = repos.TransferRepo().FindByStatus(ctx, status, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *Service) loadProducts(ctx context.Context, req *transfer.TransferRequest) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(req.Lines))
	for _, line := range req.Lines {
		ids = append(ids, line.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, line := range req.Lines {
		if _, ok := byID[line.ProductID]; !ok {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %s not found", line.ProductID))
		}
	}
	return byID, nil
}

// availabilityWarnings reports lines whose source stock is currently
// short. Best effort: read failures are reported as warnings too,
// never as request failures.
func (s *Service) availabilityWarnings(ctx context.Context, req *transfer.TransferRequest, products map[uuid.UUID]*catalog.Product) []string {
	var warnings []string
	for _, line := range req.Lines {
		item, err := s.stockRepo.Find(ctx, line.ProductID, req.Source())
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				warnings = append(warnings, fmt.Sprintf("product %s has no stock at %s", products[line.ProductID].SKU, req.Source()))
				continue
			}
			warnings = append(warnings, fmt.Sprintf("could not check stock for product %s", products[line.ProductID].SKU))
			continue
		}
		if !item.CanDecrement(line.RequestedQuantity) {
			warnings = append(warnings, fmt.Sprintf("product %s has %d on hand at %s, %d requested",
				products[line.ProductID].SKU, item.Quantity, req.Source(), line.RequestedQuantity))
		}
	}
	return warnings
}

func (s *Service) locationPrefix(ctx context.Context, location valueobject.Location) (string, error) {
	if location.IsCentralDC() {
		return sequence.CentralDCPrefix, nil
	}
	store, err := s.storeRepo.FindByID(ctx, location.StoreID)
	if err != nil {
		return "", err
	}
	return sequence.LocationPrefix(location, store.Code), nil
}

// describeStockError names the failing product so the operator knows
// which line blocked the transfer.
func (s *Service) describeStockError(err error, product *catalog.Product) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) &&
		(domainErr.Code == shared.ErrInsufficientStock.Code || domainErr.Code == shared.ErrNotFound.Code) {
		return shared.NewDomainError(shared.ErrInsufficientStock.Code,
			fmt.Sprintf("Insufficient stock for product %s at source", product.SKU))
	}
	return err
}
