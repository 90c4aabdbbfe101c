package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	invapp "github.com/retailerp/backend/internal/application/inventory"
	"github.com/retailerp/backend/internal/domain/catalog"
	"github.com/retailerp/backend/internal/domain/inventory"
	"github.com/retailerp/backend/internal/domain/sales"
	"github.com/retailerp/backend/internal/domain/sequence"
	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

// Service handles sales transactions: creation at the point of sale,
// refunds and cancellations. Creation is all-or-nothing across the
// invoice number, the stock decrements and the sale record itself.
type Service struct {
	scope            TransactionScope
	productRepo      catalog.ProductRepository
	storeRepo        catalog.StoreRepository
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	now              func() time.Time
}

// NewService creates a new sales Service
func NewService(
	scope TransactionScope,
	productRepo catalog.ProductRepository,
	storeRepo catalog.StoreRepository,
) *Service {
	return &Service{
		scope:          scope,
		productRepo:    productRepo,
		storeRepo:      storeRepo,
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
		now:            time.Now,
	}
}

// SetIdempotencyStore enables duplicate submission protection
func (s *Service) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotencyStore = store
	s.idempotencyCfg = cfg
}

// CreateSaleLineInput is one requested line on a new sale
type CreateSaleLineInput struct {
	ProductID uuid.UUID
	Quantity  int64
}

// CreateSaleInput describes a new point-of-sale transaction
type CreateSaleInput struct {
	Location      valueobject.Location
	CashierID     uuid.UUID
	CustomerRef   string
	PaymentMethod sales.PaymentMethod
	// IdempotencyKey is optional; a repeated key within the TTL is
	// rejected before any mutation.
	IdempotencyKey string
	Lines          []CreateSaleLineInput
}

// CreateSale validates the request, issues the next invoice number,
// decrements stock for every line and persists the sale, all in one
// transaction. If any line lacks stock the whole sale fails and
// nothing is recorded, the invoice number included.
func (s *Service) CreateSale(ctx context.Context, input CreateSaleInput) (*sales.Sale, error) {
	if err := input.Location.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	if len(input.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sale requires at least one line")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid payment method")
	}

	if err := s.checkIdempotency(ctx, input.IdempotencyKey); err != nil {
		return nil, err
	}

	prefix, err := s.resolvePrefix(ctx, input.Location)
	if err != nil {
		return nil, err
	}

	products, err := s.loadProducts(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	issuedAt := s.now()
	counterID := sequence.CounterID(prefix, issuedAt)

	var sale *sales.Sale
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.CounterRepo().EnsureExists(ctx, counterID); err != nil {
			return err
		}
		seq, err := repos.CounterRepo().Increment(ctx, counterID)
		if err != nil {
			return err
		}
		number := sequence.FormatDocumentNumber(prefix, issuedAt, seq)

		lines := make([]*sales.SaleLine, 0, len(input.Lines))
		for _, in := range input.Lines {
			line, err := sales.NewSaleLine(in.ProductID, in.Quantity, products[in.ProductID].Price())
			if err != nil {
				return err
			}
			lines = append(lines, line)
		}

		sale, err = sales.NewSale(number, input.Location, input.CashierID, input.CustomerRef, input.PaymentMethod, lines)
		if err != nil {
			return err
		}

		for _, in := range input.Lines {
			_, err := invapp.DecreaseStock(ctx, repos.StockRepo(), repos.MovementRepo(),
				in.ProductID, input.Location, in.Quantity, inventory.MovementTypeSale, number)
			if err != nil {
				return s.describeStockError(err, products[in.ProductID])
			}
		}

		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return err
		}

		action, err := sales.NewAction(sale.ID, sales.ActionTypeCompleted, input.CashierID, sale.TotalAmount, "")
		if err != nil {
			return err
		}
		return repos.SaleActionRepo().Save(ctx, action)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// RefundInput describes a partial or full refund of a sale
type RefundInput struct {
	SaleID  uuid.UUID
	ActorID uuid.UUID
	Note    string
	// Lines is optional; empty means a full refund of every line
	Lines []sales.LineRefund
}

// RefundSale returns the named quantities to stock at the sale's
// location and moves the sale to its terminal refunded status. The
// original header total stays untouched.
func (s *Service) RefundSale(ctx context.Context, input RefundInput) (*sales.Sale, error) {
	var sale *sales.Sale
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.SaleRepo().FindByID(ctx, input.SaleID)
		if err != nil {
			return err
		}

		refunds := input.Lines
		if len(refunds) == 0 {
			refunds = sale.FullRefundLines()
		}

		amount, err := sale.Refund(refunds)
		if err != nil {
			return err
		}

		for _, r := range refunds {
			line := findLine(sale, r.LineID)
			_, err := invapp.IncreaseStock(ctx, repos.StockRepo(), repos.MovementRepo(),
				line.ProductID, sale.Location(), r.Quantity, inventory.MovementTypeRefund, sale.Number, "")
			if err != nil {
				return err
			}
		}

		if err := repos.SaleRepo().Update(ctx, sale); err != nil {
			return err
		}

		action, err := sales.NewAction(sale.ID, sales.ActionTypeRefunded, input.ActorID, amount.Amount, input.Note)
		if err != nil {
			return err
		}
		return repos.SaleActionRepo().Save(ctx, action)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// CancelInput describes a full cancellation of a sale
type CancelInput struct {
	SaleID  uuid.UUID
	ActorID uuid.UUID
	Note    string
}

// CancelSale reverses the whole sale: every line's full quantity goes
// back to stock and the sale moves to its terminal cancelled status.
func (s *Service) CancelSale(ctx context.Context, input CancelInput) (*sales.Sale, error) {
	var sale *sales.Sale
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.SaleRepo().FindByID(ctx, input.SaleID)
		if err != nil {
			return err
		}

		if err := sale.Cancel(); err != nil {
			return err
		}

		for _, line := range sale.Lines {
			_, err := invapp.IncreaseStock(ctx, repos.StockRepo(), repos.MovementRepo(),
				line.ProductID, sale.Location(), line.Quantity, inventory.MovementTypeCancel, sale.Number, "")
			if err != nil {
				return err
			}
		}

		if err := repos.SaleRepo().Update(ctx, sale); err != nil {
			return err
		}

		action, err := sales.NewAction(sale.ID, sales.ActionTypeCancelled, input.ActorID, sale.TotalAmount, input.Note)
		if err != nil {
			return err
		}
		return repos.SaleActionRepo().Save(ctx, action)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// SaleDetails bundles a sale with its audit trail
type SaleDetails struct {
	Sale    *sales.Sale     `json:"sale"`
	Actions []*sales.Action `json:"actions"`
}

// GetSale returns a sale with its lines and audit trail
func (s *Service) GetSale(ctx context.Context, id uuid.UUID) (*SaleDetails, error) {
	var details SaleDetails
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err := repos.SaleRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		actions, err := repos.SaleActionRepo().FindBySale(ctx, id)
		if err != nil {
			return err
		}
		details.Sale = sale
		details.Actions = actions
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &details, nil
}

func (s *Service) checkIdempotency(ctx context.Context, key string) error {
	if key == "" || s.idempotencyStore == nil || !s.idempotencyCfg.Enabled {
		return nil
	}
	fresh, err := s.idempotencyStore.MarkProcessed(ctx, key, s.idempotencyCfg.TTL)
	if err != nil {
		return err
	}
	if !fresh {
		return shared.ErrDuplicateRequest
	}
	return nil
}

func (s *Service) resolvePrefix(ctx context.Context, location valueobject.Location) (string, error) {
	if location.IsCentralDC() {
		return sequence.CentralDCPrefix, nil
	}
	store, err := s.storeRepo.FindByID(ctx, location.StoreID)
	if err != nil {
		return "", err
	}
	if !store.IsActive() {
		return "", shared.NewDomainError("INVALID_STATE", "Store is inactive")
	}
	return sequence.LocationPrefix(location, store.Code), nil
}

func (s *Service) loadProducts(ctx context.Context, lines []CreateSaleLineInput) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
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

	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %s not found", line.ProductID))
		}
		if !product.IsActive() {
			return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Product %s is discontinued", product.SKU))
		}
	}
	return byID, nil
}

// describeStockError names the failing product in stock shortfalls so
// the cashier knows which line to drop.
func (s *Service) describeStockError(err error, product *catalog.Product) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == shared.ErrInsufficientStock.Code {
		return shared.NewDomainError(shared.ErrInsufficientStock.Code,
			fmt.Sprintf("Insufficient stock for product %s", product.SKU))
	}
	if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
		return shared.NewDomainError(shared.ErrInsufficientStock.Code,
			fmt.Sprintf("Insufficient stock for product %s", product.SKU))
	}
	return err
}

func findLine(sale *sales.Sale, lineID uuid.UUID) *sales.SaleLine {
	for i := range sale.Lines {
		if sale.Lines[i].ID == lineID {
			return &sale.Lines[i]
		}
	}
	return nil
}
