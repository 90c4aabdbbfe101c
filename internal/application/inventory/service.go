package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/retailerp/backend/internal/domain/catalog"
	"github.com/retailerp/backend/internal/domain/inventory"
	"github.com/retailerp/backend/internal/domain/sequence"
	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
)

// Service exposes the stock ledger: on-hand reads, purchase receiving
// and manual adjustments. Sales and transfers change stock through
// their own services but share the same ledger helpers.
type Service struct {
	scope       TransactionScope
	stockRepo   inventory.StockRepository
	productRepo catalog.ProductRepository
	storeRepo   catalog.StoreRepository
}

// NewService creates a new stock ledger Service
func NewService(
	scope TransactionScope,
	stockRepo inventory.StockRepository,
	productRepo catalog.ProductRepository,
	storeRepo catalog.StoreRepository,
) *Service {
	return &Service{
		scope:       scope,
		stockRepo:   stockRepo,
		productRepo: productRepo,
		storeRepo:   storeRepo,
	}
}

// StockView is the read model for one (product, location) pair
type StockView struct {
	ProductID     uuid.UUID            `json:"product_id"`
	Location      valueobject.Location `json:"location"`
	Quantity      int64                `json:"quantity"`
	Barcode       string               `json:"barcode,omitempty"`
	ShelfLocation string               `json:"shelf_location,omitempty"`
	LowStock      bool                 `json:"low_stock"`
}

// GetStock returns the on-hand quantity for a product at a location.
// A pair that never had stock reads as zero rather than an error.
func (s *Service) GetStock(ctx context.Context, productID uuid.UUID, location valueobject.Location) (*StockView, error) {
	if err := location.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	view := &StockView{
		ProductID: productID,
		Location:  location,
	}

	item, err := s.stockRepo.Find(ctx, productID, location)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return view, nil
		}
		return nil, err
	}

	view.Quantity = item.Quantity
	view.Barcode = item.Barcode
	view.ShelfLocation = item.ShelfLocation
	view.LowStock = item.IsLowStock(product.MinStockLevel)
	return view, nil
}

// ReceiveInput describes an inbound delivery of one product
type ReceiveInput struct {
	ProductID  uuid.UUID
	Location   valueobject.Location
	Quantity   int64
	OperatorID uuid.UUID
	Reference  string
}

// Receive books an inbound delivery into the ledger. The stock row is
// created on first receipt with a freshly generated barcode.
func (s *Service) Receive(ctx context.Context, input ReceiveInput) (*StockView, error) {
	if input.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	if err := input.Location.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Product is discontinued")
	}

	barcode, err := s.barcodeFor(ctx, input.Location, product.SKU)
	if err != nil {
		return nil, err
	}

	var after int64
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		after, err = IncreaseStock(ctx, repos.StockRepo(), repos.MovementRepo(),
			input.ProductID, input.Location, input.Quantity,
			inventory.MovementTypeReceive, input.Reference, barcode)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &StockView{
		ProductID: input.ProductID,
		Location:  input.Location,
		Quantity:  after,
		LowStock:  after < product.MinStockLevel,
	}, nil
}

// ListByLocation returns every stock item held at a location
func (s *Service) ListByLocation(ctx context.Context, location valueobject.Location) ([]*inventory.StockItem, error) {
	if err := location.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	return s.stockRepo.FindByLocation(ctx, location)
}

// barcodeFor builds the shelf barcode used when a stock row is created
func (s *Service) barcodeFor(ctx context.Context, location valueobject.Location, sku string) (string, error) {
	if location.IsCentralDC() {
		return inventory.GenerateBarcode(sequence.CentralDCPrefix, sku), nil
	}
	store, err := s.storeRepo.FindByID(ctx, location.StoreID)
	if err != nil {
		return "", err
	}
	return inventory.GenerateBarcode(sequence.LocationPrefix(location, store.Code), sku), nil
}
