// Package testutil provides in-memory repository fakes for service
// tests. A World holds all state; transaction scopes run against a
// deep copy and merge it back only on success, mirroring the commit
// and rollback behavior of the real database scopes.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/retailerp/backend/internal/domain/catalog"
	"github.com/retailerp/backend/internal/domain/inventory"
	"github.com/retailerp/backend/internal/domain/sales"
	"github.com/retailerp/backend/internal/domain/sequence"
	"github.com/retailerp/backend/internal/domain/shared"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
	"github.com/retailerp/backend/internal/domain/transfer"
)

// World is the complete in-memory state backing the fakes
type World struct {
	mu sync.Mutex

	Stocks          map[string]*inventory.StockItem
	Movements       []*inventory.StockMovement
	Counters        map[string]int64
	Sales           map[uuid.UUID]*sales.Sale
	SaleActions     []*sales.Action
	Transfers       map[uuid.UUID]*transfer.TransferRequest
	TransferActions []*transfer.Action
	Histories       []*transfer.History
	Products        map[uuid.UUID]*catalog.Product
	Stores          map[uuid.UUID]*catalog.Store
}

// NewWorld creates an empty World
func NewWorld() *World {
	return &World{
		Stocks:    make(map[string]*inventory.StockItem),
		Counters:  make(map[string]int64),
		Sales:     make(map[uuid.UUID]*sales.Sale),
		Transfers: make(map[uuid.UUID]*transfer.TransferRequest),
		Products:  make(map[uuid.UUID]*catalog.Product),
		Stores:    make(map[uuid.UUID]*catalog.Store),
	}
}

func stockKey(productID uuid.UUID, location valueobject.Location) string {
	if location.IsCentralDC() {
		return fmt.Sprintf("%s|dc", productID)
	}
	return fmt.Sprintf("%s|%s", productID, location.StoreID)
}

// AddProduct registers a product in the catalog
func (w *World) AddProduct(p *catalog.Product) { w.Products[p.ID] = p }

// AddStore registers a store in the catalog
func (w *World) AddStore(s *catalog.Store) { w.Stores[s.ID] = s }

// SetStock places qty units of a product at a location
func (w *World) SetStock(productID uuid.UUID, location valueobject.Location, qty int64) {
	item, _ := inventory.NewStockItem(productID, location)
	item.Quantity = qty
	w.Stocks[stockKey(productID, location)] = item
}

// StockQuantity reads the on-hand quantity, zero when absent
func (w *World) StockQuantity(productID uuid.UUID, location valueobject.Location) int64 {
	item, ok := w.Stocks[stockKey(productID, location)]
	if !ok {
		return 0
	}
	return item.Quantity
}

// clone makes a deep copy of all mutable state. Products and stores
// are shared; tests treat them as read-only master data.
func (w *World) clone() *World {
	c := NewWorld()
	for k, v := range w.Stocks {
		item := *v
		c.Stocks[k] = &item
	}
	c.Movements = append([]*inventory.StockMovement(nil), w.Movements...)
	for k, v := range w.Counters {
		c.Counters[k] = v
	}
	for k, v := range w.Sales {
		sale := *v
		sale.Lines = append([]sales.SaleLine(nil), v.Lines...)
		c.Sales[k] = &sale
	}
	c.SaleActions = append([]*sales.Action(nil), w.SaleActions...)
	for k, v := range w.Transfers {
		req := *v
		req.Lines = append([]transfer.TransferLine(nil), v.Lines...)
		c.Transfers[k] = &req
	}
	c.TransferActions = append([]*transfer.Action(nil), w.TransferActions...)
	c.Histories = append([]*transfer.History(nil), w.Histories...)
	c.Products = w.Products
	c.Stores = w.Stores
	return c
}

func (w *World) adopt(c *World) {
	w.Stocks = c.Stocks
	w.Movements = c.Movements
	w.Counters = c.Counters
	w.Sales = c.Sales
	w.SaleActions = c.SaleActions
	w.Transfers = c.Transfers
	w.TransferActions = c.TransferActions
	w.Histories = c.Histories
}

// RunTx runs fn against a deep copy of the world and merges the copy
// back only when fn succeeds. An error leaves the world untouched.
func (w *World) RunTx(fn func(tx *World) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.clone()
	if err := fn(c); err != nil {
		return err
	}
	w.adopt(c)
	return nil
}

// --- repository fakes ---

// StockRepo returns the stock repository fake bound to this world
func (w *World) StockRepo() inventory.StockRepository { return stockRepo{w} }

// MovementRepo returns the movement repository fake bound to this world
func (w *World) MovementRepo() inventory.MovementRepository { return movementRepo{w} }

// CounterRepo returns the counter repository fake bound to this world
func (w *World) CounterRepo() sequence.CounterRepository { return sequenceCounterRepo{w} }

// SaleRepo returns the sale repository fake bound to this world
func (w *World) SaleRepo() sales.SaleRepository { return saleRepo{w} }

// SaleActionRepo returns the sale audit repository fake bound to this world
func (w *World) SaleActionRepo() sales.ActionRepository { return saleActionRepo{w} }

// TransferRepo returns the transfer repository fake bound to this world
func (w *World) TransferRepo() transfer.TransferRepository { return transferRepo{w} }

// TransferActionRepo returns the transfer audit repository fake bound to this world
func (w *World) TransferActionRepo() transfer.ActionRepository { return transferActionRepo{w} }

// HistoryRepo returns the transfer history repository fake bound to this world
func (w *World) HistoryRepo() transfer.HistoryRepository { return historyRepo{w} }

// ProductRepo returns the product repository fake bound to this world
func (w *World) ProductRepo() catalog.ProductRepository { return productRepo{w} }

// StoreRepo returns the store repository fake bound to this world
func (w *World) StoreRepo() catalog.StoreRepository { return storeRepo{w} }

type stockRepo struct{ w *World }

func (r stockRepo) EnsureExists(_ context.Context, productID uuid.UUID, location valueobject.Location, barcode string) error {
	key := stockKey(productID, location)
	if _, ok := r.w.Stocks[key]; ok {
		return nil
	}
	item, err := inventory.NewStockItem(productID, location)
	if err != nil {
		return err
	}
	item.Barcode = barcode
	r.w.Stocks[key] = item
	return nil
}

func (r stockRepo) AdjustQuantity(_ context.Context, productID uuid.UUID, location valueobject.Location, delta int64) (int64, error) {
	item, ok := r.w.Stocks[stockKey(productID, location)]
	if !ok {
		return 0, shared.ErrNotFound
	}
	if item.Quantity+delta < 0 {
		return 0, shared.ErrInsufficientStock
	}
	item.Quantity += delta
	return item.Quantity, nil
}

func (r stockRepo) Find(_ context.Context, productID uuid.UUID, location valueobject.Location) (*inventory.StockItem, error) {
	item, ok := r.w.Stocks[stockKey(productID, location)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r stockRepo) FindByLocation(_ context.Context, location valueobject.Location) ([]*inventory.StockItem, error) {
	var items []*inventory.StockItem
	for _, item := range r.w.Stocks {
		if item.Location().Equals(location) {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r stockRepo) FindByProduct(_ context.Context, productID uuid.UUID) ([]*inventory.StockItem, error) {
	var items []*inventory.StockItem
	for _, item := range r.w.Stocks {
		if item.ProductID == productID {
			items = append(items, item)
		}
	}
	return items, nil
}

type movementRepo struct{ w *World }

func (r movementRepo) Save(_ context.Context, m *inventory.StockMovement) error {
	r.w.Movements = append(r.w.Movements, m)
	return nil
}

func (r movementRepo) FindByProduct(_ context.Context, productID uuid.UUID, limit int) ([]*inventory.StockMovement, error) {
	var out []*inventory.StockMovement
	for i := len(r.w.Movements) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if r.w.Movements[i].ProductID == productID {
			out = append(out, r.w.Movements[i])
		}
	}
	return out, nil
}

func (r movementRepo) FindByReference(_ context.Context, reference string) ([]*inventory.StockMovement, error) {
	var out []*inventory.StockMovement
	for _, m := range r.w.Movements {
		if m.Reference == reference {
			out = append(out, m)
		}
	}
	return out, nil
}

type sequenceCounterRepo struct{ w *World }

func (r sequenceCounterRepo) EnsureExists(_ context.Context, id string) error {
	if _, ok := r.w.Counters[id]; !ok {
		r.w.Counters[id] = 0
	}
	return nil
}

func (r sequenceCounterRepo) Increment(_ context.Context, id string) (int64, error) {
	if _, ok := r.w.Counters[id]; !ok {
		return 0, shared.ErrNotFound
	}
	r.w.Counters[id]++
	return r.w.Counters[id], nil
}

func (r sequenceCounterRepo) CurrentValue(_ context.Context, id string) (int64, error) {
	return r.w.Counters[id], nil
}

func (r sequenceCounterRepo) Reset(_ context.Context, id string, value int64) error {
	if _, ok := r.w.Counters[id]; !ok {
		return shared.ErrNotFound
	}
	r.w.Counters[id] = value
	return nil
}

type saleRepo struct{ w *World }

func (r saleRepo) Save(_ context.Context, s *sales.Sale) error {
	if _, ok := r.w.Sales[s.ID]; ok {
		return shared.ErrAlreadyExists
	}
	r.w.Sales[s.ID] = s
	return nil
}

func (r saleRepo) FindByID(_ context.Context, id uuid.UUID) (*sales.Sale, error) {
	s, ok := r.w.Sales[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r saleRepo) FindByNumber(_ context.Context, number string) (*sales.Sale, error) {
	for _, s := range r.w.Sales {
		if s.Number == number {
			return s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r saleRepo) Update(_ context.Context, s *sales.Sale) error {
	if _, ok := r.w.Sales[s.ID]; !ok {
		return shared.ErrNotFound
	}
	r.w.Sales[s.ID] = s
	return nil
}

type saleActionRepo struct{ w *World }

func (r saleActionRepo) Save(_ context.Context, a *sales.Action) error {
	r.w.SaleActions = append(r.w.SaleActions, a)
	return nil
}

func (r saleActionRepo) FindBySale(_ context.Context, saleID uuid.UUID) ([]*sales.Action, error) {
	var out []*sales.Action
	for _, a := range r.w.SaleActions {
		if a.SaleID == saleID {
			out = append(out, a)
		}
	}
	return out, nil
}

type transferRepo struct{ w *World }

func (r transferRepo) Save(_ context.Context, req *transfer.TransferRequest) error {
	if _, ok := r.w.Transfers[req.ID]; ok {
		return shared.ErrAlreadyExists
	}
	r.w.Transfers[req.ID] = req
	return nil
}

func (r transferRepo) FindByID(_ context.Context, id uuid.UUID) (*transfer.TransferRequest, error) {
	req, ok := r.w.Transfers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return req, nil
}

func (r transferRepo) FindByNumber(_ context.Context, number string) (*transfer.TransferRequest, error) {
	for _, req := range r.w.Transfers {
		if req.Number == number {
			return req, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r transferRepo) FindByStatus(_ context.Context, status transfer.TransferStatus, limit int) ([]*transfer.TransferRequest, error) {
	var out []*transfer.TransferRequest
	for _, req := range r.w.Transfers {
		if req.Status == status {
			out = append(out, req)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r transferRepo) Update(_ context.Context, req *transfer.TransferRequest) error {
	if _, ok := r.w.Transfers[req.ID]; !ok {
		return shared.ErrNotFound
	}
	r.w.Transfers[req.ID] = req
	return nil
}

type transferActionRepo struct{ w *World }

func (r transferActionRepo) Save(_ context.Context, a *transfer.Action) error {
	r.w.TransferActions = append(r.w.TransferActions, a)
	return nil
}

func (r transferActionRepo) FindByTransfer(_ context.Context, transferID uuid.UUID) ([]*transfer.Action, error) {
	var out []*transfer.Action
	for _, a := range r.w.TransferActions {
		if a.TransferID == transferID {
			out = append(out, a)
		}
	}
	return out, nil
}

type historyRepo struct{ w *World }

func (r historyRepo) Save(_ context.Context, h *transfer.History) error {
	r.w.Histories = append(r.w.Histories, h)
	return nil
}

func (r historyRepo) FindByTransfer(_ context.Context, transferID uuid.UUID) ([]*transfer.History, error) {
	var out []*transfer.History
	for _, h := range r.w.Histories {
		if h.TransferID == transferID {
			out = append(out, h)
		}
	}
	return out, nil
}

type productRepo struct{ w *World }

func (r productRepo) Save(_ context.Context, p *catalog.Product) error {
	r.w.Products[p.ID] = p
	return nil
}

func (r productRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.w.Products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r productRepo) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	for _, p := range r.w.Products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r productRepo) FindByBarcode(_ context.Context, barcode string) (*catalog.Product, error) {
	for _, p := range r.w.Products {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r productRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := r.w.Products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r productRepo) Update(_ context.Context, p *catalog.Product) error {
	if _, ok := r.w.Products[p.ID]; !ok {
		return shared.ErrNotFound
	}
	r.w.Products[p.ID] = p
	return nil
}

type storeRepo struct{ w *World }

func (r storeRepo) Save(_ context.Context, s *catalog.Store) error {
	r.w.Stores[s.ID] = s
	return nil
}

func (r storeRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Store, error) {
	s, ok := r.w.Stores[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r storeRepo) FindByCode(_ context.Context, code int) (*catalog.Store, error) {
	for _, s := range r.w.Stores {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r storeRepo) FindAll(_ context.Context) ([]*catalog.Store, error) {
	var out []*catalog.Store
	for _, s := range r.w.Stores {
		out = append(out, s)
	}
	return out, nil
}

func (r storeRepo) Update(_ context.Context, s *catalog.Store) error {
	if _, ok := r.w.Stores[s.ID]; !ok {
		return shared.ErrNotFound
	}
	r.w.Stores[s.ID] = s
	return nil
}
