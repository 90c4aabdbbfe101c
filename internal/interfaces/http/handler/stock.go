package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinventory "github.com/retailerp/backend/internal/application/inventory"
)

// StockHandler exposes the stock ledger
type StockHandler struct {
	BaseHandler
	service *appinventory.Service
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(service *appinventory.Service) *StockHandler {
	return &StockHandler{service: service}
}

// GetStock returns the on-hand quantity for a product at a location
// GET /api/v1/stock?product_id=...&store_id=...
func (h *StockHandler) GetStock(c *gin.Context) {
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "product_id must be a UUID")
		return
	}

	location, err := parseLocation(c.Query("store_id"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	view, err := h.service.GetStock(c.Request.Context(), productID, location)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ListByLocation returns every stock item held at a location
// GET /api/v1/stock/location?store_id=...
func (h *StockHandler) ListByLocation(c *gin.Context) {
	location, err := parseLocation(c.Query("store_id"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, err := h.service.ListByLocation(c.Request.Context(), location)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ReceiveRequest books an inbound delivery of one product
type ReceiveRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	StoreID   string `json:"store_id" binding:"omitempty,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	Reference string `json:"reference" binding:"omitempty,max=64"`
}

// Receive books an inbound delivery into the ledger
// POST /api/v1/stock/receive
func (h *StockHandler) Receive(c *gin.Context) {
	var req ReceiveRequest
	if !h.bindJSON(c, &req) {
		return
	}

	location, err := parseLocation(req.StoreID)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return
	}

	view, err := h.service.Receive(c.Request.Context(), appinventory.ReceiveInput{
		ProductID:  uuid.MustParse(req.ProductID),
		Location:   location,
		Quantity:   req.Quantity,
		OperatorID: actorID,
		Reference:  req.Reference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}
