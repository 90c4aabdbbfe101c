package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsales "github.com/retailerp/backend/internal/application/sales"
	"github.com/retailerp/backend/internal/domain/sales"
)

// SalesHandler exposes point-of-sale transactions
type SalesHandler struct {
	BaseHandler
	service *appsales.Service
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(service *appsales.Service) *SalesHandler {
	return &SalesHandler{service: service}
}

// SaleLineRequest is one requested line on a new sale
type SaleLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// CreateSaleRequest describes a new point-of-sale transaction
type CreateSaleRequest struct {
	StoreID       string            `json:"store_id" binding:"omitempty,uuid"`
	CustomerRef   string            `json:"customer_ref" binding:"omitempty,max=100"`
	PaymentMethod string            `json:"payment_method" binding:"required,oneof=cash card transfer qr"`
	Lines         []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// Create creates a completed sale, decrementing stock atomically
// POST /api/v1/sales
func (h *SalesHandler) Create(c *gin.Context) {
	var req CreateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	location, err := parseLocation(req.StoreID)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cashierID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return
	}

	lines := make([]appsales.CreateSaleLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, appsales.CreateSaleLineInput{
			ProductID: uuid.MustParse(line.ProductID),
			Quantity:  line.Quantity,
		})
	}

	sale, err := h.service.CreateSale(c.Request.Context(), appsales.CreateSaleInput{
		Location:       location,
		CashierID:      cashierID,
		CustomerRef:    req.CustomerRef,
		PaymentMethod:  sales.PaymentMethod(req.PaymentMethod),
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
		Lines:          lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// RefundLineRequest names a line and how many units to return
type RefundLineRequest struct {
	LineID   string `json:"line_id" binding:"required,uuid"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// RefundRequest describes a partial or full refund of a sale. An
// absent line list refunds every line in full.
type RefundRequest struct {
	Note  string              `json:"note" binding:"omitempty,max=500"`
	Lines []RefundLineRequest `json:"lines" binding:"omitempty,dive"`
}

// Refund returns the named quantities to stock
// POST /api/v1/sales/:id/refund
func (h *SalesHandler) Refund(c *gin.Context) {
	saleID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req RefundRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return
	}

	refunds := make([]sales.LineRefund, 0, len(req.Lines))
	for _, line := range req.Lines {
		refunds = append(refunds, sales.LineRefund{
			LineID:   uuid.MustParse(line.LineID),
			Quantity: line.Quantity,
		})
	}

	sale, err := h.service.RefundSale(c.Request.Context(), appsales.RefundInput{
		SaleID:  saleID,
		ActorID: actorID,
		Note:    req.Note,
		Lines:   refunds,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// CancelRequest describes a full cancellation of a sale
type CancelRequest struct {
	Note string `json:"note" binding:"omitempty,max=500"`
}

// Cancel reverses the whole sale
// POST /api/v1/sales/:id/cancel
func (h *SalesHandler) Cancel(c *gin.Context) {
	saleID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req CancelRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return
	}

	sale, err := h.service.CancelSale(c.Request.Context(), appsales.CancelInput{
		SaleID:  saleID,
		ActorID: actorID,
		Note:    req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Get returns a sale with its lines and audit trail
// GET /api/v1/sales/:id
func (h *SalesHandler) Get(c *gin.Context) {
	saleID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	details, err := h.service.GetSale(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}
