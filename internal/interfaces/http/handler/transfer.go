package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apptransfer "github.com/retailerp/backend/internal/application/transfer"
	"github.com/retailerp/backend/internal/domain/transfer"
)

// TransferHandler exposes the inter-location transfer workflow
type TransferHandler struct {
	BaseHandler
	service *apptransfer.Service
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(service *apptransfer.Service) *TransferHandler {
	return &TransferHandler{service: service}
}

// TransferLineRequest is one requested line on a new transfer
type TransferLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// CreateTransferRequest describes a new transfer between locations.
// An empty source or destination store ID means the central DC.
type CreateTransferRequest struct {
	SourceStoreID      string                `json:"source_store_id" binding:"omitempty,uuid"`
	DestinationStoreID string                `json:"destination_store_id" binding:"omitempty,uuid"`
	Priority           string                `json:"priority" binding:"omitempty,oneof=low normal high"`
	Note               string                `json:"note" binding:"omitempty,max=500"`
	Lines              []TransferLineRequest `json:"lines" binding:"required,min=1,dive"`
}

func (h *TransferHandler) buildCreateInput(c *gin.Context, req CreateTransferRequest) (apptransfer.CreateInput, bool) {
	source, err := parseLocation(req.SourceStoreID)
	if err != nil {
		h.BadRequest(c, "source_store_id must be a UUID")
		return apptransfer.CreateInput{}, false
	}
	destination, err := parseLocation(req.DestinationStoreID)
	if err != nil {
		h.BadRequest(c, "destination_store_id must be a UUID")
		return apptransfer.CreateInput{}, false
	}

	requesterID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return apptransfer.CreateInput{}, false
	}

	lines := make([]apptransfer.CreateLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, apptransfer.CreateLineInput{
			ProductID: uuid.MustParse(line.ProductID),
			Quantity:  line.Quantity,
		})
	}

	return apptransfer.CreateInput{
		Source:      source,
		Destination: destination,
		RequesterID: requesterID,
		Priority:    transfer.TransferPriority(req.Priority),
		Note:        req.Note,
		Lines:       lines,
	}, true
}

// Create records a pending transfer request
// POST /api/v1/transfers
func (h *TransferHandler) Create(c *gin.Context) {
	var req CreateTransferRequest
	if !h.bindJSON(c, &req) {
		return
	}

	input, ok := h.buildCreateInput(c, req)
	if !ok {
		return
	}

	result, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// LineApprovalRequest sets the approved quantity for one line
type LineApprovalRequest struct {
	LineID   string `json:"line_id" binding:"required,uuid"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// DecideTransferRequest approves or rejects a pending transfer.
// Approvals must cover every line when approving; a reason is
// required when rejecting.
type DecideTransferRequest struct {
	Approve   bool                  `json:"approve"`
	Approvals []LineApprovalRequest `json:"approvals" binding:"omitempty,dive"`
	Reason    string                `json:"reason" binding:"omitempty,max=500"`
}

// Decide approves or rejects a pending transfer request
// POST /api/v1/transfers/:id/decide
func (h *TransferHandler) Decide(c *gin.Context) {
	transferID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req DecideTransferRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return
	}

	approvals := make([]transfer.LineApproval, 0, len(req.Approvals))
	for _, a := range req.Approvals {
		approvals = append(approvals, transfer.LineApproval{
			LineID:   uuid.MustParse(a.LineID),
			Quantity: a.Quantity,
		})
	}

	request, err := h.service.Decide(c.Request.Context(), apptransfer.DecideInput{
		TransferID: transferID,
		ActorID:    actorID,
		Approve:    req.Approve,
		Approvals:  approvals,
		Reason:     req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}

// Execute moves the approved quantities between locations
// POST /api/v1/transfers/:id/execute
func (h *TransferHandler) Execute(c *gin.Context) {
	transferID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return
	}

	request, err := h.service.Execute(c.Request.Context(), transferID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}

// CancelTransferRequest withdraws a transfer before execution
type CancelTransferRequest struct {
	Note string `json:"note" binding:"omitempty,max=500"`
}

// Cancel withdraws a pending or approved transfer
// POST /api/v1/transfers/:id/cancel
func (h *TransferHandler) Cancel(c *gin.Context) {
	transferID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req CancelTransferRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return
	}

	request, err := h.service.Cancel(c.Request.Context(), transferID, actorID, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, request)
}

// QuickTransfer moves stock immediately, skipping the approval workflow
// POST /api/v1/transfers/quick
func (h *TransferHandler) QuickTransfer(c *gin.Context) {
	var req CreateTransferRequest
	if !h.bindJSON(c, &req) {
		return
	}

	input, ok := h.buildCreateInput(c, req)
	if !ok {
		return
	}

	request, err := h.service.QuickTransfer(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, request)
}

// Get returns a transfer request with its lines, actions and history
// GET /api/v1/transfers/:id
func (h *TransferHandler) Get(c *gin.Context) {
	transferID, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	details, err := h.service.Get(c.Request.Context(), transferID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}

// List lists transfer requests by status, newest first
// GET /api/v1/transfers?status=pending&limit=50
func (h *TransferHandler) List(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		h.BadRequest(c, "status is required")
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			h.BadRequest(c, "limit must be between 1 and 200")
			return
		}
		limit = parsed
	}

	requests, err := h.service.ListByStatus(c.Request.Context(), transfer.TransferStatus(status), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, requests)
}
