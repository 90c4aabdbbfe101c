package handler

import (
	"github.com/gin-gonic/gin"

	appsequence "github.com/retailerp/backend/internal/application/sequence"
)

// SequenceHandler exposes document number issuance and inspection
type SequenceHandler struct {
	BaseHandler
	service *appsequence.Service
}

// NewSequenceHandler creates a new SequenceHandler
func NewSequenceHandler(service *appsequence.Service) *SequenceHandler {
	return &SequenceHandler{service: service}
}

// NextNumberRequest asks for the next document number at a location
type NextNumberRequest struct {
	// StoreID empty means the central distribution center
	StoreID string `json:"store_id" binding:"omitempty,uuid"`
}

// NumberResponse carries an issued or inspected document number
type NumberResponse struct {
	Number string `json:"number"`
}

// NextNumber issues the next document number
// POST /api/v1/sequences/next
func (h *SequenceHandler) NextNumber(c *gin.Context) {
	var req NextNumberRequest
	if !h.bindJSON(c, &req) {
		return
	}

	location, err := parseLocation(req.StoreID)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	number, err := h.service.NextNumber(c.Request.Context(), location)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, NumberResponse{Number: number})
}

// CurrentValueResponse carries today's counter value for a location
type CurrentValueResponse struct {
	CurrentValue int64 `json:"current_value"`
}

// CurrentValue returns today's counter value without advancing it
// GET /api/v1/sequences/current?store_id=...
func (h *SequenceHandler) CurrentValue(c *gin.Context) {
	location, err := parseLocation(c.Query("store_id"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	value, err := h.service.CurrentValue(c.Request.Context(), location)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CurrentValueResponse{CurrentValue: value})
}

// ValidateNumberRequest asks whether text is a well formed document number
type ValidateNumberRequest struct {
	Number string `json:"number" binding:"required"`
}

// ValidateNumberResponse reports the syntactic check result
type ValidateNumberResponse struct {
	Number string `json:"number"`
	Valid  bool   `json:"valid"`
}

// Validate checks document number syntax
// POST /api/v1/sequences/validate
func (h *SequenceHandler) Validate(c *gin.Context) {
	var req ValidateNumberRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Success(c, ValidateNumberResponse{
		Number: req.Number,
		Valid:  h.service.Validate(req.Number),
	})
}

// ResetRequest forces today's counter for a location to a value
type ResetRequest struct {
	StoreID string `json:"store_id" binding:"omitempty,uuid"`
	Value   int64  `json:"value" binding:"gte=0"`
}

// Reset forces today's counter value. Administrative use only.
// POST /api/v1/sequences/reset
func (h *SequenceHandler) Reset(c *gin.Context) {
	var req ResetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	location, err := parseLocation(req.StoreID)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.service.Reset(c.Request.Context(), location, req.Value); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CurrentValueResponse{CurrentValue: req.Value})
}
