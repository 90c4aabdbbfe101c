package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transferapp "github.com/retailerp/backend/internal/application/transfer"
	"github.com/retailerp/backend/internal/domain/catalog"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
	"github.com/retailerp/backend/internal/interfaces/http/dto"
	"github.com/retailerp/backend/internal/testutil"
)

type transferHarness struct {
	engine   *gin.Engine
	world    *testutil.World
	store    *catalog.Store
	storeLoc valueobject.Location
	dcLoc    valueobject.Location
	product  *catalog.Product
	actor    uuid.UUID
}

func newTransferHarness(t *testing.T) *transferHarness {
	t.Helper()

	world := testutil.NewWorld()

	store, err := catalog.NewStore(5, "Harbor", "")
	require.NoError(t, err)
	world.AddStore(store)

	product, err := catalog.NewProduct("RICE-1KG", "Rice 1kg", decimal.NewFromFloat(2.50))
	require.NoError(t, err)
	world.AddProduct(product)

	dcLoc := valueobject.CentralDCLocation()
	world.SetStock(product.ID, dcLoc, 100)

	svc := transferapp.NewService(
		testutil.TransferScope{W: world}, world.ProductRepo(), world.StoreRepo(), world.StockRepo())
	h := NewTransferHandler(svc)

	engine := gin.New()
	engine.POST("/transfers", h.Create)
	engine.GET("/transfers", h.List)
	engine.GET("/transfers/:id", h.Get)
	engine.POST("/transfers/:id/decide", h.Decide)
	engine.POST("/transfers/:id/execute", h.Execute)
	engine.POST("/transfers/:id/cancel", h.Cancel)
	engine.POST("/transfers/quick", h.QuickTransfer)

	return &transferHarness{
		engine:   engine,
		world:    world,
		store:    store,
		storeLoc: valueobject.StoreLocation(store.ID),
		dcLoc:    dcLoc,
		product:  product,
		actor:    uuid.New(),
	}
}

func (h *transferHarness) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", h.actor.String())

	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

// createRequest posts a DC-to-store transfer and returns its ID and
// the ID of its single line.
func (h *transferHarness) createRequest(t *testing.T, quantity int64) (uuid.UUID, string) {
	t.Helper()

	w, resp := h.do(t, "POST", "/transfers", gin.H{
		"destination_store_id": h.store.ID.String(),
		"lines": []gin.H{
			{"product_id": h.product.ID.String(), "quantity": quantity},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := resp.Data.(map[string]any)
	request := data["request"].(map[string]any)
	transferID, err := uuid.Parse(request["ID"].(string))
	require.NoError(t, err)
	lines := request["lines"].([]any)
	lineID := lines[0].(map[string]any)["ID"].(string)
	return transferID, lineID
}

func TestTransferHandlerWorkflow(t *testing.T) {
	t.Run("create, approve and execute moves stock", func(t *testing.T) {
		h := newTransferHarness(t)
		transferID, lineID := h.createRequest(t, 30)

		// Creation does not touch the ledger
		assert.Equal(t, int64(100), h.world.StockQuantity(h.product.ID, h.dcLoc))

		w, resp := h.do(t, "POST", fmt.Sprintf("/transfers/%s/decide", transferID), gin.H{
			"approve": true,
			"approvals": []gin.H{
				{"line_id": lineID, "quantity": 25},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "approved", resp.Data.(map[string]any)["status"])

		// Approval does not touch the ledger either
		assert.Equal(t, int64(100), h.world.StockQuantity(h.product.ID, h.dcLoc))

		w, resp = h.do(t, "POST", fmt.Sprintf("/transfers/%s/execute", transferID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "completed", resp.Data.(map[string]any)["status"])

		assert.Equal(t, int64(75), h.world.StockQuantity(h.product.ID, h.dcLoc))
		assert.Equal(t, int64(25), h.world.StockQuantity(h.product.ID, h.storeLoc))
	})

	t.Run("priority defaults to normal and round-trips when set", func(t *testing.T) {
		h := newTransferHarness(t)

		w, resp := h.do(t, "POST", "/transfers", gin.H{
			"destination_store_id": h.store.ID.String(),
			"lines": []gin.H{
				{"product_id": h.product.ID.String(), "quantity": 1},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		request := resp.Data.(map[string]any)["request"].(map[string]any)
		assert.Equal(t, "normal", request["priority"])

		w, resp = h.do(t, "POST", "/transfers", gin.H{
			"destination_store_id": h.store.ID.String(),
			"priority":             "high",
			"lines": []gin.H{
				{"product_id": h.product.ID.String(), "quantity": 1},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		request = resp.Data.(map[string]any)["request"].(map[string]any)
		assert.Equal(t, "high", request["priority"])

		w, _ = h.do(t, "POST", "/transfers", gin.H{
			"destination_store_id": h.store.ID.String(),
			"priority":             "whenever",
			"lines": []gin.H{
				{"product_id": h.product.ID.String(), "quantity": 1},
			},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejection requires a reason", func(t *testing.T) {
		h := newTransferHarness(t)
		transferID, _ := h.createRequest(t, 10)

		w, resp := h.do(t, "POST", fmt.Sprintf("/transfers/%s/decide", transferID), gin.H{
			"approve": false,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)

		w, resp = h.do(t, "POST", fmt.Sprintf("/transfers/%s/decide", transferID), gin.H{
			"approve": false,
			"reason":  "quarterly freeze",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "rejected", resp.Data.(map[string]any)["status"])
	})

	t.Run("executing a pending request is an invalid state", func(t *testing.T) {
		h := newTransferHarness(t)
		transferID, _ := h.createRequest(t, 10)

		w, resp := h.do(t, "POST", fmt.Sprintf("/transfers/%s/execute", transferID), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
	})

	t.Run("execution failure leaves the request approved", func(t *testing.T) {
		h := newTransferHarness(t)
		transferID, lineID := h.createRequest(t, 100)

		w, _ := h.do(t, "POST", fmt.Sprintf("/transfers/%s/decide", transferID), gin.H{
			"approve": true,
			"approvals": []gin.H{
				{"line_id": lineID, "quantity": 100},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)

		// Drain the source before execution
		h.world.SetStock(h.product.ID, h.dcLoc, 40)

		w, resp := h.do(t, "POST", fmt.Sprintf("/transfers/%s/execute", transferID), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInsufficientStock, resp.Error.Code)

		// Nothing moved, request still approved and retryable
		assert.Equal(t, int64(40), h.world.StockQuantity(h.product.ID, h.dcLoc))
		assert.Equal(t, int64(0), h.world.StockQuantity(h.product.ID, h.storeLoc))

		w, resp = h.do(t, "GET", "/transfers/"+transferID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		request := resp.Data.(map[string]any)["request"].(map[string]any)
		assert.Equal(t, "approved", request["status"])
	})

	t.Run("same source and destination rejected", func(t *testing.T) {
		h := newTransferHarness(t)

		w, resp := h.do(t, "POST", "/transfers", gin.H{
			"lines": []gin.H{
				{"product_id": h.product.ID.String(), "quantity": 1},
			},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeSameLocation, resp.Error.Code)
	})
}

func TestTransferHandlerQuick(t *testing.T) {
	h := newTransferHarness(t)

	w, resp := h.do(t, "POST", "/transfers/quick", gin.H{
		"destination_store_id": h.store.ID.String(),
		"note":                 "opening stock",
		"lines": []gin.H{
			{"product_id": h.product.ID.String(), "quantity": 20},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "completed", resp.Data.(map[string]any)["status"])

	assert.Equal(t, int64(80), h.world.StockQuantity(h.product.ID, h.dcLoc))
	assert.Equal(t, int64(20), h.world.StockQuantity(h.product.ID, h.storeLoc))
}

func TestTransferHandlerList(t *testing.T) {
	h := newTransferHarness(t)
	h.createRequest(t, 5)
	h.createRequest(t, 7)

	w, resp := h.do(t, "GET", "/transfers?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data.([]any), 2)

	w, _ = h.do(t, "GET", "/transfers?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = h.do(t, "GET", "/transfers", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
