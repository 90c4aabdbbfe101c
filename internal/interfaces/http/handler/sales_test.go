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

	salesapp "github.com/retailerp/backend/internal/application/sales"
	"github.com/retailerp/backend/internal/domain/catalog"
	"github.com/retailerp/backend/internal/domain/shared/valueobject"
	"github.com/retailerp/backend/internal/interfaces/http/dto"
	"github.com/retailerp/backend/internal/testutil"
)

type salesHarness struct {
	engine  *gin.Engine
	world   *testutil.World
	store   *catalog.Store
	loc     valueobject.Location
	product *catalog.Product
	cashier uuid.UUID
}

func newSalesHarness(t *testing.T) *salesHarness {
	t.Helper()

	world := testutil.NewWorld()

	store, err := catalog.NewStore(3, "Riverside", "")
	require.NoError(t, err)
	world.AddStore(store)
	loc := valueobject.StoreLocation(store.ID)

	product, err := catalog.NewProduct("SOAP-500", "Soap 500ml", decimal.NewFromFloat(4.00))
	require.NoError(t, err)
	world.AddProduct(product)
	world.SetStock(product.ID, loc, 10)

	svc := salesapp.NewService(testutil.SalesScope{W: world}, world.ProductRepo(), world.StoreRepo())
	h := NewSalesHandler(svc)

	engine := gin.New()
	engine.POST("/sales", h.Create)
	engine.GET("/sales/:id", h.Get)
	engine.POST("/sales/:id/refund", h.Refund)
	engine.POST("/sales/:id/cancel", h.Cancel)

	return &salesHarness{
		engine:  engine,
		world:   world,
		store:   store,
		loc:     loc,
		product: product,
		cashier: uuid.New(),
	}
}

func (h *salesHarness) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", h.cashier.String())

	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func (h *salesHarness) createSale(t *testing.T, quantity int64) (uuid.UUID, string) {
	t.Helper()

	w, resp := h.do(t, "POST", "/sales", gin.H{
		"store_id":       h.store.ID.String(),
		"payment_method": "cash",
		"lines": []gin.H{
			{"product_id": h.product.ID.String(), "quantity": quantity},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	saleID, err := uuid.Parse(data["ID"].(string))
	require.NoError(t, err)
	return saleID, data["number"].(string)
}

func TestSalesHandlerCreate(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		h := newSalesHarness(t)

		saleID, number := h.createSale(t, 3)
		assert.NotEqual(t, uuid.Nil, saleID)
		assert.Regexp(t, `^STR003-\d{8}-0001$`, number)
		assert.Equal(t, int64(7), h.world.StockQuantity(h.product.ID, h.loc))
	})

	t.Run("insufficient stock returns 422", func(t *testing.T) {
		h := newSalesHarness(t)

		w, resp := h.do(t, "POST", "/sales", gin.H{
			"store_id":       h.store.ID.String(),
			"payment_method": "cash",
			"lines": []gin.H{
				{"product_id": h.product.ID.String(), "quantity": 11},
			},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInsufficientStock, resp.Error.Code)
		assert.Equal(t, int64(10), h.world.StockQuantity(h.product.ID, h.loc))
	})

	t.Run("missing lines rejected by validation", func(t *testing.T) {
		h := newSalesHarness(t)

		w, resp := h.do(t, "POST", "/sales", gin.H{
			"store_id":       h.store.ID.String(),
			"payment_method": "cash",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, resp.Success)
	})

	t.Run("unknown payment method rejected", func(t *testing.T) {
		h := newSalesHarness(t)

		w, _ := h.do(t, "POST", "/sales", gin.H{
			"store_id":       h.store.ID.String(),
			"payment_method": "barter",
			"lines": []gin.H{
				{"product_id": h.product.ID.String(), "quantity": 1},
			},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing actor returns 401", func(t *testing.T) {
		h := newSalesHarness(t)

		body, err := json.Marshal(gin.H{
			"store_id":       h.store.ID.String(),
			"payment_method": "cash",
			"lines": []gin.H{
				{"product_id": h.product.ID.String(), "quantity": 1},
			},
		})
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/sales", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSalesHandlerRefund(t *testing.T) {
	t.Run("partial refund restores stock", func(t *testing.T) {
		h := newSalesHarness(t)
		saleID, _ := h.createSale(t, 5)

		w, getResp := h.do(t, "GET", "/sales/"+saleID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		details := getResp.Data.(map[string]any)
		lines := details["sale"].(map[string]any)["lines"].([]any)
		lineID := lines[0].(map[string]any)["ID"].(string)

		w, resp := h.do(t, "POST", fmt.Sprintf("/sales/%s/refund", saleID), gin.H{
			"note": "damaged packaging",
			"lines": []gin.H{
				{"line_id": lineID, "quantity": 2},
			},
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
		assert.Equal(t, int64(7), h.world.StockQuantity(h.product.ID, h.loc))
	})

	t.Run("refund without a line list restores everything", func(t *testing.T) {
		h := newSalesHarness(t)
		saleID, _ := h.createSale(t, 6)
		require.Equal(t, int64(4), h.world.StockQuantity(h.product.ID, h.loc))

		w, resp := h.do(t, "POST", fmt.Sprintf("/sales/%s/refund", saleID), gin.H{
			"note": "wrong store",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
		assert.Equal(t, "refunded", resp.Data.(map[string]any)["status"])
		assert.Equal(t, int64(10), h.world.StockQuantity(h.product.ID, h.loc))
	})

	t.Run("refund of unknown sale returns 404", func(t *testing.T) {
		h := newSalesHarness(t)

		w, resp := h.do(t, "POST", fmt.Sprintf("/sales/%s/refund", uuid.New()), gin.H{
			"lines": []gin.H{
				{"line_id": uuid.New().String(), "quantity": 1},
			},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})
}

func TestSalesHandlerCancel(t *testing.T) {
	h := newSalesHarness(t)
	saleID, _ := h.createSale(t, 4)
	require.Equal(t, int64(6), h.world.StockQuantity(h.product.ID, h.loc))

	w, resp := h.do(t, "POST", fmt.Sprintf("/sales/%s/cancel", saleID), gin.H{
		"note": "customer walked out",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(10), h.world.StockQuantity(h.product.ID, h.loc))

	// Cancelling twice is an invalid state transition
	w, resp = h.do(t, "POST", fmt.Sprintf("/sales/%s/cancel", saleID), gin.H{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
}
