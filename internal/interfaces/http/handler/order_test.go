package handler

import (
	"fmt"
	"net/http"
	"testing"

	apptrade "github.com/shopbot/backend/internal/application/trade"
	"github.com/shopbot/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderEnv(t *testing.T) *testEnv {
	env := newTestEnv(t)
	h := NewOrderHandler(env.orders)
	g := env.engine.Group("/orders")
	g.GET("", h.List)
	g.GET("/pending", h.Pending)
	g.GET("/:id", h.Get)
	g.PUT("/:id/status", h.UpdateStatus)
	g.POST("/:id/confirm", h.Confirm)
	return env
}

func TestOrderHandler_ListAndGet(t *testing.T) {
	env := newOrderEnv(t)
	productID := env.seedProduct("C-1", "Cola", "12.50")
	first := env.placeOrder(100, productID)
	env.placeOrder(101, productID)

	var orders []apptrade.OrderResponse
	w, resp := env.do(http.MethodGet, "/orders?page=1&page_size=1", nil, &orders)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, orders, 1)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)

	var order apptrade.OrderResponse
	w, _ = env.do(http.MethodGet, fmt.Sprintf("/orders/%d", first), nil, &order)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, int64(100), order.UserExternalID)
	assert.Equal(t, "Cola", order.ProductNames)

	w, resp = env.do(http.MethodGet, "/orders/9999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)

	w, resp = env.do(http.MethodGet, "/orders?status=lost", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)

	w, _ = env.do(http.MethodGet, "/orders?page_size=500", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_Pending(t *testing.T) {
	env := newOrderEnv(t)
	productID := env.seedProduct("C-1", "Cola", "12.50")
	env.placeOrder(100, productID)

	var orders []apptrade.OrderResponse
	w, _ := env.do(http.MethodGet, "/orders/pending", nil, &orders)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, orders, 1)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	env := newOrderEnv(t)
	productID := env.seedProduct("C-1", "Cola", "12.50")
	orderID := env.placeOrder(100, productID)
	path := fmt.Sprintf("/orders/%d/status", orderID)

	t.Run("illegal transition", func(t *testing.T) {
		w, resp := env.do(http.MethodPut, path, apptrade.ChangeStatusRequest{Status: "completed"}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
	})

	t.Run("missing status", func(t *testing.T) {
		w, resp := env.do(http.MethodPut, path, map[string]any{}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("legal transition", func(t *testing.T) {
		var order apptrade.OrderResponse
		w, _ := env.do(http.MethodPut, path, apptrade.ChangeStatusRequest{Status: "paid"}, &order)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "paid", order.Status)
	})

	t.Run("forced correction", func(t *testing.T) {
		var order apptrade.OrderResponse
		w, _ := env.do(http.MethodPut, path, apptrade.ChangeStatusRequest{Status: "pending", Force: true}, &order)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pending", order.Status)
	})
}

func TestOrderHandler_Confirm(t *testing.T) {
	env := newOrderEnv(t)
	productID := env.seedProduct("C-1", "Cola", "12.50")
	orderID := env.placeOrder(100, productID)

	var order apptrade.OrderResponse
	w, _ := env.do(http.MethodPost, fmt.Sprintf("/orders/%d/confirm", orderID), nil, &order)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", order.Status)

	w, _ = env.do(http.MethodPost, fmt.Sprintf("/orders/%d/confirm", orderID), nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
