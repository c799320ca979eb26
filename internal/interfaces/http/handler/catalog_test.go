package handler

import (
	"fmt"
	"net/http"
	"testing"

	appcatalog "github.com/shopbot/backend/internal/application/catalog"
	"github.com/shopbot/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogEnv(t *testing.T) *testEnv {
	env := newTestEnv(t)
	h := NewCatalogHandler(env.catalog)
	p := env.engine.Group("/products")
	p.GET("", h.ListProducts)
	p.GET("/:id", h.GetProduct)
	p.PATCH("/:id", h.UpdateProduct)
	p.PUT("/:id/stock", h.UpdateStock)
	p.DELETE("/:id", h.DeleteProduct)
	c := env.engine.Group("/categories")
	c.GET("", h.ListCategories)
	c.POST("", h.CreateCategory)
	c.GET("/:id", h.GetCategory)
	c.GET("/:id/path", h.CategoryPath)
	c.PUT("/:id", h.UpdateCategory)
	c.DELETE("/:id", h.DeleteCategory)
	return env
}

func TestCatalogHandler_Categories(t *testing.T) {
	env := newCatalogEnv(t)

	var root appcatalog.CategoryResponse
	w, _ := env.do(http.MethodPost, "/categories", appcatalog.CreateCategoryRequest{Name: "Drinks"}, &root)
	require.Equal(t, http.StatusCreated, w.Code)

	var child appcatalog.CategoryResponse
	w, _ = env.do(http.MethodPost, "/categories", appcatalog.CreateCategoryRequest{Name: "Soda", ParentID: &root.ID}, &child)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)

	var roots []appcatalog.CategoryResponse
	w, _ = env.do(http.MethodGet, "/categories", nil, &roots)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, roots, 1)
	assert.Equal(t, "Drinks", roots[0].Name)

	var children []appcatalog.CategoryResponse
	env.do(http.MethodGet, fmt.Sprintf("/categories?parent_id=%d", root.ID), nil, &children)
	require.Len(t, children, 1)
	assert.Equal(t, "Soda", children[0].Name)

	var path []appcatalog.CategoryResponse
	w, _ = env.do(http.MethodGet, fmt.Sprintf("/categories/%d/path", child.ID), nil, &path)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, path, 2)
	assert.Equal(t, "Drinks", path[0].Name)
	assert.Equal(t, "Soda", path[1].Name)

	t.Run("cycle rejected", func(t *testing.T) {
		w, resp := env.do(http.MethodPut, fmt.Sprintf("/categories/%d", root.ID),
			appcatalog.UpdateCategoryRequest{Name: "Drinks", ParentID: &child.ID}, nil)
		assert.GreaterOrEqual(t, w.Code, 400)
		assert.Less(t, w.Code, 500)
		assert.False(t, resp.Success)
	})

	t.Run("rename", func(t *testing.T) {
		var updated appcatalog.CategoryResponse
		w, _ := env.do(http.MethodPut, fmt.Sprintf("/categories/%d", child.ID),
			appcatalog.UpdateCategoryRequest{Name: "Lemonade", ParentID: &root.ID}, &updated)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Lemonade", updated.Name)
	})

	t.Run("invalid parent id", func(t *testing.T) {
		w, resp := env.do(http.MethodGet, "/categories?parent_id=x", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
	})

	t.Run("empty name", func(t *testing.T) {
		w, _ := env.do(http.MethodPost, "/categories", appcatalog.CreateCategoryRequest{}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w, _ := env.do(http.MethodDelete, fmt.Sprintf("/categories/%d", child.ID), nil, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		w, _ = env.do(http.MethodGet, fmt.Sprintf("/categories/%d", child.ID), nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCatalogHandler_Products(t *testing.T) {
	env := newCatalogEnv(t)
	productID := env.seedProduct("C-1", "Cola", "12.50")
	productPath := fmt.Sprintf("/products/%d", productID)

	var products []appcatalog.ProductResponse
	w, _ := env.do(http.MethodGet, "/products", nil, &products)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, products, 1)

	t.Run("partial update", func(t *testing.T) {
		var product appcatalog.ProductResponse
		w, _ := env.do(http.MethodPatch, productPath, map[string]any{"price": "15.00"}, &product)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, product.Price.Equal(decimal.RequireFromString("15")))
		assert.Equal(t, "Cola", product.Name)
	})

	t.Run("stock flag", func(t *testing.T) {
		var product appcatalog.ProductResponse
		w, _ := env.do(http.MethodPut, productPath+"/stock", map[string]any{"point": 2, "in_stock": true}, &product)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, product.StockPoint2)

		w, _ = env.do(http.MethodPut, productPath+"/stock", map[string]any{"point": 3, "in_stock": true}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w, _ := env.do(http.MethodDelete, productPath, nil, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		w, resp := env.do(http.MethodGet, productPath, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})
}
