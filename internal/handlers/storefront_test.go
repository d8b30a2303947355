package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/isvaryam/internal/models"
)

func TestProductCatalogCrud(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.createUser(t, "admin@x.com", "secret123", true)

	payload := map[string]interface{}{
		"product_id":  "oil-500",
		"name":        "Groundnut Oil",
		"description": "Cold pressed",
		"category":    "oils",
		"quantities":  []map[string]interface{}{{"size": "500ml", "price": 250}},
		"images":      []string{"https://cdn.example.com/oil.jpg"},
		"ingredients": []map[string]string{{"name": "Groundnut", "quantity": "100%"}},
	}

	status, body := env.request(t, http.MethodPost, "/api/products/", adminToken, payload)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "oil-500", body["data"].(map[string]interface{})["product_id"])

	status, _ = env.request(t, http.MethodPost, "/api/products/", adminToken, payload)
	assert.Equal(t, http.StatusConflict, status, "duplicate product_id")

	status, body = env.request(t, http.MethodGet, "/api/products/oil-500", "", nil)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Groundnut Oil", data["name"])
	assert.Len(t, data["quantities"].([]interface{}), 1)

	payload["name"] = "Groundnut Oil (Wood Pressed)"
	payload["quantities"] = []map[string]interface{}{
		{"size": "500ml", "price": 260},
		{"size": "1l", "price": 500},
	}
	status, _ = env.request(t, http.MethodPut, "/api/products/oil-500", adminToken, payload)
	require.Equal(t, http.StatusOK, status)

	status, body = env.request(t, http.MethodGet, "/api/products/oil-500", "", nil)
	require.Equal(t, http.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, "Groundnut Oil (Wood Pressed)", data["name"])
	assert.Len(t, data["quantities"].([]interface{}), 2, "old size rows are replaced, not appended")
}

func TestListProductsSearchAndCategory(t *testing.T) {
	env := newTestEnv(t)

	oil := env.createProduct(t, "oil-500", "Groundnut Oil", 0, map[string]float64{"500ml": 250})
	oil.Category = "oils"
	require.NoError(t, env.db.Save(oil).Error)

	ghee := env.createProduct(t, "ghee-1", "Desi Ghee", 0, map[string]float64{"1l": 1000})
	ghee.Category = "dairy"
	require.NoError(t, env.db.Save(ghee).Error)

	status, body := env.request(t, http.MethodGet, "/api/products/?search=GROUNDNUT", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["data"].([]interface{}), 1, "search is case insensitive")

	status, body = env.request(t, http.MethodGet, "/api/products/?category=dairy", "", nil)
	require.Equal(t, http.StatusOK, status)
	results := body["data"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, "ghee-1", results[0].(map[string]interface{})["product_id"])

	status, body = env.request(t, http.MethodGet, "/api/products/", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]interface{}), 2)
	assert.Equal(t, 2.0, body["pagination"].(map[string]interface{})["total_items"])
}

func TestCartLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "a@x.com", "secret123", false)
	env.createProduct(t, "oil-500", "Groundnut Oil", 0, map[string]float64{"500ml": 250})

	status, body := env.request(t, http.MethodGet, "/api/cart/", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"].(map[string]interface{})["items"], "first access creates an empty cart")

	addPayload := map[string]interface{}{"product_id": "oil-500", "size": "500ml", "quantity": 1}
	status, _ = env.request(t, http.MethodPost, "/api/cart/items", token, addPayload)
	require.Equal(t, http.StatusOK, status)

	status, body = env.request(t, http.MethodPost, "/api/cart/items", token, addPayload)
	require.Equal(t, http.StatusOK, status)
	item := body["data"].(map[string]interface{})
	assert.Equal(t, 2.0, item["quantity"], "repeat adds merge into one line")

	status, body = env.request(t, http.MethodGet, "/api/cart/", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["data"].(map[string]interface{})["items"].([]interface{}), 1)

	status, body = env.request(t, http.MethodPut, "/api/cart/items/"+item["id"].(string), token,
		map[string]interface{}{"quantity": 5})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5.0, body["data"].(map[string]interface{})["quantity"])

	status, _ = env.request(t, http.MethodPut, "/api/cart/items/"+item["id"].(string), token,
		map[string]interface{}{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.request(t, http.MethodDelete, "/api/cart/items/"+item["id"].(string), token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.request(t, http.MethodDelete, "/api/cart/items/"+item["id"].(string), token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.request(t, http.MethodPost, "/api/cart/items", token, addPayload)
	require.Equal(t, http.StatusOK, status)
	status, _ = env.request(t, http.MethodDelete, "/api/cart/", token, nil)
	require.Equal(t, http.StatusOK, status)

	var count int64
	env.db.Model(&models.CartItem{}).Count(&count)
	assert.Zero(t, count)
}

func TestCartsAreScopedPerUser(t *testing.T) {
	env := newTestEnv(t)
	_, tokenA := env.createUser(t, "a@x.com", "secret123", false)
	_, tokenB := env.createUser(t, "b@x.com", "secret123", false)
	env.createProduct(t, "oil-500", "Groundnut Oil", 0, map[string]float64{"500ml": 250})

	status, _ := env.request(t, http.MethodPost, "/api/cart/items", tokenA,
		map[string]interface{}{"product_id": "oil-500", "size": "500ml", "quantity": 1})
	require.Equal(t, http.StatusOK, status)

	status, body := env.request(t, http.MethodGet, "/api/cart/", tokenB, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"].(map[string]interface{})["items"])
}

func TestWishlistAddIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "a@x.com", "secret123", false)
	env.createProduct(t, "oil-500", "Groundnut Oil", 0, map[string]float64{"500ml": 250})

	payload := map[string]string{"product_id": "oil-500"}
	for i := 0; i < 2; i++ {
		status, _ := env.request(t, http.MethodPost, "/api/wishlist/", token, payload)
		require.Equal(t, http.StatusOK, status)
	}

	status, body := env.request(t, http.MethodGet, "/api/wishlist/", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"].([]interface{}), 1)

	status, _ = env.request(t, http.MethodDelete, "/api/wishlist/oil-500", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = env.request(t, http.MethodGet, "/api/wishlist/", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])
}

func TestReviewValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "a@x.com", "secret123", false)
	env.createProduct(t, "oil-500", "Groundnut Oil", 0, map[string]float64{"500ml": 250})

	status, _ := env.request(t, http.MethodPost, "/api/reviews/", token,
		map[string]interface{}{"product_id": "oil-500", "rating": 6})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.request(t, http.MethodPost, "/api/reviews/", token,
		map[string]interface{}{"product_id": "nope", "rating": 4})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.request(t, http.MethodPost, "/api/reviews/", token,
		map[string]interface{}{"product_id": "oil-500", "rating": 4, "comment": "good"})
	require.Equal(t, http.StatusCreated, status)

	status, body := env.request(t, http.MethodGet, "/api/reviews/oil-500", "", nil)
	require.Equal(t, http.StatusOK, status)
	reviews := body["data"].([]interface{})
	require.Len(t, reviews, 1)
	assert.Equal(t, 4.0, reviews[0].(map[string]interface{})["rating"])
}

func TestCouponLookup(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.createUser(t, "admin@x.com", "secret123", true)
	_, userToken := env.createUser(t, "a@x.com", "secret123", false)

	status, _ := env.request(t, http.MethodPost, "/api/coupons/", userToken,
		map[string]interface{}{"code": "SAVE50", "discount": 50, "expires_at": time.Now().Add(time.Hour)})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.request(t, http.MethodPost, "/api/coupons/", adminToken,
		map[string]interface{}{"code": "SAVE50", "discount": 50, "expires_at": time.Now().Add(time.Hour)})
	require.Equal(t, http.StatusCreated, status)

	status, body := env.request(t, http.MethodGet, "/api/coupons/SAVE50", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 50.0, body["data"].(map[string]interface{})["discount"])

	status, _ = env.request(t, http.MethodGet, "/api/coupons/NOPE", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	require.NoError(t, env.db.Create(&models.Coupon{
		Code:      "OLD",
		Discount:  10,
		ExpiresAt: time.Now().Add(-time.Hour),
	}).Error)
	status, _ = env.request(t, http.MethodGet, "/api/coupons/OLD", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
