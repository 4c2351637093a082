package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/luxedropship/internal/middleware"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
	"github.com/mmeshcher/luxedropship/internal/repository"
	"github.com/mmeshcher/luxedropship/internal/seed"
	"github.com/mmeshcher/luxedropship/internal/service"
	"github.com/mmeshcher/luxedropship/internal/session"
	"github.com/mmeshcher/luxedropship/internal/storage"
)

func newShopRouter(t *testing.T) http.Handler {
	t.Helper()

	kv := storage.NewMemory()
	store := recordstore.New(kv, zap.NewNop())
	svc := service.NewService(service.Deps{
		Profiles: kv,
		Users:    repository.NewUsers(store, nil),
		Products: repository.NewProducts(store, nil),
		Coupons:  repository.NewCoupons(store, nil),
		Orders:   repository.NewOrders(repository.NewPrimaryOrders(store, nil), repository.NewLedgerOrders(store, nil)),
		Imports:  repository.NewImports(store, nil),
		Hasher:   session.BcryptHasher{Cost: 4},
	})

	data, err := seed.Default()
	require.NoError(t, err)
	require.NoError(t, svc.Bootstrap(context.Background(), data))

	return NewHandler(svc, zap.NewNop(), middleware.NewProfileMiddleware("test-secret")).SetupRouter()
}

func profileCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == "profile" {
			return c
		}
	}
	t.Fatalf("profile cookie not issued")
	return nil
}

func TestShopFlow_AdminCouponCheckout(t *testing.T) {
	router := newShopRouter(t)

	rec := serve(t, router, http.MethodGet, "/api/user/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	guest := profileCookie(t, rec)

	rec = serve(t, router, http.MethodGet, "/api/admin/dashboard", nil, guest)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, router, http.MethodPost, "/api/user/login",
		credentialsRequest{Email: "ADMIN@luxedropship.com", Password: "admin123"}, guest)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(t, router, http.MethodPost, "/api/admin/coupons",
		map[string]any{"code": "welcome10", "type": "percentage", "value": 10}, guest)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(t, router, http.MethodPost, "/api/cart", addToCartRequest{ProductID: "bag1", Lang: "en"}, guest)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(t, router, http.MethodPost, "/api/coupons/apply", applyCouponRequest{Code: "WELCOME10"}, guest)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quote map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, "9.995", quote["discountAmount"])

	rec = serve(t, router, http.MethodPost, "/api/checkout",
		map[string]any{"couponCode": "welcome10", "paymentMethod": "cod"}, guest)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res service.CheckoutResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 89.96, res.Order.Total)
	assert.Equal(t, "admin_001", res.Order.UserID)

	rec = serve(t, router, http.MethodGet, "/api/admin/orders/"+res.Order.ID, nil, guest)
	require.Equal(t, http.StatusOK, rec.Code)
	var order service.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, repository.SourceLedger, order.Source)
	assert.Equal(t, "Admin", order.CustomerName)

	rec = serve(t, router, http.MethodGet, "/api/admin/orders/"+res.Order.ID+"/fulfillment", nil, guest)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(t, router, http.MethodPatch, "/api/admin/orders/"+res.Order.ID+"/status",
		orderStatusRequest{Status: "completed"}, guest)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(t, router, http.MethodGet, "/api/cart", nil, guest)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart service.CartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Zero(t, cart.Count)

	rec = serve(t, router, http.MethodPost, "/api/user/logout", nil, guest)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, router, http.MethodGet, "/api/admin/dashboard", nil, guest)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestShopFlow_GuestCheckoutNeedsCustomer(t *testing.T) {
	router := newShopRouter(t)

	rec := serve(t, router, http.MethodPost, "/api/checkout", map[string]any{})
	guest := profileCookie(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_cart", errorReason(t, rec))

	rec = serve(t, router, http.MethodPost, "/api/cart", addToCartRequest{ProductID: "watch1"}, guest)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, router, http.MethodPost, "/api/checkout", map[string]any{}, guest)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", errorReason(t, rec))

	rec = serve(t, router, http.MethodPost, "/api/checkout", map[string]any{
		"paymentMethod": "crypto",
		"customer":      map[string]any{"name": "Ann", "fullAddress": "1 Main St"},
	}, guest)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(t, router, http.MethodDelete, "/api/cart/watch1", nil, guest)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, router, http.MethodDelete, "/api/cart/watch1", nil, guest)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
