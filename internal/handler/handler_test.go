package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mmeshcher/luxedropship/internal/discount"
	"github.com/mmeshcher/luxedropship/internal/middleware"
	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/productfetch"
	"github.com/mmeshcher/luxedropship/internal/service"
	"github.com/mmeshcher/luxedropship/internal/session"
)

// stubService переопределяет только нужные тестам методы; вызов остальных
// приводит к панике через nil-интерфейс.
type stubService struct {
	Service

	user    model.User
	userErr error
	isAdmin bool

	previewErr error
	applyErr   error
	fulfilment string

	searchQuery  string
	appendID     string
	appendField  string
	appendValues []string
}

func (s *stubService) Register(ctx context.Context, profileID string, u model.User) (model.User, error) {
	return s.user, s.userErr
}

func (s *stubService) Login(ctx context.Context, profileID, email, password string) (model.User, error) {
	return s.user, s.userErr
}

func (s *stubService) IsAdmin(ctx context.Context, profileID string) (bool, error) {
	return s.isAdmin, nil
}

func (s *stubService) Users(ctx context.Context) ([]model.User, error) {
	return []model.User{s.user}, nil
}

func (s *stubService) PreviewImport(ctx context.Context, productURL string) (productfetch.Product, error) {
	return productfetch.Product{}, s.previewErr
}

func (s *stubService) SearchImport(ctx context.Context, query string) ([]productfetch.Product, error) {
	s.searchQuery = query
	return []productfetch.Product{{Title: "Gold Watch"}}, nil
}

func (s *stubService) AppendProductValues(ctx context.Context, id, field string, values []string) (model.Product, error) {
	s.appendID, s.appendField, s.appendValues = id, field, values
	return model.Product{ID: id, Colors: model.StringList(values)}, nil
}

func (s *stubService) ApplyCoupon(ctx context.Context, profileID, code string, price *float64) (service.CouponQuote, error) {
	return service.CouponQuote{}, s.applyErr
}

func (s *stubService) FulfillmentText(ctx context.Context, id string) (string, error) {
	return s.fulfilment, nil
}

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	return NewHandler(svc, logger, middleware.NewProfileMiddleware("test-secret"))
}

func serve(t *testing.T, h http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorReason(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp["error"]
}

func TestRegister_RedactsPassword(t *testing.T) {
	svc := &stubService{
		user: model.User{ID: "user_1", Email: "ann@example.com", Password: "$2a$04$secret", Role: model.RoleCustomer},
	}
	router := newTestHandler(t, svc).SetupRouter()

	rec := serve(t, router, http.MethodPost, "/api/user/register",
		registerRequest{Email: "ann@example.com", Password: "pw"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if strings.Contains(rec.Body.String(), "secret") || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password leaked in response: %s", rec.Body.String())
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatalf("profile cookie not issued")
	}
}

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{"unknown user", session.ErrUserNotFound, http.StatusUnauthorized, "user_not_found"},
		{"wrong password", session.ErrInvalidPassword, http.StatusUnauthorized, "invalid_password"},
		{"duplicate email", session.ErrEmailTaken, http.StatusConflict, "email_taken"},
		{"store failure", errors.New("disk full"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestHandler(t, &stubService{userErr: tt.err}).SetupRouter()

			rec := serve(t, router, http.MethodPost, "/api/user/login",
				credentialsRequest{Email: "a@b.c", Password: "x"})

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := errorReason(t, rec); got != tt.wantReason {
				t.Fatalf("reason = %q, want %q", got, tt.wantReason)
			}
		})
	}
}

func TestLogin_MalformedBody(t *testing.T) {
	router := newTestHandler(t, &stubService{}).SetupRouter()

	rec := serve(t, router, http.MethodPost, "/api/user/login", "{not json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := errorReason(t, rec); got != "invalid_input" {
		t.Fatalf("reason = %q, want invalid_input", got)
	}
}

func TestApplyCoupon_Expired(t *testing.T) {
	svc := &stubService{applyErr: fmt.Errorf("coupon SALE: %w", discount.ErrCouponExpired)}
	router := newTestHandler(t, svc).SetupRouter()

	rec := serve(t, router, http.MethodPost, "/api/coupons/apply", applyCouponRequest{Code: "SALE"})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if got := errorReason(t, rec); got != "expired" {
		t.Fatalf("reason = %q, want expired", got)
	}
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	router := newTestHandler(t, &stubService{isAdmin: false}).SetupRouter()

	rec := serve(t, router, http.MethodGet, "/api/admin/users", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	router = newTestHandler(t, &stubService{
		isAdmin: true,
		user:    model.User{ID: "admin_001", Email: "admin@luxedropship.com", Password: "admin123"},
	}).SetupRouter()

	rec = serve(t, router, http.MethodGet, "/api/admin/users", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if strings.Contains(rec.Body.String(), "admin123") {
		t.Fatalf("password leaked in user list: %s", rec.Body.String())
	}
}

func TestPreviewImport_Unavailable(t *testing.T) {
	svc := &stubService{
		isAdmin:    true,
		previewErr: fmt.Errorf("fetch product: %w: %w", service.ErrUnavailable, errors.New("timeout")),
	}
	router := newTestHandler(t, svc).SetupRouter()

	rec := serve(t, router, http.MethodPost, "/api/admin/products/import/preview",
		previewRequest{URL: "https://www.aliexpress.com/item/1.html"})

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestSearchImport_Route(t *testing.T) {
	svc := &stubService{isAdmin: true}
	router := newTestHandler(t, svc).SetupRouter()

	rec := serve(t, router, http.MethodGet, "/api/admin/products/import/search?q=gold+watch", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if svc.searchQuery != "gold watch" {
		t.Fatalf("query = %q, want %q", svc.searchQuery, "gold watch")
	}
	var found []productfetch.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &found); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(found) != 1 || found[0].Title != "Gold Watch" {
		t.Fatalf("found = %+v", found)
	}
}

func TestAppendProductValues_Route(t *testing.T) {
	svc := &stubService{isAdmin: true}
	router := newTestHandler(t, svc).SetupRouter()

	rec := serve(t, router, http.MethodPost, "/api/admin/products/ring1/colors",
		appendRequest{Values: []string{"silver"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if svc.appendID != "ring1" || svc.appendField != "colors" {
		t.Fatalf("append target = %s/%s, want ring1/colors", svc.appendID, svc.appendField)
	}
	if len(svc.appendValues) != 1 || svc.appendValues[0] != "silver" {
		t.Fatalf("values = %v", svc.appendValues)
	}
}

func TestGetFulfillment_PlainText(t *testing.T) {
	svc := &stubService{isAdmin: true, fulfilment: "=== ALIEXPRESS ORDER INFO ==="}
	router := newTestHandler(t, svc).SetupRouter()

	rec := serve(t, router, http.MethodGet, "/api/admin/orders/ORDER_1/fulfillment", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content-type = %q, want text/plain", ct)
	}
	if rec.Body.String() != svc.fulfilment {
		t.Fatalf("body = %q, want %q", rec.Body.String(), svc.fulfilment)
	}
}

func TestUnknownRoute(t *testing.T) {
	router := newTestHandler(t, &stubService{}).SetupRouter()

	rec := serve(t, router, http.MethodGet, "/api/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
