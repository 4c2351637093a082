// Package handler содержит HTTP-обработчики API магазина luxedropship.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/luxedropship/internal/middleware"
	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/productfetch"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
	"github.com/mmeshcher/luxedropship/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Register(ctx context.Context, profileID string, u model.User) (model.User, error)
	Login(ctx context.Context, profileID, email, password string) (model.User, error)
	Logout(ctx context.Context, profileID string) error
	CurrentUser(ctx context.Context, profileID string) (model.User, error)
	IsAdmin(ctx context.Context, profileID string) (bool, error)

	Products(ctx context.Context, category string) ([]model.Product, error)
	Product(ctx context.Context, id string) (model.Product, error)
	CartContents(ctx context.Context, profileID string) (service.CartView, error)
	AddToCart(ctx context.Context, profileID, productID, lang string) (service.CartView, error)
	RemoveFromCart(ctx context.Context, profileID, productID string) (service.CartView, error)
	ClearCart(ctx context.Context, profileID string) error
	ApplyCoupon(ctx context.Context, profileID, code string, price *float64) (service.CouponQuote, error)
	Checkout(ctx context.Context, profileID string, req service.CheckoutRequest) (service.CheckoutResult, error)

	Dashboard(ctx context.Context) (model.Dashboard, error)
	Users(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, in service.UserInput) (model.User, error)
	UpdateUser(ctx context.Context, id string, in service.UserInput) (model.User, error)
	DeleteUser(ctx context.Context, id string) error
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	UpdateProduct(ctx context.Context, id string, fields recordstore.Fields) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AppendProductValues(ctx context.Context, id, field string, values []string) (model.Product, error)
	Coupons(ctx context.Context, activeOnly bool) ([]service.CouponView, error)
	CreateCoupon(ctx context.Context, c model.Coupon) (model.Coupon, error)
	UpdateCoupon(ctx context.Context, id string, fields recordstore.Fields) (model.Coupon, error)
	DeleteCoupon(ctx context.Context, id string) error
	Orders(ctx context.Context) ([]service.OrderView, error)
	Order(ctx context.Context, id string) (service.OrderView, error)
	SetOrderStatus(ctx context.Context, id string, status model.OrderStatus) (service.OrderView, error)
	PromoteOrder(ctx context.Context, id string) (service.OrderView, error)
	FulfillmentText(ctx context.Context, id string) (string, error)
	PreviewImport(ctx context.Context, productURL string) (productfetch.Product, error)
	SearchImport(ctx context.Context, query string) ([]productfetch.Product, error)
	ImportProduct(ctx context.Context, req service.ImportRequest) (model.Product, error)
	SaveImportDraft(ctx context.Context, rec model.ImportRecord) (model.ImportRecord, error)
	ImportDraft(ctx context.Context, timestamp string) (model.ImportRecord, error)
	ImportHistory(ctx context.Context) ([]model.ImportRecord, error)
	DeleteImport(ctx context.Context, timestamp string) error
}

// Handler реализует HTTP-обработчики API магазина.
type Handler struct {
	service Service
	logger  *zap.Logger
	profile *middleware.ProfileMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, profile *middleware.ProfileMiddleware) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
		profile: profile,
	}
}

var errMalformedBody = errors.New("malformed request body")

// statusFor сопоставляет причину ошибки с HTTP-статусом.
func statusFor(reason string) int {
	switch reason {
	case "user_not_found", "invalid_password", "not_logged_in":
		return http.StatusUnauthorized
	case "email_taken":
		return http.StatusConflict
	case "not_found":
		return http.StatusNotFound
	case "forbidden":
		return http.StatusForbidden
	case "expired", "below_minimum", "no_customer":
		return http.StatusUnprocessableEntity
	case "invalid_input", "password_required", "empty_cart":
		return http.StatusBadRequest
	case "unavailable":
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail отвечает клиенту причиной ошибки. Внутренние ошибки записываются в журнал.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	reason := service.Reason(err)
	if errors.Is(err, errMalformedBody) {
		reason = "invalid_input"
	}

	status := statusFor(reason)
	switch status {
	case http.StatusServiceUnavailable:
		h.logger.Warn(op+" upstream unavailable", zap.Error(err))
	case http.StatusInternalServerError:
		h.logger.Error(op+" error", zap.Error(err), zap.String("path", r.URL.Path))
	}

	writeJSON(w, status, map[string]string{"error": reason})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errMalformedBody
	}
	return nil
}

func profileID(r *http.Request) string {
	id, _ := middleware.GetProfileIDFromContext(r.Context())
	return id
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
