package handler

import (
	"net/http"
	"strconv"

	"github.com/mmeshcher/luxedropship/internal/model"
	"github.com/mmeshcher/luxedropship/internal/recordstore"
	"github.com/mmeshcher/luxedropship/internal/service"
)

// GetDashboard возвращает сводные показатели магазина.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// GetUsers возвращает пользователей без паролей.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Users(r.Context())
	if err != nil {
		h.fail(w, r, "list users", err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, newUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateUser создаёт пользователя.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "create user", err)
		return
	}

	u, err := h.service.CreateUser(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(u))
}

// UpdateUser обновляет пользователя. Пустой пароль оставляет прежний.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "update user", err)
		return
	}

	u, err := h.service.UpdateUser(r.Context(), pathParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}

// DeleteUser удаляет пользователя.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), pathParam(r, "id")); err != nil {
		h.fail(w, r, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateProduct добавляет товар в каталог.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := decodeJSON(r, &p); err != nil {
		h.fail(w, r, "create product", err)
		return
	}

	created, err := h.service.CreateProduct(r.Context(), p)
	if err != nil {
		h.fail(w, r, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateProduct частично обновляет товар.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var fields recordstore.Fields
	if err := decodeJSON(r, &fields); err != nil {
		h.fail(w, r, "update product", err)
		return
	}

	p, err := h.service.UpdateProduct(r.Context(), pathParam(r, "id"), fields)
	if err != nil {
		h.fail(w, r, "update product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProduct удаляет товар.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), pathParam(r, "id")); err != nil {
		h.fail(w, r, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type appendRequest struct {
	Values []string `json:"values"`
}

// AppendProductValues добавляет значения в поле-список товара.
func (h *Handler) AppendProductValues(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "append product values", err)
		return
	}

	p, err := h.service.AppendProductValues(r.Context(), pathParam(r, "id"), pathParam(r, "field"), req.Values)
	if err != nil {
		h.fail(w, r, "append product values", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SearchImport ищет товары маркетплейса по параметру q.
func (h *Handler) SearchImport(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.SearchImport(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, "search import", err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

type previewRequest struct {
	URL string `json:"url"`
}

// PreviewImport получает данные товара по ссылке маркетплейса без сохранения.
func (h *Handler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "preview import", err)
		return
	}

	p, err := h.service.PreviewImport(r.Context(), req.URL)
	if err != nil {
		h.fail(w, r, "preview import", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ImportProduct импортирует товар по ссылке маркетплейса.
func (h *Handler) ImportProduct(w http.ResponseWriter, r *http.Request) {
	var req service.ImportRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "import product", err)
		return
	}

	p, err := h.service.ImportProduct(r.Context(), req)
	if err != nil {
		h.fail(w, r, "import product", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetCoupons возвращает купоны; active=true оставляет только активные.
func (h *Handler) GetCoupons(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))

	coupons, err := h.service.Coupons(r.Context(), activeOnly)
	if err != nil {
		h.fail(w, r, "list coupons", err)
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}

// CreateCoupon создаёт купон.
func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var c model.Coupon
	if err := decodeJSON(r, &c); err != nil {
		h.fail(w, r, "create coupon", err)
		return
	}

	created, err := h.service.CreateCoupon(r.Context(), c)
	if err != nil {
		h.fail(w, r, "create coupon", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateCoupon частично обновляет купон.
func (h *Handler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var fields recordstore.Fields
	if err := decodeJSON(r, &fields); err != nil {
		h.fail(w, r, "update coupon", err)
		return
	}

	c, err := h.service.UpdateCoupon(r.Context(), pathParam(r, "id"), fields)
	if err != nil {
		h.fail(w, r, "update coupon", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCoupon удаляет купон.
func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCoupon(r.Context(), pathParam(r, "id")); err != nil {
		h.fail(w, r, "delete coupon", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOrders возвращает заказы обоих хранилищ, новые первыми.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.Orders(r.Context())
	if err != nil {
		h.fail(w, r, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder возвращает заказ по идентификатору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Order(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type orderStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// SetOrderStatus меняет статус заказа.
func (h *Handler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "set order status", err)
		return
	}

	o, err := h.service.SetOrderStatus(r.Context(), pathParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, r, "set order status", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// PromoteOrder переносит заказ из журнала оформления в основное хранилище.
func (h *Handler) PromoteOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.PromoteOrder(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.fail(w, r, "promote order", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// GetFulfillment возвращает сводку заказа для закупки у поставщика.
func (h *Handler) GetFulfillment(w http.ResponseWriter, r *http.Request) {
	text, err := h.service.FulfillmentText(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.fail(w, r, "fulfillment text", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// GetImports возвращает историю импорта вместе с черновиками.
func (h *Handler) GetImports(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.ImportHistory(r.Context())
	if err != nil {
		h.fail(w, r, "import history", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// SaveImportDraft сохраняет черновик импорта.
func (h *Handler) SaveImportDraft(w http.ResponseWriter, r *http.Request) {
	var rec model.ImportRecord
	if err := decodeJSON(r, &rec); err != nil {
		h.fail(w, r, "save import draft", err)
		return
	}

	saved, err := h.service.SaveImportDraft(r.Context(), rec)
	if err != nil {
		h.fail(w, r, "save import draft", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// GetImportDraft возвращает черновик по отметке времени.
func (h *Handler) GetImportDraft(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.ImportDraft(r.Context(), pathParam(r, "timestamp"))
	if err != nil {
		h.fail(w, r, "get import draft", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteImport удаляет запись истории или черновик по отметке времени.
func (h *Handler) DeleteImport(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteImport(r.Context(), pathParam(r, "timestamp")); err != nil {
		h.fail(w, r, "delete import", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
