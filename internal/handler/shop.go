package handler

import (
	"net/http"

	"github.com/mmeshcher/luxedropship/internal/service"
)

// GetProducts возвращает каталог, при необходимости отфильтрованный по категории.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Products(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.fail(w, r, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct возвращает товар по идентификатору.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Product(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetCart возвращает корзину профиля.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.CartContents(r.Context(), profileID(r))
	if err != nil {
		h.fail(w, r, "get cart", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Lang      string `json:"lang"`
}

// AddToCart добавляет товар в корзину профиля.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "add to cart", err)
		return
	}
	if req.ProductID == "" {
		h.fail(w, r, "add to cart", service.ErrInvalidInput)
		return
	}
	if req.Lang == "" {
		req.Lang = r.URL.Query().Get("lang")
	}

	cart, err := h.service.AddToCart(r.Context(), profileID(r), req.ProductID, req.Lang)
	if err != nil {
		h.fail(w, r, "add to cart", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// RemoveFromCart удаляет из корзины одну запись товара.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.RemoveFromCart(r.Context(), profileID(r), pathParam(r, "productID"))
	if err != nil {
		h.fail(w, r, "remove from cart", err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// ClearCart очищает корзину профиля.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCart(r.Context(), profileID(r)); err != nil {
		h.fail(w, r, "clear cart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type applyCouponRequest struct {
	Code  string   `json:"code"`
	Price *float64 `json:"price"`
}

// ApplyCoupon рассчитывает скидку по купону для цены или суммы корзины.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "apply coupon", err)
		return
	}

	quote, err := h.service.ApplyCoupon(r.Context(), profileID(r), req.Code, req.Price)
	if err != nil {
		h.fail(w, r, "apply coupon", err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// Checkout оформляет заказ из корзины профиля.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req service.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "checkout", err)
		return
	}

	res, err := h.service.Checkout(r.Context(), profileID(r), req)
	if err != nil {
		h.fail(w, r, "checkout", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
