package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/luxedropship/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware магазина.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(h.profile.Middleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})

		r.Get("/products", h.GetProducts)
		r.Get("/products/{id}", h.GetProduct)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/", h.AddToCart)
			r.Delete("/", h.ClearCart)
			r.Delete("/{productID}", h.RemoveFromCart)
		})

		r.Post("/coupons/apply", h.ApplyCoupon)
		r.Post("/checkout", h.Checkout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(custommiddleware.RequireAdmin(h.service.IsAdmin, h.logger))

			r.Get("/dashboard", h.GetDashboard)

			r.Get("/users", h.GetUsers)
			r.Post("/users", h.CreateUser)
			r.Put("/users/{id}", h.UpdateUser)
			r.Delete("/users/{id}", h.DeleteUser)

			r.Get("/products", h.GetProducts)
			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)
			r.Post("/products/{id}/{field}", h.AppendProductValues)
			r.Get("/products/import/search", h.SearchImport)
			r.Post("/products/import", h.ImportProduct)
			r.Post("/products/import/preview", h.PreviewImport)

			r.Get("/coupons", h.GetCoupons)
			r.Post("/coupons", h.CreateCoupon)
			r.Put("/coupons/{id}", h.UpdateCoupon)
			r.Delete("/coupons/{id}", h.DeleteCoupon)

			r.Get("/orders", h.GetOrders)
			r.Get("/orders/{id}", h.GetOrder)
			r.Patch("/orders/{id}/status", h.SetOrderStatus)
			r.Post("/orders/{id}/promote", h.PromoteOrder)
			r.Get("/orders/{id}/fulfillment", h.GetFulfillment)

			r.Get("/imports", h.GetImports)
			r.Post("/imports/drafts", h.SaveImportDraft)
			r.Get("/imports/drafts/{timestamp}", h.GetImportDraft)
			r.Delete("/imports/{timestamp}", h.DeleteImport)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
