package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mkasimov/shop-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса.
// Проверка токена выполняется на уровне маршрутов; остальные проверки
// авторизации (активность, роль, владение) — на бизнес-уровне, чтобы
// отказ всегда случался до обращения к хранилищу.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/ping", h.Ping)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", h.Signup)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.ListUsers)
				r.Put("/change_role", h.ChangeRole)
				r.Put("/change_active", h.ChangeActive)
				r.Get("/{id}", h.GetUser)
				r.Put("/{id}", h.UpdateUser)
				r.Delete("/{id}", h.DeleteUser)
				r.Get("/{id}/orders", h.ListUserOrders)
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", h.CreateProduct)
				r.Get("/", h.SearchProducts)
				r.Get("/search", h.SearchProducts)
				r.Get("/{id}", h.GetProduct)
				r.Put("/{id}", h.UpdateProduct)
				r.Delete("/{id}", h.DeleteProduct)
			})

			r.Route("/statuses", func(r chi.Router) {
				r.Post("/", h.CreateStatus)
				r.Get("/", h.ListStatuses)
				r.Get("/{id}", h.GetStatus)
				r.Put("/{id}", h.UpdateStatus)
				r.Delete("/{id}", h.DeleteStatus)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.CreateOrder)
				r.Get("/{id}", h.GetOrder)
				r.Put("/{id}/status", h.UpdateOrderStatus)
				r.Delete("/{id}", h.CancelOrder)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
