package vouchers

import "github.com/go-chi/chi/v5"

// MountRoutes attaches voucher routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.post)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}
