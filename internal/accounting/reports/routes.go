package reports

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the report endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/statement/{ledgerID}", h.statement)
	r.Get("/trial-balance", h.trialBalance)
	r.Get("/profit-loss", h.profitAndLoss)
	r.Get("/balance-sheet", h.balanceSheet)
}
