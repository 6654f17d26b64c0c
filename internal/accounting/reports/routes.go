package reports

import "github.com/go-chi/chi/v5"

// MountRoutes registers report endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/ledger", h.LedgerReport)
}
