package accounts

import "github.com/go-chi/chi/v5"

// MountRoutes registers chart of accounts endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/parent-groups", func(r chi.Router) {
		r.Get("/", h.listParentGroups)
		r.Post("/", h.createParentGroup)
		r.Get("/{id}", h.getParentGroup)
		r.Put("/{id}", h.updateParentGroup)
		r.Delete("/{id}", h.deleteParentGroup)
	})
	r.Route("/groups", func(r chi.Router) {
		r.Get("/", h.listLedgerGroups)
		r.Post("/", h.createLedgerGroup)
		r.Get("/{id}", h.getLedgerGroup)
		r.Put("/{id}", h.updateLedgerGroup)
		r.Delete("/{id}", h.deleteLedgerGroup)
	})
	r.Route("/ledgers", func(r chi.Router) {
		r.Get("/", h.listLedgers)
		r.Post("/", h.createLedger)
		r.Get("/{id}", h.getLedger)
		r.Put("/{id}", h.updateLedger)
		r.Delete("/{id}", h.deleteLedger)
		r.Post("/{id}/deactivate", h.setLedgerActive(false))
		r.Post("/{id}/activate", h.setLedgerActive(true))
	})
	r.Route("/spending-types", func(r chi.Router) {
		r.Get("/", h.listSpendingTypes)
		r.Post("/", h.createSpendingType)
	})
}
