package accounting

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/cache"
)

// Handler wires ledger endpoints.
type Handler struct {
	accounts *accounts.Handler
	journals *journals.Handler
	reports  *reports.Handler
}

// NewHandler builds a Handler instance. Writes through the chart of accounts
// or journal endpoints bump reportCache so cached reports are never stale.
func NewHandler(logger *slog.Logger, module *Module, reportCache *cache.Versioned) *Handler {
	return &Handler{
		accounts: accounts.NewHandler(logger, module.Accounts, reportCache),
		journals: journals.NewHandler(logger, module.Journals, reportCache),
		reports:  reports.NewHandler(logger, module.Reports, reportCache),
	}
}

// MountRoutes registers HTTP routes for the ledger module.
func (h *Handler) MountRoutes(r chi.Router) {
	h.accounts.MountRoutes(r)
	r.Route("/transactions", h.journals.MountRoutes)
	r.Route("/reports", h.reports.MountRoutes)
}
