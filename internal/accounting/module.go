// Package accounting assembles the chart of accounts, journal and reporting
// components into one module.
package accounting

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-ledger/internal/observability"
	"github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// Module holds the ledger services sharing one connection pool.
type Module struct {
	Accounts *accounts.Service
	Journals *journals.Service
	Reports  *reports.Service
}

// NewModule wires Postgres repositories into services. metrics may be nil.
func NewModule(pool *pgxpool.Pool, logger *slog.Logger, metrics *observability.Metrics) *Module {
	return &Module{
		Accounts: accounts.NewService(accounts.NewRepository(pool), shared.NewAuditLogger(pool)).WithLogger(logger),
		Journals: journals.NewService(journals.NewRepository(pool), logger, metrics),
		Reports:  reports.NewService(reports.NewRepository(pool), logger, metrics),
	}
}
