// Package cli implements the odyssey command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ledger/internal/app"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

// Commands is the kong command tree.
type Commands struct {
	Serve        ServeCmd        `cmd:"" default:"1" help:"Run the HTTP API."`
	Migrate      MigrateCmd      `cmd:"" help:"Apply pending database migrations."`
	Seed         SeedCmd         `cmd:"" help:"Create the default chart of accounts."`
	TrialBalance TrialBalanceCmd `cmd:"" name:"trial-balance" help:"Print the trial balance for a date range."`
	LedgerReport LedgerReportCmd `cmd:"" name:"ledger-report" help:"Print a ledger statement for a date range."`
	Jobs         JobsCmd         `cmd:"" help:"Inspect and trigger background jobs."`
}

// Runtime carries process-wide dependencies bound into every command.
type Runtime struct {
	Config *app.Config
	Logger *slog.Logger
	Stdout io.Writer
}

func (rt *Runtime) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := db.New(ctx, rt.Config.PGDSN, rt.Config.PGMaxConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}
