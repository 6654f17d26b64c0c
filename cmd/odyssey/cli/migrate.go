package cli

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

// MigrateCmd applies embedded migrations.
type MigrateCmd struct{}

// Run applies pending migrations and lists them.
func (c *MigrateCmd) Run(ctx context.Context, rt *Runtime) error {
	pool, err := rt.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := db.Migrate(ctx, pool, rt.Logger)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(rt.Stdout, "schema up to date")
		return nil
	}
	for _, name := range applied {
		fmt.Fprintf(rt.Stdout, "applied %s\n", name)
	}
	return nil
}
