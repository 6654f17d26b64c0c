package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/seed"
	"github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// SeedCmd creates the default chart of accounts.
type SeedCmd struct {
	File string `help:"YAML chart file; defaults to the built-in chart." type:"existingfile" optional:""`
}

// Run seeds the chart idempotently.
func (c *SeedCmd) Run(ctx context.Context, rt *Runtime) error {
	chart, err := c.chart()
	if err != nil {
		return err
	}
	pool, err := rt.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := accounts.NewService(accounts.NewRepository(pool), shared.NewAuditLogger(pool))
	result, err := seed.Apply(ctx, svc, chart)
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.Stdout, "parent groups created: %d, ledger groups created: %d\n",
		result.ParentGroupsCreated, result.LedgerGroupsCreated)
	return nil
}

func (c *SeedCmd) chart() (seed.Chart, error) {
	if c.File == "" {
		return seed.DefaultChart()
	}
	f, err := os.Open(c.File)
	if err != nil {
		return seed.Chart{}, err
	}
	defer f.Close()
	return seed.LoadChart(f)
}
