package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// ReportRange is shared by the report commands.
type ReportRange struct {
	Start  string `name:"start" required:"" help:"First day (YYYY-MM-DD)."`
	End    string `name:"end" required:"" help:"Last day (YYYY-MM-DD)."`
	Format string `enum:"json,csv" default:"json" help:"Output format (json or csv)."`
}

func (d ReportRange) parse() (time.Time, time.Time, error) {
	start, err := shared.ParseDate(d.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := shared.ParseDate(d.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// TrialBalanceCmd prints the trial balance.
type TrialBalanceCmd struct {
	ReportRange `embed:""`
}

// Run generates and prints the trial balance.
func (c *TrialBalanceCmd) Run(ctx context.Context, rt *Runtime) error {
	start, end, err := c.parse()
	if err != nil {
		return err
	}
	pool, err := rt.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	tb, err := reports.NewService(reports.NewRepository(pool), rt.Logger, nil).TrialBalance(ctx, start, end)
	if err != nil {
		return err
	}
	if c.Format == "csv" {
		return reports.WriteTrialBalanceCSV(rt.Stdout, tb)
	}
	if err := writeJSON(rt.Stdout, tb); err != nil {
		return err
	}
	if !tb.IsBalanced {
		return fmt.Errorf("trial balance out of balance: debit %s, credit %s",
			tb.Totals.ClosingDebit.StringFixed(2), tb.Totals.ClosingCredit.StringFixed(2))
	}
	return nil
}

// LedgerReportCmd prints a ledger statement.
type LedgerReportCmd struct {
	ReportRange `embed:""`

	LedgerID int64 `arg:"" name:"ledger-id" help:"Ledger to report on."`
}

// Run generates and prints the statement.
func (c *LedgerReportCmd) Run(ctx context.Context, rt *Runtime) error {
	start, end, err := c.parse()
	if err != nil {
		return err
	}
	pool, err := rt.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	report, err := reports.NewService(reports.NewRepository(pool), rt.Logger, nil).LedgerReport(ctx, c.LedgerID, start, end)
	if err != nil {
		return err
	}
	if c.Format == "csv" {
		return reports.WriteLedgerReportCSV(rt.Stdout, report)
	}
	return writeJSON(rt.Stdout, report)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
