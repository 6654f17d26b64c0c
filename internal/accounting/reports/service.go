// Package reports generates the trial balance and ledger statements from a
// read-only snapshot of the journal.
package reports

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Report names used for metrics and cache keys.
const (
	ReportTrialBalance = "trial_balance"
	ReportLedger       = "ledger"
)

// MetricsPort records report durations.
type MetricsPort interface {
	ObserveReport(report string, elapsed time.Duration)
}

// Service recomputes reports from the current store state on every call.
type Service struct {
	repo    Repository
	logger  *slog.Logger
	metrics MetricsPort
}

// NewService constructs the report service. metrics may be nil.
func NewService(repo Repository, logger *slog.Logger, metrics MetricsPort) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, metrics: metrics}
}

// TrialBalance generates the trial balance for the inclusive range.
func (s *Service) TrialBalance(ctx context.Context, start, end time.Time) (TrialBalance, error) {
	rng, err := shared.NewDateRange(start, end)
	if err != nil {
		return TrialBalance{}, err
	}
	defer s.observe(ReportTrialBalance, time.Now())

	var activity []LedgerActivity
	err = s.repo.WithSnapshot(ctx, func(ctx context.Context, snap Snapshot) error {
		var err error
		activity, err = snap.LedgerActivity(ctx, rng)
		return err
	})
	if err != nil {
		return TrialBalance{}, err
	}
	tb := BuildTrialBalance(rng, activity)
	if !tb.IsBalanced {
		s.logger.Warn("trial balance out of balance",
			slog.String("start_date", rng.Start.Format(shared.DateLayout)),
			slog.String("end_date", rng.End.Format(shared.DateLayout)),
			slog.String("closing_debit", tb.Totals.ClosingDebit.StringFixed(2)),
			slog.String("closing_credit", tb.Totals.ClosingCredit.StringFixed(2)))
	}
	return tb, nil
}

// LedgerReport generates the statement of one ledger for the inclusive range.
func (s *Service) LedgerReport(ctx context.Context, ledgerID int64, start, end time.Time) (LedgerReport, error) {
	rng, err := shared.NewDateRange(start, end)
	if err != nil {
		return LedgerReport{}, err
	}
	defer s.observe(ReportLedger, time.Now())

	var (
		header  LedgerHeader
		opening decimal.Decimal
		items   []LedgerItem
	)
	err = s.repo.WithSnapshot(ctx, func(ctx context.Context, snap Snapshot) error {
		var err error
		if header, err = snap.LedgerHeader(ctx, ledgerID); err != nil {
			return err
		}
		if opening, err = snap.OpeningBalance(ctx, ledgerID, rng.Start); err != nil {
			return err
		}
		items, err = snap.LedgerItems(ctx, ledgerID, rng)
		return err
	})
	if err != nil {
		return LedgerReport{}, err
	}
	header.StartDate = shared.NewDate(rng.Start)
	header.EndDate = shared.NewDate(rng.End)
	return BuildLedgerReport(header, opening, items), nil
}

func (s *Service) observe(report string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveReport(report, time.Since(start))
	}
}
