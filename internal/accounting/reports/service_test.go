package reports

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

func TestReportsRejectInvertedRange(t *testing.T) {
	store := scenarioStore()
	svc := NewService(store, nil, nil)

	_, err := svc.TrialBalance(context.Background(), day("2024-02-01"), day("2024-01-01"))
	require.ErrorIs(t, err, shared.ErrInvalidRange)

	_, err = svc.LedgerReport(context.Background(), ledgerBank, day("2024-02-01"), day("2024-01-01"))
	require.ErrorIs(t, err, shared.ErrInvalidRange)
	require.Zero(t, store.snapshots)
}

func TestLedgerReportUnknownLedger(t *testing.T) {
	svc := NewService(scenarioStore(), nil, nil)

	_, err := svc.LedgerReport(context.Background(), 404, day("2024-01-01"), day("2024-01-31"))
	require.ErrorIs(t, err, shared.ErrNotFound)
	var nf *shared.NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, int64(404), nf.ID)
}

func TestReportsAreIdempotent(t *testing.T) {
	svc := NewService(scenarioStore(), nil, nil)
	ctx := context.Background()

	first, err := svc.TrialBalance(ctx, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	second, err := svc.TrialBalance(ctx, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	requireSameJSON(t, first, second)

	a, err := svc.LedgerReport(ctx, ledgerBank, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	b, err := svc.LedgerReport(ctx, ledgerBank, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	requireSameJSON(t, a, b)
}

func requireSameJSON(t *testing.T, a, b any) {
	t.Helper()
	left, err := json.Marshal(a)
	require.NoError(t, err)
	right, err := json.Marshal(b)
	require.NoError(t, err)
	require.JSONEq(t, string(left), string(right))
}

func TestTrialBalanceMatchesLedgerReports(t *testing.T) {
	store := scenarioStore()
	store.post(3, "2023-12-30", "OPEN", shared.TransactionJournal, dr(ledgerBank, "200"), cr(ledgerSales, "200"))
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	tb, err := svc.TrialBalance(ctx, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	require.True(t, tb.IsBalanced)

	for _, id := range []int64{ledgerBank, ledgerSales, ledgerOffice} {
		row := findLedger(t, tb, id)
		report, err := svc.LedgerReport(ctx, id, day("2024-01-01"), day("2024-01-31"))
		require.NoError(t, err)
		require.True(t, row.OpeningBalance.Equal(report.OpeningBalance), "ledger %d opening", id)
		require.True(t, row.ClosingBalance.Equal(report.ClosingBalance), "ledger %d closing", id)
		require.True(t, row.PeriodDebit.Equal(report.TotalDebit), "ledger %d debit", id)
		require.True(t, row.PeriodCredit.Equal(report.TotalCredit), "ledger %d credit", id)
	}
}

func TestReportsObserveMetrics(t *testing.T) {
	metrics := &metricsStub{}
	svc := NewService(scenarioStore(), nil, metrics)
	ctx := context.Background()

	_, err := svc.TrialBalance(ctx, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	_, err = svc.LedgerReport(ctx, ledgerBank, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	require.Equal(t, []string{ReportTrialBalance, ReportLedger}, metrics.reports)
}
