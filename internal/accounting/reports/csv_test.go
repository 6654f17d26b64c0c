package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteTrialBalanceCSV(t *testing.T) {
	svc := NewService(scenarioStore(), nil, nil)
	tb, err := svc.TrialBalance(context.Background(), day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTrialBalanceCSV(&buf, tb))
	require.Contains(t, buf.String(), "\r\n")

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	require.NoError(t, err)

	require.Equal(t, []string{"# trial balance", "2024-01-01", "2024-01-31"}, rows[0])
	require.Equal(t, "level", rows[1][0])
	require.Equal(t, []string{"ledger", "Assets", "Bank Accounts", "1", "Bank BCA",
		"0.00", "0.00", "1000.00", "300.00", "700.00", "0.00"}, rows[2])
	total := rows[len(rows)-2]
	require.Equal(t, "total", total[0])
	require.Equal(t, "1000.00", total[9])
	require.Equal(t, "1000.00", total[10])
	require.Equal(t, []string{"is_balanced", "true"}, rows[len(rows)-1])
}

func TestWriteLedgerReportCSV(t *testing.T) {
	svc := NewService(scenarioStore(), nil, nil)
	report, err := svc.LedgerReport(context.Background(), ledgerBank, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteLedgerReportCSV(&buf, report))

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)
	require.Equal(t, "Opening balance", rows[2][2])
	require.Equal(t, []string{"1", "2024-01-05", "INV-1", "MONEY_RECEIVED", "1000.00", "", "1000.00"}, rows[3])
	require.Equal(t, []string{"2", "2024-01-20", "PAY-1", "MONEY_PAID", "", "300.00", "700.00"}, rows[4])
	require.Equal(t, []string{"", "2024-01-31", "Totals", "", "1000.00", "300.00", "700.00"}, rows[5])
}
