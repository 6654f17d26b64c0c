package balance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	_ "github.com/odyssey-erp/odyssey-ledger/testing"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSignedAndTotals(t *testing.T) {
	lines := []Line{
		{EntryType: shared.EntryDebit, Amount: d("1000")},
		{EntryType: shared.EntryCredit, Amount: d("300")},
		{EntryType: shared.EntryDebit, Amount: d("0.50")},
	}
	debit, credit := Totals(lines)
	require.True(t, debit.Equal(d("1000.50")))
	require.True(t, credit.Equal(d("300")))
	require.True(t, Signed(lines).Equal(d("700.50")))
	require.True(t, Signed(nil).IsZero())
}

func TestSplit(t *testing.T) {
	p := Split(d("700"))
	require.True(t, p.Debit.Equal(d("700")))
	require.True(t, p.Credit.IsZero())

	p = Split(d("-1000"))
	require.True(t, p.Debit.IsZero())
	require.True(t, p.Credit.Equal(d("1000")))

	p = Split(decimal.Zero)
	require.True(t, p.Debit.IsZero())
	require.True(t, p.Credit.IsZero())
}

func TestApplyIgnoresNormalSide(t *testing.T) {
	running := Apply(decimal.Zero, shared.EntryDebit, d("1000"))
	running = Apply(running, shared.EntryCredit, d("300"))
	require.True(t, running.Equal(d("700")))
}

func TestNormalSide(t *testing.T) {
	for _, name := range []string{"Fixed Assets", "Current Assets", "Expenditure"} {
		n, ok := NatureForName(name)
		require.True(t, ok, name)
		require.Equal(t, shared.EntryDebit, NormalSide(n), name)
	}
	for _, name := range []string{"Current Liabilities", "Long Term Liabilities", "Capital & Reserves", "Income"} {
		n, ok := NatureForName(name)
		require.True(t, ok, name)
		require.Equal(t, shared.EntryCredit, NormalSide(n), name)
	}
	_, ok := NatureForName("current assets")
	require.False(t, ok)
}

func TestIsNormalFlagsLiabilityWithDebitBalance(t *testing.T) {
	require.False(t, IsNormal(shared.NatureCreditNormal, d("50")))
	require.True(t, IsNormal(shared.NatureCreditNormal, d("-50")))
	require.True(t, IsNormal(shared.NatureDebitNormal, d("50")))
	require.True(t, IsNormal(shared.NatureDebitNormal, decimal.Zero))
}
