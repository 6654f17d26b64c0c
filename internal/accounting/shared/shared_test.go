package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/odyssey-ledger/testing"
)

func TestKindOf(t *testing.T) {
	unbalanced := &UnbalancedEntryError{Debit: decimal.NewFromInt(100), Credit: decimal.NewFromInt(90)}
	require.Equal(t, KindUnbalancedEntry, KindOf(unbalanced))
	require.Equal(t, KindUnbalancedEntry, KindOf(fmt.Errorf("create: %w", unbalanced)))
	require.Equal(t, KindInvalidAmount, KindOf(&ItemError{Index: 1, Err: ErrInvalidAmount}))
	require.Equal(t, KindNotFound, KindOf(NotFound("ledger", 9)))
	require.Equal(t, KindInvalidReference, KindOf(InvalidReference("ledger", 9, "in use")))
	require.Equal(t, KindInvalidInput, KindOf(InvalidInput("bad")))
	require.Equal(t, KindInternal, KindOf(errors.New("boom")))
	require.Equal(t, Kind(""), KindOf(nil))
	require.Contains(t, unbalanced.Error(), "debits 100.00, credits 90.00")
}

func TestValidAmount(t *testing.T) {
	require.True(t, ValidAmount(decimal.RequireFromString("0.01")))
	require.True(t, ValidAmount(decimal.RequireFromString("1000.50")))
	require.False(t, ValidAmount(decimal.Zero))
	require.False(t, ValidAmount(decimal.RequireFromString("-5")))
	require.False(t, ValidAmount(decimal.RequireFromString("1.005")))
}

func TestBalanced(t *testing.T) {
	require.True(t, Balanced(decimal.RequireFromString("100.00"), decimal.RequireFromString("100")))
	require.True(t, Balanced(decimal.RequireFromString("100.00005"), decimal.RequireFromString("100")))
	require.False(t, Balanced(decimal.RequireFromString("100.01"), decimal.RequireFromString("100")))
}

func TestDateRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 23, 30, 0, 0, time.FixedZone("EAT", 3*3600))
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	r, err := NewDateRange(start, end)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), r.Start)
	require.True(t, r.Contains(time.Date(2024, 1, 31, 18, 0, 0, 0, time.UTC)))
	require.False(t, r.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))

	_, err = NewDateRange(end, start)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	require.NoError(t, err)
	require.Equal(t, time.January, d.Month())
	_, err = ParseDate("05/01/2024")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidateStructAndNormalizeName(t *testing.T) {
	type input struct {
		Name string `validate:"required"`
	}
	err := ValidateStruct(input{})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Contains(t, err.Error(), "input.Name failed required")
	require.NoError(t, ValidateStruct(input{Name: "x"}))

	require.Equal(t, "Caf\u00e9", NormalizeName("  Cafe\u0301 "))
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-05"`), &d))
	require.Equal(t, "2024-01-05", d.String())

	out, err := json.Marshal(NewDate(time.Date(2024, 1, 5, 23, 30, 0, 0, time.FixedZone("EAT", 3*3600))))
	require.NoError(t, err)
	require.Equal(t, `"2024-01-05"`, string(out))

	require.ErrorIs(t, json.Unmarshal([]byte(`"05/01/2024"`), &d), ErrInvalidInput)
}
