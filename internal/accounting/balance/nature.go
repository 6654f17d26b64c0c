package balance

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// defaultNatures is the closed table of standard parent group names.
var defaultNatures = map[string]shared.Nature{
	"Fixed Assets":          shared.NatureDebitNormal,
	"Current Assets":        shared.NatureDebitNormal,
	"Expenditure":           shared.NatureDebitNormal,
	"Current Liabilities":   shared.NatureCreditNormal,
	"Long Term Liabilities": shared.NatureCreditNormal,
	"Capital & Reserves":    shared.NatureCreditNormal,
	"Income":                shared.NatureCreditNormal,
}

// NatureForName resolves the nature of a standard parent group name.
func NatureForName(name string) (shared.Nature, bool) {
	n, ok := defaultNatures[name]
	return n, ok
}

// NormalSide returns the entry type that increases a ledger of the given nature.
func NormalSide(n shared.Nature) shared.EntryType {
	if n == shared.NatureCreditNormal {
		return shared.EntryCredit
	}
	return shared.EntryDebit
}

// IsNormal reports whether a signed balance sits on the nature's normal side.
// A zero balance is always normal.
func IsNormal(n shared.Nature, signed decimal.Decimal) bool {
	switch signed.Sign() {
	case 0:
		return true
	case 1:
		return NormalSide(n) == shared.EntryDebit
	default:
		return NormalSide(n) == shared.EntryCredit
	}
}
