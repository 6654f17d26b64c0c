// Package balance turns journal lines into signed balances and Dr/Cr pairs.
//
// The sign convention is fixed: debits add, credits subtract. A ledger's normal
// side never changes the arithmetic, it only tells a caller whether a balance
// sits on the expected side.
package balance

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Line is the minimal view of a journal item the engine needs.
type Line struct {
	EntryType shared.EntryType
	Amount    decimal.Decimal
}

// Pair is a balance presented in Dr/Cr columns. At most one side is non-zero.
type Pair struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// Add sums two pairs column-wise without re-splitting.
func (p Pair) Add(o Pair) Pair {
	return Pair{Debit: p.Debit.Add(o.Debit), Credit: p.Credit.Add(o.Credit)}
}

// Totals returns the gross debit and credit sums of lines.
func Totals(lines []Line) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		switch l.EntryType {
		case shared.EntryDebit:
			debit = debit.Add(l.Amount)
		case shared.EntryCredit:
			credit = credit.Add(l.Amount)
		}
	}
	return debit, credit
}

// Signed returns sum(debits) - sum(credits); positive when net-debited.
func Signed(lines []Line) decimal.Decimal {
	debit, credit := Totals(lines)
	return debit.Sub(credit)
}

// Apply moves a running balance by one line.
func Apply(running decimal.Decimal, entry shared.EntryType, amount decimal.Decimal) decimal.Decimal {
	if entry == shared.EntryCredit {
		return running.Sub(amount)
	}
	return running.Add(amount)
}

// Split presents a signed balance as a Dr/Cr pair: non-negative goes to Dr,
// negative goes to Cr as its absolute value.
func Split(signed decimal.Decimal) Pair {
	if signed.IsNegative() {
		return Pair{Debit: decimal.Zero, Credit: signed.Abs()}
	}
	return Pair{Debit: signed, Credit: decimal.Zero}
}
