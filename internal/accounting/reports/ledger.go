package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/balance"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// LedgerHeader identifies the ledger a statement is for.
type LedgerHeader struct {
	LedgerID        int64            `json:"ledger_id"`
	LedgerName      string           `json:"ledger_name"`
	GroupName       string           `json:"ledger_group_name"`
	ParentGroupName string           `json:"parent_group_name"`
	Nature          shared.Nature    `json:"nature"`
	NormalSide      shared.EntryType `json:"normal_side"`
	StartDate       shared.Date      `json:"start_date"`
	EndDate         shared.Date      `json:"end_date"`
}

// LedgerItem is a journal item on the ledger paired with its transaction.
type LedgerItem struct {
	TransactionID int64                  `json:"transaction_id"`
	ItemID        int64                  `json:"item_id"`
	Date          shared.Date            `json:"transaction_date"`
	Reference     string                 `json:"reference"`
	Type          shared.TransactionType `json:"transaction_type"`
	EntryType     shared.EntryType       `json:"entry_type"`
	Amount        decimal.Decimal        `json:"amount"`
}

// LedgerEntry is a statement line with the balance after it.
type LedgerEntry struct {
	LedgerItem
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// LedgerReport is a chronological statement for one ledger.
type LedgerReport struct {
	Ledger         LedgerHeader    `json:"ledger"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	Opening        balance.Pair    `json:"opening"`
	Closing        balance.Pair    `json:"closing"`
	Entries        []LedgerEntry   `json:"entries"`
}

// BuildLedgerReport orders items by (date, transaction id) and walks them from
// the opening balance. Debits add and credits subtract whatever the ledger's
// nature.
func BuildLedgerReport(header LedgerHeader, opening decimal.Decimal, items []LedgerItem) LedgerReport {
	sorted := make([]LedgerItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Before(b.Date.Time)
		}
		if a.TransactionID != b.TransactionID {
			return a.TransactionID < b.TransactionID
		}
		return a.ItemID < b.ItemID
	})

	report := LedgerReport{
		Ledger:         header,
		OpeningBalance: opening,
		Entries:        make([]LedgerEntry, 0, len(sorted)),
	}
	running := opening
	lines := make([]balance.Line, 0, len(sorted))
	for _, item := range sorted {
		running = balance.Apply(running, item.EntryType, item.Amount)
		lines = append(lines, balance.Line{EntryType: item.EntryType, Amount: item.Amount})
		report.Entries = append(report.Entries, LedgerEntry{LedgerItem: item, RunningBalance: running})
	}
	report.ClosingBalance = running
	report.TotalDebit, report.TotalCredit = balance.Totals(lines)
	report.Opening = balance.Split(opening)
	report.Closing = balance.Split(running)
	return report
}
