package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/balance"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// LedgerActivity is one ledger's raw figures for a trial balance range.
// Opening is the signed balance of every item dated before the range.
type LedgerActivity struct {
	LedgerID        int64
	LedgerName      string
	GroupID         int64
	GroupName       string
	ParentID        int64
	ParentName      string
	ParentSortOrder int
	Nature          shared.Nature
	Opening         decimal.Decimal
	PeriodDebit     decimal.Decimal
	PeriodCredit    decimal.Decimal
}

// Columns are the six trial balance figures. Subtotals add them column by
// column and never re-split a netted balance.
type Columns struct {
	OpeningDebit  decimal.Decimal `json:"opening_debit"`
	OpeningCredit decimal.Decimal `json:"opening_credit"`
	PeriodDebit   decimal.Decimal `json:"period_debit"`
	PeriodCredit  decimal.Decimal `json:"period_credit"`
	ClosingDebit  decimal.Decimal `json:"closing_debit"`
	ClosingCredit decimal.Decimal `json:"closing_credit"`
}

func zeroColumns() Columns {
	return Columns{
		OpeningDebit:  decimal.Zero,
		OpeningCredit: decimal.Zero,
		PeriodDebit:   decimal.Zero,
		PeriodCredit:  decimal.Zero,
		ClosingDebit:  decimal.Zero,
		ClosingCredit: decimal.Zero,
	}
}

// Add sums two column sets.
func (c Columns) Add(o Columns) Columns {
	return Columns{
		OpeningDebit:  c.OpeningDebit.Add(o.OpeningDebit),
		OpeningCredit: c.OpeningCredit.Add(o.OpeningCredit),
		PeriodDebit:   c.PeriodDebit.Add(o.PeriodDebit),
		PeriodCredit:  c.PeriodCredit.Add(o.PeriodCredit),
		ClosingDebit:  c.ClosingDebit.Add(o.ClosingDebit),
		ClosingCredit: c.ClosingCredit.Add(o.ClosingCredit),
	}
}

// TrialBalanceLedger is a leaf row. AbnormalBalance flags a closing balance
// sitting opposite the ledger's normal side; it is informational only.
type TrialBalanceLedger struct {
	LedgerID        int64            `json:"ledger_id"`
	Name            string           `json:"name"`
	NormalSide      shared.EntryType `json:"normal_side"`
	OpeningBalance  decimal.Decimal  `json:"opening_balance"`
	ClosingBalance  decimal.Decimal  `json:"closing_balance"`
	AbnormalBalance bool             `json:"abnormal_balance"`
	Columns
}

// TrialBalanceGroup aggregates ledgers of one ledger group.
type TrialBalanceGroup struct {
	GroupID int64                `json:"ledger_group_id"`
	Name    string               `json:"name"`
	Ledgers []TrialBalanceLedger `json:"ledgers"`
	Totals  Columns              `json:"totals"`
}

// TrialBalanceParent aggregates ledger groups of one parent group.
type TrialBalanceParent struct {
	ParentID  int64               `json:"parent_ledger_group_id"`
	Name      string              `json:"name"`
	SortOrder int                 `json:"sort_order"`
	Nature    shared.Nature       `json:"nature"`
	Groups    []TrialBalanceGroup `json:"ledger_groups"`
	Totals    Columns             `json:"totals"`
}

// TrialBalance is the full three level tree with grand totals.
type TrialBalance struct {
	StartDate    shared.Date          `json:"start_date"`
	EndDate      shared.Date          `json:"end_date"`
	ParentGroups []TrialBalanceParent `json:"parent_groups"`
	Totals       Columns              `json:"totals"`
	IsBalanced   bool                 `json:"is_balanced"`
}

// LedgerRow computes one ledger's columns from its activity.
func LedgerRow(a LedgerActivity) TrialBalanceLedger {
	opening := balance.Split(a.Opening)
	closingSigned := a.Opening.Add(a.PeriodDebit).Sub(a.PeriodCredit)
	closing := balance.Split(closingSigned)
	return TrialBalanceLedger{
		LedgerID:        a.LedgerID,
		Name:            a.LedgerName,
		NormalSide:      balance.NormalSide(a.Nature),
		OpeningBalance:  a.Opening,
		ClosingBalance:  closingSigned,
		AbnormalBalance: !balance.IsNormal(a.Nature, closingSigned),
		Columns: Columns{
			OpeningDebit:  opening.Debit,
			OpeningCredit: opening.Credit,
			PeriodDebit:   a.PeriodDebit,
			PeriodCredit:  a.PeriodCredit,
			ClosingDebit:  closing.Debit,
			ClosingCredit: closing.Credit,
		},
	}
}

// BuildTrialBalance groups ledger rows by ledger group and parent group,
// sums each level and checks the closing totals against shared.Tolerance.
func BuildTrialBalance(rng shared.DateRange, activity []LedgerActivity) TrialBalance {
	parents := make(map[int64]*TrialBalanceParent)
	groups := make(map[int64]*TrialBalanceGroup)
	groupParent := make(map[int64]int64)

	for _, a := range activity {
		parent, ok := parents[a.ParentID]
		if !ok {
			parent = &TrialBalanceParent{
				ParentID:  a.ParentID,
				Name:      a.ParentName,
				SortOrder: a.ParentSortOrder,
				Nature:    a.Nature,
				Totals:    zeroColumns(),
			}
			parents[a.ParentID] = parent
		}
		group, ok := groups[a.GroupID]
		if !ok {
			group = &TrialBalanceGroup{GroupID: a.GroupID, Name: a.GroupName, Totals: zeroColumns()}
			groups[a.GroupID] = group
			groupParent[a.GroupID] = a.ParentID
		}
		row := LedgerRow(a)
		group.Ledgers = append(group.Ledgers, row)
		group.Totals = group.Totals.Add(row.Columns)
	}

	for id, group := range groups {
		sort.Slice(group.Ledgers, func(i, j int) bool {
			if group.Ledgers[i].Name != group.Ledgers[j].Name {
				return group.Ledgers[i].Name < group.Ledgers[j].Name
			}
			return group.Ledgers[i].LedgerID < group.Ledgers[j].LedgerID
		})
		parent := parents[groupParent[id]]
		parent.Groups = append(parent.Groups, *group)
		parent.Totals = parent.Totals.Add(group.Totals)
	}

	result := TrialBalance{
		StartDate:    shared.NewDate(rng.Start),
		EndDate:      shared.NewDate(rng.End),
		ParentGroups: make([]TrialBalanceParent, 0, len(parents)),
		Totals:       zeroColumns(),
	}
	for _, parent := range parents {
		sort.Slice(parent.Groups, func(i, j int) bool {
			if parent.Groups[i].Name != parent.Groups[j].Name {
				return parent.Groups[i].Name < parent.Groups[j].Name
			}
			return parent.Groups[i].GroupID < parent.Groups[j].GroupID
		})
		result.ParentGroups = append(result.ParentGroups, *parent)
		result.Totals = result.Totals.Add(parent.Totals)
	}
	sort.Slice(result.ParentGroups, func(i, j int) bool {
		a, b := result.ParentGroups[i], result.ParentGroups[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ParentID < b.ParentID
	})
	result.IsBalanced = shared.Balanced(result.Totals.ClosingDebit, result.Totals.ClosingCredit)
	return result
}
