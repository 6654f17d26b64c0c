package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/balance"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	_ "github.com/odyssey-erp/odyssey-ledger/testing"
)

type memLedger struct {
	activity LedgerActivity
}

type memItem struct {
	ledgerID int64
	item     LedgerItem
}

// memStore is an in-memory Snapshot over a fixed chart and journal.
type memStore struct {
	ledgers   map[int64]memLedger
	items     []memItem
	nextItem  int64
	snapshots int
}

func newMemStore() *memStore {
	return &memStore{ledgers: make(map[int64]memLedger)}
}

func (m *memStore) WithSnapshot(ctx context.Context, fn func(context.Context, Snapshot) error) error {
	m.snapshots++
	return fn(ctx, m)
}

func (m *memStore) addLedger(id int64, name string, groupID int64, group string, parentID int64, parent string, sortOrder int, nature shared.Nature) {
	m.ledgers[id] = memLedger{activity: LedgerActivity{
		LedgerID:        id,
		LedgerName:      name,
		GroupID:         groupID,
		GroupName:       group,
		ParentID:        parentID,
		ParentName:      parent,
		ParentSortOrder: sortOrder,
		Nature:          nature,
	}}
}

type line struct {
	ledgerID int64
	entry    shared.EntryType
	amount   string
}

func dr(ledgerID int64, amount string) line { return line{ledgerID, shared.EntryDebit, amount} }
func cr(ledgerID int64, amount string) line { return line{ledgerID, shared.EntryCredit, amount} }

func (m *memStore) post(txnID int64, date string, ref string, typ shared.TransactionType, lines ...line) {
	day, err := shared.ParseDate(date)
	if err != nil {
		panic(err)
	}
	for _, l := range lines {
		m.nextItem++
		m.items = append(m.items, memItem{ledgerID: l.ledgerID, item: LedgerItem{
			TransactionID: txnID,
			ItemID:        m.nextItem,
			Date:          shared.NewDate(day),
			Reference:     ref,
			Type:          typ,
			EntryType:     l.entry,
			Amount:        decimal.RequireFromString(l.amount),
		}})
	}
}

func (m *memStore) LedgerActivity(_ context.Context, rng shared.DateRange) ([]LedgerActivity, error) {
	byLedger := make(map[int64]*LedgerActivity)
	var order []int64
	for _, it := range m.items {
		a, ok := byLedger[it.ledgerID]
		if !ok {
			copied := m.ledgers[it.ledgerID].activity
			copied.Opening, copied.PeriodDebit, copied.PeriodCredit = decimal.Zero, decimal.Zero, decimal.Zero
			a = &copied
			byLedger[it.ledgerID] = a
			order = append(order, it.ledgerID)
		}
		switch {
		case it.item.Date.Before(rng.Start):
			a.Opening = balance.Apply(a.Opening, it.item.EntryType, it.item.Amount)
		case rng.Contains(it.item.Date.Time):
			if it.item.EntryType == shared.EntryDebit {
				a.PeriodDebit = a.PeriodDebit.Add(it.item.Amount)
			} else {
				a.PeriodCredit = a.PeriodCredit.Add(it.item.Amount)
			}
		}
	}
	out := make([]LedgerActivity, 0, len(order))
	for _, id := range order {
		out = append(out, *byLedger[id])
	}
	return out, nil
}

func (m *memStore) LedgerHeader(_ context.Context, ledgerID int64) (LedgerHeader, error) {
	l, ok := m.ledgers[ledgerID]
	if !ok {
		return LedgerHeader{}, shared.NotFound("ledger", ledgerID)
	}
	return LedgerHeader{
		LedgerID:        ledgerID,
		LedgerName:      l.activity.LedgerName,
		GroupName:       l.activity.GroupName,
		ParentGroupName: l.activity.ParentName,
		Nature:          l.activity.Nature,
		NormalSide:      balance.NormalSide(l.activity.Nature),
	}, nil
}

func (m *memStore) OpeningBalance(_ context.Context, ledgerID int64, before time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, it := range m.items {
		if it.ledgerID == ledgerID && it.item.Date.Before(before) {
			total = balance.Apply(total, it.item.EntryType, it.item.Amount)
		}
	}
	return total, nil
}

// LedgerItems returns matches in reverse insertion order so the builder's
// sort is exercised.
func (m *memStore) LedgerItems(_ context.Context, ledgerID int64, rng shared.DateRange) ([]LedgerItem, error) {
	var out []LedgerItem
	for i := len(m.items) - 1; i >= 0; i-- {
		it := m.items[i]
		if it.ledgerID == ledgerID && rng.Contains(it.item.Date.Time) {
			out = append(out, it.item)
		}
	}
	return out, nil
}

const (
	ledgerBank   int64 = 1
	ledgerSales  int64 = 2
	ledgerOffice int64 = 3
)

// scenarioStore holds the bank, sales and office ledgers with two January
// transactions: a 1000 receipt into the bank and a 300 office payment.
func scenarioStore() *memStore {
	m := newMemStore()
	m.addLedger(ledgerBank, "Bank BCA", 10, "Bank Accounts", 1, "Assets", 1, shared.NatureDebitNormal)
	m.addLedger(ledgerSales, "Consulting Income", 40, "Incomes", 4, "Incomes", 4, shared.NatureCreditNormal)
	m.addLedger(ledgerOffice, "Office Supplies", 50, "Expenses", 5, "Expenses", 5, shared.NatureDebitNormal)
	m.post(1, "2024-01-05", "INV-1", shared.TransactionMoneyReceived, dr(ledgerBank, "1000"), cr(ledgerSales, "1000"))
	m.post(2, "2024-01-20", "PAY-1", shared.TransactionMoneyPaid, dr(ledgerOffice, "300"), cr(ledgerBank, "300"))
	return m
}

func day(raw string) time.Time {
	t, err := shared.ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

type metricsStub struct {
	reports []string
}

func (m *metricsStub) ObserveReport(report string, _ time.Duration) {
	m.reports = append(m.reports, report)
}
