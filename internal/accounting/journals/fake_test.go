package journals

import (
	"context"
	"sort"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	rootshared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

type memRepo struct {
	nextTxID   int64
	nextItemID int64
	ledgers    map[int64]bool
	txs        map[int64]Transaction
	audits     []rootshared.AuditLog
	failAudit  error
}

func newMemRepo(ledgers ...int64) *memRepo {
	m := &memRepo{ledgers: map[int64]bool{}, txs: map[int64]Transaction{}}
	for _, id := range ledgers {
		m.ledgers[id] = true
	}
	return m
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	txs := make(map[int64]Transaction, len(m.txs))
	for k, v := range m.txs {
		txs[k] = v
	}
	audits := append([]rootshared.AuditLog(nil), m.audits...)
	nextTx, nextItem := m.nextTxID, m.nextItemID
	if err := fn(ctx, m); err != nil {
		m.txs, m.audits, m.nextTxID, m.nextItemID = txs, audits, nextTx, nextItem
		return err
	}
	return nil
}

func (m *memRepo) InsertTransaction(_ context.Context, in TransactionInput) (Transaction, error) {
	m.nextTxID++
	t := Transaction{ID: m.nextTxID, Date: in.Date, Reference: in.Reference, Type: in.Type, TotalAmount: in.TotalAmount()}
	m.txs[t.ID] = t
	return t, nil
}

func (m *memRepo) UpdateTransaction(_ context.Context, id int64, in TransactionInput) (Transaction, error) {
	t, ok := m.txs[id]
	if !ok {
		return Transaction{}, shared.NotFound("transaction", id)
	}
	t.Date, t.Reference, t.Type, t.TotalAmount = in.Date, in.Reference, in.Type, in.TotalAmount()
	m.txs[id] = t
	return t, nil
}

func (m *memRepo) ReplaceItems(_ context.Context, transactionID int64, items []ItemInput) ([]TransactionItem, error) {
	out := make([]TransactionItem, 0, len(items))
	for _, item := range items {
		m.nextItemID++
		out = append(out, TransactionItem{ID: m.nextItemID, TransactionID: transactionID, LedgerID: item.LedgerID, EntryType: item.EntryType, Amount: item.Amount})
	}
	t := m.txs[transactionID]
	t.Items = out
	m.txs[transactionID] = t
	return out, nil
}

func (m *memRepo) GetTransaction(_ context.Context, id int64, _ bool) (Transaction, error) {
	t, ok := m.txs[id]
	if !ok {
		return Transaction{}, shared.NotFound("transaction", id)
	}
	return t, nil
}

func (m *memRepo) DeleteTransaction(_ context.Context, id int64) error {
	if _, ok := m.txs[id]; !ok {
		return shared.NotFound("transaction", id)
	}
	delete(m.txs, id)
	return nil
}

func (m *memRepo) ListTransactions(_ context.Context, filter ListFilter) ([]Transaction, error) {
	var out []Transaction
	for _, t := range m.txs {
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Range != nil && !filter.Range.Contains(t.Date.Time) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memRepo) LedgerStates(_ context.Context, ids []int64) (map[int64]bool, error) {
	out := map[int64]bool{}
	for _, id := range ids {
		if active, ok := m.ledgers[id]; ok {
			out[id] = active
		}
	}
	return out, nil
}

func (m *memRepo) RecordAudit(_ context.Context, log rootshared.AuditLog) error {
	if m.failAudit != nil {
		return m.failAudit
	}
	m.audits = append(m.audits, log)
	return nil
}
