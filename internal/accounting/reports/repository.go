package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/balance"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

// Repository opens read-only snapshots for report generation.
type Repository interface {
	WithSnapshot(ctx context.Context, fn func(context.Context, Snapshot) error) error
}

// Snapshot reads a single consistent view of the journal.
type Snapshot interface {
	// LedgerActivity returns every ledger with at least one item ever recorded.
	LedgerActivity(ctx context.Context, rng shared.DateRange) ([]LedgerActivity, error)
	LedgerHeader(ctx context.Context, ledgerID int64) (LedgerHeader, error)
	OpeningBalance(ctx context.Context, ledgerID int64, before time.Time) (decimal.Decimal, error)
	LedgerItems(ctx context.Context, ledgerID int64, rng shared.DateRange) ([]LedgerItem, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the Postgres backed report repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithSnapshot(ctx context.Context, fn func(context.Context, Snapshot) error) error {
	return db.WithReadTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &snapshot{tx: tx})
	})
}

type snapshot struct {
	tx pgx.Tx
}

const activityQuery = `SELECT l.id, l.name, lg.id, lg.name, plg.id, plg.name, plg.sort_order, plg.nature,
	COALESCE(SUM(CASE WHEN t.transaction_date < $1 THEN
		CASE WHEN ti.entry_type = 'DEBIT' THEN ti.amount ELSE -ti.amount END END), 0)::text,
	COALESCE(SUM(CASE WHEN t.transaction_date BETWEEN $1 AND $2 AND ti.entry_type = 'DEBIT' THEN ti.amount END), 0)::text,
	COALESCE(SUM(CASE WHEN t.transaction_date BETWEEN $1 AND $2 AND ti.entry_type = 'CREDIT' THEN ti.amount END), 0)::text
FROM transaction_items ti
JOIN transactions t ON t.id = ti.transaction_id
JOIN ledgers l ON l.id = ti.ledger_id
JOIN ledger_groups lg ON lg.id = l.ledger_group_id
JOIN parent_ledger_groups plg ON plg.id = lg.parent_ledger_group_id
GROUP BY l.id, lg.id, plg.id`

func (s *snapshot) LedgerActivity(ctx context.Context, rng shared.DateRange) ([]LedgerActivity, error) {
	rows, err := s.tx.Query(ctx, activityQuery, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LedgerActivity
	for rows.Next() {
		var (
			a                      LedgerActivity
			opening, debit, credit string
		)
		if err := rows.Scan(&a.LedgerID, &a.LedgerName, &a.GroupID, &a.GroupName, &a.ParentID, &a.ParentName,
			&a.ParentSortOrder, &a.Nature, &opening, &debit, &credit); err != nil {
			return nil, err
		}
		if a.Opening, err = parseAmount(opening); err != nil {
			return nil, err
		}
		if a.PeriodDebit, err = parseAmount(debit); err != nil {
			return nil, err
		}
		if a.PeriodCredit, err = parseAmount(credit); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *snapshot) LedgerHeader(ctx context.Context, ledgerID int64) (LedgerHeader, error) {
	var h LedgerHeader
	err := s.tx.QueryRow(ctx, `SELECT l.id, l.name, lg.name, plg.name, plg.nature
FROM ledgers l
JOIN ledger_groups lg ON lg.id = l.ledger_group_id
JOIN parent_ledger_groups plg ON plg.id = lg.parent_ledger_group_id
WHERE l.id = $1`, ledgerID).Scan(&h.LedgerID, &h.LedgerName, &h.GroupName, &h.ParentGroupName, &h.Nature)
	if errors.Is(err, pgx.ErrNoRows) {
		return LedgerHeader{}, shared.NotFound("ledger", ledgerID)
	}
	if err != nil {
		return LedgerHeader{}, err
	}
	h.NormalSide = balance.NormalSide(h.Nature)
	return h, nil
}

func (s *snapshot) OpeningBalance(ctx context.Context, ledgerID int64, before time.Time) (decimal.Decimal, error) {
	var raw string
	err := s.tx.QueryRow(ctx, `SELECT COALESCE(SUM(CASE WHEN ti.entry_type = 'DEBIT' THEN ti.amount ELSE -ti.amount END), 0)::text
FROM transaction_items ti
JOIN transactions t ON t.id = ti.transaction_id
WHERE ti.ledger_id = $1 AND t.transaction_date < $2`, ledgerID, before).Scan(&raw)
	if err != nil {
		return decimal.Zero, err
	}
	return parseAmount(raw)
}

func (s *snapshot) LedgerItems(ctx context.Context, ledgerID int64, rng shared.DateRange) ([]LedgerItem, error) {
	rows, err := s.tx.Query(ctx, `SELECT t.id, ti.id, t.transaction_date, t.reference, t.transaction_type, ti.entry_type, ti.amount::text
FROM transaction_items ti
JOIN transactions t ON t.id = ti.transaction_id
WHERE ti.ledger_id = $1 AND t.transaction_date BETWEEN $2 AND $3
ORDER BY t.transaction_date, t.id, ti.id`, ledgerID, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LedgerItem
	for rows.Next() {
		var (
			item   LedgerItem
			date   time.Time
			amount string
		)
		if err := rows.Scan(&item.TransactionID, &item.ItemID, &date, &item.Reference, &item.Type, &item.EntryType, &amount); err != nil {
			return nil, err
		}
		item.Date = shared.NewDate(date)
		if item.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reports: parse amount %q: %w", raw, err)
	}
	return d, nil
}
