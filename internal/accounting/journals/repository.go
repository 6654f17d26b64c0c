package journals

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
	rootshared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// Repository opens journal units of work.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	InsertTransaction(ctx context.Context, in TransactionInput) (Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, in TransactionInput) (Transaction, error)
	ReplaceItems(ctx context.Context, transactionID int64, items []ItemInput) ([]TransactionItem, error)
	GetTransaction(ctx context.Context, id int64, forUpdate bool) (Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context, filter ListFilter) ([]Transaction, error)
	// LedgerStates reports, for each id that exists, whether the ledger is active.
	LedgerStates(ctx context.Context, ids []int64) (map[int64]bool, error)
	RecordAudit(ctx context.Context, log rootshared.AuditLog) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the Postgres backed journal repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, audit: rootshared.NewAuditLogger(tx)})
	})
}

type txRepository struct {
	tx    pgx.Tx
	audit *rootshared.AuditLogger
}

const transactionColumns = `id, transaction_date, reference, transaction_type, total_amount::text, created_at, updated_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var (
		t     Transaction
		total string
	)
	if err := row.Scan(&t.ID, &t.Date.Time, &t.Reference, &t.Type, &total, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return Transaction{}, fmt.Errorf("journals: parse total_amount: %w", err)
	}
	t.TotalAmount = amount
	t.Date = shared.NewDate(t.Date.Time)
	return t, nil
}

func (r *txRepository) InsertTransaction(ctx context.Context, in TransactionInput) (Transaction, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO transactions (transaction_date, reference, transaction_type, total_amount)
VALUES ($1,$2,$3,$4::numeric) RETURNING `+transactionColumns,
		in.Date.Time, in.Reference, in.Type, in.TotalAmount().String())
	return scanTransaction(row)
}

func (r *txRepository) UpdateTransaction(ctx context.Context, id int64, in TransactionInput) (Transaction, error) {
	row := r.tx.QueryRow(ctx, `UPDATE transactions SET transaction_date=$2, reference=$3, transaction_type=$4, total_amount=$5::numeric, updated_at=NOW()
WHERE id=$1 RETURNING `+transactionColumns,
		id, in.Date.Time, in.Reference, in.Type, in.TotalAmount().String())
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, shared.NotFound("transaction", id)
	}
	return t, err
}

func (r *txRepository) ReplaceItems(ctx context.Context, transactionID int64, items []ItemInput) ([]TransactionItem, error) {
	if _, err := r.tx.Exec(ctx, `DELETE FROM transaction_items WHERE transaction_id=$1`, transactionID); err != nil {
		return nil, err
	}
	out := make([]TransactionItem, 0, len(items))
	for i, item := range items {
		stored := TransactionItem{TransactionID: transactionID, LedgerID: item.LedgerID, EntryType: item.EntryType, Amount: item.Amount}
		err := r.tx.QueryRow(ctx, `INSERT INTO transaction_items (transaction_id, ledger_id, entry_type, amount)
VALUES ($1,$2,$3,$4::numeric) RETURNING id`, transactionID, item.LedgerID, item.EntryType, item.Amount.String()).Scan(&stored.ID)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return nil, &shared.ItemError{Index: i, LedgerID: item.LedgerID, Err: shared.ErrUnknownLedger}
			}
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

func (r *txRepository) GetTransaction(ctx context.Context, id int64, forUpdate bool) (Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id=$1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	t, err := scanTransaction(r.tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, shared.NotFound("transaction", id)
	}
	if err != nil {
		return Transaction{}, err
	}
	items, err := r.loadItems(ctx, []int64{id})
	if err != nil {
		return Transaction{}, err
	}
	t.Items = items[id]
	return t, nil
}

func (r *txRepository) DeleteTransaction(ctx context.Context, id int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM transactions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("transaction", id)
	}
	return nil
}

func (r *txRepository) ListTransactions(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := []any{}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += ` AND transaction_type=$` + strconv.Itoa(len(args))
	}
	if filter.Range != nil {
		args = append(args, filter.Range.Start, filter.Range.End)
		query += ` AND transaction_date BETWEEN $` + strconv.Itoa(len(args)-1) + ` AND $` + strconv.Itoa(len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	query += ` ORDER BY transaction_date DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var (
		out []Transaction
		ids []int64
	)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, t)
		ids = append(ids, t.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (r *txRepository) loadItems(ctx context.Context, ids []int64) (map[int64][]TransactionItem, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, transaction_id, ledger_id, entry_type, amount::text
FROM transaction_items WHERE transaction_id = ANY($1) ORDER BY transaction_id, id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64][]TransactionItem, len(ids))
	for rows.Next() {
		var (
			item   TransactionItem
			amount string
		)
		if err := rows.Scan(&item.ID, &item.TransactionID, &item.LedgerID, &item.EntryType, &amount); err != nil {
			return nil, err
		}
		if item.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("journals: parse item amount: %w", err)
		}
		out[item.TransactionID] = append(out[item.TransactionID], item)
	}
	return out, rows.Err()
}

func (r *txRepository) LedgerStates(ctx context.Context, ids []int64) (map[int64]bool, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, is_active FROM ledgers WHERE id = ANY($1) FOR SHARE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]bool, len(ids))
	for rows.Next() {
		var (
			id     int64
			active bool
		)
		if err := rows.Scan(&id, &active); err != nil {
			return nil, err
		}
		out[id] = active
	}
	return out, rows.Err()
}

func (r *txRepository) RecordAudit(ctx context.Context, log rootshared.AuditLog) error {
	return r.audit.Record(ctx, log)
}
