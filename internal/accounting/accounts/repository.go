package accounts

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

// Repository opens chart of accounts units of work.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes chart of accounts persistence inside a transaction.
type TxRepository interface {
	ListParentGroups(ctx context.Context) ([]ParentLedgerGroup, error)
	GetParentGroup(ctx context.Context, id int64) (ParentLedgerGroup, error)
	FindParentGroupByName(ctx context.Context, name string) (ParentLedgerGroup, error)
	InsertParentGroup(ctx context.Context, g ParentLedgerGroup) (ParentLedgerGroup, error)
	UpdateParentGroup(ctx context.Context, g ParentLedgerGroup) error
	DeleteParentGroup(ctx context.Context, id int64) error
	CountLedgerGroups(ctx context.Context, parentID int64) (int, error)

	ListLedgerGroups(ctx context.Context, parentID *int64) ([]LedgerGroup, error)
	GetLedgerGroup(ctx context.Context, id int64) (LedgerGroup, error)
	FindLedgerGroupByName(ctx context.Context, name string) (LedgerGroup, error)
	InsertLedgerGroup(ctx context.Context, g LedgerGroup) (LedgerGroup, error)
	UpdateLedgerGroup(ctx context.Context, g LedgerGroup) error
	DeleteLedgerGroup(ctx context.Context, id int64) error
	CountLedgers(ctx context.Context, groupID int64) (int, error)
	CountGroupItems(ctx context.Context, groupID int64) (int, error)

	ListLedgers(ctx context.Context, filter LedgerFilter) ([]LedgerDetail, error)
	GetLedger(ctx context.Context, id int64) (LedgerDetail, error)
	FindLedgerByName(ctx context.Context, name string) (Ledger, error)
	InsertLedger(ctx context.Context, l Ledger) (Ledger, error)
	UpdateLedger(ctx context.Context, l Ledger) error
	SetLedgerActive(ctx context.Context, id int64, active bool) error
	DeleteLedger(ctx context.Context, id int64) error
	CountLedgerItems(ctx context.Context, ledgerID int64) (int, error)

	ListSpendingTypes(ctx context.Context) ([]SpendingType, error)
	GetSpendingType(ctx context.Context, id int64) (SpendingType, error)
	FindSpendingTypeByName(ctx context.Context, name string) (SpendingType, error)
	InsertSpendingType(ctx context.Context, st SpendingType) (SpendingType, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the Postgres backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// WithTx runs fn in a read-committed transaction. Foreign key checks of the
// chart and the referencing write share this boundary, and the posting guard
// triggers see items committed by journals they waited on.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithLockingTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

const parentGroupColumns = `id, name, sort_order, nature, is_active, created_at`

func scanParentGroup(row pgx.Row) (ParentLedgerGroup, error) {
	var g ParentLedgerGroup
	err := row.Scan(&g.ID, &g.Name, &g.SortOrder, &g.Nature, &g.IsActive, &g.CreatedAt)
	return g, err
}

func (r *txRepository) ListParentGroups(ctx context.Context) ([]ParentLedgerGroup, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+parentGroupColumns+` FROM parent_ledger_groups ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []ParentLedgerGroup
	for rows.Next() {
		g, err := scanParentGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *txRepository) GetParentGroup(ctx context.Context, id int64) (ParentLedgerGroup, error) {
	g, err := scanParentGroup(r.tx.QueryRow(ctx, `SELECT `+parentGroupColumns+` FROM parent_ledger_groups WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ParentLedgerGroup{}, shared.NotFound("parent ledger group", id)
	}
	return g, err
}

func (r *txRepository) FindParentGroupByName(ctx context.Context, name string) (ParentLedgerGroup, error) {
	g, err := scanParentGroup(r.tx.QueryRow(ctx, `SELECT `+parentGroupColumns+` FROM parent_ledger_groups WHERE name=$1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return ParentLedgerGroup{}, shared.ErrNotFound
	}
	return g, err
}

func (r *txRepository) InsertParentGroup(ctx context.Context, g ParentLedgerGroup) (ParentLedgerGroup, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO parent_ledger_groups (name, sort_order, nature, is_active)
VALUES ($1,$2,$3,TRUE) RETURNING id, is_active, created_at`, g.Name, g.SortOrder, g.Nature).
		Scan(&g.ID, &g.IsActive, &g.CreatedAt)
	if err != nil {
		return ParentLedgerGroup{}, mapWriteErr("parent ledger group", g.ID, err)
	}
	return g, nil
}

func (r *txRepository) UpdateParentGroup(ctx context.Context, g ParentLedgerGroup) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE parent_ledger_groups SET name=$2, sort_order=$3, nature=$4, updated_at=NOW() WHERE id=$1`,
		g.ID, g.Name, g.SortOrder, g.Nature)
	if err != nil {
		return mapWriteErr("parent ledger group", g.ID, err)
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("parent ledger group", g.ID)
	}
	return nil
}

func (r *txRepository) DeleteParentGroup(ctx context.Context, id int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM parent_ledger_groups WHERE id=$1`, id)
	if err != nil {
		return mapWriteErr("parent ledger group", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("parent ledger group", id)
	}
	return nil
}

func (r *txRepository) CountLedgerGroups(ctx context.Context, parentID int64) (int, error) {
	var n int
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_groups WHERE parent_ledger_group_id=$1`, parentID).Scan(&n)
	return n, err
}

const ledgerGroupColumns = `id, name, parent_ledger_group_id, category, is_active, created_at`

func scanLedgerGroup(row pgx.Row) (LedgerGroup, error) {
	var g LedgerGroup
	err := row.Scan(&g.ID, &g.Name, &g.ParentLedgerGroupID, &g.Category, &g.IsActive, &g.CreatedAt)
	return g, err
}

func (r *txRepository) ListLedgerGroups(ctx context.Context, parentID *int64) ([]LedgerGroup, error) {
	query := `SELECT ` + ledgerGroupColumns + ` FROM ledger_groups`
	args := []any{}
	if parentID != nil {
		query += ` WHERE parent_ledger_group_id=$1`
		args = append(args, *parentID)
	}
	query += ` ORDER BY name`
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []LedgerGroup
	for rows.Next() {
		g, err := scanLedgerGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *txRepository) GetLedgerGroup(ctx context.Context, id int64) (LedgerGroup, error) {
	g, err := scanLedgerGroup(r.tx.QueryRow(ctx, `SELECT `+ledgerGroupColumns+` FROM ledger_groups WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return LedgerGroup{}, shared.NotFound("ledger group", id)
	}
	return g, err
}

func (r *txRepository) FindLedgerGroupByName(ctx context.Context, name string) (LedgerGroup, error) {
	g, err := scanLedgerGroup(r.tx.QueryRow(ctx, `SELECT `+ledgerGroupColumns+` FROM ledger_groups WHERE name=$1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return LedgerGroup{}, shared.ErrNotFound
	}
	return g, err
}

func (r *txRepository) InsertLedgerGroup(ctx context.Context, g LedgerGroup) (LedgerGroup, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO ledger_groups (name, parent_ledger_group_id, category, is_active)
VALUES ($1,$2,$3,TRUE) RETURNING id, is_active, created_at`, g.Name, g.ParentLedgerGroupID, g.Category).
		Scan(&g.ID, &g.IsActive, &g.CreatedAt)
	if err != nil {
		return LedgerGroup{}, mapWriteErr("ledger group", g.ID, err)
	}
	return g, nil
}

func (r *txRepository) UpdateLedgerGroup(ctx context.Context, g LedgerGroup) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE ledger_groups SET name=$2, parent_ledger_group_id=$3, category=$4, is_active=$5, updated_at=NOW() WHERE id=$1`,
		g.ID, g.Name, g.ParentLedgerGroupID, g.Category, g.IsActive)
	if err != nil {
		return mapWriteErr("ledger group", g.ID, err)
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("ledger group", g.ID)
	}
	return nil
}

func (r *txRepository) DeleteLedgerGroup(ctx context.Context, id int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM ledger_groups WHERE id=$1`, id)
	if err != nil {
		return mapWriteErr("ledger group", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("ledger group", id)
	}
	return nil
}

func (r *txRepository) CountLedgers(ctx context.Context, groupID int64) (int, error) {
	var n int
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*) FROM ledgers WHERE ledger_group_id=$1`, groupID).Scan(&n)
	return n, err
}

// CountGroupItems locks the group's ledgers first. Journals hold FOR SHARE on
// the ledgers they post to, so the count waits for them to finish.
func (r *txRepository) CountGroupItems(ctx context.Context, groupID int64) (int, error) {
	if _, err := r.tx.Exec(ctx, `SELECT id FROM ledgers WHERE ledger_group_id=$1 FOR UPDATE`, groupID); err != nil {
		return 0, err
	}
	var n int
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*) FROM transaction_items ti
JOIN ledgers l ON l.id = ti.ledger_id WHERE l.ledger_group_id=$1`, groupID).Scan(&n)
	return n, err
}

const ledgerDetailQuery = `SELECT l.id, l.name, l.ledger_group_id, l.spending_type_id, l.is_active, l.created_at,
lg.name, lg.category, plg.id, plg.name, plg.sort_order, plg.nature, COALESCE(st.name, '')
FROM ledgers l
JOIN ledger_groups lg ON lg.id = l.ledger_group_id
JOIN parent_ledger_groups plg ON plg.id = lg.parent_ledger_group_id
LEFT JOIN spending_types st ON st.id = l.spending_type_id`

func scanLedgerDetail(row pgx.Row) (LedgerDetail, error) {
	var l LedgerDetail
	err := row.Scan(&l.ID, &l.Name, &l.LedgerGroupID, &l.SpendingTypeID, &l.IsActive, &l.CreatedAt,
		&l.LedgerGroupName, &l.Category, &l.ParentGroupID, &l.ParentGroupName, &l.ParentSortOrder, &l.Nature, &l.SpendingTypeName)
	return l, err
}

func (r *txRepository) ListLedgers(ctx context.Context, filter LedgerFilter) ([]LedgerDetail, error) {
	query := ledgerDetailQuery + ` WHERE 1=1`
	args := []any{}
	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		query += ` AND l.ledger_group_id=$` + strconv.Itoa(len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` AND lg.category=$` + strconv.Itoa(len(args))
	}
	if !filter.IncludeInactive {
		query += ` AND l.is_active`
	}
	query += ` ORDER BY l.ledger_group_id, l.name`
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ledgers []LedgerDetail
	for rows.Next() {
		l, err := scanLedgerDetail(rows)
		if err != nil {
			return nil, err
		}
		ledgers = append(ledgers, l)
	}
	return ledgers, rows.Err()
}

func (r *txRepository) GetLedger(ctx context.Context, id int64) (LedgerDetail, error) {
	l, err := scanLedgerDetail(r.tx.QueryRow(ctx, ledgerDetailQuery+` WHERE l.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return LedgerDetail{}, shared.NotFound("ledger", id)
	}
	return l, err
}

func (r *txRepository) FindLedgerByName(ctx context.Context, name string) (Ledger, error) {
	var l Ledger
	err := r.tx.QueryRow(ctx, `SELECT id, name, ledger_group_id, spending_type_id, is_active, created_at FROM ledgers WHERE name=$1`, name).
		Scan(&l.ID, &l.Name, &l.LedgerGroupID, &l.SpendingTypeID, &l.IsActive, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Ledger{}, shared.ErrNotFound
	}
	return l, err
}

func (r *txRepository) InsertLedger(ctx context.Context, l Ledger) (Ledger, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO ledgers (name, ledger_group_id, spending_type_id, is_active)
VALUES ($1,$2,$3,TRUE) RETURNING id, is_active, created_at`, l.Name, l.LedgerGroupID, l.SpendingTypeID).
		Scan(&l.ID, &l.IsActive, &l.CreatedAt)
	if err != nil {
		return Ledger{}, mapWriteErr("ledger", l.ID, err)
	}
	return l, nil
}

func (r *txRepository) UpdateLedger(ctx context.Context, l Ledger) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE ledgers SET name=$2, ledger_group_id=$3, spending_type_id=$4, updated_at=NOW() WHERE id=$1`,
		l.ID, l.Name, l.LedgerGroupID, l.SpendingTypeID)
	if err != nil {
		return mapWriteErr("ledger", l.ID, err)
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("ledger", l.ID)
	}
	return nil
}

func (r *txRepository) SetLedgerActive(ctx context.Context, id int64, active bool) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE ledgers SET is_active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("ledger", id)
	}
	return nil
}

func (r *txRepository) DeleteLedger(ctx context.Context, id int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM ledgers WHERE id=$1`, id)
	if err != nil {
		return mapWriteErr("ledger", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFound("ledger", id)
	}
	return nil
}

func (r *txRepository) CountLedgerItems(ctx context.Context, ledgerID int64) (int, error) {
	var n int
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*) FROM transaction_items WHERE ledger_id=$1`, ledgerID).Scan(&n)
	return n, err
}

func (r *txRepository) ListSpendingTypes(ctx context.Context) ([]SpendingType, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, name, is_active, created_at FROM spending_types WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SpendingType
	for rows.Next() {
		var st SpendingType
		if err := rows.Scan(&st.ID, &st.Name, &st.IsActive, &st.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *txRepository) GetSpendingType(ctx context.Context, id int64) (SpendingType, error) {
	var st SpendingType
	err := r.tx.QueryRow(ctx, `SELECT id, name, is_active, created_at FROM spending_types WHERE id=$1`, id).
		Scan(&st.ID, &st.Name, &st.IsActive, &st.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SpendingType{}, shared.NotFound("spending type", id)
	}
	return st, err
}

func (r *txRepository) FindSpendingTypeByName(ctx context.Context, name string) (SpendingType, error) {
	var st SpendingType
	err := r.tx.QueryRow(ctx, `SELECT id, name, is_active, created_at FROM spending_types WHERE name=$1`, name).
		Scan(&st.ID, &st.Name, &st.IsActive, &st.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SpendingType{}, shared.ErrNotFound
	}
	return st, err
}

func (r *txRepository) InsertSpendingType(ctx context.Context, st SpendingType) (SpendingType, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO spending_types (name, is_active) VALUES ($1, TRUE) RETURNING id, is_active, created_at`, st.Name).
		Scan(&st.ID, &st.IsActive, &st.CreatedAt)
	if err != nil {
		return SpendingType{}, mapWriteErr("spending type", 0, err)
	}
	return st, nil
}

// mapWriteErr turns constraint violations into ReferenceErrors.
func mapWriteErr(entity string, id int64, err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return shared.InvalidReference(entity, id, "name already exists")
	case db.IsForeignKeyViolation(err):
		return shared.InvalidReference(entity, id, "referenced entity missing or still in use")
	case db.IsRestrictViolation(err):
		return shared.InvalidReference(entity, id, "in use by transaction items")
	}
	return err
}
