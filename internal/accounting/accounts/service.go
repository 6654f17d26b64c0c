package accounts

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/balance"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	rootshared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// AuditPort records chart of accounts changes.
type AuditPort interface {
	Record(ctx context.Context, log rootshared.AuditLog) error
}

// Service maintains the chart of accounts and guards its referential rules.
type Service struct {
	repo   Repository
	audit  AuditPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the chart of accounts service. audit may be nil.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, logger: slog.Default(), now: time.Now}
}

// WithLogger sets the logger used for failures after a change has committed.
func (s *Service) WithLogger(logger *slog.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ListParentGroups returns parent groups ordered by sort order then name.
func (s *Service) ListParentGroups(ctx context.Context) ([]ParentLedgerGroup, error) {
	var out []ParentLedgerGroup
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		out, err = tx.ListParentGroups(ctx)
		return err
	})
	return out, err
}

// GetParentGroup loads one parent group.
func (s *Service) GetParentGroup(ctx context.Context, id int64) (ParentLedgerGroup, error) {
	var out ParentLedgerGroup
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		out, err = tx.GetParentGroup(ctx, id)
		return err
	})
	return out, err
}

// CreateParentGroup adds a parent group. The nature defaults from the
// standard group names when omitted.
func (s *Service) CreateParentGroup(ctx context.Context, in ParentGroupInput) (ParentLedgerGroup, error) {
	group, err := s.parentFromInput(in)
	if err != nil {
		return ParentLedgerGroup{}, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := ensureNameFree(ctx, "parent ledger group", 0, group.Name, func(ctx context.Context, name string) (int64, error) {
			g, err := tx.FindParentGroupByName(ctx, name)
			return g.ID, err
		}); err != nil {
			return err
		}
		group, err = tx.InsertParentGroup(ctx, group)
		return err
	})
	if err != nil {
		return ParentLedgerGroup{}, err
	}
	s.record(ctx, "parent_group.create", "parent_ledger_group", group.ID, map[string]any{"name": group.Name, "nature": group.Nature})
	return group, nil
}

// UpdateParentGroup replaces a parent group's attributes.
func (s *Service) UpdateParentGroup(ctx context.Context, id int64, in ParentGroupInput) (ParentLedgerGroup, error) {
	group, err := s.parentFromInput(in)
	if err != nil {
		return ParentLedgerGroup{}, err
	}
	group.ID = id
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetParentGroup(ctx, id)
		if err != nil {
			return err
		}
		if err := ensureNameFree(ctx, "parent ledger group", id, group.Name, func(ctx context.Context, name string) (int64, error) {
			g, err := tx.FindParentGroupByName(ctx, name)
			return g.ID, err
		}); err != nil {
			return err
		}
		group.IsActive = current.IsActive
		group.CreatedAt = current.CreatedAt
		return tx.UpdateParentGroup(ctx, group)
	})
	if err != nil {
		return ParentLedgerGroup{}, err
	}
	s.record(ctx, "parent_group.update", "parent_ledger_group", id, map[string]any{"name": group.Name})
	return group, nil
}

// DeleteParentGroup removes a parent group without ledger groups.
func (s *Service) DeleteParentGroup(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetParentGroup(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountLedgerGroups(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return shared.InvalidReference("parent ledger group", id, "still has ledger groups")
		}
		return tx.DeleteParentGroup(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "parent_group.delete", "parent_ledger_group", id, nil)
	return nil
}

func (s *Service) parentFromInput(in ParentGroupInput) (ParentLedgerGroup, error) {
	in.Name = shared.NormalizeName(in.Name)
	if err := shared.ValidateStruct(in); err != nil {
		return ParentLedgerGroup{}, err
	}
	nature := in.Nature
	if nature == "" {
		n, ok := balance.NatureForName(in.Name)
		if !ok {
			return ParentLedgerGroup{}, shared.InvalidInput("nature is required for non-standard parent group %q", in.Name)
		}
		nature = n
	}
	return ParentLedgerGroup{Name: in.Name, SortOrder: *in.SortOrder, Nature: nature, IsActive: true}, nil
}

// ListLedgerGroups returns ledger groups, optionally under one parent.
func (s *Service) ListLedgerGroups(ctx context.Context, parentID *int64) ([]LedgerGroup, error) {
	var out []LedgerGroup
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		out, err = tx.ListLedgerGroups(ctx, parentID)
		return err
	})
	return out, err
}

// GetLedgerGroup loads one ledger group.
func (s *Service) GetLedgerGroup(ctx context.Context, id int64) (LedgerGroup, error) {
	var out LedgerGroup
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		out, err = tx.GetLedgerGroup(ctx, id)
		return err
	})
	return out, err
}

// CreateLedgerGroup adds a ledger group under an existing parent group.
func (s *Service) CreateLedgerGroup(ctx context.Context, in LedgerGroupInput) (LedgerGroup, error) {
	in.Name = shared.NormalizeName(in.Name)
	if err := shared.ValidateStruct(in); err != nil {
		return LedgerGroup{}, err
	}
	group := LedgerGroup{Name: in.Name, ParentLedgerGroupID: in.ParentLedgerGroupID, Category: in.Category, IsActive: true}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := requireParent(ctx, tx, in.ParentLedgerGroupID); err != nil {
			return err
		}
		if err := ensureNameFree(ctx, "ledger group", 0, group.Name, func(ctx context.Context, name string) (int64, error) {
			g, err := tx.FindLedgerGroupByName(ctx, name)
			return g.ID, err
		}); err != nil {
			return err
		}
		var err error
		group, err = tx.InsertLedgerGroup(ctx, group)
		return err
	})
	if err != nil {
		return LedgerGroup{}, err
	}
	s.record(ctx, "ledger_group.create", "ledger_group", group.ID, map[string]any{"name": group.Name, "parent_ledger_group_id": group.ParentLedgerGroupID})
	return group, nil
}

// UpdateLedgerGroup replaces a ledger group. Moving it to another parent is
// rejected once any of its ledgers carry items, since that would restate
// historical reports.
func (s *Service) UpdateLedgerGroup(ctx context.Context, id int64, in LedgerGroupInput) (LedgerGroup, error) {
	in.Name = shared.NormalizeName(in.Name)
	if err := shared.ValidateStruct(in); err != nil {
		return LedgerGroup{}, err
	}
	var group LedgerGroup
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetLedgerGroup(ctx, id)
		if err != nil {
			return err
		}
		if current.ParentLedgerGroupID != in.ParentLedgerGroupID {
			if err := requireParent(ctx, tx, in.ParentLedgerGroupID); err != nil {
				return err
			}
			n, err := tx.CountGroupItems(ctx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return shared.InvalidReference("ledger group", id, "cannot change parent group while ledgers have transaction items")
			}
		}
		if err := ensureNameFree(ctx, "ledger group", id, in.Name, func(ctx context.Context, name string) (int64, error) {
			g, err := tx.FindLedgerGroupByName(ctx, name)
			return g.ID, err
		}); err != nil {
			return err
		}
		group = current
		group.Name = in.Name
		group.ParentLedgerGroupID = in.ParentLedgerGroupID
		group.Category = in.Category
		return tx.UpdateLedgerGroup(ctx, group)
	})
	if err != nil {
		return LedgerGroup{}, err
	}
	s.record(ctx, "ledger_group.update", "ledger_group", id, map[string]any{"name": group.Name})
	return group, nil
}

// DeleteLedgerGroup removes a ledger group without ledgers.
func (s *Service) DeleteLedgerGroup(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetLedgerGroup(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountLedgers(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return shared.InvalidReference("ledger group", id, "still has ledgers")
		}
		return tx.DeleteLedgerGroup(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "ledger_group.delete", "ledger_group", id, nil)
	return nil
}

// ListLedgers returns ledgers joined with their group hierarchy.
func (s *Service) ListLedgers(ctx context.Context, filter LedgerFilter) ([]LedgerDetail, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, shared.InvalidInput("unknown category %q", filter.Category)
	}
	var out []LedgerDetail
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		out, err = tx.ListLedgers(ctx, filter)
		return err
	})
	return out, err
}

// GetLedger loads one ledger with its hierarchy.
func (s *Service) GetLedger(ctx context.Context, id int64) (LedgerDetail, error) {
	var out LedgerDetail
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		out, err = tx.GetLedger(ctx, id)
		return err
	})
	return out, err
}

// CreateLedger adds a ledger under an existing ledger group.
func (s *Service) CreateLedger(ctx context.Context, in LedgerInput) (LedgerDetail, error) {
	in.Name = shared.NormalizeName(in.Name)
	if err := shared.ValidateStruct(in); err != nil {
		return LedgerDetail{}, err
	}
	var out LedgerDetail
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := checkLedgerPlacement(ctx, tx, 0, in); err != nil {
			return err
		}
		if err := ensureNameFree(ctx, "ledger", 0, in.Name, func(ctx context.Context, name string) (int64, error) {
			l, err := tx.FindLedgerByName(ctx, name)
			return l.ID, err
		}); err != nil {
			return err
		}
		inserted, err := tx.InsertLedger(ctx, Ledger{Name: in.Name, LedgerGroupID: in.LedgerGroupID, SpendingTypeID: in.SpendingTypeID, IsActive: true})
		if err != nil {
			return err
		}
		out, err = tx.GetLedger(ctx, inserted.ID)
		return err
	})
	if err != nil {
		return LedgerDetail{}, err
	}
	s.record(ctx, "ledger.create", "ledger", out.ID, map[string]any{"name": out.Name, "ledger_group_id": out.LedgerGroupID})
	return out, nil
}

// UpdateLedger replaces a ledger. Changing its group is rejected once it has items.
func (s *Service) UpdateLedger(ctx context.Context, id int64, in LedgerInput) (LedgerDetail, error) {
	in.Name = shared.NormalizeName(in.Name)
	if err := shared.ValidateStruct(in); err != nil {
		return LedgerDetail{}, err
	}
	var out LedgerDetail
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetLedger(ctx, id)
		if err != nil {
			return err
		}
		if err := checkLedgerPlacement(ctx, tx, id, in); err != nil {
			return err
		}
		if current.LedgerGroupID != in.LedgerGroupID {
			n, err := tx.CountLedgerItems(ctx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return shared.InvalidReference("ledger", id, "cannot change ledger group while transaction items exist")
			}
		}
		if err := ensureNameFree(ctx, "ledger", id, in.Name, func(ctx context.Context, name string) (int64, error) {
			l, err := tx.FindLedgerByName(ctx, name)
			return l.ID, err
		}); err != nil {
			return err
		}
		updated := current.Ledger
		updated.Name = in.Name
		updated.LedgerGroupID = in.LedgerGroupID
		updated.SpendingTypeID = in.SpendingTypeID
		if err := tx.UpdateLedger(ctx, updated); err != nil {
			return err
		}
		out, err = tx.GetLedger(ctx, id)
		return err
	})
	if err != nil {
		return LedgerDetail{}, err
	}
	s.record(ctx, "ledger.update", "ledger", id, map[string]any{"name": out.Name})
	return out, nil
}

// SetLedgerActive toggles whether a ledger accepts new transaction items.
// Inactive ledgers keep their history and still appear in reports.
func (s *Service) SetLedgerActive(ctx context.Context, id int64, active bool) (LedgerDetail, error) {
	var out LedgerDetail
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.SetLedgerActive(ctx, id, active); err != nil {
			return err
		}
		var err error
		out, err = tx.GetLedger(ctx, id)
		return err
	})
	if err != nil {
		return LedgerDetail{}, err
	}
	action := "ledger.deactivate"
	if active {
		action = "ledger.activate"
	}
	s.record(ctx, action, "ledger", id, nil)
	return out, nil
}

// DeleteLedger removes a ledger that has never been posted to.
func (s *Service) DeleteLedger(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetLedger(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountLedgerItems(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return shared.InvalidReference("ledger", id, "has transaction items")
		}
		return tx.DeleteLedger(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "ledger.delete", "ledger", id, nil)
	return nil
}

// ListSpendingTypes returns active spending types.
func (s *Service) ListSpendingTypes(ctx context.Context) ([]SpendingType, error) {
	var out []SpendingType
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		out, err = tx.ListSpendingTypes(ctx)
		return err
	})
	return out, err
}

// CreateSpendingType adds a spending type.
func (s *Service) CreateSpendingType(ctx context.Context, in SpendingTypeInput) (SpendingType, error) {
	in.Name = shared.NormalizeName(in.Name)
	if err := shared.ValidateStruct(in); err != nil {
		return SpendingType{}, err
	}
	var out SpendingType
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := ensureNameFree(ctx, "spending type", 0, in.Name, func(ctx context.Context, name string) (int64, error) {
			st, err := tx.FindSpendingTypeByName(ctx, name)
			return st.ID, err
		}); err != nil {
			return err
		}
		var err error
		out, err = tx.InsertSpendingType(ctx, SpendingType{Name: in.Name, IsActive: true})
		return err
	})
	if err != nil {
		return SpendingType{}, err
	}
	s.record(ctx, "spending_type.create", "spending_type", out.ID, map[string]any{"name": out.Name})
	return out, nil
}

func requireParent(ctx context.Context, tx TxRepository, parentID int64) error {
	if _, err := tx.GetParentGroup(ctx, parentID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.InvalidReference("parent ledger group", parentID, "does not exist")
		}
		return err
	}
	return nil
}

// checkLedgerPlacement validates the target group and the optional spending
// type. Spending types only apply to ledgers under debit-normal parents.
func checkLedgerPlacement(ctx context.Context, tx TxRepository, ledgerID int64, in LedgerInput) error {
	group, err := tx.GetLedgerGroup(ctx, in.LedgerGroupID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.InvalidReference("ledger group", in.LedgerGroupID, "does not exist")
		}
		return err
	}
	if in.SpendingTypeID == nil {
		return nil
	}
	if _, err := tx.GetSpendingType(ctx, *in.SpendingTypeID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.InvalidReference("spending type", *in.SpendingTypeID, "does not exist")
		}
		return err
	}
	parent, err := tx.GetParentGroup(ctx, group.ParentLedgerGroupID)
	if err != nil {
		return err
	}
	if parent.Nature != shared.NatureDebitNormal {
		return shared.InvalidReference("ledger", ledgerID, "spending type only applies to asset and expenditure ledgers")
	}
	return nil
}

// ensureNameFree rejects a name already held by a different entity.
func ensureNameFree(ctx context.Context, entity string, selfID int64, name string, find func(context.Context, string) (int64, error)) error {
	id, err := find(ctx, name)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return nil
	case err != nil:
		return err
	case id != selfID:
		return shared.InvalidReference(entity, selfID, "name "+strconv.Quote(name)+" already exists")
	}
	return nil
}

func (s *Service) record(ctx context.Context, action, entity string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, rootshared.AuditLog{
		Action:   action,
		Entity:   entity,
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
		At:       s.now(),
	})
	if err != nil {
		s.logger.Warn("chart audit failed",
			slog.String("action", action),
			slog.String("entity", entity),
			slog.Int64("id", id),
			slog.Any("error", err))
	}
}
