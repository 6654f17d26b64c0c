package journals

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	rootshared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// MetricsPort records mutation outcomes.
type MetricsPort interface {
	ObserveJournalMutation(op string, err error)
}

// Service is the journal store: it validates and persists balanced transactions.
type Service struct {
	repo    Repository
	logger  *slog.Logger
	metrics MetricsPort
	now     func() time.Time
}

// NewService constructs the journal service. metrics may be nil.
func NewService(repo Repository, logger *slog.Logger, metrics MetricsPort) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, metrics: metrics, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates and persists a transaction with all of its items.
func (s *Service) Create(ctx context.Context, in TransactionInput) (Transaction, error) {
	in.Date = shared.NewDate(in.Date.Time)
	if err := in.Validate(); err != nil {
		s.observe("create", err)
		return Transaction{}, err
	}
	var out Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := checkLedgers(ctx, tx, in.Items); err != nil {
			return err
		}
		created, err := tx.InsertTransaction(ctx, in)
		if err != nil {
			return err
		}
		items, err := tx.ReplaceItems(ctx, created.ID, in.Items)
		if err != nil {
			return err
		}
		created.Items = items
		out = created
		return tx.RecordAudit(ctx, s.auditLog("transaction.create", created))
	})
	s.observe("create", err)
	if err != nil {
		return Transaction{}, err
	}
	s.logger.Debug("transaction created", slog.Int64("transaction_id", out.ID), slog.String("total", out.TotalAmount.StringFixed(2)))
	return out, nil
}

// Update patches a transaction and, when items are given, replaces the item
// set. The merged result is validated before anything is written.
func (s *Service) Update(ctx context.Context, id int64, patch UpdateInput) (Transaction, error) {
	var out Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetTransaction(ctx, id, true)
		if err != nil {
			return err
		}
		in := patch.merge(current)
		in.Date = shared.NewDate(in.Date.Time)
		if err := in.Validate(); err != nil {
			return err
		}
		if patch.Items != nil {
			if err := checkLedgers(ctx, tx, in.Items); err != nil {
				return err
			}
		}
		updated, err := tx.UpdateTransaction(ctx, id, in)
		if err != nil {
			return err
		}
		if patch.Items != nil {
			if updated.Items, err = tx.ReplaceItems(ctx, id, in.Items); err != nil {
				return err
			}
		} else {
			updated.Items = current.Items
		}
		out = updated
		return tx.RecordAudit(ctx, s.auditLog("transaction.update", updated))
	})
	s.observe("update", err)
	if err != nil {
		return Transaction{}, err
	}
	return out, nil
}

// Delete removes a transaction and its items.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetTransaction(ctx, id, true)
		if err != nil {
			return err
		}
		if err := tx.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		return tx.RecordAudit(ctx, s.auditLog("transaction.delete", current))
	})
	s.observe("delete", err)
	return err
}

// Get loads one transaction with its items.
func (s *Service) Get(ctx context.Context, id int64) (Transaction, error) {
	var out Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		out, err = tx.GetTransaction(ctx, id, false)
		return err
	})
	return out, err
}

// List returns transactions newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, shared.InvalidInput("unknown transaction_type %q", filter.Type)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	var out []Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		out, err = tx.ListTransactions(ctx, filter)
		return err
	})
	return out, err
}

// checkLedgers rejects items pointing at missing or inactive ledgers.
func checkLedgers(ctx context.Context, tx TxRepository, items []ItemInput) error {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.LedgerID]; ok {
			continue
		}
		seen[item.LedgerID] = struct{}{}
		ids = append(ids, item.LedgerID)
	}
	states, err := tx.LedgerStates(ctx, ids)
	if err != nil {
		return err
	}
	for i, item := range items {
		if active, ok := states[item.LedgerID]; !ok || !active {
			return &shared.ItemError{Index: i, LedgerID: item.LedgerID, Err: shared.ErrUnknownLedger}
		}
	}
	return nil
}

func (s *Service) auditLog(action string, t Transaction) rootshared.AuditLog {
	return rootshared.AuditLog{
		Action:   action,
		Entity:   "transaction",
		EntityID: strconv.FormatInt(t.ID, 10),
		Meta: map[string]any{
			"transaction_date": t.Date.String(),
			"transaction_type": string(t.Type),
			"total_amount":     t.TotalAmount.StringFixed(2),
			"items":            len(t.Items),
		},
		At: s.now(),
	}
}

func (s *Service) observe(op string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveJournalMutation(op, err)
	}
	if err != nil && shared.KindOf(err) == shared.KindInternal {
		s.logger.Error("journal mutation failed", slog.String("op", op), slog.Any("error", err))
	}
}
