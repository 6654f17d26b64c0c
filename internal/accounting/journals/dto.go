package journals

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/balance"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// ItemInput describes one debit or credit line of a request.
type ItemInput struct {
	LedgerID  int64            `json:"ledger_id"`
	EntryType shared.EntryType `json:"entry_type"`
	Amount    decimal.Decimal  `json:"amount"`
}

// TransactionInput is the full state of a transaction to create or replace.
type TransactionInput struct {
	Date      shared.Date            `json:"transaction_date"`
	Reference string                 `json:"reference" validate:"max=255"`
	Type      shared.TransactionType `json:"transaction_type" validate:"required,oneof=MONEY_RECEIVED MONEY_PAID JOURNAL"`
	Items     []ItemInput            `json:"items"`
}

// UpdateInput patches a transaction. Nil fields keep their stored value; a
// non-nil Items replaces the whole item set.
type UpdateInput struct {
	Date      *shared.Date            `json:"transaction_date"`
	Reference *string                 `json:"reference"`
	Type      *shared.TransactionType `json:"transaction_type"`
	Items     []ItemInput             `json:"items"`
}

// Validate checks the ledger invariants in a fixed order: item shape and
// amounts, then both sides present, then debit total equals credit total.
// Ledger existence needs the store and is checked by the service.
func (in TransactionInput) Validate() error {
	if in.Date.IsZero() {
		return shared.InvalidInput("transaction_date is required")
	}
	if err := shared.ValidateStruct(in); err != nil {
		return err
	}
	lines := make([]balance.Line, 0, len(in.Items))
	for i, item := range in.Items {
		if item.LedgerID <= 0 {
			return &shared.ItemError{Index: i, LedgerID: item.LedgerID, Err: shared.ErrUnknownLedger}
		}
		if !item.EntryType.Valid() {
			return &shared.ItemError{Index: i, LedgerID: item.LedgerID, Err: shared.InvalidInput("entry_type %q must be DEBIT or CREDIT", item.EntryType)}
		}
		if !shared.ValidAmount(item.Amount) {
			return &shared.ItemError{Index: i, LedgerID: item.LedgerID, Err: shared.ErrInvalidAmount}
		}
		lines = append(lines, balance.Line{EntryType: item.EntryType, Amount: item.Amount})
	}
	debit, credit := balance.Totals(lines)
	if debit.IsZero() || credit.IsZero() {
		return shared.ErrEmptyEntry
	}
	if !shared.Balanced(debit, credit) {
		return &shared.UnbalancedEntryError{Debit: debit, Credit: credit}
	}
	return nil
}

// TotalAmount is the debit-side sum, cached on the transaction row.
func (in TransactionInput) TotalAmount() decimal.Decimal {
	lines := make([]balance.Line, 0, len(in.Items))
	for _, item := range in.Items {
		lines = append(lines, balance.Line{EntryType: item.EntryType, Amount: item.Amount})
	}
	debit, _ := balance.Totals(lines)
	return debit
}

// merge applies a patch on top of the stored transaction.
func (u UpdateInput) merge(current Transaction) TransactionInput {
	in := TransactionInput{Date: current.Date, Reference: current.Reference, Type: current.Type}
	if u.Date != nil {
		in.Date = *u.Date
	}
	if u.Reference != nil {
		in.Reference = *u.Reference
	}
	if u.Type != nil {
		in.Type = *u.Type
	}
	if u.Items != nil {
		in.Items = u.Items
		return in
	}
	in.Items = make([]ItemInput, 0, len(current.Items))
	for _, item := range current.Items {
		in.Items = append(in.Items, ItemInput{LedgerID: item.LedgerID, EntryType: item.EntryType, Amount: item.Amount})
	}
	return in
}
