package shared

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnbalancedEntry indicates debit total != credit total.
	ErrUnbalancedEntry = errors.New("accounting: debit and credit totals must balance")
	// ErrEmptyEntry indicates a transaction without both a debit and a credit item.
	ErrEmptyEntry = errors.New("accounting: transaction requires at least one debit and one credit item")
	// ErrInvalidAmount indicates a zero, negative or over-precise item amount.
	ErrInvalidAmount = errors.New("accounting: item amount must be positive with at most two decimal places")
	// ErrUnknownLedger indicates an item references a missing or inactive ledger.
	ErrUnknownLedger = errors.New("accounting: unknown ledger")
	// ErrInvalidReference indicates a chart of accounts integrity violation.
	ErrInvalidReference = errors.New("accounting: invalid reference")
	// ErrNotFound indicates a missing entity.
	ErrNotFound = errors.New("accounting: not found")
	// ErrInvalidRange indicates start date after end date.
	ErrInvalidRange = errors.New("accounting: start date must not be after end date")
	// ErrInvalidInput indicates a malformed request field outside the ledger invariants.
	ErrInvalidInput = errors.New("accounting: invalid input")
)

// Kind is the stable, machine readable name of an error class.
type Kind string

const (
	KindUnbalancedEntry  Kind = "UNBALANCED_ENTRY"
	KindEmptyEntry       Kind = "EMPTY_ENTRY"
	KindInvalidAmount    Kind = "INVALID_AMOUNT"
	KindUnknownLedger    Kind = "UNKNOWN_LEDGER"
	KindInvalidReference Kind = "INVALID_REFERENCE"
	KindNotFound         Kind = "NOT_FOUND"
	KindInvalidRange     Kind = "INVALID_RANGE"
	KindInvalidInput     Kind = "INVALID_INPUT"
	KindInternal         Kind = "INTERNAL"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrUnbalancedEntry, KindUnbalancedEntry},
	{ErrEmptyEntry, KindEmptyEntry},
	{ErrInvalidAmount, KindInvalidAmount},
	{ErrUnknownLedger, KindUnknownLedger},
	{ErrInvalidReference, KindInvalidReference},
	{ErrNotFound, KindNotFound},
	{ErrInvalidRange, KindInvalidRange},
	{ErrInvalidInput, KindInvalidInput},
}

// KindOf classifies err. Errors outside the taxonomy are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// UnbalancedEntryError carries the totals that failed the balance check.
type UnbalancedEntryError struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("%s: debits %s, credits %s", ErrUnbalancedEntry, e.Debit.StringFixed(2), e.Credit.StringFixed(2))
}

func (e *UnbalancedEntryError) Unwrap() error { return ErrUnbalancedEntry }

// ItemError points at the offending transaction item.
type ItemError struct {
	Index    int
	LedgerID int64
	Err      error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d (ledger %d): %v", e.Index, e.LedgerID, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// NotFoundError names the entity that could not be located.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("accounting: %s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ReferenceError describes a chart of accounts integrity violation.
type ReferenceError struct {
	Entity string
	ID     int64
	Reason string
}

func (e *ReferenceError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("accounting: %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("accounting: %s %d: %s", e.Entity, e.ID, e.Reason)
}

func (e *ReferenceError) Unwrap() error { return ErrInvalidReference }

// NotFound builds a NotFoundError.
func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidReference builds a ReferenceError.
func InvalidReference(entity string, id int64, reason string) error {
	return &ReferenceError{Entity: entity, ID: id, Reason: reason}
}

// InvalidInput wraps ErrInvalidInput with a field level message.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
