package accounts

import (
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/balance"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// ParentLedgerGroup is a top-level statement classification.
type ParentLedgerGroup struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	SortOrder int           `json:"sort_order"`
	Nature    shared.Nature `json:"nature"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
}

// LedgerGroup buckets ledgers sharing a category.
type LedgerGroup struct {
	ID                  int64                      `json:"id"`
	Name                string                     `json:"name"`
	ParentLedgerGroupID int64                      `json:"parent_ledger_group_id"`
	Category            shared.LedgerGroupCategory `json:"category"`
	IsActive            bool                       `json:"is_active"`
	CreatedAt           time.Time                  `json:"created_at"`
}

// SpendingType is an optional tag on expense and asset ledgers.
type SpendingType struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Ledger is a single account.
type Ledger struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	LedgerGroupID  int64     `json:"ledger_group_id"`
	SpendingTypeID *int64    `json:"spending_type_id,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// LedgerDetail is a ledger joined with its group and parent group.
type LedgerDetail struct {
	Ledger
	LedgerGroupName  string                     `json:"ledger_group_name"`
	Category         shared.LedgerGroupCategory `json:"category"`
	ParentGroupID    int64                      `json:"parent_ledger_group_id"`
	ParentGroupName  string                     `json:"parent_group_name"`
	ParentSortOrder  int                        `json:"parent_sort_order"`
	Nature           shared.Nature              `json:"nature"`
	SpendingTypeName string                     `json:"spending_type_name,omitempty"`
}

// NormalSide returns the entry type that increases this ledger.
func (l LedgerDetail) NormalSide() shared.EntryType {
	return balance.NormalSide(l.Nature)
}

// LedgerFilter narrows ledger listings.
type LedgerFilter struct {
	GroupID         *int64
	Category        shared.LedgerGroupCategory
	IncludeInactive bool
}
