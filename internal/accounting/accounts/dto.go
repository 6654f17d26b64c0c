package accounts

import (
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// ParentGroupInput creates or replaces a parent ledger group.
// Nature may be omitted for the standard group names.
type ParentGroupInput struct {
	Name      string        `json:"name" validate:"required,max=120"`
	SortOrder *int          `json:"sort_order" validate:"required,gte=0"`
	Nature    shared.Nature `json:"nature" validate:"omitempty,oneof=DEBIT_NORMAL CREDIT_NORMAL"`
}

// LedgerGroupInput creates or replaces a ledger group.
type LedgerGroupInput struct {
	Name                string                     `json:"name" validate:"required,max=120"`
	ParentLedgerGroupID int64                      `json:"parent_ledger_group_id" validate:"required,gt=0"`
	Category            shared.LedgerGroupCategory `json:"category" validate:"required,oneof=incomes expenses bank_accounts cash_accounts bank_charges other"`
}

// LedgerInput creates or replaces a ledger.
type LedgerInput struct {
	Name           string `json:"name" validate:"required,max=120"`
	LedgerGroupID  int64  `json:"ledger_group_id" validate:"required,gt=0"`
	SpendingTypeID *int64 `json:"spending_type_id" validate:"omitempty,gt=0"`
}

// SpendingTypeInput creates a spending type.
type SpendingTypeInput struct {
	Name string `json:"name" validate:"required,max=120"`
}
