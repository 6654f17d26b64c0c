package journals

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Transaction is a balanced journal entry with its items.
type Transaction struct {
	ID          int64                  `json:"id"`
	Date        shared.Date            `json:"transaction_date"`
	Reference   string                 `json:"reference"`
	Type        shared.TransactionType `json:"transaction_type"`
	TotalAmount decimal.Decimal        `json:"total_amount"`
	Items       []TransactionItem      `json:"items"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// TransactionItem is one debit or credit line.
type TransactionItem struct {
	ID            int64            `json:"id"`
	TransactionID int64            `json:"transaction_id"`
	LedgerID      int64            `json:"ledger_id"`
	EntryType     shared.EntryType `json:"entry_type"`
	Amount        decimal.Decimal  `json:"amount"`
}

// ListFilter narrows transaction listings. Zero values mean no filter.
type ListFilter struct {
	Type   shared.TransactionType
	Range  *shared.DateRange
	Limit  int
	Offset int
}

const (
	defaultListLimit = 100
	maxListLimit     = 500
)
