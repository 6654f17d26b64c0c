package shared

// EntryType is the side of a journal line.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	return t == EntryDebit || t == EntryCredit
}

// Opposite returns the other side.
func (t EntryType) Opposite() EntryType {
	if t == EntryDebit {
		return EntryCredit
	}
	return EntryDebit
}

// Nature classifies a parent ledger group as debit- or credit-increasing.
type Nature string

const (
	NatureDebitNormal  Nature = "DEBIT_NORMAL"
	NatureCreditNormal Nature = "CREDIT_NORMAL"
)

// Valid reports whether n is a known nature.
func (n Nature) Valid() bool {
	return n == NatureDebitNormal || n == NatureCreditNormal
}

// TransactionType classifies a transaction. It never changes balancing rules.
type TransactionType string

const (
	TransactionMoneyReceived TransactionType = "MONEY_RECEIVED"
	TransactionMoneyPaid     TransactionType = "MONEY_PAID"
	TransactionJournal       TransactionType = "JOURNAL"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionMoneyReceived, TransactionMoneyPaid, TransactionJournal:
		return true
	}
	return false
}

// LedgerGroupCategory drives candidate ledger pickers in entry flows.
type LedgerGroupCategory string

const (
	CategoryIncomes      LedgerGroupCategory = "incomes"
	CategoryExpenses     LedgerGroupCategory = "expenses"
	CategoryBankAccounts LedgerGroupCategory = "bank_accounts"
	CategoryCashAccounts LedgerGroupCategory = "cash_accounts"
	CategoryBankCharges  LedgerGroupCategory = "bank_charges"
	CategoryOther        LedgerGroupCategory = "other"
)

// Valid reports whether c is a known category.
func (c LedgerGroupCategory) Valid() bool {
	switch c {
	case CategoryIncomes, CategoryExpenses, CategoryBankAccounts, CategoryCashAccounts, CategoryBankCharges, CategoryOther:
		return true
	}
	return false
}

// IsPaymentAccount reports whether ledgers of this category can pay or receive money.
func (c LedgerGroupCategory) IsPaymentAccount() bool {
	return c == CategoryBankAccounts || c == CategoryCashAccounts
}
