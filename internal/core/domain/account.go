package domain

import "regexp"

var accountCodePattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z.\-]{0,31}$`)

// IsValidAccountCode reports whether code is 1 to 32 letters, digits, '.' or '-',
// starting with a letter or digit.
func IsValidAccountCode(code string) bool {
	return accountCodePattern.MatchString(code)
}

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	COGS      AccountType = "COGS"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists every account type in statement order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Revenue, COGS, Expense}

// IsValid reports whether t is one of the known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, COGS, Expense:
		return true
	}
	return false
}

// IsDebitNormal reports whether balances of this type grow on the debit side.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == COGS || t == Expense
}

// IsIncomeStatement reports whether the type belongs to the profit and loss.
func (t AccountType) IsIncomeStatement() bool {
	return t == Revenue || t == COGS || t == Expense
}

// Account is an entry in an organization's chart of accounts.
type Account struct {
	AccountID   string      `json:"accountID"`
	OrgID       string      `json:"orgID"`
	Code        string      `json:"code"` // unique per org
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	IsActive    bool        `json:"isActive"`
	AuditFields
}
