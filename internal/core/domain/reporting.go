package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountTotals are the summed debits and credits of committed lines on one account.
type AccountTotals struct {
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// LedgerSnapshot is the input every report is computed from: the chart of
// accounts and per-account committed totals, read at one instant.
type LedgerSnapshot struct {
	Accounts []Account
	Totals   map[string]AccountTotals
}

// TrialBalanceRow represents a single row in a trial balance report.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	NetBalance  decimal.Decimal `json:"netBalance"` // debit - credit
	Balance     decimal.Decimal `json:"balance"`    // signed to the account's normal side
}

// TrialBalanceReport lists every account's balance as of a date.
type TrialBalanceReport struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// AccountAmount represents an account with its amount for financial statements,
// signed to the account's normal side.
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// ReportSection is a titled group of accounts with a total.
type ReportSection struct {
	Accounts []AccountAmount `json:"accounts"`
	Total    decimal.Decimal `json:"total"`
}

// PAndLReport represents a profit and loss report over an inclusive date range.
type PAndLReport struct {
	FromDate    time.Time       `json:"fromDate"`
	ToDate      time.Time       `json:"toDate"`
	Revenue     ReportSection   `json:"revenue"`
	COGS        ReportSection   `json:"cogs"`
	Expenses    ReportSection   `json:"expenses"`
	GrossProfit decimal.Decimal `json:"grossProfit"`
	NetProfit   decimal.Decimal `json:"netProfit"`
}

// BalanceSheetReport represents a balance sheet as of a date.
// CurrentEarnings is the cumulative, not yet closed, net profit and is part of TotalEquity.
type BalanceSheetReport struct {
	AsOf                      time.Time       `json:"asOf"`
	Assets                    ReportSection   `json:"assets"`
	Liabilities               ReportSection   `json:"liabilities"`
	Equity                    ReportSection   `json:"equity"`
	CurrentEarnings           decimal.Decimal `json:"currentEarnings"`
	TotalEquity               decimal.Decimal `json:"totalEquity"`
	TotalLiabilitiesAndEquity decimal.Decimal `json:"totalLiabilitiesAndEquity"`
}
