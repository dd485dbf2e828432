package dto

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	NetBalance  decimal.Decimal `json:"netBalance"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf   string                    `json:"asOf"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
}

// AccountAmountResponse represents an account with its amount in a financial report
type AccountAmountResponse struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// ProfitAndLossResponse represents the profit and loss report response
type ProfitAndLossResponse struct {
	FromDate string                  `json:"fromDate"`
	ToDate   string                  `json:"toDate"`
	Revenue  []AccountAmountResponse `json:"revenue"`
	COGS     []AccountAmountResponse `json:"cogs"`
	Expenses []AccountAmountResponse `json:"expenses"`
	Summary  struct {
		TotalRevenue  decimal.Decimal `json:"totalRevenue"`
		TotalCOGS     decimal.Decimal `json:"totalCogs"`
		GrossProfit   decimal.Decimal `json:"grossProfit"`
		TotalExpenses decimal.Decimal `json:"totalExpenses"`
		NetProfit     decimal.Decimal `json:"netProfit"`
	} `json:"summary"`
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	AsOf        string                  `json:"asOf"`
	Assets      []AccountAmountResponse `json:"assets"`
	Liabilities []AccountAmountResponse `json:"liabilities"`
	Equity      []AccountAmountResponse `json:"equity"`
	Summary     struct {
		TotalAssets               decimal.Decimal `json:"totalAssets"`
		TotalLiabilities          decimal.Decimal `json:"totalLiabilities"`
		CurrentEarnings           decimal.Decimal `json:"currentEarnings"`
		TotalEquity               decimal.Decimal `json:"totalEquity"`
		TotalLiabilitiesAndEquity decimal.Decimal `json:"totalLiabilitiesAndEquity"`
	} `json:"summary"`
}

// ToTrialBalanceResponse converts a domain trial balance to a DTO response
func ToTrialBalanceResponse(report *domain.TrialBalanceReport) TrialBalanceResponse {
	response := TrialBalanceResponse{
		AsOf: report.AsOf.Format(DateLayout),
		Rows: make([]TrialBalanceRowResponse, len(report.Rows)),
	}
	for i, row := range report.Rows {
		response.Rows[i] = TrialBalanceRowResponse{
			AccountID:   row.AccountID,
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			AccountType: string(row.AccountType),
			Debit:       row.TotalDebit,
			Credit:      row.TotalCredit,
			NetBalance:  row.NetBalance,
			Balance:     row.Balance,
		}
	}
	response.Totals.Debit = report.TotalDebit
	response.Totals.Credit = report.TotalCredit
	return response
}

func toAccountAmountResponses(amounts []domain.AccountAmount) []AccountAmountResponse {
	out := make([]AccountAmountResponse, len(amounts))
	for i, a := range amounts {
		out[i] = AccountAmountResponse{
			AccountID: a.AccountID,
			Code:      a.Code,
			Name:      a.Name,
			Amount:    a.Amount,
		}
	}
	return out
}

// ToProfitAndLossResponse converts a domain P&L report to a DTO response
func ToProfitAndLossResponse(report *domain.PAndLReport) ProfitAndLossResponse {
	response := ProfitAndLossResponse{
		FromDate: report.FromDate.Format(DateLayout),
		ToDate:   report.ToDate.Format(DateLayout),
		Revenue:  toAccountAmountResponses(report.Revenue.Accounts),
		COGS:     toAccountAmountResponses(report.COGS.Accounts),
		Expenses: toAccountAmountResponses(report.Expenses.Accounts),
	}
	response.Summary.TotalRevenue = report.Revenue.Total
	response.Summary.TotalCOGS = report.COGS.Total
	response.Summary.GrossProfit = report.GrossProfit
	response.Summary.TotalExpenses = report.Expenses.Total
	response.Summary.NetProfit = report.NetProfit
	return response
}

// ToBalanceSheetResponse converts a domain balance sheet to a DTO response
func ToBalanceSheetResponse(report *domain.BalanceSheetReport) BalanceSheetResponse {
	response := BalanceSheetResponse{
		AsOf:        report.AsOf.Format(DateLayout),
		Assets:      toAccountAmountResponses(report.Assets.Accounts),
		Liabilities: toAccountAmountResponses(report.Liabilities.Accounts),
		Equity:      toAccountAmountResponses(report.Equity.Accounts),
	}
	response.Summary.TotalAssets = report.Assets.Total
	response.Summary.TotalLiabilities = report.Liabilities.Total
	response.Summary.CurrentEarnings = report.CurrentEarnings
	response.Summary.TotalEquity = report.TotalEquity
	response.Summary.TotalLiabilitiesAndEquity = report.TotalLiabilitiesAndEquity
	return response
}
