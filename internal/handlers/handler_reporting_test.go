package handlers_test

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

func (suite *HandlerTestSuite) TestTrialBalance() {
	asOf := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	report := &domain.TrialBalanceReport{
		AsOf: asOf,
		Rows: []domain.TrialBalanceRow{
			{AccountID: "acc-1000", AccountCode: "1000", AccountType: domain.Asset, TotalDebit: decimal.NewFromInt(100), TotalCredit: decimal.Zero, NetBalance: decimal.NewFromInt(100), Balance: decimal.NewFromInt(100)},
			{AccountID: "acc-3000", AccountCode: "3000", AccountType: domain.Equity, TotalDebit: decimal.Zero, TotalCredit: decimal.NewFromInt(100), NetBalance: decimal.NewFromInt(-100), Balance: decimal.NewFromInt(100)},
		},
		TotalDebit:  decimal.NewFromInt(100),
		TotalCredit: decimal.NewFromInt(100),
	}
	suite.mockReportingService.On("TrialBalance", mock.Anything, testOrgID, asOf).Return(report, nil).Once()

	w := suite.doRequest(http.MethodGet, "/reports/trial-balance?asOf=2025-03-31", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TrialBalanceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("2025-03-31", resp.AsOf)
	suite.Len(resp.Rows, 2)
	suite.True(resp.Totals.Debit.Equal(resp.Totals.Credit))
}

func (suite *HandlerTestSuite) TestTrialBalance_DefaultsAsOfToToday() {
	suite.mockReportingService.On("TrialBalance", mock.Anything, testOrgID,
		mock.MatchedBy(func(asOf time.Time) bool {
			return asOf.Format(dto.DateLayout) == time.Now().UTC().Format(dto.DateLayout)
		})).Return(&domain.TrialBalanceReport{AsOf: time.Now().UTC()}, nil).Once()

	w := suite.doRequest(http.MethodGet, "/reports/trial-balance", nil)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestTrialBalance_IntegrityFailureIsOpaque() {
	suite.mockReportingService.On("TrialBalance", mock.Anything, testOrgID, mock.Anything).
		Return(nil, &apperrors.ConsistencyError{
			Report: "trial_balance",
			OrgID:  testOrgID,
			Check:  "debits equal credits",
			Left:   decimal.NewFromInt(100),
			Right:  decimal.NewFromInt(90),
		}).Once()

	w := suite.doRequest(http.MethodGet, "/reports/trial-balance?asOf=2025-03-31", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal(`{"error":"internal error"}`, w.Body.String())
}

func (suite *HandlerTestSuite) TestProfitAndLoss() {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	report := &domain.PAndLReport{
		FromDate:    from,
		ToDate:      to,
		Revenue:     domain.ReportSection{Accounts: []domain.AccountAmount{{AccountID: "acc-4000", Code: "4000", Amount: decimal.NewFromInt(500)}}, Total: decimal.NewFromInt(500)},
		COGS:        domain.ReportSection{Total: decimal.Zero},
		Expenses:    domain.ReportSection{Accounts: []domain.AccountAmount{{AccountID: "acc-6000", Code: "6000", Amount: decimal.NewFromInt(200)}}, Total: decimal.NewFromInt(200)},
		GrossProfit: decimal.NewFromInt(500),
		NetProfit:   decimal.NewFromInt(300),
	}
	suite.mockReportingService.On("ProfitAndLoss", mock.Anything, testOrgID, from, to).Return(report, nil).Once()

	w := suite.doRequest(http.MethodGet, "/reports/profit-and-loss?fromDate=2025-01-01&toDate=2025-03-31", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ProfitAndLossResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Summary.NetProfit.Equal(decimal.NewFromInt(300)))
	suite.Len(resp.Revenue, 1)
}

func (suite *HandlerTestSuite) TestProfitAndLoss_InvalidRange() {
	suite.Run("missing toDate", func() {
		suite.SetupTest()
		w := suite.doRequest(http.MethodGet, "/reports/profit-and-loss?fromDate=2025-01-01", nil)

		suite.Equal(http.StatusBadRequest, w.Code)
		suite.mockReportingService.AssertNotCalled(suite.T(), "ProfitAndLoss")
	})

	suite.Run("from after to", func() {
		suite.SetupTest()
		suite.mockReportingService.On("ProfitAndLoss", mock.Anything, testOrgID, mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrInvalidDateRange).Once()

		w := suite.doRequest(http.MethodGet, "/reports/profit-and-loss?fromDate=2025-04-01&toDate=2025-03-31", nil)

		suite.Equal(http.StatusBadRequest, w.Code)
		suite.Equal("INVALID_DATE_RANGE", suite.decodeError(w)["code"])
		suite.mockReportingService.AssertExpectations(suite.T())
	})
}

func (suite *HandlerTestSuite) TestBalanceSheet() {
	asOf := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	report := &domain.BalanceSheetReport{
		AsOf:                      asOf,
		Assets:                    domain.ReportSection{Accounts: []domain.AccountAmount{{AccountID: "acc-1000", Code: "1000", Amount: decimal.NewFromInt(400)}}, Total: decimal.NewFromInt(400)},
		Liabilities:               domain.ReportSection{Total: decimal.Zero},
		Equity:                    domain.ReportSection{Accounts: []domain.AccountAmount{{AccountID: "acc-3000", Code: "3000", Amount: decimal.NewFromInt(100)}}, Total: decimal.NewFromInt(100)},
		CurrentEarnings:           decimal.NewFromInt(300),
		TotalEquity:               decimal.NewFromInt(400),
		TotalLiabilitiesAndEquity: decimal.NewFromInt(400),
	}
	suite.mockReportingService.On("BalanceSheet", mock.Anything, testOrgID, asOf).Return(report, nil).Once()

	w := suite.doRequest(http.MethodGet, "/reports/balance-sheet?asOf=2025-03-31", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BalanceSheetResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Summary.TotalAssets.Equal(resp.Summary.TotalLiabilitiesAndEquity))
	suite.True(resp.Summary.CurrentEarnings.Equal(decimal.NewFromInt(300)))
}
