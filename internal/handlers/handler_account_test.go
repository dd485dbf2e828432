package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

func testAccount(code string, accountType domain.AccountType) *domain.Account {
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	return &domain.Account{
		AccountID:   "acc-" + code,
		OrgID:       testOrgID,
		Code:        code,
		Name:        "Account " + code,
		AccountType: accountType,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(testActorID, now),
	}
}

func (suite *HandlerTestSuite) TestCreateAccount_Success() {
	req := dto.CreateAccountRequest{Code: "1000", Name: "Cash", AccountType: domain.Asset}
	suite.mockAccountService.On("CreateAccount", mock.Anything, testOrgID, req, testActorID).
		Return(testAccount("1000", domain.Asset), nil).Once()

	w := suite.doRequest(http.MethodPost, "/accounts", req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("1000", resp.Code)
	suite.Equal(domain.Asset, resp.AccountType)
	suite.True(resp.IsActive)
}

func (suite *HandlerTestSuite) TestCreateAccount_InvalidCode() {
	for _, code := range []string{"has space", "-leading", "waaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaytoolong"} {
		w := suite.doRequest(http.MethodPost, "/accounts", dto.CreateAccountRequest{Code: code, Name: "x", AccountType: domain.Asset})

		suite.Equal(http.StatusBadRequest, w.Code, code)
		suite.Equal("INVALID_REQUEST", suite.decodeError(w)["code"])
	}
	suite.mockAccountService.AssertNotCalled(suite.T(), "CreateAccount")
}

func (suite *HandlerTestSuite) TestCreateAccount_ServiceErrors() {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"duplicate code", apperrors.ErrDuplicateCode, http.StatusConflict, "DUPLICATE_CODE"},
		{"invalid type", fmt.Errorf("%w: %q", apperrors.ErrInvalidType, "ASSETS"), http.StatusBadRequest, "INVALID_TYPE"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.SetupTest()
			suite.mockAccountService.On("CreateAccount", mock.Anything, testOrgID, mock.Anything, testActorID).
				Return(nil, tt.err).Once()

			w := suite.doRequest(http.MethodPost, "/accounts", dto.CreateAccountRequest{Code: "1000", Name: "Cash", AccountType: "ASSETS"})

			suite.Equal(tt.wantStatus, w.Code)
			suite.Equal(tt.wantCode, suite.decodeError(w)["code"])
			suite.mockAccountService.AssertExpectations(suite.T())
		})
	}
}

func (suite *HandlerTestSuite) TestListAccounts() {
	accounts := []domain.Account{*testAccount("1000", domain.Asset), *testAccount("4000", domain.Revenue)}
	suite.mockAccountService.On("ListAccounts", mock.Anything, testOrgID).Return(accounts, nil).Once()

	w := suite.doRequest(http.MethodGet, "/accounts", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListAccountsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Accounts, 2)
	suite.Equal("4000", resp.Accounts[1].Code)
}

func (suite *HandlerTestSuite) TestGetAccount_ByCode() {
	suite.mockAccountService.On("GetAccount", mock.Anything, testOrgID, "1000").
		Return(testAccount("1000", domain.Asset), nil).Once()

	w := suite.doRequest(http.MethodGet, "/accounts/1000", nil)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestGetAccount_NotFound() {
	suite.mockAccountService.On("GetAccount", mock.Anything, testOrgID, "9999").
		Return(nil, apperrors.ErrAccountNotFound).Once()

	w := suite.doRequest(http.MethodGet, "/accounts/9999", nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("ACCOUNT_NOT_FOUND", suite.decodeError(w)["code"])
}

func (suite *HandlerTestSuite) TestDeactivateAccount() {
	account := testAccount("1000", domain.Asset)
	account.IsActive = false
	suite.mockAccountService.On("DeactivateAccount", mock.Anything, testOrgID, "acc-1000", testActorID).
		Return(account, nil).Once()

	w := suite.doRequest(http.MethodPost, "/accounts/acc-1000/deactivate", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp.IsActive)
}

func (suite *HandlerTestSuite) TestDeleteAccount() {
	suite.Run("unused account", func() {
		suite.SetupTest()
		suite.mockAccountService.On("DeleteAccount", mock.Anything, testOrgID, "acc-1000", testActorID).Return(nil).Once()

		w := suite.doRequest(http.MethodDelete, "/accounts/acc-1000", nil)

		suite.Equal(http.StatusNoContent, w.Code)
		suite.mockAccountService.AssertExpectations(suite.T())
	})

	suite.Run("referenced account", func() {
		suite.SetupTest()
		suite.mockAccountService.On("DeleteAccount", mock.Anything, testOrgID, "acc-1000", testActorID).
			Return(apperrors.ErrAccountInUse).Once()

		w := suite.doRequest(http.MethodDelete, "/accounts/acc-1000", nil)

		suite.Equal(http.StatusConflict, w.Code)
		suite.Equal("ACCOUNT_IN_USE", suite.decodeError(w)["code"])
		suite.mockAccountService.AssertExpectations(suite.T())
	})
}
