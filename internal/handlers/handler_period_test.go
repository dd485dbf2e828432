package handlers_test

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
)

func testPeriod(status domain.PeriodStatus) *domain.FiscalPeriod {
	return &domain.FiscalPeriod{
		PeriodID:    "per-1",
		OrgID:       testOrgID,
		Name:        "March 2025",
		StartsAt:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:      time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:      status,
		AuditFields: domain.NewAuditFields(testActorID, time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)),
	}
}

func (suite *HandlerTestSuite) TestCreatePeriod() {
	expectedReq := dto.CreatePeriodRequest{
		Name:     "March 2025",
		StartsAt: dto.NewDate(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		EndsAt:   dto.NewDate(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)),
	}
	suite.mockPeriodService.On("CreatePeriod", mock.Anything, testOrgID, expectedReq, testActorID).
		Return(testPeriod(domain.PeriodOpen), nil).Once()

	w := suite.doRequest(http.MethodPost, "/periods", `{"name":"March 2025","startsAt":"2025-03-01","endsAt":"2025-03-31"}`)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.PeriodResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.PeriodOpen, resp.Status)
	suite.Contains(w.Body.String(), `"startsAt":"2025-03-01"`)
}

func (suite *HandlerTestSuite) TestCreatePeriod_Overlap() {
	suite.mockPeriodService.On("CreatePeriod", mock.Anything, testOrgID, mock.Anything, testActorID).
		Return(nil, apperrors.ErrPeriodOverlap).Once()

	w := suite.doRequest(http.MethodPost, "/periods", `{"name":"March 2025","startsAt":"2025-03-01","endsAt":"2025-03-31"}`)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("PERIOD_OVERLAP", suite.decodeError(w)["code"])
}

func (suite *HandlerTestSuite) TestGetPeriodForDate() {
	suite.Run("covered", func() {
		suite.SetupTest()
		suite.mockPeriodService.On("GetPeriodForDate", mock.Anything, testOrgID, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)).
			Return(testPeriod(domain.PeriodClosed), nil).Once()

		w := suite.doRequest(http.MethodGet, "/periods/by-date?date=2025-03-15", nil)

		suite.Equal(http.StatusOK, w.Code)
		suite.mockPeriodService.AssertExpectations(suite.T())
	})

	suite.Run("not covered", func() {
		suite.SetupTest()
		suite.mockPeriodService.On("GetPeriodForDate", mock.Anything, testOrgID, mock.Anything).Return(nil, nil).Once()

		w := suite.doRequest(http.MethodGet, "/periods/by-date?date=2030-01-01", nil)

		suite.Equal(http.StatusNotFound, w.Code)
		suite.Equal("PERIOD_NOT_FOUND", suite.decodeError(w)["code"])
		suite.mockPeriodService.AssertExpectations(suite.T())
	})

	suite.Run("bad date", func() {
		suite.SetupTest()
		w := suite.doRequest(http.MethodGet, "/periods/by-date?date=tomorrow", nil)

		suite.Equal(http.StatusBadRequest, w.Code)
		suite.mockPeriodService.AssertNotCalled(suite.T(), "GetPeriodForDate")
	})
}

func (suite *HandlerTestSuite) TestClosePeriod_InvalidTransition() {
	suite.mockPeriodService.On("ClosePeriod", mock.Anything, testOrgID, "per-1", testActorID).
		Return(nil, apperrors.ErrInvalidTransition).Once()

	w := suite.doRequest(http.MethodPost, "/periods/per-1/close", nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("INVALID_TRANSITION", suite.decodeError(w)["code"])
}

func (suite *HandlerTestSuite) TestLockPeriod() {
	suite.mockPeriodService.On("LockPeriod", mock.Anything, testOrgID, "per-1", testActorID).
		Return(testPeriod(domain.PeriodLocked), nil).Once()

	w := suite.doRequest(http.MethodPost, "/periods/per-1/lock", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"status":"LOCKED"`)
}

func (suite *HandlerTestSuite) TestReopenPeriod() {
	suite.Run("requires admin role", func() {
		suite.SetupTest()
		w := suite.doRequest(http.MethodPost, "/periods/per-1/reopen", `{"reason":"late invoice"}`)

		suite.Equal(http.StatusForbidden, w.Code)
		suite.Equal("FORBIDDEN", suite.decodeError(w)["code"])
		suite.mockPeriodService.AssertNotCalled(suite.T(), "ReopenPeriod")
	})

	suite.Run("requires reason", func() {
		suite.SetupTest()
		w := suite.doRequest(http.MethodPost, "/periods/per-1/reopen", `{}`, middleware.RoleLedgerAdmin)

		suite.Equal(http.StatusBadRequest, w.Code)
		suite.mockPeriodService.AssertNotCalled(suite.T(), "ReopenPeriod")
	})

	suite.Run("admin reopens", func() {
		suite.SetupTest()
		suite.mockPeriodService.On("ReopenPeriod", mock.Anything, testOrgID, "per-1", testActorID, "late invoice").
			Return(testPeriod(domain.PeriodOpen), nil).Once()

		w := suite.doRequest(http.MethodPost, "/periods/per-1/reopen", `{"reason":"late invoice"}`, middleware.RoleLedgerAdmin)

		suite.Equal(http.StatusOK, w.Code)
		suite.mockPeriodService.AssertExpectations(suite.T())
	})
}

func (suite *HandlerTestSuite) TestListPeriodAudit() {
	records := []domain.PeriodAuditRecord{
		{AuditID: "a1", OrgID: testOrgID, PeriodID: "per-1", Action: domain.PeriodActionClose, Before: domain.PeriodOpen, After: domain.PeriodClosed, ActorID: testActorID},
		{AuditID: "a2", OrgID: testOrgID, PeriodID: "per-1", Action: domain.PeriodActionReopen, Before: domain.PeriodClosed, After: domain.PeriodOpen, ActorID: "admin-1", Reason: "late invoice"},
	}
	suite.mockPeriodService.On("ListPeriodAudit", mock.Anything, testOrgID, "per-1").Return(records, nil).Once()

	w := suite.doRequest(http.MethodGet, "/periods/per-1/audit", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.PeriodAuditResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp, 2)
	suite.Equal("late invoice", resp[1].Reason)
}
