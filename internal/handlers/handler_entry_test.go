package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

func testEntry(id string, status domain.EntryStatus) *domain.JournalEntry {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return &domain.JournalEntry{
		EntryID:   id,
		OrgID:     testOrgID,
		EntryDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Memo:      "rent",
		Source:    domain.SourceManual,
		Status:    status,
		Sequence:  1,
		Lines: []domain.JournalLine{
			{LineID: id + "-1", EntryID: id, AccountID: "acc-6000", Debit: decimal.NewFromInt(100), Credit: decimal.Zero},
			{LineID: id + "-2", EntryID: id, AccountID: "acc-1000", Debit: decimal.Zero, Credit: decimal.NewFromInt(100)},
		},
		AuditFields: domain.NewAuditFields(testActorID, now),
	}
}

const createEntryBody = `{
	"entryDate": "2025-03-01",
	"memo": "rent",
	"source": "MANUAL",
	"lines": [
		{"accountID": "acc-6000", "debit": "100"},
		{"accountID": "acc-1000", "credit": "100"}
	]
}`

func (suite *HandlerTestSuite) TestCreateDraft_Success() {
	suite.mockJournalService.On("CreateDraftEntry", mock.Anything, testOrgID,
		mock.MatchedBy(func(req dto.CreateEntryRequest) bool {
			return req.EntryDate.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) &&
				req.Source == domain.SourceManual &&
				len(req.Lines) == 2 &&
				req.Lines[0].Debit.Equal(decimal.NewFromInt(100)) &&
				req.Lines[1].Credit.Equal(decimal.NewFromInt(100))
		}), testActorID).
		Return(testEntry("je-1", domain.Draft), nil).Once()

	w := suite.doRequest(http.MethodPost, "/entries", createEntryBody)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.JournalEntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("je-1", resp.EntryID)
	suite.Equal(domain.Draft, resp.Status)
	suite.True(resp.TotalDebit.Equal(decimal.NewFromInt(100)))
	suite.Len(resp.Lines, 2)
}

func (suite *HandlerTestSuite) TestCreateDraft_BindErrors() {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"source":`},
		{"unknown source", `{"source":"PETTY_CASH","lines":[{"accountID":"a","debit":"1"}]}`},
		{"missing lines", `{"source":"MANUAL"}`},
		{"line without account", `{"source":"MANUAL","lines":[{"debit":"1"}]}`},
		{"bad entry date", `{"entryDate":"01/03/2025","source":"MANUAL","lines":[{"accountID":"a","debit":"1"}]}`},
	}

	for _, tt := range tests {
		w := suite.doRequest(http.MethodPost, "/entries", tt.body)

		suite.Equal(http.StatusBadRequest, w.Code, tt.name)
		suite.Equal("INVALID_REQUEST", suite.decodeError(w)["code"], tt.name)
	}
	suite.mockJournalService.AssertNotCalled(suite.T(), "CreateDraftEntry")
}

func (suite *HandlerTestSuite) TestCreateDraft_Unbalanced() {
	suite.mockJournalService.On("CreateDraftEntry", mock.Anything, testOrgID, mock.Anything, testActorID).
		Return(nil, fmt.Errorf("%w: debits 100 != credits 90", apperrors.ErrUnbalancedEntry)).Once()

	w := suite.doRequest(http.MethodPost, "/entries", createEntryBody)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("UNBALANCED_ENTRY", suite.decodeError(w)["code"])
}

func (suite *HandlerTestSuite) TestListEntries_FilterFromQuery() {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	token := "next-page"
	expectedFilter := domain.EntryFilter{
		Status:    domain.Posted,
		Source:    domain.SourceAP,
		SourceID:  "bill-7",
		AccountID: "acc-2000",
		FromDate:  &from,
		ToDate:    &to,
	}
	suite.mockJournalService.On("ListEntries", mock.Anything, testOrgID, expectedFilter, 10, (*string)(nil)).
		Return([]domain.JournalEntry{*testEntry("je-1", domain.Posted)}, &token, nil).Once()

	w := suite.doRequest(http.MethodGet,
		"/entries?status=POSTED&source=AP&sourceId=bill-7&accountId=acc-2000&fromDate=2025-01-01&toDate=2025-03-31&limit=10", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListEntriesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Entries, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(token, *resp.NextToken)
}

func (suite *HandlerTestSuite) TestListEntries_InvalidQuery() {
	for _, query := range []string{"?status=VOID", "?limit=501", "?fromDate=2025-13-01", "?source=nope"} {
		w := suite.doRequest(http.MethodGet, "/entries"+query, nil)
		suite.Equal(http.StatusBadRequest, w.Code, query)
	}
	suite.mockJournalService.AssertNotCalled(suite.T(), "ListEntries")
}

func (suite *HandlerTestSuite) TestGetEntry_NotFound() {
	suite.mockJournalService.On("GetEntry", mock.Anything, testOrgID, "missing").
		Return(nil, apperrors.ErrEntryNotFound).Once()

	w := suite.doRequest(http.MethodGet, "/entries/missing", nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("ENTRY_NOT_FOUND", suite.decodeError(w)["code"])
}

func (suite *HandlerTestSuite) TestUpdateDraft_NotDraft() {
	suite.mockJournalService.On("UpdateDraftEntry", mock.Anything, testOrgID, "je-1", mock.Anything, testActorID).
		Return(nil, apperrors.ErrEntryNotDraft).Once()

	w := suite.doRequest(http.MethodPut, "/entries/je-1", `{"lines":[{"accountID":"a","debit":"1"},{"accountID":"b","credit":"1"}]}`)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("ENTRY_NOT_DRAFT", suite.decodeError(w)["code"])
}

func (suite *HandlerTestSuite) TestDeleteDraft() {
	suite.mockJournalService.On("DeleteDraftEntry", mock.Anything, testOrgID, "je-1", testActorID).Return(nil).Once()

	w := suite.doRequest(http.MethodDelete, "/entries/je-1", nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *HandlerTestSuite) TestPostEntry() {
	suite.Run("posted", func() {
		suite.SetupTest()
		suite.mockPostingService.On("Post", mock.Anything, testOrgID, "je-1", testActorID).
			Return(testEntry("je-1", domain.Posted), nil).Once()

		w := suite.doRequest(http.MethodPost, "/entries/je-1/post", nil)

		suite.Equal(http.StatusOK, w.Code)
		suite.mockPostingService.AssertExpectations(suite.T())
	})

	suite.Run("period locked", func() {
		suite.SetupTest()
		suite.mockPostingService.On("Post", mock.Anything, testOrgID, "je-1", testActorID).
			Return(nil, fmt.Errorf("%w: period 2025-03 is CLOSED", apperrors.ErrPeriodLocked)).Once()

		w := suite.doRequest(http.MethodPost, "/entries/je-1/post", nil)

		suite.Equal(http.StatusUnprocessableEntity, w.Code)
		suite.Equal("PERIOD_LOCKED", suite.decodeError(w)["code"])
		suite.mockPostingService.AssertExpectations(suite.T())
	})

	suite.Run("unexpected failure is opaque", func() {
		suite.SetupTest()
		suite.mockPostingService.On("Post", mock.Anything, testOrgID, "je-1", testActorID).
			Return(nil, fmt.Errorf("connection reset by peer")).Once()

		w := suite.doRequest(http.MethodPost, "/entries/je-1/post", nil)

		suite.Equal(http.StatusInternalServerError, w.Code)
		body := suite.decodeError(w)
		suite.Equal("internal error", body["error"])
		suite.NotContains(w.Body.String(), "connection reset")
		suite.mockPostingService.AssertExpectations(suite.T())
	})
}

func (suite *HandlerTestSuite) TestReverseEntry() {
	suite.Run("explicit date", func() {
		suite.SetupTest()
		reversal := testEntry("je-2", domain.Posted)
		reversal.Source = domain.SourceReversal
		original := "je-1"
		reversal.ReversesEntryID = &original
		suite.mockPostingService.On("Reverse", mock.Anything, testOrgID, "je-1", testActorID,
			time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)).Return(reversal, nil).Once()

		w := suite.doRequest(http.MethodPost, "/entries/je-1/reverse", `{"reversalDate":"2025-04-01"}`)

		suite.Equal(http.StatusCreated, w.Code)
		var resp dto.JournalEntryResponse
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		suite.Require().NotNil(resp.ReversesEntryID)
		suite.Equal("je-1", *resp.ReversesEntryID)
		suite.mockPostingService.AssertExpectations(suite.T())
	})

	suite.Run("defaults to today", func() {
		suite.SetupTest()
		suite.mockPostingService.On("Reverse", mock.Anything, testOrgID, "je-1", testActorID,
			mock.MatchedBy(func(d time.Time) bool { return !d.IsZero() })).
			Return(testEntry("je-2", domain.Posted), nil).Once()

		w := suite.doRequest(http.MethodPost, "/entries/je-1/reverse", nil)

		suite.Equal(http.StatusCreated, w.Code)
		suite.mockPostingService.AssertExpectations(suite.T())
	})

	suite.Run("empty chunked body defaults to today", func() {
		suite.SetupTest()
		suite.mockPostingService.On("Reverse", mock.Anything, testOrgID, "je-1", testActorID,
			mock.MatchedBy(func(d time.Time) bool { return !d.IsZero() })).
			Return(testEntry("je-2", domain.Posted), nil).Once()

		req, err := http.NewRequest(http.MethodPost, "/api/v1/orgs/"+testOrgID+"/entries/je-1/reverse",
			io.NopCloser(strings.NewReader("")))
		suite.Require().NoError(err)
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(testActorID))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)

		suite.Equal(http.StatusCreated, w.Code)
		suite.mockPostingService.AssertExpectations(suite.T())
	})

	suite.Run("malformed body", func() {
		suite.SetupTest()

		w := suite.doRequest(http.MethodPost, "/entries/je-1/reverse", `{"reversalDate":`)

		suite.Equal(http.StatusBadRequest, w.Code)
		suite.mockPostingService.AssertNotCalled(suite.T(), "Reverse")
	})

	suite.Run("already reversed", func() {
		suite.SetupTest()
		suite.mockPostingService.On("Reverse", mock.Anything, testOrgID, "je-1", testActorID, mock.Anything).
			Return(nil, apperrors.ErrAlreadyReversed).Once()

		w := suite.doRequest(http.MethodPost, "/entries/je-1/reverse", `{"reversalDate":"2025-04-01"}`)

		suite.Equal(http.StatusConflict, w.Code)
		suite.Equal("ALREADY_REVERSED", suite.decodeError(w)["code"])
		suite.mockPostingService.AssertExpectations(suite.T())
	})
}
