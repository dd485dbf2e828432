package handlers_test

import (
	"context"
	"iter"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, orgID string, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	args := m.Called(ctx, orgID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, orgID, idOrCode string) (*domain.Account, error) {
	args := m.Called(ctx, orgID, idOrCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, orgID string) ([]domain.Account, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, orgID, accountID, actorID string) (*domain.Account, error) {
	args := m.Called(ctx, orgID, accountID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, orgID, accountID, actorID string) error {
	args := m.Called(ctx, orgID, accountID, actorID)
	return args.Error(0)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) CreateDraftEntry(ctx context.Context, orgID string, req dto.CreateEntryRequest, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, orgID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) UpdateDraftEntry(ctx context.Context, orgID, entryID string, req dto.UpdateEntryRequest, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, orgID, entryID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) DeleteDraftEntry(ctx context.Context, orgID, entryID, actorID string) error {
	args := m.Called(ctx, orgID, entryID, actorID)
	return args.Error(0)
}

func (m *MockJournalService) GetEntry(ctx context.Context, orgID, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, orgID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) ListEntries(ctx context.Context, orgID string, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, orgID, filter, limit, nextToken)
	var entries []domain.JournalEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.JournalEntry)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return entries, next, args.Error(2)
}

func (m *MockJournalService) IterateEntries(ctx context.Context, orgID string, filter domain.EntryFilter) iter.Seq2[domain.JournalEntry, error] {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(iter.Seq2[domain.JournalEntry, error])
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

// --- Mock PostingService ---
type MockPostingService struct {
	mock.Mock
}

func (m *MockPostingService) Post(ctx context.Context, orgID, entryID, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, orgID, entryID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockPostingService) Reverse(ctx context.Context, orgID, entryID, actorID string, reversalDate time.Time) (*domain.JournalEntry, error) {
	args := m.Called(ctx, orgID, entryID, actorID, reversalDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

var _ portssvc.PostingSvc = (*MockPostingService)(nil)

// --- Mock PeriodService ---
type MockPeriodService struct {
	mock.Mock
}

func (m *MockPeriodService) periodResult(args mock.Arguments) (*domain.FiscalPeriod, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}

func (m *MockPeriodService) GetPeriod(ctx context.Context, orgID, periodID string) (*domain.FiscalPeriod, error) {
	return m.periodResult(m.Called(ctx, orgID, periodID))
}

func (m *MockPeriodService) ListPeriods(ctx context.Context, orgID string) ([]domain.FiscalPeriod, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalPeriod), args.Error(1)
}

func (m *MockPeriodService) ListPeriodAudit(ctx context.Context, orgID, periodID string) ([]domain.PeriodAuditRecord, error) {
	args := m.Called(ctx, orgID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeriodAuditRecord), args.Error(1)
}

func (m *MockPeriodService) GetPeriodForDate(ctx context.Context, orgID string, date time.Time) (*domain.FiscalPeriod, error) {
	return m.periodResult(m.Called(ctx, orgID, date))
}

func (m *MockPeriodService) AssertPostable(ctx context.Context, orgID string, date time.Time) error {
	args := m.Called(ctx, orgID, date)
	return args.Error(0)
}

func (m *MockPeriodService) CreatePeriod(ctx context.Context, orgID string, req dto.CreatePeriodRequest, actorID string) (*domain.FiscalPeriod, error) {
	return m.periodResult(m.Called(ctx, orgID, req, actorID))
}

func (m *MockPeriodService) ClosePeriod(ctx context.Context, orgID, periodID, actorID string) (*domain.FiscalPeriod, error) {
	return m.periodResult(m.Called(ctx, orgID, periodID, actorID))
}

func (m *MockPeriodService) LockPeriod(ctx context.Context, orgID, periodID, actorID string) (*domain.FiscalPeriod, error) {
	return m.periodResult(m.Called(ctx, orgID, periodID, actorID))
}

func (m *MockPeriodService) ReopenPeriod(ctx context.Context, orgID, periodID, actorID, reason string) (*domain.FiscalPeriod, error) {
	return m.periodResult(m.Called(ctx, orgID, periodID, actorID, reason))
}

var _ portssvc.PeriodSvcFacade = (*MockPeriodService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) TrialBalance(ctx context.Context, orgID string, asOf time.Time) (*domain.TrialBalanceReport, error) {
	args := m.Called(ctx, orgID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalanceReport), args.Error(1)
}

func (m *MockReportingService) ProfitAndLoss(ctx context.Context, orgID string, from, to time.Time) (*domain.PAndLReport, error) {
	args := m.Called(ctx, orgID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PAndLReport), args.Error(1)
}

func (m *MockReportingService) BalanceSheet(ctx context.Context, orgID string, asOf time.Time) (*domain.BalanceSheetReport, error) {
	args := m.Called(ctx, orgID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheetReport), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)
