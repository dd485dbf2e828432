package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/core/services"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, orgID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, orgID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, orgID, code string) (*domain.Account, error) {
	args := m.Called(ctx, orgID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, orgID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, orgID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, orgID string) ([]domain.Account, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) CountLineReferences(ctx context.Context, orgID, accountID string) (int, error) {
	args := m.Called(ctx, orgID, accountID)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) UpdateAccountStatus(ctx context.Context, orgID, accountID string, isActive bool, updatedBy string, updatedAt time.Time) error {
	return m.Called(ctx, orgID, accountID, isActive, updatedBy, updatedAt).Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, orgID, accountID string) error {
	return m.Called(ctx, orgID, accountID).Error(0)
}

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetCommittedTotals(ctx context.Context, orgID string, from *time.Time, to time.Time) (map[string]domain.AccountTotals, error) {
	args := m.Called(ctx, orgID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.AccountTotals), args.Error(1)
}

// passthroughUnitOfWork hands the same repositories to every unit of work.
type passthroughUnitOfWork struct {
	repos portsrepo.Repositories
}

func (u passthroughUnitOfWork) WithinOrgTx(ctx context.Context, _ string, fn func(context.Context, portsrepo.Repositories) error) error {
	return fn(ctx, u.repos)
}

func (u passthroughUnitOfWork) WithinSnapshot(ctx context.Context, _ string, fn func(context.Context, portsrepo.Repositories) error) error {
	return fn(ctx, u.repos)
}

func mockedProvider(accounts *MockAccountRepository, reporting *MockReportingRepository) portsrepo.RepositoryProvider {
	repos := portsrepo.Repositories{Accounts: accounts, Reporting: reporting}
	return portsrepo.RepositoryProvider{Repositories: repos, UnitOfWork: passthroughUnitOfWork{repos: repos}}
}

func TestTrialBalance_UnbalancedTotalsFailIntegrity(t *testing.T) {
	ctx := context.Background()
	asOf := date(2026, 1, 31)
	accounts := new(MockAccountRepository)
	reporting := new(MockReportingRepository)

	accounts.On("ListAccounts", mock.Anything, testOrgID).Return([]domain.Account{
		{AccountID: "a1", Code: "1000", Name: "Cash", AccountType: domain.Asset},
		{AccountID: "a2", Code: "4000", Name: "Sales", AccountType: domain.Revenue},
	}, nil)
	reporting.On("GetCommittedTotals", mock.Anything, testOrgID, (*time.Time)(nil), asOf).Return(map[string]domain.AccountTotals{
		"a1": {AccountID: "a1", Debit: dec("100")},
		"a2": {AccountID: "a2", Credit: dec("90")},
	}, nil)

	svc := services.NewReportingService(mockedProvider(accounts, reporting))
	report, err := svc.TrialBalance(ctx, testOrgID, asOf)

	assert.Nil(t, report)
	require.ErrorIs(t, err, apperrors.ErrInternalConsistency)
	assert.ErrorIs(t, err, apperrors.ErrIntegrity)
	assert.Equal(t, "INTERNAL_CONSISTENCY", apperrors.Code(err))

	var cerr *apperrors.ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.Left.Equal(dec("100")))
	assert.True(t, cerr.Right.Equal(dec("90")))
	accounts.AssertExpectations(t)
	reporting.AssertExpectations(t)
}

func TestBalanceSheet_EquationMismatchFailsIntegrity(t *testing.T) {
	ctx := context.Background()
	asOf := date(2026, 1, 31)
	accounts := new(MockAccountRepository)
	reporting := new(MockReportingRepository)

	accounts.On("ListAccounts", mock.Anything, testOrgID).Return([]domain.Account{
		{AccountID: "a1", Code: "1000", Name: "Cash", AccountType: domain.Asset},
		{AccountID: "l1", Code: "2000", Name: "Loan", AccountType: domain.Liability},
	}, nil)
	reporting.On("GetCommittedTotals", mock.Anything, testOrgID, (*time.Time)(nil), asOf).Return(map[string]domain.AccountTotals{
		"a1": {AccountID: "a1", Debit: dec("500")},
		"l1": {AccountID: "l1", Credit: dec("450")},
	}, nil)

	svc := services.NewReportingService(mockedProvider(accounts, reporting))
	_, err := svc.BalanceSheet(ctx, testOrgID, asOf)

	var cerr *apperrors.ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "balance_sheet", cerr.Report)
	assert.True(t, cerr.Left.Equal(dec("500")))
	assert.True(t, cerr.Right.Equal(dec("450")))
}

func TestReports_TotalsOnUnknownAccountFailIntegrity(t *testing.T) {
	ctx := context.Background()
	asOf := date(2026, 1, 31)
	accounts := new(MockAccountRepository)
	reporting := new(MockReportingRepository)

	accounts.On("ListAccounts", mock.Anything, testOrgID).Return([]domain.Account{}, nil)
	reporting.On("GetCommittedTotals", mock.Anything, testOrgID, (*time.Time)(nil), asOf).Return(map[string]domain.AccountTotals{
		"ghost": {AccountID: "ghost", Debit: dec("1"), Credit: dec("1")},
	}, nil)

	svc := services.NewReportingService(mockedProvider(accounts, reporting))
	_, err := svc.TrialBalance(ctx, testOrgID, asOf)
	assert.ErrorIs(t, err, apperrors.ErrIntegrity)
}
