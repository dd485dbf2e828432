package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/metrics"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
)

const (
	reportTrialBalance = "trial_balance"
	reportProfitLoss   = "profit_and_loss"
	reportBalanceSheet = "balance_sheet"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	repos portsrepo.RepositoryProvider
}

// NewReportingService creates a new reporting service.
func NewReportingService(repos portsrepo.RepositoryProvider, opts ...ServiceOption) portssvc.ReportingService {
	return &reportingService{
		BaseService: newBaseService(opts...),
		repos:       repos,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// snapshot reads the chart of accounts and committed totals for [from, to] from
// one point-in-time view.
func (s *reportingService) snapshot(ctx context.Context, orgID string, from *time.Time, to time.Time) (*domain.LedgerSnapshot, error) {
	var snap domain.LedgerSnapshot
	err := s.repos.UnitOfWork.WithinSnapshot(ctx, orgID, func(ctx context.Context, repos portsrepo.Repositories) error {
		accounts, err := repos.Accounts.ListAccounts(ctx, orgID)
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		totals, err := repos.Reporting.GetCommittedTotals(ctx, orgID, from, to)
		if err != nil {
			return fmt.Errorf("failed to sum committed lines: %w", err)
		}
		snap = domain.LedgerSnapshot{Accounts: accounts, Totals: totals}
		return nil
	})
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(snap.Accounts))
	for _, a := range snap.Accounts {
		known[a.AccountID] = struct{}{}
	}
	for id := range snap.Totals {
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("%w: committed lines reference unknown account %s", apperrors.ErrIntegrity, id)
		}
	}
	return &snap, nil
}

// integrityFailure is the single exit for a failed consistency check.
func (s *reportingService) integrityFailure(ctx context.Context, cerr *apperrors.ConsistencyError) error {
	metrics.IntegrityErrors.WithLabelValues(cerr.Report).Inc()
	s.LogError(ctx, cerr, "LEDGER INTEGRITY CHECK FAILED",
		slog.String("org_id", cerr.OrgID),
		slog.String("report", cerr.Report),
		slog.String("check", cerr.Check),
		slog.String("left", cerr.Left.String()),
		slog.String("right", cerr.Right.String()))
	return cerr
}

func (s *reportingService) snapshotFailure(ctx context.Context, report, orgID string, err error) error {
	if errors.Is(err, apperrors.ErrIntegrity) {
		metrics.IntegrityErrors.WithLabelValues(report).Inc()
	}
	s.LogError(ctx, err, "Failed to read ledger snapshot",
		slog.String("org_id", orgID),
		slog.String("report", report))
	return err
}

// TrialBalance lists every account with its committed totals up to asOf.
func (s *reportingService) TrialBalance(ctx context.Context, orgID string, asOf time.Time) (*domain.TrialBalanceReport, error) {
	asOf = domain.DateOf(asOf)
	snap, err := s.snapshot(ctx, orgID, nil, asOf)
	if err != nil {
		return nil, s.snapshotFailure(ctx, reportTrialBalance, orgID, err)
	}

	report := &domain.TrialBalanceReport{
		AsOf:        asOf,
		Rows:        make([]domain.TrialBalanceRow, 0, len(snap.Accounts)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, a := range snap.Accounts {
		t := snap.Totals[a.AccountID]
		debit, credit := t.Debit, t.Credit
		report.Rows = append(report.Rows, domain.TrialBalanceRow{
			AccountID:   a.AccountID,
			AccountCode: a.Code,
			AccountName: a.Name,
			AccountType: a.AccountType,
			TotalDebit:  debit,
			TotalCredit: credit,
			NetBalance:  debit.Sub(credit),
			Balance:     accounting.NormalBalance(a.AccountType, debit, credit),
		})
		report.TotalDebit = report.TotalDebit.Add(debit)
		report.TotalCredit = report.TotalCredit.Add(credit)
	}

	if !report.TotalDebit.Equal(report.TotalCredit) {
		return nil, s.integrityFailure(ctx, &apperrors.ConsistencyError{
			Report: reportTrialBalance,
			OrgID:  orgID,
			Check:  "total debits equal total credits",
			Left:   report.TotalDebit,
			Right:  report.TotalCredit,
		})
	}

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("org_id", orgID),
		slog.String("asOf", asOf.Format(time.DateOnly)),
		slog.Int("row_count", len(report.Rows)))
	return report, nil
}

// ProfitAndLoss summarizes income statement accounts over [from, to].
func (s *reportingService) ProfitAndLoss(ctx context.Context, orgID string, from, to time.Time) (*domain.PAndLReport, error) {
	from, to = domain.DateOf(from), domain.DateOf(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s is after %s", apperrors.ErrInvalidDateRange,
			from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	snap, err := s.snapshot(ctx, orgID, &from, to)
	if err != nil {
		return nil, s.snapshotFailure(ctx, reportProfitLoss, orgID, err)
	}

	report := &domain.PAndLReport{
		FromDate: from,
		ToDate:   to,
		Revenue:  section(snap, domain.Revenue),
		COGS:     section(snap, domain.COGS),
		Expenses: section(snap, domain.Expense),
	}
	report.GrossProfit = report.Revenue.Total.Sub(report.COGS.Total)
	report.NetProfit = report.GrossProfit.Sub(report.Expenses.Total)

	s.LogInfo(ctx, "Profit and loss report generated successfully",
		slog.String("org_id", orgID),
		slog.String("from", from.Format(time.DateOnly)),
		slog.String("to", to.Format(time.DateOnly)),
		slog.Int("revenue_accounts", len(report.Revenue.Accounts)),
		slog.Int("cogs_accounts", len(report.COGS.Accounts)),
		slog.Int("expense_accounts", len(report.Expenses.Accounts)))
	return report, nil
}

// BalanceSheet reports the financial position at asOf. Unclosed income statement
// activity shows up as current earnings inside equity.
func (s *reportingService) BalanceSheet(ctx context.Context, orgID string, asOf time.Time) (*domain.BalanceSheetReport, error) {
	asOf = domain.DateOf(asOf)
	snap, err := s.snapshot(ctx, orgID, nil, asOf)
	if err != nil {
		return nil, s.snapshotFailure(ctx, reportBalanceSheet, orgID, err)
	}

	report := &domain.BalanceSheetReport{
		AsOf:        asOf,
		Assets:      section(snap, domain.Asset),
		Liabilities: section(snap, domain.Liability),
		Equity:      section(snap, domain.Equity),
	}
	revenue := section(snap, domain.Revenue).Total
	cogs := section(snap, domain.COGS).Total
	expenses := section(snap, domain.Expense).Total
	report.CurrentEarnings = revenue.Sub(cogs).Sub(expenses)
	report.TotalEquity = report.Equity.Total.Add(report.CurrentEarnings)
	report.TotalLiabilitiesAndEquity = report.Liabilities.Total.Add(report.TotalEquity)

	if !report.Assets.Total.Equal(report.TotalLiabilitiesAndEquity) {
		return nil, s.integrityFailure(ctx, &apperrors.ConsistencyError{
			Report: reportBalanceSheet,
			OrgID:  orgID,
			Check:  "assets equal liabilities plus equity",
			Left:   report.Assets.Total,
			Right:  report.TotalLiabilitiesAndEquity,
		})
	}

	s.LogInfo(ctx, "Balance sheet report generated successfully",
		slog.String("org_id", orgID),
		slog.String("asOf", asOf.Format(time.DateOnly)),
		slog.Int("asset_accounts", len(report.Assets.Accounts)),
		slog.Int("liability_accounts", len(report.Liabilities.Accounts)),
		slog.Int("equity_accounts", len(report.Equity.Accounts)))
	return report, nil
}

// section collects accounts of one type that had committed activity, in code order.
func section(snap *domain.LedgerSnapshot, accountType domain.AccountType) domain.ReportSection {
	sec := domain.ReportSection{Accounts: []domain.AccountAmount{}, Total: decimal.Zero}
	for _, a := range snap.Accounts {
		if a.AccountType != accountType {
			continue
		}
		t, ok := snap.Totals[a.AccountID]
		if !ok {
			continue
		}
		amount := accounting.NormalBalance(a.AccountType, t.Debit, t.Credit)
		sec.Accounts = append(sec.Accounts, domain.AccountAmount{
			AccountID: a.AccountID,
			Code:      a.Code,
			Name:      a.Name,
			Amount:    amount,
		})
		sec.Total = sec.Total.Add(amount)
	}
	return sec
}
