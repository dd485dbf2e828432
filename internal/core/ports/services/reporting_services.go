package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ReportingService defines operations for generating financial reports.
// Every report is computed from committed entries only.
type ReportingService interface {
	// TrialBalance generates a trial balance report as of a specific date
	TrialBalance(ctx context.Context, orgID string, asOf time.Time) (*domain.TrialBalanceReport, error)

	// ProfitAndLoss generates a profit and loss report for an inclusive date range
	ProfitAndLoss(ctx context.Context, orgID string, from, to time.Time) (*domain.PAndLReport, error)

	// BalanceSheet generates a balance sheet report as of a specific date
	BalanceSheet(ctx context.Context, orgID string, asOf time.Time) (*domain.BalanceSheetReport, error)
}
