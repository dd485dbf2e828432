package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// PeriodReader defines read operations for fiscal periods.
type PeriodReader interface {
	// FindPeriodByID fails with apperrors.ErrPeriodNotFound when absent.
	FindPeriodByID(ctx context.Context, orgID, periodID string) (*domain.FiscalPeriod, error)
	// FindPeriodForDate returns the period covering date, or nil if none does.
	FindPeriodForDate(ctx context.Context, orgID string, date time.Time) (*domain.FiscalPeriod, error)
	FindOverlappingPeriods(ctx context.Context, orgID string, startsAt, endsAt time.Time) ([]domain.FiscalPeriod, error)
	// ListPeriods returns the org's periods ordered by start date.
	ListPeriods(ctx context.Context, orgID string) ([]domain.FiscalPeriod, error)
	// ListAuditRecords returns a period's audit trail, oldest first.
	ListAuditRecords(ctx context.Context, orgID, periodID string) ([]domain.PeriodAuditRecord, error)
}

// PeriodWriter defines write operations for fiscal periods.
type PeriodWriter interface {
	SavePeriod(ctx context.Context, period domain.FiscalPeriod) error
	// UpdatePeriodStatus changes the status only if it is still from, failing
	// with apperrors.ErrInvalidTransition otherwise.
	UpdatePeriodStatus(ctx context.Context, orgID, periodID string, from, to domain.PeriodStatus, updatedBy string, updatedAt time.Time) error
	SaveAuditRecord(ctx context.Context, record domain.PeriodAuditRecord) error
}

// PeriodRepositoryFacade combines all period-related repository interfaces.
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}
