package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// PeriodReader defines read operations on fiscal periods.
type PeriodReader interface {
	GetPeriod(ctx context.Context, orgID, periodID string) (*domain.FiscalPeriod, error)
	ListPeriods(ctx context.Context, orgID string) ([]domain.FiscalPeriod, error)
	ListPeriodAudit(ctx context.Context, orgID, periodID string) ([]domain.PeriodAuditRecord, error)
	// GetPeriodForDate returns nil without error when no period covers date.
	GetPeriodForDate(ctx context.Context, orgID string, date time.Time) (*domain.FiscalPeriod, error)
	// AssertPostable fails with apperrors.ErrPeriodLocked when date falls in a
	// CLOSED or LOCKED period.
	AssertPostable(ctx context.Context, orgID string, date time.Time) error
}

// PeriodManager defines fiscal period lifecycle operations.
type PeriodManager interface {
	CreatePeriod(ctx context.Context, orgID string, req dto.CreatePeriodRequest, actorID string) (*domain.FiscalPeriod, error)
	ClosePeriod(ctx context.Context, orgID, periodID, actorID string) (*domain.FiscalPeriod, error)
	LockPeriod(ctx context.Context, orgID, periodID, actorID string) (*domain.FiscalPeriod, error)
	// ReopenPeriod is the elevated escape hatch; callers must check the actor's privilege.
	ReopenPeriod(ctx context.Context, orgID, periodID, actorID, reason string) (*domain.FiscalPeriod, error)
}

// PeriodSvcFacade combines all period-related service interfaces.
type PeriodSvcFacade interface {
	PeriodReader
	PeriodManager
}
