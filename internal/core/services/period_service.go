package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/metrics"
)

type periodService struct {
	BaseService
	repos portsrepo.RepositoryProvider
	rules PostingRules
}

// NewPeriodService creates a new fiscal period lock manager.
func NewPeriodService(repos portsrepo.RepositoryProvider, rules PostingRules, opts ...ServiceOption) portssvc.PeriodSvcFacade {
	return &periodService{
		BaseService: newBaseService(opts...),
		repos:       repos,
		rules:       rules,
	}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// CreatePeriod adds an OPEN period that must not overlap any existing one.
func (s *periodService) CreatePeriod(ctx context.Context, orgID string, req dto.CreatePeriodRequest, actorID string) (*domain.FiscalPeriod, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: period name is required", apperrors.ErrValidation)
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return nil, fmt.Errorf("%w: startsAt and endsAt are required", apperrors.ErrInvalidPeriodRange)
	}
	start, end := domain.DateOf(req.StartsAt.Time), domain.DateOf(req.EndsAt.Time)
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s is after %s", apperrors.ErrInvalidPeriodRange,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	period := domain.FiscalPeriod{
		PeriodID:    uuid.NewString(),
		OrgID:       orgID,
		Name:        name,
		StartsAt:    start,
		EndsAt:      end,
		Status:      domain.PeriodOpen,
		AuditFields: domain.NewAuditFields(actorID, s.now()),
	}

	err := s.repos.UnitOfWork.WithinOrgTx(ctx, orgID, func(ctx context.Context, repos portsrepo.Repositories) error {
		overlapping, err := repos.Periods.FindOverlappingPeriods(ctx, orgID, start, end)
		if err != nil {
			return fmt.Errorf("failed to check overlapping periods: %w", err)
		}
		if len(overlapping) > 0 {
			return fmt.Errorf("%w: %q overlaps %q", apperrors.ErrPeriodOverlap, name, overlapping[0].Name)
		}
		return repos.Periods.SavePeriod(ctx, period)
	})
	if err != nil {
		s.LogWarn(ctx, "Failed to create fiscal period",
			slog.String("org_id", orgID),
			slog.String("name", name),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.LogInfo(ctx, "Fiscal period created",
		slog.String("org_id", orgID),
		slog.String("period_id", period.PeriodID),
		slog.String("starts_at", start.Format(time.DateOnly)),
		slog.String("ends_at", end.Format(time.DateOnly)))
	return &period, nil
}

func (s *periodService) GetPeriod(ctx context.Context, orgID, periodID string) (*domain.FiscalPeriod, error) {
	return s.repos.Periods.FindPeriodByID(ctx, orgID, periodID)
}

func (s *periodService) ListPeriods(ctx context.Context, orgID string) ([]domain.FiscalPeriod, error) {
	return s.repos.Periods.ListPeriods(ctx, orgID)
}

// ListPeriodAudit returns the status history of a period, oldest first.
func (s *periodService) ListPeriodAudit(ctx context.Context, orgID, periodID string) ([]domain.PeriodAuditRecord, error) {
	if _, err := s.repos.Periods.FindPeriodByID(ctx, orgID, periodID); err != nil {
		return nil, err
	}
	return s.repos.Periods.ListAuditRecords(ctx, orgID, periodID)
}

func (s *periodService) GetPeriodForDate(ctx context.Context, orgID string, date time.Time) (*domain.FiscalPeriod, error) {
	return s.repos.Periods.FindPeriodForDate(ctx, orgID, domain.DateOf(date))
}

// AssertPostable is a point-in-time check. The posting service repeats it inside
// its own transaction.
func (s *periodService) AssertPostable(ctx context.Context, orgID string, date time.Time) error {
	return assertPostable(ctx, s.repos.Periods, orgID, date, s.rules)
}

func (s *periodService) ClosePeriod(ctx context.Context, orgID, periodID, actorID string) (*domain.FiscalPeriod, error) {
	return s.transition(ctx, orgID, periodID, actorID, domain.PeriodActionClose, "")
}

func (s *periodService) LockPeriod(ctx context.Context, orgID, periodID, actorID string) (*domain.FiscalPeriod, error) {
	return s.transition(ctx, orgID, periodID, actorID, domain.PeriodActionLock, "")
}

// ReopenPeriod moves a CLOSED or LOCKED period back to OPEN. A reason is mandatory
// and lands in the audit trail.
func (s *periodService) ReopenPeriod(ctx context.Context, orgID, periodID, actorID, reason string) (*domain.FiscalPeriod, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.ErrReasonRequired
	}
	return s.transition(ctx, orgID, periodID, actorID, domain.PeriodActionReopen, reason)
}

// transition applies action under the org lock and records the audit row and
// the status event in the same transaction.
func (s *periodService) transition(ctx context.Context, orgID, periodID, actorID string, action domain.PeriodAction, reason string) (*domain.FiscalPeriod, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	logger := s.GetLogger(ctx).With(
		slog.String("org_id", orgID),
		slog.String("period_id", periodID),
		slog.String("action", string(action)),
		slog.String("actor_id", actorID))

	var (
		updated *domain.FiscalPeriod
		record  domain.PeriodAuditRecord
	)
	err := s.repos.UnitOfWork.WithinOrgTx(ctx, orgID, func(ctx context.Context, repos portsrepo.Repositories) error {
		period, err := repos.Periods.FindPeriodByID(ctx, orgID, periodID)
		if err != nil {
			return err
		}
		to, ok := action.Transition(period.Status)
		if !ok {
			return fmt.Errorf("%w: cannot %s a %s period", apperrors.ErrInvalidTransition,
				strings.ToLower(string(action)), period.Status)
		}

		now := s.now()
		if err := repos.Periods.UpdatePeriodStatus(ctx, orgID, periodID, period.Status, to, actorID, now); err != nil {
			return err
		}
		record = domain.PeriodAuditRecord{
			AuditID:   uuid.NewString(),
			OrgID:     orgID,
			PeriodID:  periodID,
			Action:    action,
			Before:    period.Status,
			After:     to,
			ActorID:   actorID,
			Reason:    reason,
			Timestamp: now,
		}
		if err := repos.Periods.SaveAuditRecord(ctx, record); err != nil {
			return fmt.Errorf("failed to write period audit record: %w", err)
		}
		if err := enqueueEvent(ctx, repos.Outbox, orgID, domain.EventPeriodStatusChanged, periodID,
			domain.PeriodEvent{Period: record}, now); err != nil {
			return err
		}

		period.Status = to
		period.Touch(actorID, now)
		updated = period
		return nil
	})
	if err != nil {
		logger.Warn("Fiscal period transition rejected", slog.String("error", err.Error()))
		return nil, err
	}

	metrics.PeriodTransitions.WithLabelValues(string(action)).Inc()
	if action == domain.PeriodActionReopen {
		logger.Warn("Fiscal period reopened",
			slog.String("before", string(record.Before)),
			slog.String("reason", reason))
	} else {
		logger.Info("Fiscal period status changed",
			slog.String("before", string(record.Before)),
			slog.String("after", string(record.After)))
	}
	return updated, nil
}
