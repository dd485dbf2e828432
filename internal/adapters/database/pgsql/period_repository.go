package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
)

const (
	periodColumns = `period_id, org_id, name, starts_at, ends_at, status, created_at, created_by, last_updated_at, last_updated_by`
	auditColumns  = `audit_id, org_id, period_id, action, before_status, after_status, actor_id, reason, created_at`
)

type periodRepository struct {
	q querier
}

var _ portsrepo.PeriodRepositoryFacade = (*periodRepository)(nil)

func toDomainPeriod(m models.FiscalPeriod) domain.FiscalPeriod {
	return domain.FiscalPeriod{
		PeriodID: m.PeriodID,
		OrgID:    m.OrgID,
		Name:     m.Name,
		StartsAt: domain.DateOf(m.StartsAt),
		EndsAt:   domain.DateOf(m.EndsAt),
		Status:   domain.PeriodStatus(m.Status),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanPeriod(row pgx.Row) (models.FiscalPeriod, error) {
	var m models.FiscalPeriod
	err := row.Scan(&m.PeriodID, &m.OrgID, &m.Name, &m.StartsAt, &m.EndsAt, &m.Status,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return m, err
}

func (r *periodRepository) queryPeriods(ctx context.Context, query string, args ...any) ([]domain.FiscalPeriod, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fiscal periods: %w", err)
	}
	defer rows.Close()

	periods := []domain.FiscalPeriod{}
	for rows.Next() {
		m, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fiscal period: %w", err)
		}
		periods = append(periods, toDomainPeriod(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fiscal periods: %w", err)
	}
	return periods, nil
}

func (r *periodRepository) FindPeriodByID(ctx context.Context, orgID, periodID string) (*domain.FiscalPeriod, error) {
	m, err := scanPeriod(r.q.QueryRow(ctx,
		`SELECT `+periodColumns+` FROM fiscal_periods WHERE org_id = $1 AND period_id = $2`,
		orgID, periodID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrPeriodNotFound, periodID)
		}
		return nil, fmt.Errorf("failed to find fiscal period %s: %w", periodID, err)
	}
	p := toDomainPeriod(m)
	return &p, nil
}

func (r *periodRepository) FindPeriodForDate(ctx context.Context, orgID string, date time.Time) (*domain.FiscalPeriod, error) {
	m, err := scanPeriod(r.q.QueryRow(ctx,
		`SELECT `+periodColumns+` FROM fiscal_periods WHERE org_id = $1 AND starts_at <= $2 AND ends_at >= $2 LIMIT 1`,
		orgID, domain.DateOf(date),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find fiscal period for %s: %w", date.Format(time.DateOnly), err)
	}
	p := toDomainPeriod(m)
	return &p, nil
}

func (r *periodRepository) FindOverlappingPeriods(ctx context.Context, orgID string, startsAt, endsAt time.Time) ([]domain.FiscalPeriod, error) {
	return r.queryPeriods(ctx,
		`SELECT `+periodColumns+` FROM fiscal_periods WHERE org_id = $1 AND starts_at <= $3 AND ends_at >= $2 ORDER BY starts_at`,
		orgID, domain.DateOf(startsAt), domain.DateOf(endsAt),
	)
}

func (r *periodRepository) ListPeriods(ctx context.Context, orgID string) ([]domain.FiscalPeriod, error) {
	return r.queryPeriods(ctx,
		`SELECT `+periodColumns+` FROM fiscal_periods WHERE org_id = $1 ORDER BY starts_at`,
		orgID,
	)
}

func (r *periodRepository) ListAuditRecords(ctx context.Context, orgID, periodID string) ([]domain.PeriodAuditRecord, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+auditColumns+` FROM period_audit_log WHERE org_id = $1 AND period_id = $2 ORDER BY created_at, audit_seq`,
		orgID, periodID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query period audit log: %w", err)
	}
	defer rows.Close()

	records := []domain.PeriodAuditRecord{}
	for rows.Next() {
		var m models.PeriodAuditRecord
		if err := rows.Scan(&m.AuditID, &m.OrgID, &m.PeriodID, &m.Action, &m.BeforeStatus, &m.AfterStatus,
			&m.ActorID, &m.Reason, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan period audit record: %w", err)
		}
		records = append(records, domain.PeriodAuditRecord{
			AuditID:   m.AuditID,
			OrgID:     m.OrgID,
			PeriodID:  m.PeriodID,
			Action:    domain.PeriodAction(m.Action),
			Before:    domain.PeriodStatus(m.BeforeStatus),
			After:     domain.PeriodStatus(m.AfterStatus),
			ActorID:   m.ActorID,
			Reason:    m.Reason,
			Timestamp: m.CreatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period audit log: %w", err)
	}
	return records, nil
}

func (r *periodRepository) SavePeriod(ctx context.Context, period domain.FiscalPeriod) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO fiscal_periods (`+periodColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		period.PeriodID, period.OrgID, period.Name, domain.DateOf(period.StartsAt), domain.DateOf(period.EndsAt),
		string(period.Status), period.CreatedAt, period.CreatedBy, period.LastUpdatedAt, period.LastUpdatedBy,
	)
	if err != nil {
		if _, dup := uniqueViolationOn(err); dup {
			return fmt.Errorf("%w: %s", apperrors.ErrPeriodOverlap, period.Name)
		}
		return fmt.Errorf("failed to save fiscal period %s: %w", period.PeriodID, err)
	}
	return nil
}

// UpdatePeriodStatus is a compare-and-set on the current status.
func (r *periodRepository) UpdatePeriodStatus(ctx context.Context, orgID, periodID string, from, to domain.PeriodStatus, updatedBy string, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE fiscal_periods SET status = $4, last_updated_at = $5, last_updated_by = $6
		WHERE org_id = $1 AND period_id = $2 AND status = $3`,
		orgID, periodID, string(from), string(to), updatedAt, updatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update fiscal period %s: %w", periodID, err)
	}
	if tag.RowsAffected() == 0 {
		current, err := r.FindPeriodByID(ctx, orgID, periodID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: period %s is %s, not %s", apperrors.ErrInvalidTransition, periodID, current.Status, from)
	}
	return nil
}

func (r *periodRepository) SaveAuditRecord(ctx context.Context, record domain.PeriodAuditRecord) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO period_audit_log (`+auditColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		record.AuditID, record.OrgID, record.PeriodID, string(record.Action), string(record.Before),
		string(record.After), record.ActorID, record.Reason, record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save period audit record: %w", err)
	}
	return nil
}
