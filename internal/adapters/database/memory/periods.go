package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

type periodRepository struct {
	acc access
}

var _ portsrepo.PeriodRepositoryFacade = (*periodRepository)(nil)

func (r *periodRepository) FindPeriodByID(_ context.Context, orgID, periodID string) (*domain.FiscalPeriod, error) {
	var out *domain.FiscalPeriod
	err := r.acc.read(orgID, func(d *orgData) error {
		p, ok := d.periods[periodID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrPeriodNotFound, periodID)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *periodRepository) FindPeriodForDate(_ context.Context, orgID string, date time.Time) (*domain.FiscalPeriod, error) {
	var out *domain.FiscalPeriod
	err := r.acc.read(orgID, func(d *orgData) error {
		for _, p := range d.periods {
			if p.Contains(date) {
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *periodRepository) FindOverlappingPeriods(_ context.Context, orgID string, startsAt, endsAt time.Time) ([]domain.FiscalPeriod, error) {
	var out []domain.FiscalPeriod
	err := r.acc.read(orgID, func(d *orgData) error {
		for _, p := range d.periods {
			if p.Overlaps(startsAt, endsAt) {
				out = append(out, p)
			}
		}
		return nil
	})
	sortPeriods(out)
	return out, err
}

func (r *periodRepository) ListPeriods(_ context.Context, orgID string) ([]domain.FiscalPeriod, error) {
	var out []domain.FiscalPeriod
	err := r.acc.read(orgID, func(d *orgData) error {
		out = make([]domain.FiscalPeriod, 0, len(d.periods))
		for _, p := range d.periods {
			out = append(out, p)
		}
		return nil
	})
	sortPeriods(out)
	return out, err
}

func sortPeriods(periods []domain.FiscalPeriod) {
	sort.Slice(periods, func(i, j int) bool { return periods[i].StartsAt.Before(periods[j].StartsAt) })
}

func (r *periodRepository) ListAuditRecords(_ context.Context, orgID, periodID string) ([]domain.PeriodAuditRecord, error) {
	out := []domain.PeriodAuditRecord{}
	err := r.acc.read(orgID, func(d *orgData) error {
		for _, rec := range d.audit {
			if rec.PeriodID == periodID {
				out = append(out, rec)
			}
		}
		return nil
	})
	return out, err
}

func (r *periodRepository) SavePeriod(_ context.Context, period domain.FiscalPeriod) error {
	return r.acc.write(period.OrgID, func(d *orgData) error {
		for _, p := range d.periods {
			if p.Overlaps(period.StartsAt, period.EndsAt) {
				return fmt.Errorf("%w: %q overlaps %q", apperrors.ErrPeriodOverlap, period.Name, p.Name)
			}
		}
		d.periods[period.PeriodID] = period
		return nil
	})
}

func (r *periodRepository) UpdatePeriodStatus(_ context.Context, orgID, periodID string, from, to domain.PeriodStatus, updatedBy string, updatedAt time.Time) error {
	return r.acc.write(orgID, func(d *orgData) error {
		p, ok := d.periods[periodID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrPeriodNotFound, periodID)
		}
		if p.Status != from {
			return fmt.Errorf("%w: period %s is %s, not %s", apperrors.ErrInvalidTransition, periodID, p.Status, from)
		}
		p.Status = to
		p.Touch(updatedBy, updatedAt)
		d.periods[periodID] = p
		return nil
	})
}

func (r *periodRepository) SaveAuditRecord(_ context.Context, record domain.PeriodAuditRecord) error {
	return r.acc.write(record.OrgID, func(d *orgData) error {
		d.audit = append(d.audit, record)
		return nil
	})
}
