package memory

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

type reportingRepository struct {
	acc access
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

func (r *reportingRepository) GetCommittedTotals(_ context.Context, orgID string, from *time.Time, to time.Time) (map[string]domain.AccountTotals, error) {
	totals := make(map[string]domain.AccountTotals)
	to = domain.DateOf(to)
	err := r.acc.read(orgID, func(d *orgData) error {
		for _, e := range d.entries {
			if !e.Status.IsCommitted() || e.EntryDate.After(to) {
				continue
			}
			if from != nil && e.EntryDate.Before(domain.DateOf(*from)) {
				continue
			}
			for _, l := range e.Lines {
				t := totals[l.AccountID]
				t.AccountID = l.AccountID
				t.Debit = t.Debit.Add(l.Debit)
				t.Credit = t.Credit.Add(l.Credit)
				totals[l.AccountID] = t
			}
		}
		return nil
	})
	return totals, err
}
