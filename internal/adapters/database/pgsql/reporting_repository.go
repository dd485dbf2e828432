package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	q querier
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// GetCommittedTotals sums lines of POSTED and REVERSED entries. A reversed
// original is still counted; its reversal carries the offset.
func (r *reportingRepository) GetCommittedTotals(ctx context.Context, orgID string, from *time.Time, to time.Time) (map[string]domain.AccountTotals, error) {
	query := `
		SELECT
			l.account_id,
			COALESCE(SUM(l.debit), 0) AS total_debit,
			COALESCE(SUM(l.credit), 0) AS total_credit
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.org_id = $1
			AND e.status IN ('POSTED', 'REVERSED')
			AND e.entry_date <= $2
			AND ($3::date IS NULL OR e.entry_date >= $3::date)
		GROUP BY l.account_id
	`
	var fromArg *time.Time
	if from != nil {
		d := domain.DateOf(*from)
		fromArg = &d
	}

	rows, err := r.q.Query(ctx, query, orgID, domain.DateOf(to), fromArg)
	if err != nil {
		return nil, fmt.Errorf("error querying committed totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]domain.AccountTotals)
	for rows.Next() {
		var t domain.AccountTotals
		if err := rows.Scan(&t.AccountID, &t.Debit, &t.Credit); err != nil {
			return nil, fmt.Errorf("error scanning committed totals row: %w", err)
		}
		totals[t.AccountID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating committed totals rows: %w", err)
	}
	return totals, nil
}
