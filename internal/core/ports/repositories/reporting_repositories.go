package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ReportingRepository aggregates committed (POSTED or REVERSED) journal lines.
type ReportingRepository interface {
	// GetCommittedTotals sums debits and credits per account over committed
	// entries dated in [from, to]. A nil from means "since the beginning".
	GetCommittedTotals(ctx context.Context, orgID string, from *time.Time, to time.Time) (map[string]domain.AccountTotals, error)
}
