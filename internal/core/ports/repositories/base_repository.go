package repositories

import "context"

// Repositories is the set of repositories bound to one unit of work.
// Outside a unit of work each call is its own short read or write.
type Repositories struct {
	Accounts  AccountRepositoryFacade
	Journals  JournalRepositoryFacade
	Periods   PeriodRepositoryFacade
	Reporting ReportingRepository
	Outbox    OutboxRepository
}

// UnitOfWork runs a function against repositories that share one storage transaction.
type UnitOfWork interface {
	// WithinOrgTx runs fn atomically. Calls for the same org are serialized, so a
	// check made inside fn still holds when fn's writes commit. Any error from fn
	// rolls back every write made through repos.
	WithinOrgTx(ctx context.Context, orgID string, fn func(ctx context.Context, repos Repositories) error) error

	// WithinSnapshot runs fn against a read-only, point-in-time view of the org.
	// Writes made by concurrent transactions are either fully visible or not at all.
	WithinSnapshot(ctx context.Context, orgID string, fn func(ctx context.Context, repos Repositories) error) error
}
