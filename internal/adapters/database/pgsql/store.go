// Package pgsql implements the repository ports on PostgreSQL through pgx.
package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txStarter is a querier that can open transactions.
type txStarter interface {
	querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Store binds the ledger repositories to a connection pool.
type Store struct {
	db txStarter
}

// NewStore creates a store over db.
func NewStore(db txStarter) *Store {
	return &Store{db: db}
}

// NewRepositoryProvider wires every repository and the unit of work to the pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return NewStore(pool).Provider()
}

// Provider returns the pool-backed repositories and the unit of work.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Repositories: repositories(s.db),
		UnitOfWork:   s,
	}
}

func repositories(q querier) portsrepo.Repositories {
	return portsrepo.Repositories{
		Accounts:  &accountRepository{q: q},
		Journals:  &journalRepository{q: q},
		Periods:   &periodRepository{q: q},
		Reporting: &reportingRepository{q: q},
		Outbox:    &outboxRepository{q: q},
	}
}

var _ portsrepo.UnitOfWork = (*Store)(nil)

const orgLockQuery = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

// WithinOrgTx runs fn in a READ COMMITTED transaction holding the org's
// transaction-scoped advisory lock, so units of work for one org never interleave.
func (s *Store) WithinOrgTx(ctx context.Context, orgID string, fn func(ctx context.Context, repos portsrepo.Repositories) error) error {
	return s.inTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, orgLockQuery, orgID); err != nil {
			return fmt.Errorf("failed to acquire org lock: %w", err)
		}
		return fn(ctx, repositories(tx))
	})
}

// WithinSnapshot runs fn in a REPEATABLE READ, READ ONLY transaction: every query
// inside sees the database as of the first one.
func (s *Store) WithinSnapshot(ctx context.Context, _ string, fn func(ctx context.Context, repos portsrepo.Repositories) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	return s.inTx(ctx, opts, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, repositories(tx))
	})
}

func (s *Store) inTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx pgx.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			// Roll back even when ctx is already cancelled.
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

const uniqueViolation = "23505"

// uniqueViolationOn reports whether err is a unique violation, and on which constraint.
func uniqueViolationOn(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
