package pgsql

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewStore(mock)
}

func TestStore_WithinOrgTx(t *testing.T) {
	ctx := context.Background()
	lockQuery := regexp.QuoteMeta(orgLockQuery)

	t.Run("commits after taking the org lock", func(t *testing.T) {
		mock, store := newMockStore(t)
		mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
		mock.ExpectExec(lockQuery).WithArgs("org-1").WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM accounts`)).
			WithArgs("org-1", "acc-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		err := store.WithinOrgTx(ctx, "org-1", func(ctx context.Context, repos portsrepo.Repositories) error {
			return repos.Accounts.DeleteAccount(ctx, "org-1", "acc-1")
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		mock, store := newMockStore(t)
		fnErr := errors.New("boom")
		mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
		mock.ExpectExec(lockQuery).WithArgs("org-1").WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectRollback()

		err := store.WithinOrgTx(ctx, "org-1", func(context.Context, portsrepo.Repositories) error {
			return fnErr
		})
		assert.ErrorIs(t, err, fnErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lock failure rolls back", func(t *testing.T) {
		mock, store := newMockStore(t)
		mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
		mock.ExpectExec(lockQuery).WithArgs("org-1").WillReturnError(errors.New("lock timeout"))
		mock.ExpectRollback()

		called := false
		err := store.WithinOrgTx(ctx, "org-1", func(context.Context, portsrepo.Repositories) error {
			called = true
			return nil
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to acquire org lock")
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		mock, store := newMockStore(t)
		mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted}).WillReturnError(errors.New("pool closed"))

		err := store.WithinOrgTx(ctx, "org-1", func(context.Context, portsrepo.Repositories) error { return nil })
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_WithinSnapshot(t *testing.T) {
	mock, store := newMockStore(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	mock.ExpectQuery(regexp.QuoteMeta(`FROM accounts WHERE org_id = $1 ORDER BY code`)).
		WithArgs("org-1").
		WillReturnRows(pgxmock.NewRows(accountRowColumns))
	mock.ExpectCommit()

	err := store.WithinSnapshot(context.Background(), "org-1", func(ctx context.Context, repos portsrepo.Repositories) error {
		accounts, err := repos.Accounts.ListAccounts(ctx, "org-1")
		assert.Empty(t, accounts)
		return err
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUniqueViolationOn(t *testing.T) {
	constraint, ok := uniqueViolationOn(&pgconn.PgError{Code: "23505", ConstraintName: "ux_accounts_org_code"})
	assert.True(t, ok)
	assert.Equal(t, "ux_accounts_org_code", constraint)

	_, ok = uniqueViolationOn(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)

	_, ok = uniqueViolationOn(errors.New("plain"))
	assert.False(t, ok)
}

func TestMigrations(t *testing.T) {
	fsys := Migrations()
	up, err := fsys.Open("000001_ledger_schema.up.sql")
	require.NoError(t, err)
	require.NoError(t, up.Close())
	down, err := fsys.Open("000001_ledger_schema.down.sql")
	require.NoError(t, err)
	require.NoError(t, down.Close())
}
