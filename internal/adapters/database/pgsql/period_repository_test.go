package pgsql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

var periodRowColumns = []string{"period_id", "org_id", "name", "starts_at", "ends_at", "status", "created_at", "created_by", "last_updated_at", "last_updated_by"}

func newPeriodRepo(t *testing.T) (pgxmock.PgxPoolIface, *periodRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, &periodRepository{q: mock}
}

func januaryRow(status string, now time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(periodRowColumns).AddRow("p-1", "org-1", "2026-01",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		status, now, "user-1", now, "user-1")
}

func TestPeriodRepository_FindPeriodForDate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta(`starts_at <= $2 AND ends_at >= $2 LIMIT 1`)
	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("covered date", func(t *testing.T) {
		mock, repo := newPeriodRepo(t)
		mock.ExpectQuery(query).WithArgs("org-1", day).WillReturnRows(januaryRow("CLOSED", now))

		period, err := repo.FindPeriodForDate(ctx, "org-1", day.Add(17*time.Hour))
		require.NoError(t, err)
		require.NotNil(t, period)
		assert.Equal(t, domain.PeriodClosed, period.Status)
		assert.True(t, period.Contains(day))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no period", func(t *testing.T) {
		mock, repo := newPeriodRepo(t)
		mock.ExpectQuery(query).WithArgs("org-1", day).WillReturnError(pgx.ErrNoRows)

		period, err := repo.FindPeriodForDate(ctx, "org-1", day)
		assert.NoError(t, err)
		assert.Nil(t, period)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPeriodRepository_FindPeriodByID_NotFound(t *testing.T) {
	mock, repo := newPeriodRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM fiscal_periods WHERE org_id = $1 AND period_id = $2`)).
		WithArgs("org-1", "p-9").
		WillReturnError(pgx.ErrNoRows)

	period, err := repo.FindPeriodByID(context.Background(), "org-1", "p-9")
	assert.Nil(t, period)
	assert.ErrorIs(t, err, apperrors.ErrPeriodNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodRepository_SavePeriod(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	period := domain.FiscalPeriod{
		PeriodID:    "p-2",
		OrgID:       "org-1",
		Name:        "2026-01 dup",
		StartsAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:      time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Status:      domain.PeriodOpen,
		AuditFields: domain.NewAuditFields("user-1", now),
	}
	mock, repo := newPeriodRepo(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO fiscal_periods`)).
		WithArgs("p-2", "org-1", "2026-01 dup", period.StartsAt, period.EndsAt, "OPEN", now, "user-1", now, "user-1").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "ux_fiscal_periods_org_start"})

	err := repo.SavePeriod(context.Background(), period)
	assert.ErrorIs(t, err, apperrors.ErrPeriodOverlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodRepository_UpdatePeriodStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	update := regexp.QuoteMeta(`UPDATE fiscal_periods SET status = $4`)

	t.Run("compare and set succeeds", func(t *testing.T) {
		mock, repo := newPeriodRepo(t)
		mock.ExpectExec(update).WithArgs("org-1", "p-1", "OPEN", "CLOSED", now, "user-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdatePeriodStatus(ctx, "org-1", "p-1", domain.PeriodOpen, domain.PeriodClosed, "user-1", now)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status moved underneath", func(t *testing.T) {
		mock, repo := newPeriodRepo(t)
		mock.ExpectExec(update).WithArgs("org-1", "p-1", "OPEN", "CLOSED", now, "user-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(regexp.QuoteMeta(`AND period_id = $2`)).WithArgs("org-1", "p-1").
			WillReturnRows(januaryRow("LOCKED", now))

		err := repo.UpdatePeriodStatus(ctx, "org-1", "p-1", domain.PeriodOpen, domain.PeriodClosed, "user-1", now)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPeriodRepository_AuditLog(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	record := domain.PeriodAuditRecord{
		AuditID:   "a-1",
		OrgID:     "org-1",
		PeriodID:  "p-1",
		Action:    domain.PeriodActionReopen,
		Before:    domain.PeriodLocked,
		After:     domain.PeriodOpen,
		ActorID:   "admin-1",
		Reason:    "late invoice",
		Timestamp: now,
	}
	mock, repo := newPeriodRepo(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO period_audit_log`)).
		WithArgs("a-1", "org-1", "p-1", "REOPEN", "LOCKED", "OPEN", "admin-1", "late invoice", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM period_audit_log WHERE org_id = $1 AND period_id = $2 ORDER BY created_at`)).
		WithArgs("org-1", "p-1").
		WillReturnRows(pgxmock.NewRows([]string{"audit_id", "org_id", "period_id", "action", "before_status", "after_status", "actor_id", "reason", "created_at"}).
			AddRow("a-1", "org-1", "p-1", "REOPEN", "LOCKED", "OPEN", "admin-1", "late invoice", now))

	require.NoError(t, repo.SaveAuditRecord(ctx, record))
	records, err := repo.ListAuditRecords(ctx, "org-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.PeriodAuditRecord{record}, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}
