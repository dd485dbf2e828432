package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
)

const (
	entryColumns = `entry_id, org_id, entry_date, memo, source, source_id, status, sequence, posted_at, posted_by, reversed_at, reversed_by, reverses_entry_id, created_at, created_by, last_updated_at, last_updated_by`
	lineColumns  = `line_id, entry_id, org_id, line_no, account_id, debit, credit, memo`

	// reversalUniqueIndex allows at most one entry to reverse any given entry.
	reversalUniqueIndex = "ux_journal_entries_reverses_entry_id"
)

type journalRepository struct {
	q querier
}

var _ portsrepo.JournalRepositoryFacade = (*journalRepository)(nil)

func toModelEntry(e domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:         e.EntryID,
		OrgID:           e.OrgID,
		EntryDate:       domain.DateOf(e.EntryDate),
		Memo:            e.Memo,
		Source:          string(e.Source),
		SourceID:        e.SourceID,
		Status:          string(e.Status),
		Sequence:        e.Sequence,
		PostedAt:        e.PostedAt,
		PostedBy:        e.PostedBy,
		ReversedAt:      e.ReversedAt,
		ReversedBy:      e.ReversedBy,
		ReversesEntryID: e.ReversesEntryID,
		AuditFields: models.AuditFields{
			CreatedAt:     e.CreatedAt,
			CreatedBy:     e.CreatedBy,
			LastUpdatedAt: e.LastUpdatedAt,
			LastUpdatedBy: e.LastUpdatedBy,
		},
	}
}

func toDomainEntry(m models.JournalEntry, lines []domain.JournalLine) domain.JournalEntry {
	if lines == nil {
		lines = []domain.JournalLine{}
	}
	return domain.JournalEntry{
		EntryID:         m.EntryID,
		OrgID:           m.OrgID,
		EntryDate:       domain.DateOf(m.EntryDate),
		Memo:            m.Memo,
		Source:          domain.EntrySource(m.Source),
		SourceID:        m.SourceID,
		Status:          domain.EntryStatus(m.Status),
		Sequence:        m.Sequence,
		PostedAt:        m.PostedAt,
		PostedBy:        m.PostedBy,
		ReversedAt:      m.ReversedAt,
		ReversedBy:      m.ReversedBy,
		ReversesEntryID: m.ReversesEntryID,
		Lines:           lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func toDomainLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:    m.LineID,
		EntryID:   m.EntryID,
		AccountID: m.AccountID,
		Debit:     m.Debit,
		Credit:    m.Credit,
		Memo:      m.Memo,
	}
}

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.OrgID,
		&m.EntryDate,
		&m.Memo,
		&m.Source,
		&m.SourceID,
		&m.Status,
		&m.Sequence,
		&m.PostedAt,
		&m.PostedBy,
		&m.ReversedAt,
		&m.ReversedBy,
		&m.ReversesEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// loadLines returns the lines of the given entries keyed by entry id, in line order.
func (r *journalRepository) loadLines(ctx context.Context, orgID string, entryIDs []string) (map[string][]domain.JournalLine, error) {
	out := make(map[string][]domain.JournalLine, len(entryIDs))
	if len(entryIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+lineColumns+` FROM journal_lines WHERE org_id = $1 AND entry_id = ANY($2) ORDER BY entry_id, line_no`,
		orgID, entryIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.JournalLine
		if err := rows.Scan(&m.LineID, &m.EntryID, &m.OrgID, &m.LineNo, &m.AccountID, &m.Debit, &m.Credit, &m.Memo); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		out[m.EntryID] = append(out[m.EntryID], toDomainLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal lines: %w", err)
	}
	return out, nil
}

func (r *journalRepository) withLines(ctx context.Context, m models.JournalEntry) (*domain.JournalEntry, error) {
	lines, err := r.loadLines(ctx, m.OrgID, []string{m.EntryID})
	if err != nil {
		return nil, err
	}
	e := toDomainEntry(m, lines[m.EntryID])
	return &e, nil
}

// FindEntryByID retrieves an entry and its lines.
func (r *journalRepository) FindEntryByID(ctx context.Context, orgID, entryID string) (*domain.JournalEntry, error) {
	m, err := scanEntry(r.q.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE org_id = $1 AND entry_id = $2`,
		orgID, entryID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	return r.withLines(ctx, m)
}

func (r *journalRepository) FindReversalOf(ctx context.Context, orgID, entryID string) (*domain.JournalEntry, error) {
	m, err := scanEntry(r.q.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE org_id = $1 AND reverses_entry_id = $2`,
		orgID, entryID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find reversal of %s: %w", entryID, err)
	}
	return r.withLines(ctx, m)
}

// buildListQuery renders the filtered, keyset-paginated entry query.
func buildListQuery(orgID string, filter domain.EntryFilter, after *domain.EntryCursor, limit int) (string, []any) {
	var sb strings.Builder
	args := []any{orgID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	sb.WriteString(`SELECT ` + entryColumns + ` FROM journal_entries e WHERE e.org_id = $1`)
	if filter.Status != "" {
		sb.WriteString(` AND e.status = ` + arg(string(filter.Status)))
	}
	if filter.Source != "" {
		sb.WriteString(` AND e.source = ` + arg(string(filter.Source)))
	}
	if filter.SourceID != "" {
		sb.WriteString(` AND e.source_id = ` + arg(filter.SourceID))
	}
	if filter.FromDate != nil {
		sb.WriteString(` AND e.entry_date >= ` + arg(domain.DateOf(*filter.FromDate)))
	}
	if filter.ToDate != nil {
		sb.WriteString(` AND e.entry_date <= ` + arg(domain.DateOf(*filter.ToDate)))
	}
	if filter.AccountID != "" {
		sb.WriteString(` AND EXISTS (SELECT 1 FROM journal_lines l WHERE l.entry_id = e.entry_id AND l.account_id = ` + arg(filter.AccountID) + `)`)
	}
	if after != nil {
		date := arg(domain.DateOf(after.EntryDate))
		seq := arg(after.Sequence)
		sb.WriteString(` AND (e.entry_date, e.sequence) > (` + date + `, ` + seq + `)`)
	}
	sb.WriteString(` ORDER BY e.entry_date, e.sequence LIMIT ` + arg(limit))
	return sb.String(), args
}

func (r *journalRepository) ListEntries(ctx context.Context, orgID string, filter domain.EntryFilter, after *domain.EntryCursor, limit int) ([]domain.JournalEntry, error) {
	query, args := buildListQuery(orgID, filter, after, limit)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	var headers []models.JournalEntry
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		headers = append(headers, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.EntryID
	}
	lines, err := r.loadLines(ctx, orgID, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.JournalEntry, len(headers))
	for i, h := range headers {
		entries[i] = toDomainEntry(h, lines[h.EntryID])
	}
	return entries, nil
}

func (r *journalRepository) insertLines(ctx context.Context, orgID string, lines []domain.JournalLine) error {
	for i, l := range lines {
		_, err := r.q.Exec(ctx,
			`INSERT INTO journal_lines (`+lineColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.LineID, l.EntryID, orgID, i, l.AccountID, l.Debit, l.Credit, l.Memo,
		)
		if err != nil {
			return fmt.Errorf("failed to insert journal line %d: %w", i, err)
		}
	}
	return nil
}

// SaveEntry inserts the entry header, reads back its sequence, and inserts its lines.
func (r *journalRepository) SaveEntry(ctx context.Context, entry *domain.JournalEntry) error {
	m := toModelEntry(*entry)
	err := r.q.QueryRow(ctx,
		`INSERT INTO journal_entries (entry_id, org_id, entry_date, memo, source, source_id, status, posted_at, posted_by, reversed_at, reversed_by, reverses_entry_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING sequence`,
		m.EntryID, m.OrgID, m.EntryDate, m.Memo, m.Source, m.SourceID, m.Status,
		m.PostedAt, m.PostedBy, m.ReversedAt, m.ReversedBy, m.ReversesEntryID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	).Scan(&entry.Sequence)
	if err != nil {
		if constraint, dup := uniqueViolationOn(err); dup {
			if constraint == reversalUniqueIndex && entry.ReversesEntryID != nil {
				return fmt.Errorf("%w: entry %s", apperrors.ErrAlreadyReversed, *entry.ReversesEntryID)
			}
			return fmt.Errorf("%w: entry %s", apperrors.ErrDuplicate, entry.EntryID)
		}
		return fmt.Errorf("failed to save entry %s: %w", entry.EntryID, err)
	}
	return r.insertLines(ctx, entry.OrgID, entry.Lines)
}

// stateError explains why a status-guarded write touched no row.
func (r *journalRepository) stateError(ctx context.Context, orgID, entryID string, guard error) error {
	var status string
	err := r.q.QueryRow(ctx,
		`SELECT status FROM journal_entries WHERE org_id = $1 AND entry_id = $2`,
		orgID, entryID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
		}
		return fmt.Errorf("failed to read status of entry %s: %w", entryID, err)
	}
	return fmt.Errorf("%w: entry %s is %s", guard, entryID, status)
}

func (r *journalRepository) ReplaceEntryLines(ctx context.Context, entry domain.JournalEntry) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE journal_entries SET last_updated_at = $3, last_updated_by = $4 WHERE org_id = $1 AND entry_id = $2 AND status = 'DRAFT'`,
		entry.OrgID, entry.EntryID, entry.LastUpdatedAt, entry.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", entry.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.stateError(ctx, entry.OrgID, entry.EntryID, apperrors.ErrEntryNotDraft)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM journal_lines WHERE org_id = $1 AND entry_id = $2`, entry.OrgID, entry.EntryID); err != nil {
		return fmt.Errorf("failed to clear lines of entry %s: %w", entry.EntryID, err)
	}
	return r.insertLines(ctx, entry.OrgID, entry.Lines)
}

// DeleteEntry removes a draft; its lines go with it through ON DELETE CASCADE.
func (r *journalRepository) DeleteEntry(ctx context.Context, orgID, entryID string) error {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM journal_entries WHERE org_id = $1 AND entry_id = $2 AND status = 'DRAFT'`,
		orgID, entryID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.stateError(ctx, orgID, entryID, apperrors.ErrEntryNotDraft)
	}
	return nil
}

func (r *journalRepository) MarkEntryPosted(ctx context.Context, orgID, entryID, actorID string, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE journal_entries
		SET status = 'POSTED', posted_at = $3, posted_by = $4, last_updated_at = $3, last_updated_by = $4
		WHERE org_id = $1 AND entry_id = $2 AND status = 'DRAFT'`,
		orgID, entryID, at, actorID,
	)
	if err != nil {
		return fmt.Errorf("failed to post entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.stateError(ctx, orgID, entryID, apperrors.ErrEntryNotDraft)
	}
	return nil
}

func (r *journalRepository) MarkEntryReversed(ctx context.Context, orgID, entryID, actorID string, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE journal_entries
		SET status = 'REVERSED', reversed_at = $3, reversed_by = $4, last_updated_at = $3, last_updated_by = $4
		WHERE org_id = $1 AND entry_id = $2 AND status = 'POSTED'`,
		orgID, entryID, at, actorID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark entry %s reversed: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.stateError(ctx, orgID, entryID, apperrors.ErrEntryNotPosted)
	}
	return nil
}
