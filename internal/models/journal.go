package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a row of the journal_entries table. Lines live in journal_lines.
type JournalEntry struct {
	EntryID         string     `db:"entry_id"`
	OrgID           string     `db:"org_id"`
	EntryDate       time.Time  `db:"entry_date"`
	Memo            string     `db:"memo"`
	Source          string     `db:"source"`
	SourceID        string     `db:"source_id"`
	Status          string     `db:"status"`
	Sequence        int64      `db:"sequence"`
	PostedAt        *time.Time `db:"posted_at"`
	PostedBy        *string    `db:"posted_by"`
	ReversedAt      *time.Time `db:"reversed_at"`
	ReversedBy      *string    `db:"reversed_by"`
	ReversesEntryID *string    `db:"reverses_entry_id"`
	AuditFields
}

// JournalLine is a row of the journal_lines table. Exactly one of Debit and
// Credit is positive; the other is zero.
type JournalLine struct {
	LineID    string          `db:"line_id"`
	EntryID   string          `db:"entry_id"`
	OrgID     string          `db:"org_id"`
	LineNo    int             `db:"line_no"`
	AccountID string          `db:"account_id"`
	Debit     decimal.Decimal `db:"debit"`
	Credit    decimal.Decimal `db:"credit"`
	Memo      string          `db:"memo"`
}
