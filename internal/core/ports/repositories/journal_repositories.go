package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// JournalReader defines read operations for journal entries and their lines.
type JournalReader interface {
	// FindEntryByID returns the entry with its lines, or apperrors.ErrEntryNotFound.
	FindEntryByID(ctx context.Context, orgID, entryID string) (*domain.JournalEntry, error)

	// FindReversalOf returns the entry whose ReversesEntryID is entryID, or nil if none exists.
	FindReversalOf(ctx context.Context, orgID, entryID string) (*domain.JournalEntry, error)

	// ListEntries returns up to limit entries matching filter in (date, sequence)
	// order, starting strictly after the cursor when one is given. Lines are loaded.
	ListEntries(ctx context.Context, orgID string, filter domain.EntryFilter, after *domain.EntryCursor, limit int) ([]domain.JournalEntry, error)
}

// JournalWriter defines write operations for journal entries.
type JournalWriter interface {
	// SaveEntry inserts the entry and its lines and assigns entry.Sequence.
	SaveEntry(ctx context.Context, entry *domain.JournalEntry) error

	// ReplaceEntryLines swaps the full line set of a draft and records the update.
	ReplaceEntryLines(ctx context.Context, entry domain.JournalEntry) error

	// DeleteEntry removes a draft and its lines.
	DeleteEntry(ctx context.Context, orgID, entryID string) error

	// MarkEntryPosted moves a DRAFT entry to POSTED. It fails with
	// apperrors.ErrEntryNotDraft if the entry is no longer a draft.
	MarkEntryPosted(ctx context.Context, orgID, entryID, actorID string, at time.Time) error

	// MarkEntryReversed moves a POSTED entry to REVERSED. It fails with
	// apperrors.ErrEntryNotPosted if the entry is not posted.
	MarkEntryReversed(ctx context.Context, orgID, entryID, actorID string, at time.Time) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
