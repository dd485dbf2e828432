package services

import (
	"context"
	"iter"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// DraftWriter defines operations on mutable (DRAFT) journal entries.
type DraftWriter interface {
	CreateDraftEntry(ctx context.Context, orgID string, req dto.CreateEntryRequest, actorID string) (*domain.JournalEntry, error)
	// UpdateDraftEntry replaces the full line set of a draft.
	UpdateDraftEntry(ctx context.Context, orgID, entryID string, req dto.UpdateEntryRequest, actorID string) (*domain.JournalEntry, error)
	DeleteDraftEntry(ctx context.Context, orgID, entryID, actorID string) error
}

// EntryReader defines read operations on journal entries.
type EntryReader interface {
	GetEntry(ctx context.Context, orgID, entryID string) (*domain.JournalEntry, error)

	// ListEntries returns one page in (date, creation) order and a token for the
	// next page, nil when the listing is exhausted.
	ListEntries(ctx context.Context, orgID string, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// IterateEntries lazily walks every matching entry in (date, creation) order.
	// Ranging over the sequence again restarts from the beginning.
	IterateEntries(ctx context.Context, orgID string, filter domain.EntryFilter) iter.Seq2[domain.JournalEntry, error]
}

// JournalSvcFacade combines all journal-related service interfaces.
type JournalSvcFacade interface {
	DraftWriter
	EntryReader
}
