package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// PostingSvc drives the DRAFT -> POSTED -> REVERSED lifecycle.
type PostingSvc interface {
	// Post commits a draft. It is atomic and serialized per org.
	Post(ctx context.Context, orgID, entryID, actorID string) (*domain.JournalEntry, error)

	// Reverse posts a new entry offsetting entryID, dated reversalDate, and marks
	// the original REVERSED in the same transaction. It returns the new entry.
	Reverse(ctx context.Context, orgID, entryID, actorID string, reversalDate time.Time) (*domain.JournalEntry, error)
}
