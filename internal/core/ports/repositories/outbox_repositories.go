package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// OutboxRepository stores ledger events until the relay has published them.
type OutboxRepository interface {
	CreateMessage(ctx context.Context, msg domain.OutboxMessage) error
	// GetPending returns pending messages oldest first.
	GetPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error)
	MarkPublished(ctx context.Context, id int64, at time.Time) error
	IncrementAttempts(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, at time.Time) error
}
