package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
)

type outboxRepository struct {
	q querier
}

var _ portsrepo.OutboxRepository = (*outboxRepository)(nil)

// CreateMessage stores a new pending message. Inside a unit of work it commits
// or rolls back with the change it describes.
func (r *outboxRepository) CreateMessage(ctx context.Context, msg domain.OutboxMessage) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO ledger_outbox (org_id, event_type, aggregate_id, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		msg.OrgID, string(msg.EventType), msg.AggregateID, []byte(msg.Payload), string(msg.Status), msg.Attempts, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}

// GetPending retrieves a batch of pending outbox messages in insertion order.
func (r *outboxRepository) GetPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, org_id, event_type, aggregate_id, payload, status, attempts, created_at, last_attempt_at
		FROM ledger_outbox
		WHERE status = $1
		ORDER BY id
		LIMIT $2`,
		string(domain.OutboxPending), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.OutboxMessage{}
	for rows.Next() {
		var m models.OutboxMessage
		if err := rows.Scan(&m.ID, &m.OrgID, &m.EventType, &m.AggregateID, &m.Payload, &m.Status,
			&m.Attempts, &m.CreatedAt, &m.LastAttemptAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, domain.OutboxMessage{
			ID:            m.ID,
			OrgID:         m.OrgID,
			EventType:     domain.EventType(m.EventType),
			AggregateID:   m.AggregateID,
			Payload:       m.Payload,
			Status:        domain.OutboxStatus(m.Status),
			Attempts:      m.Attempts,
			CreatedAt:     m.CreatedAt,
			LastAttemptAt: m.LastAttemptAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over outbox messages: %w", err)
	}
	return messages, nil
}

func (r *outboxRepository) exec(ctx context.Context, op string, id int64, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s outbox message %d: %w", op, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: outbox message %d", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, "publish", id,
		`UPDATE ledger_outbox SET status = $1, last_attempt_at = $2 WHERE id = $3`,
		string(domain.OutboxPublished), at, id)
}

func (r *outboxRepository) IncrementAttempts(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, "increment attempts of", id,
		`UPDATE ledger_outbox SET attempts = attempts + 1, last_attempt_at = $1 WHERE id = $2`,
		at, id)
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, "fail", id,
		`UPDATE ledger_outbox SET status = $1, last_attempt_at = $2 WHERE id = $3`,
		string(domain.OutboxFailed), at, id)
}
