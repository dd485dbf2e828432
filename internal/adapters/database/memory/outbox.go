package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// outboxRepository is shared by all orgs. Inside a unit of work new messages are
// buffered in pending and only become visible when the unit commits.
type outboxRepository struct {
	store   *Store
	pending *[]domain.OutboxMessage
}

var _ portsrepo.OutboxRepository = (*outboxRepository)(nil)

func (s *Store) appendOutbox(msgs []domain.OutboxMessage) {
	if len(msgs) == 0 || s.outboxDisabled {
		return
	}
	s.outboxMu.Lock()
	defer s.outboxMu.Unlock()
	for _, m := range msgs {
		s.outboxID++
		m.ID = s.outboxID
		s.outbox = append(s.outbox, m)
	}
}

func (r *outboxRepository) CreateMessage(_ context.Context, msg domain.OutboxMessage) error {
	if r.pending != nil {
		*r.pending = append(*r.pending, msg)
		return nil
	}
	r.store.appendOutbox([]domain.OutboxMessage{msg})
	return nil
}

func (r *outboxRepository) GetPending(_ context.Context, limit int) ([]domain.OutboxMessage, error) {
	r.store.outboxMu.Lock()
	defer r.store.outboxMu.Unlock()
	out := []domain.OutboxMessage{}
	for _, m := range r.store.outbox {
		if m.Status != domain.OutboxPending {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// update applies fn to the message. Messages that leave PENDING are dropped,
// since nothing reads them back.
func (r *outboxRepository) update(id int64, fn func(*domain.OutboxMessage)) error {
	r.store.outboxMu.Lock()
	defer r.store.outboxMu.Unlock()
	for i := range r.store.outbox {
		if r.store.outbox[i].ID == id {
			fn(&r.store.outbox[i])
			if r.store.outbox[i].Status != domain.OutboxPending {
				r.store.outbox = slices.Delete(r.store.outbox, i, i+1)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: outbox message %d", apperrors.ErrNotFound, id)
}

func (r *outboxRepository) MarkPublished(_ context.Context, id int64, at time.Time) error {
	return r.update(id, func(m *domain.OutboxMessage) {
		m.Status = domain.OutboxPublished
		m.LastAttemptAt = &at
	})
}

func (r *outboxRepository) IncrementAttempts(_ context.Context, id int64, at time.Time) error {
	return r.update(id, func(m *domain.OutboxMessage) {
		m.Attempts++
		m.LastAttemptAt = &at
	})
}

func (r *outboxRepository) MarkFailed(_ context.Context, id int64, at time.Time) error {
	return r.update(id, func(m *domain.OutboxMessage) {
		m.Status = domain.OutboxFailed
		m.LastAttemptAt = &at
	})
}
