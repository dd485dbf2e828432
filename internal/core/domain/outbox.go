package domain

import (
	"encoding/json"
	"time"
)

// EventType names a ledger event published through the outbox.
type EventType string

const (
	EventEntryPosted         EventType = "entry.posted"
	EventEntryReversed       EventType = "entry.reversed"
	EventPeriodStatusChanged EventType = "period.status_changed"
)

// OutboxStatus is the delivery state of an outbox message.
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "PENDING"
	OutboxPublished OutboxStatus = "PUBLISHED"
	OutboxFailed    OutboxStatus = "FAILED"
)

// OutboxMessage is a ledger event stored alongside the change that produced it.
type OutboxMessage struct {
	ID            int64           `json:"id"`
	OrgID         string          `json:"orgID"`
	EventType     EventType       `json:"eventType"`
	AggregateID   string          `json:"aggregateID"`
	Payload       json.RawMessage `json:"payload"`
	Status        OutboxStatus    `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastAttemptAt *time.Time      `json:"lastAttemptAt,omitempty"`
}

// NewOutboxMessage marshals payload into a pending message.
func NewOutboxMessage(orgID string, eventType EventType, aggregateID string, payload any, now time.Time) (OutboxMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return OutboxMessage{}, err
	}
	return OutboxMessage{
		OrgID:       orgID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     raw,
		Status:      OutboxPending,
		CreatedAt:   now,
	}, nil
}

// EntryEvent is the payload for entry.posted and entry.reversed.
type EntryEvent struct {
	Entry           JournalEntry `json:"entry"`
	ReversedEntryID string       `json:"reversedEntryID,omitempty"`
	ActorID         string       `json:"actorID"`
	OccurredAt      time.Time    `json:"occurredAt"`
}

// PeriodEvent is the payload for period.status_changed.
type PeriodEvent struct {
	Period PeriodAuditRecord `json:"period"`
}
