package models

import "time"

// OutboxMessage is a row of the ledger_outbox table.
type OutboxMessage struct {
	ID            int64      `db:"id"`
	OrgID         string     `db:"org_id"`
	EventType     string     `db:"event_type"`
	AggregateID   string     `db:"aggregate_id"`
	Payload       []byte     `db:"payload"`
	Status        string     `db:"status"`
	Attempts      int        `db:"attempts"`
	CreatedAt     time.Time  `db:"created_at"`
	LastAttemptAt *time.Time `db:"last_attempt_at"`
}
