package models

import "time"

// FiscalPeriod is a row of the fiscal_periods table.
type FiscalPeriod struct {
	PeriodID string    `db:"period_id"`
	OrgID    string    `db:"org_id"`
	Name     string    `db:"name"`
	StartsAt time.Time `db:"starts_at"`
	EndsAt   time.Time `db:"ends_at"`
	Status   string    `db:"status"`
	AuditFields
}

// PeriodAuditRecord is a row of the append-only period_audit_log table.
type PeriodAuditRecord struct {
	AuditID      string    `db:"audit_id"`
	OrgID        string    `db:"org_id"`
	PeriodID     string    `db:"period_id"`
	Action       string    `db:"action"`
	BeforeStatus string    `db:"before_status"`
	AfterStatus  string    `db:"after_status"`
	ActorID      string    `db:"actor_id"`
	Reason       string    `db:"reason"`
	CreatedAt    time.Time `db:"created_at"`
}
