package domain

import "time"

// PeriodStatus is the lock status of a fiscal period.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
	PeriodLocked PeriodStatus = "LOCKED"
)

// AcceptsPostings reports whether entries dated inside a period in this status may be posted.
func (s PeriodStatus) AcceptsPostings() bool {
	return s == PeriodOpen
}

// FiscalPeriod is a named, inclusive date range whose status governs posting.
type FiscalPeriod struct {
	PeriodID string       `json:"periodID"`
	OrgID    string       `json:"orgID"`
	Name     string       `json:"name"`
	StartsAt time.Time    `json:"startsAt"`
	EndsAt   time.Time    `json:"endsAt"`
	Status   PeriodStatus `json:"status"`
	AuditFields
}

// Contains reports whether date falls inside the period, both ends inclusive.
func (p FiscalPeriod) Contains(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(DateOf(p.StartsAt)) && !d.After(DateOf(p.EndsAt))
}

// Overlaps reports whether the inclusive ranges of p and [start, end] intersect.
func (p FiscalPeriod) Overlaps(start, end time.Time) bool {
	return !DateOf(start).After(DateOf(p.EndsAt)) && !DateOf(p.StartsAt).After(DateOf(end))
}

// PeriodAction names a period status transition.
type PeriodAction string

const (
	PeriodActionClose  PeriodAction = "CLOSE"
	PeriodActionLock   PeriodAction = "LOCK"
	PeriodActionReopen PeriodAction = "REOPEN"
)

// Transition returns the status the action moves a period into, and whether
// the action is allowed from the given status.
func (a PeriodAction) Transition(from PeriodStatus) (PeriodStatus, bool) {
	switch a {
	case PeriodActionClose:
		return PeriodClosed, from == PeriodOpen
	case PeriodActionLock:
		return PeriodLocked, from == PeriodClosed
	case PeriodActionReopen:
		return PeriodOpen, from == PeriodClosed || from == PeriodLocked
	}
	return from, false
}

// PeriodAuditRecord is the permanent trace of a period status change.
type PeriodAuditRecord struct {
	AuditID   string       `json:"auditID"`
	OrgID     string       `json:"orgID"`
	PeriodID  string       `json:"periodID"`
	Action    PeriodAction `json:"action"`
	Before    PeriodStatus `json:"before"`
	After     PeriodStatus `json:"after"`
	ActorID   string       `json:"actorID"`
	Reason    string       `json:"reason,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
