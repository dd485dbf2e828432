package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// IsValid reports whether s is a known status.
func (s EntryStatus) IsValid() bool {
	return s == Draft || s == Posted || s == Reversed
}

// IsCommitted reports whether an entry in this status affects balances.
// A reversed original stays effective; its reversal offsets it.
func (s EntryStatus) IsCommitted() bool {
	return s == Posted || s == Reversed
}

// EntrySource tags the business origin of an entry.
type EntrySource string

const (
	SourceManual             EntrySource = "MANUAL"
	SourceAP                 EntrySource = "AP"
	SourceAR                 EntrySource = "AR"
	SourcePayroll            EntrySource = "PAYROLL"
	SourceReservationDeposit EntrySource = "RESERVATION_DEPOSIT"
	SourceReversal           EntrySource = "REVERSAL"
)

// IsValid reports whether s is one of the known sources.
func (s EntrySource) IsValid() bool {
	switch s {
	case SourceManual, SourceAP, SourceAR, SourcePayroll, SourceReservationDeposit, SourceReversal:
		return true
	}
	return false
}

// JournalEntry is a dated, balanced group of lines recording one business event.
type JournalEntry struct {
	EntryID         string        `json:"entryID"`
	OrgID           string        `json:"orgID"`
	EntryDate       time.Time     `json:"entryDate"`
	Memo            string        `json:"memo"`
	Source          EntrySource   `json:"source"`
	SourceID        string        `json:"sourceID"`
	Status          EntryStatus   `json:"status"`
	Sequence        int64         `json:"sequence"` // creation order, assigned by the store
	PostedAt        *time.Time    `json:"postedAt,omitempty"`
	PostedBy        *string       `json:"postedBy,omitempty"`
	ReversedAt      *time.Time    `json:"reversedAt,omitempty"`
	ReversedBy      *string       `json:"reversedBy,omitempty"`
	ReversesEntryID *string       `json:"reversesEntryID,omitempty"`
	Lines           []JournalLine `json:"lines"`
	AuditFields
}

// Totals returns the sum of debits and the sum of credits over all lines.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// IsBalanced reports whether total debits equal total credits exactly.
func (e JournalEntry) IsBalanced() bool {
	d, c := e.Totals()
	return d.Equal(c)
}

// IsReversal reports whether e offsets another entry.
func (e JournalEntry) IsReversal() bool {
	return e.ReversesEntryID != nil
}

// AccountIDs returns the distinct accounts referenced by the entry's lines.
func (e JournalEntry) AccountIDs() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	ids := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

// EntryFilter narrows ListEntries. Zero values mean "no constraint".
type EntryFilter struct {
	Status    EntryStatus
	Source    EntrySource
	SourceID  string
	AccountID string
	FromDate  *time.Time
	ToDate    *time.Time
}

// EntryCursor marks the last entry of a page in (date, sequence) order.
type EntryCursor struct {
	EntryDate time.Time
	Sequence  int64
}

// After reports whether e sorts strictly after the cursor.
func (c EntryCursor) After(e JournalEntry) bool {
	if e.EntryDate.Equal(c.EntryDate) {
		return e.Sequence > c.Sequence
	}
	return e.EntryDate.After(c.EntryDate)
}
