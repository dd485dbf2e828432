package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one debit or credit line of an entry.
type JournalLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo" binding:"max=500"`
}

// CreateEntryRequest defines the data needed to create a draft entry.
type CreateEntryRequest struct {
	EntryDate Date                 `json:"entryDate"`
	Memo      string               `json:"memo" binding:"max=1000"`
	Source    domain.EntrySource   `json:"source" binding:"required,entrysource"`
	SourceID  string               `json:"sourceID" binding:"max=255"`
	Lines     []JournalLineRequest `json:"lines" binding:"required,dive"`
}

// UpdateEntryRequest replaces the full line set of a draft.
type UpdateEntryRequest struct {
	Lines []JournalLineRequest `json:"lines" binding:"required,dive"`
}

// ReverseEntryRequest carries the date of the reversing entry.
type ReverseEntryRequest struct {
	ReversalDate Date `json:"reversalDate"`
}

// ListEntriesParams defines the query parameters for listing entries.
type ListEntriesParams struct {
	Status    string  `form:"status" binding:"omitempty,oneof=DRAFT POSTED REVERSED"`
	Source    string  `form:"source" binding:"omitempty,entrysource"`
	SourceID  string  `form:"sourceId"`
	AccountID string  `form:"accountId"`
	FromDate  string  `form:"fromDate" binding:"omitempty,datetime=2006-01-02"`
	ToDate    string  `form:"toDate" binding:"omitempty,datetime=2006-01-02"`
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=500"`
	NextToken *string `form:"nextToken"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID    string          `json:"lineID"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID         string                `json:"entryID"`
	EntryDate       Date                  `json:"entryDate"`
	Memo            string                `json:"memo"`
	Source          domain.EntrySource    `json:"source"`
	SourceID        string                `json:"sourceID"`
	Status          domain.EntryStatus    `json:"status"`
	PostedAt        *time.Time            `json:"postedAt,omitempty"`
	PostedBy        *string               `json:"postedBy,omitempty"`
	ReversedAt      *time.Time            `json:"reversedAt,omitempty"`
	ReversedBy      *string               `json:"reversedBy,omitempty"`
	ReversesEntryID *string               `json:"reversesEntryID,omitempty"`
	TotalDebit      decimal.Decimal       `json:"totalDebit"`
	TotalCredit     decimal.Decimal       `json:"totalCredit"`
	Lines           []JournalLineResponse `json:"lines"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
	LastUpdatedAt   time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy   string                `json:"lastUpdatedBy"`
}

// ListEntriesResponse is one page of entries.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	debit, credit := e.Totals()
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			LineID:    l.LineID,
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Memo:      l.Memo,
		}
	}
	return JournalEntryResponse{
		EntryID:         e.EntryID,
		EntryDate:       NewDate(e.EntryDate),
		Memo:            e.Memo,
		Source:          e.Source,
		SourceID:        e.SourceID,
		Status:          e.Status,
		PostedAt:        e.PostedAt,
		PostedBy:        e.PostedBy,
		ReversedAt:      e.ReversedAt,
		ReversedBy:      e.ReversedBy,
		ReversesEntryID: e.ReversesEntryID,
		TotalDebit:      debit,
		TotalCredit:     credit,
		Lines:           lines,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
		LastUpdatedAt:   e.LastUpdatedAt,
		LastUpdatedBy:   e.LastUpdatedBy,
	}
}

// ToListEntriesResponse converts a page of entries.
func ToListEntriesResponse(entries []domain.JournalEntry, nextToken *string) ListEntriesResponse {
	resp := ListEntriesResponse{
		Entries:   make([]JournalEntryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i := range entries {
		resp.Entries[i] = ToJournalEntryResponse(&entries[i])
	}
	return resp
}

// ToDomainLines converts request lines, leaving ids for the service to assign.
func ToDomainLines(lines []JournalLineRequest) []domain.JournalLine {
	out := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		out[i] = domain.JournalLine{
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Memo:      l.Memo,
		}
	}
	return out
}
