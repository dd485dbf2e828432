package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// CreatePeriodRequest defines a new fiscal period. Both dates are inclusive.
type CreatePeriodRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	StartsAt Date   `json:"startsAt"`
	EndsAt   Date   `json:"endsAt"`
}

// ReopenPeriodRequest carries the mandatory justification for reopening.
type ReopenPeriodRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// PeriodResponse defines the data returned for a fiscal period.
type PeriodResponse struct {
	PeriodID      string              `json:"periodID"`
	Name          string              `json:"name"`
	StartsAt      Date                `json:"startsAt"`
	EndsAt        Date                `json:"endsAt"`
	Status        domain.PeriodStatus `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	CreatedBy     string              `json:"createdBy"`
	LastUpdatedAt time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy string              `json:"lastUpdatedBy"`
}

// PeriodAuditResponse is one entry of a period's audit trail.
type PeriodAuditResponse struct {
	AuditID   string              `json:"auditID"`
	Action    domain.PeriodAction `json:"action"`
	Before    domain.PeriodStatus `json:"before"`
	After     domain.PeriodStatus `json:"after"`
	ActorID   string              `json:"actorID"`
	Reason    string              `json:"reason,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// ToPeriodResponse converts a domain.FiscalPeriod to its DTO.
func ToPeriodResponse(p *domain.FiscalPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:      p.PeriodID,
		Name:          p.Name,
		StartsAt:      NewDate(p.StartsAt),
		EndsAt:        NewDate(p.EndsAt),
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
		LastUpdatedAt: p.LastUpdatedAt,
		LastUpdatedBy: p.LastUpdatedBy,
	}
}

// ToPeriodResponses converts a slice of periods.
func ToPeriodResponses(periods []domain.FiscalPeriod) []PeriodResponse {
	out := make([]PeriodResponse, len(periods))
	for i := range periods {
		out[i] = ToPeriodResponse(&periods[i])
	}
	return out
}

// ToPeriodAuditResponses converts a period's audit trail.
func ToPeriodAuditResponses(records []domain.PeriodAuditRecord) []PeriodAuditResponse {
	out := make([]PeriodAuditResponse, len(records))
	for i, r := range records {
		out[i] = PeriodAuditResponse{
			AuditID:   r.AuditID,
			Action:    r.Action,
			Before:    r.Before,
			After:     r.After,
			ActorID:   r.ActorID,
			Reason:    r.Reason,
			Timestamp: r.Timestamp,
		}
	}
	return out
}
