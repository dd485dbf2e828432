package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// PostingRules are the deployment-level ledger rules.
type PostingRules struct {
	// AmountScale caps the fractional digits of any line amount.
	AmountScale int32
	// RequirePeriod makes dates outside every fiscal period unpostable.
	RequirePeriod bool
}

// DefaultPostingRules allow two decimal places and treat dates outside any period as open.
var DefaultPostingRules = PostingRules{AmountScale: 2}

// assertPostable fails with apperrors.ErrPeriodLocked when date falls in a period
// that no longer accepts postings. Callers inside a unit of work must pass the
// transaction's period reader so the check and the write see the same state.
func assertPostable(ctx context.Context, periods portsrepo.PeriodReader, orgID string, date time.Time, rules PostingRules) error {
	period, err := periods.FindPeriodForDate(ctx, orgID, domain.DateOf(date))
	if err != nil {
		return fmt.Errorf("failed to resolve fiscal period for %s: %w", date.Format(time.DateOnly), err)
	}
	if period == nil {
		if rules.RequirePeriod {
			return fmt.Errorf("%w: no fiscal period covers %s", apperrors.ErrPeriodLocked, date.Format(time.DateOnly))
		}
		return nil
	}
	if !period.Status.AcceptsPostings() {
		return fmt.Errorf("%w: period %q covering %s is %s",
			apperrors.ErrPeriodLocked, period.Name, date.Format(time.DateOnly), period.Status)
	}
	return nil
}

// validateLineAccounts checks that every referenced account exists and is active.
func validateLineAccounts(ctx context.Context, accounts portsrepo.AccountReader, orgID string, lines []domain.JournalLine) error {
	entry := domain.JournalEntry{Lines: lines}
	found, err := accounts.FindAccountsByIDs(ctx, orgID, entry.AccountIDs())
	if err != nil {
		return fmt.Errorf("failed to load line accounts: %w", err)
	}
	for i, l := range lines {
		acc, ok := found[l.AccountID]
		if !ok {
			return fmt.Errorf("%w: line %d references account %s", apperrors.ErrAccountNotFound, i, l.AccountID)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: line %d references account %s (%s)", apperrors.ErrAccountInactive, i, acc.Code, acc.AccountID)
		}
	}
	return nil
}

// enqueueEvent stores a ledger event in the outbox of the current unit of work.
func enqueueEvent(ctx context.Context, outbox portsrepo.OutboxRepository, orgID string, eventType domain.EventType, aggregateID string, payload any, now time.Time) error {
	msg, err := domain.NewOutboxMessage(orgID, eventType, aggregateID, payload, now)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	if err := outbox.CreateMessage(ctx, msg); err != nil {
		return fmt.Errorf("failed to enqueue %s event: %w", eventType, err)
	}
	return nil
}

func requireActor(actorID string) error {
	if actorID == "" {
		return fmt.Errorf("%w: actor id is required", apperrors.ErrValidation)
	}
	return nil
}
