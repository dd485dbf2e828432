package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/metrics"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
)

const (
	operationPost    = "post"
	operationReverse = "reverse"
)

// postingService moves entries through DRAFT -> POSTED -> REVERSED. Every
// transition runs in one org-serialized unit of work, so the period check, the
// status change and the outbox event commit or fail together.
type postingService struct {
	BaseService
	repos portsrepo.RepositoryProvider
	rules PostingRules
}

// NewPostingService creates a new posting state machine.
func NewPostingService(repos portsrepo.RepositoryProvider, rules PostingRules, opts ...ServiceOption) portssvc.PostingSvc {
	return &postingService{
		BaseService: newBaseService(opts...),
		repos:       repos,
		rules:       rules,
	}
}

var _ portssvc.PostingSvc = (*postingService)(nil)

func (s *postingService) Post(ctx context.Context, orgID, entryID, actorID string) (*domain.JournalEntry, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	logger := s.GetLogger(ctx).With(
		slog.String("org_id", orgID),
		slog.String("entry_id", entryID),
		slog.String("actor_id", actorID))

	var posted *domain.JournalEntry
	err := s.repos.UnitOfWork.WithinOrgTx(ctx, orgID, func(ctx context.Context, repos portsrepo.Repositories) error {
		entry, err := repos.Journals.FindEntryByID(ctx, orgID, entryID)
		if err != nil {
			return err
		}
		if entry.Status != domain.Draft {
			return fmt.Errorf("%w: entry %s is %s", apperrors.ErrEntryNotDraft, entryID, entry.Status)
		}
		if err := accounting.ValidateBalance(*entry); err != nil {
			return err
		}
		if err := assertPostable(ctx, repos.Periods, orgID, entry.EntryDate, s.rules); err != nil {
			return err
		}

		now := s.now()
		if err := repos.Journals.MarkEntryPosted(ctx, orgID, entryID, actorID, now); err != nil {
			return err
		}
		entry.Status = domain.Posted
		entry.PostedAt = &now
		entry.PostedBy = &actorID
		entry.Touch(actorID, now)

		if err := enqueueEvent(ctx, repos.Outbox, orgID, domain.EventEntryPosted, entryID,
			domain.EntryEvent{Entry: *entry, ActorID: actorID, OccurredAt: now}, now); err != nil {
			return err
		}
		posted = entry
		return nil
	})
	if err != nil {
		s.reject(logger, operationPost, err)
		return nil, err
	}

	metrics.EntriesPosted.WithLabelValues(string(posted.Source)).Inc()
	logger.Info("Journal entry posted",
		slog.String("source", string(posted.Source)),
		slog.String("entry_date", posted.EntryDate.Format(time.DateOnly)))
	return posted, nil
}

func (s *postingService) Reverse(ctx context.Context, orgID, entryID, actorID string, reversalDate time.Time) (*domain.JournalEntry, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if reversalDate.IsZero() {
		return nil, fmt.Errorf("%w: reversal date is required", apperrors.ErrValidation)
	}
	reversalDate = domain.DateOf(reversalDate)
	logger := s.GetLogger(ctx).With(
		slog.String("org_id", orgID),
		slog.String("entry_id", entryID),
		slog.String("actor_id", actorID))

	var reversal *domain.JournalEntry
	err := s.repos.UnitOfWork.WithinOrgTx(ctx, orgID, func(ctx context.Context, repos portsrepo.Repositories) error {
		original, err := repos.Journals.FindEntryByID(ctx, orgID, entryID)
		if err != nil {
			return err
		}
		switch original.Status {
		case domain.Posted:
		case domain.Reversed:
			return fmt.Errorf("%w: %w", apperrors.ErrEntryNotPosted, apperrors.ErrAlreadyReversed)
		default:
			return fmt.Errorf("%w: entry %s is %s", apperrors.ErrEntryNotPosted, entryID, original.Status)
		}
		if original.IsReversal() {
			return fmt.Errorf("%w: entry %s reverses %s", apperrors.ErrReversalOfReversal, entryID, *original.ReversesEntryID)
		}
		existing, err := repos.Journals.FindReversalOf(ctx, orgID, entryID)
		if err != nil {
			return fmt.Errorf("failed to look up existing reversal: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("%w: by entry %s", apperrors.ErrAlreadyReversed, existing.EntryID)
		}
		if err := assertPostable(ctx, repos.Periods, orgID, reversalDate, s.rules); err != nil {
			return err
		}

		now := s.now()
		rev := buildReversal(*original, reversalDate, actorID, now)
		if err := repos.Journals.SaveEntry(ctx, &rev); err != nil {
			return fmt.Errorf("failed to save reversal entry: %w", err)
		}
		if err := repos.Journals.MarkEntryReversed(ctx, orgID, entryID, actorID, now); err != nil {
			return err
		}
		if err := enqueueEvent(ctx, repos.Outbox, orgID, domain.EventEntryReversed, entryID,
			domain.EntryEvent{Entry: rev, ReversedEntryID: entryID, ActorID: actorID, OccurredAt: now}, now); err != nil {
			return err
		}
		reversal = &rev
		return nil
	})
	if err != nil {
		s.reject(logger, operationReverse, err)
		return nil, err
	}

	metrics.EntriesReversed.Inc()
	logger.Info("Journal entry reversed",
		slog.String("reversal_entry_id", reversal.EntryID),
		slog.String("reversal_date", reversalDate.Format(time.DateOnly)))
	return reversal, nil
}

// buildReversal returns a POSTED entry whose lines swap the debits and credits of original.
func buildReversal(original domain.JournalEntry, date time.Time, actorID string, now time.Time) domain.JournalEntry {
	revID := uuid.NewString()
	lines := make([]domain.JournalLine, len(original.Lines))
	for i, l := range original.Lines {
		swapped := l.Swapped()
		swapped.LineID = uuid.NewString()
		swapped.EntryID = revID
		lines[i] = swapped
	}
	originalID := original.EntryID
	return domain.JournalEntry{
		EntryID:         revID,
		OrgID:           original.OrgID,
		EntryDate:       date,
		Memo:            fmt.Sprintf("Reversal of %s", original.EntryID),
		Source:          domain.SourceReversal,
		SourceID:        original.EntryID,
		Status:          domain.Posted,
		PostedAt:        &now,
		PostedBy:        &actorID,
		ReversesEntryID: &originalID,
		Lines:           lines,
		AuditFields:     domain.NewAuditFields(actorID, now),
	}
}

// reject records a refused transition. Policy and state refusals are expected
// traffic and log at WARN; anything else is an ERROR.
func (s *postingService) reject(logger *slog.Logger, operation string, err error) {
	code := apperrors.Code(err)
	if code == "" {
		code = "INTERNAL"
	}
	metrics.PostingRejections.WithLabelValues(operation, code).Inc()

	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrPolicy):
		logger.Warn("Journal entry "+operation+" rejected", slog.String("code", code), slog.String("error", err.Error()))
	default:
		logger.Error("Journal entry "+operation+" failed", slog.String("error", err.Error()))
	}
}
