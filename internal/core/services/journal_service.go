package services

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// journalService owns draft entries and entry queries.
type journalService struct {
	BaseService
	repos portsrepo.RepositoryProvider
	rules PostingRules
}

// NewJournalService creates a new JournalService.
func NewJournalService(repos portsrepo.RepositoryProvider, rules PostingRules, opts ...ServiceOption) portssvc.JournalSvcFacade {
	return &journalService{
		BaseService: newBaseService(opts...),
		repos:       repos,
		rules:       rules,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// prepareLines validates request lines and assigns their ids.
func (s *journalService) prepareLines(entryID string, req []dto.JournalLineRequest) ([]domain.JournalLine, error) {
	lines := dto.ToDomainLines(req)
	if err := accounting.ValidateEntryLines(lines, s.rules.AmountScale); err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].LineID = uuid.NewString()
		lines[i].EntryID = entryID
	}
	return lines, nil
}

// CreateDraftEntry validates and stores a new DRAFT entry.
func (s *journalService) CreateDraftEntry(ctx context.Context, orgID string, req dto.CreateEntryRequest, actorID string) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx).With(slog.String("org_id", orgID))

	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if req.Source == domain.SourceReversal {
		return nil, fmt.Errorf("%w: %s entries are created by reversing a posted entry", apperrors.ErrInvalidSource, domain.SourceReversal)
	}
	if !req.Source.IsValid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidSource, req.Source)
	}
	if req.EntryDate.IsZero() {
		return nil, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
	}

	entryID := uuid.NewString()
	lines, err := s.prepareLines(entryID, req.Lines)
	if err != nil {
		logger.Warn("Draft entry rejected", slog.String("error", err.Error()))
		return nil, err
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		OrgID:       orgID,
		EntryDate:   domain.DateOf(req.EntryDate.Time),
		Memo:        strings.TrimSpace(req.Memo),
		Source:      req.Source,
		SourceID:    strings.TrimSpace(req.SourceID),
		Status:      domain.Draft,
		Lines:       lines,
		AuditFields: domain.NewAuditFields(actorID, s.now()),
	}

	err = s.repos.UnitOfWork.WithinOrgTx(ctx, orgID, func(ctx context.Context, repos portsrepo.Repositories) error {
		if err := validateLineAccounts(ctx, repos.Accounts, orgID, entry.Lines); err != nil {
			return err
		}
		return repos.Journals.SaveEntry(ctx, &entry)
	})
	if err != nil {
		logger.Warn("Failed to create draft entry", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Draft entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("source", string(entry.Source)),
		slog.String("source_id", entry.SourceID),
		slog.Int("line_count", len(entry.Lines)))
	return &entry, nil
}

// UpdateDraftEntry replaces every line of a draft in one write.
func (s *journalService) UpdateDraftEntry(ctx context.Context, orgID, entryID string, req dto.UpdateEntryRequest, actorID string) (*domain.JournalEntry, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	lines, err := s.prepareLines(entryID, req.Lines)
	if err != nil {
		return nil, err
	}

	var updated *domain.JournalEntry
	err = s.repos.UnitOfWork.WithinOrgTx(ctx, orgID, func(ctx context.Context, repos portsrepo.Repositories) error {
		entry, err := repos.Journals.FindEntryByID(ctx, orgID, entryID)
		if err != nil {
			return err
		}
		if entry.Status != domain.Draft {
			return fmt.Errorf("%w: entry %s is %s", apperrors.ErrEntryNotDraft, entryID, entry.Status)
		}
		if err := validateLineAccounts(ctx, repos.Accounts, orgID, lines); err != nil {
			return err
		}
		entry.Lines = lines
		entry.Touch(actorID, s.now())
		if err := repos.Journals.ReplaceEntryLines(ctx, *entry); err != nil {
			return fmt.Errorf("failed to replace entry lines: %w", err)
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Draft entry updated",
		slog.String("org_id", orgID),
		slog.String("entry_id", entryID),
		slog.Int("line_count", len(lines)))
	return updated, nil
}

// DeleteDraftEntry removes a draft permanently.
func (s *journalService) DeleteDraftEntry(ctx context.Context, orgID, entryID, actorID string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	err := s.repos.UnitOfWork.WithinOrgTx(ctx, orgID, func(ctx context.Context, repos portsrepo.Repositories) error {
		entry, err := repos.Journals.FindEntryByID(ctx, orgID, entryID)
		if err != nil {
			return err
		}
		if entry.Status != domain.Draft {
			return fmt.Errorf("%w: entry %s is %s", apperrors.ErrEntryNotDraft, entryID, entry.Status)
		}
		return repos.Journals.DeleteEntry(ctx, orgID, entryID)
	})
	if err != nil {
		return err
	}

	s.LogInfo(ctx, "Draft entry deleted",
		slog.String("org_id", orgID),
		slog.String("entry_id", entryID),
		slog.String("actor_id", actorID))
	return nil
}

// GetEntry returns an entry with its lines.
func (s *journalService) GetEntry(ctx context.Context, orgID, entryID string) (*domain.JournalEntry, error) {
	return s.repos.Journals.FindEntryByID(ctx, orgID, entryID)
}

// ListEntries returns one page of entries in (date, creation) order.
func (s *journalService) ListEntries(ctx context.Context, orgID string, filter domain.EntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var after *domain.EntryCursor
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeEntryCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		after = &cursor
	}

	// Fetch one extra row to learn whether another page exists.
	entries, err := s.repos.Journals.ListEntries(ctx, orgID, filter, after, limit+1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list entries: %w", err)
	}

	var next *string
	if len(entries) > limit {
		entries = entries[:limit]
		token := pagination.EncodeEntryCursor(pagination.CursorOf(entries[limit-1]))
		next = &token
	}
	return entries, next, nil
}

// IterateEntries walks all matching entries page by page. Each range over the
// returned sequence starts a fresh walk; entries committed meanwhile with a
// later (date, sequence) position are picked up.
func (s *journalService) IterateEntries(ctx context.Context, orgID string, filter domain.EntryFilter) iter.Seq2[domain.JournalEntry, error] {
	return func(yield func(domain.JournalEntry, error) bool) {
		var token *string
		for {
			if err := ctx.Err(); err != nil {
				yield(domain.JournalEntry{}, err)
				return
			}
			page, next, err := s.ListEntries(ctx, orgID, filter, defaultListLimit, token)
			if err != nil {
				yield(domain.JournalEntry{}, err)
				return
			}
			for _, e := range page {
				if !yield(e, nil) {
					return
				}
			}
			if next == nil {
				return
			}
			token = next
		}
	}
}
