package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

type journalRepository struct {
	acc   access
	store *Store
}

var _ portsrepo.JournalRepositoryFacade = (*journalRepository)(nil)

func (r *journalRepository) FindEntryByID(_ context.Context, orgID, entryID string) (*domain.JournalEntry, error) {
	var out *domain.JournalEntry
	err := r.acc.read(orgID, func(d *orgData) error {
		e, ok := d.entries[entryID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
		}
		c := copyEntry(e)
		out = &c
		return nil
	})
	return out, err
}

func (r *journalRepository) FindReversalOf(_ context.Context, orgID, entryID string) (*domain.JournalEntry, error) {
	var out *domain.JournalEntry
	err := r.acc.read(orgID, func(d *orgData) error {
		revID, ok := d.reversals[entryID]
		if !ok {
			return nil
		}
		c := copyEntry(d.entries[revID])
		out = &c
		return nil
	})
	return out, err
}

func matches(e domain.JournalEntry, f domain.EntryFilter) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if f.SourceID != "" && e.SourceID != f.SourceID {
		return false
	}
	if f.FromDate != nil && e.EntryDate.Before(domain.DateOf(*f.FromDate)) {
		return false
	}
	if f.ToDate != nil && e.EntryDate.After(domain.DateOf(*f.ToDate)) {
		return false
	}
	if f.AccountID != "" {
		for _, l := range e.Lines {
			if l.AccountID == f.AccountID {
				return true
			}
		}
		return false
	}
	return true
}

func (r *journalRepository) ListEntries(_ context.Context, orgID string, filter domain.EntryFilter, after *domain.EntryCursor, limit int) ([]domain.JournalEntry, error) {
	var out []domain.JournalEntry
	err := r.acc.read(orgID, func(d *orgData) error {
		for _, e := range d.entries {
			if !matches(e, filter) {
				continue
			}
			if after != nil && !after.After(e) {
				continue
			}
			out = append(out, copyEntry(e))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].EntryDate.Before(out[j].EntryDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *journalRepository) SaveEntry(_ context.Context, entry *domain.JournalEntry) error {
	return r.acc.write(entry.OrgID, func(d *orgData) error {
		if _, exists := d.entries[entry.EntryID]; exists {
			return fmt.Errorf("%w: entry %s", apperrors.ErrDuplicate, entry.EntryID)
		}
		if entry.ReversesEntryID != nil {
			if _, taken := d.reversals[*entry.ReversesEntryID]; taken {
				return fmt.Errorf("%w: entry %s", apperrors.ErrAlreadyReversed, *entry.ReversesEntryID)
			}
			d.reversals[*entry.ReversesEntryID] = entry.EntryID
		}
		entry.Sequence = r.store.seq.Add(1)
		d.entries[entry.EntryID] = copyEntry(*entry)
		return nil
	})
}

func (r *journalRepository) ReplaceEntryLines(_ context.Context, entry domain.JournalEntry) error {
	return r.acc.write(entry.OrgID, func(d *orgData) error {
		stored, ok := d.entries[entry.EntryID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entry.EntryID)
		}
		if stored.Status != domain.Draft {
			return fmt.Errorf("%w: entry %s is %s", apperrors.ErrEntryNotDraft, entry.EntryID, stored.Status)
		}
		stored.Lines = append([]domain.JournalLine(nil), entry.Lines...)
		stored.AuditFields.Touch(entry.LastUpdatedBy, entry.LastUpdatedAt)
		d.entries[entry.EntryID] = stored
		return nil
	})
}

func (r *journalRepository) DeleteEntry(_ context.Context, orgID, entryID string) error {
	return r.acc.write(orgID, func(d *orgData) error {
		stored, ok := d.entries[entryID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
		}
		if stored.Status != domain.Draft {
			return fmt.Errorf("%w: entry %s is %s", apperrors.ErrEntryNotDraft, entryID, stored.Status)
		}
		delete(d.entries, entryID)
		return nil
	})
}

func (r *journalRepository) MarkEntryPosted(_ context.Context, orgID, entryID, actorID string, at time.Time) error {
	return r.acc.write(orgID, func(d *orgData) error {
		stored, ok := d.entries[entryID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
		}
		if stored.Status != domain.Draft {
			return fmt.Errorf("%w: entry %s is %s", apperrors.ErrEntryNotDraft, entryID, stored.Status)
		}
		stored.Status = domain.Posted
		stored.PostedAt = &at
		stored.PostedBy = &actorID
		stored.AuditFields.Touch(actorID, at)
		d.entries[entryID] = stored
		return nil
	})
}

func (r *journalRepository) MarkEntryReversed(_ context.Context, orgID, entryID, actorID string, at time.Time) error {
	return r.acc.write(orgID, func(d *orgData) error {
		stored, ok := d.entries[entryID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
		}
		if stored.Status != domain.Posted {
			return fmt.Errorf("%w: entry %s is %s", apperrors.ErrEntryNotPosted, entryID, stored.Status)
		}
		stored.Status = domain.Reversed
		stored.ReversedAt = &at
		stored.ReversedBy = &actorID
		stored.AuditFields.Touch(actorID, at)
		d.entries[entryID] = stored
		return nil
	})
}
