// Package memory is an in-process implementation of the repository ports.
// It is meant for tests and single-node development; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// Store holds every org's ledger data. Each org has its own lock; a unit of work
// mutates a private copy of the org and swaps it in on commit.
type Store struct {
	mu   sync.Mutex
	orgs map[string]*orgState

	seq atomic.Int64

	outboxMu       sync.Mutex
	outbox         []domain.OutboxMessage
	outboxID       int64
	outboxDisabled bool
}

// Option configures a Store.
type Option func(*Store)

// WithoutOutbox makes the store drop outbox messages on commit. Use it when no
// relay will ever drain them.
func WithoutOutbox() Option {
	return func(s *Store) { s.outboxDisabled = true }
}

type orgState struct {
	mu   sync.RWMutex
	data *orgData
}

type orgData struct {
	accounts  map[string]domain.Account
	codes     map[string]string // code -> account id
	entries   map[string]domain.JournalEntry
	reversals map[string]string // original entry id -> reversal entry id
	periods   map[string]domain.FiscalPeriod
	audit     []domain.PeriodAuditRecord
}

func newOrgData() *orgData {
	return &orgData{
		accounts:  make(map[string]domain.Account),
		codes:     make(map[string]string),
		entries:   make(map[string]domain.JournalEntry),
		reversals: make(map[string]string),
		periods:   make(map[string]domain.FiscalPeriod),
	}
}

func (d *orgData) clone() *orgData {
	c := &orgData{
		accounts:  make(map[string]domain.Account, len(d.accounts)),
		codes:     make(map[string]string, len(d.codes)),
		entries:   make(map[string]domain.JournalEntry, len(d.entries)),
		reversals: make(map[string]string, len(d.reversals)),
		periods:   make(map[string]domain.FiscalPeriod, len(d.periods)),
		audit:     append([]domain.PeriodAuditRecord(nil), d.audit...),
	}
	for k, v := range d.accounts {
		c.accounts[k] = v
	}
	for k, v := range d.codes {
		c.codes[k] = v
	}
	for k, v := range d.entries {
		c.entries[k] = copyEntry(v)
	}
	for k, v := range d.reversals {
		c.reversals[k] = v
	}
	for k, v := range d.periods {
		c.periods[k] = v
	}
	return c
}

// copyEntry detaches the line slice so callers never alias stored state.
func copyEntry(e domain.JournalEntry) domain.JournalEntry {
	e.Lines = append([]domain.JournalLine(nil), e.Lines...)
	return e
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{orgs: make(map[string]*orgState)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lookup returns the org's state, or nil if nothing was ever written for it.
func (s *Store) lookup(orgID string) *orgState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orgs[orgID]
}

// org returns the org's state, creating it on first write.
func (s *Store) org(orgID string) *orgState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.orgs[orgID]
	if !ok {
		st = &orgState{data: newOrgData()}
		s.orgs[orgID] = st
	}
	return st
}

// Provider returns the repositories and unit of work backed by this store.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Repositories: s.repositories(directAccess{store: s}, nil),
		UnitOfWork:   s,
	}
}

func (s *Store) repositories(acc access, pending *[]domain.OutboxMessage) portsrepo.Repositories {
	return portsrepo.Repositories{
		Accounts:  &accountRepository{acc: acc},
		Journals:  &journalRepository{acc: acc, store: s},
		Periods:   &periodRepository{acc: acc},
		Reporting: &reportingRepository{acc: acc},
		Outbox:    &outboxRepository{store: s, pending: pending},
	}
}

var _ portsrepo.UnitOfWork = (*Store)(nil)

// WithinOrgTx runs fn against a private copy of the org, holding the org's write
// lock throughout. The copy replaces the org's data only if fn succeeds.
func (s *Store) WithinOrgTx(ctx context.Context, orgID string, fn func(ctx context.Context, repos portsrepo.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	st := s.org(orgID)
	st.mu.Lock()
	defer st.mu.Unlock()

	working := st.data.clone()
	var pending []domain.OutboxMessage
	tx := &txAccess{orgID: orgID, data: working}

	if err := fn(ctx, s.repositories(tx, &pending)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	st.data = working
	s.appendOutbox(pending)
	return nil
}

// WithinSnapshot runs fn under the org's read lock. Writes are rejected.
func (s *Store) WithinSnapshot(ctx context.Context, orgID string, fn func(ctx context.Context, repos portsrepo.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	st := s.lookup(orgID)
	if st == nil {
		tx := &txAccess{orgID: orgID, data: newOrgData(), readOnly: true}
		return fn(ctx, s.repositories(tx, nil))
	}
	st.mu.RLock()
	defer st.mu.RUnlock()

	tx := &txAccess{orgID: orgID, data: st.data, readOnly: true}
	return fn(ctx, s.repositories(tx, nil))
}

// access abstracts whether a repository call locks the org itself or runs inside
// a unit of work that already holds it.
type access interface {
	read(orgID string, fn func(*orgData) error) error
	write(orgID string, fn func(*orgData) error) error
}

type directAccess struct {
	store *Store
}

// read sees an empty org for ids that were never written, without registering them.
func (a directAccess) read(orgID string, fn func(*orgData) error) error {
	st := a.store.lookup(orgID)
	if st == nil {
		return fn(newOrgData())
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return fn(st.data)
}

// write applies fn to a copy so a failing call leaves no partial change.
func (a directAccess) write(orgID string, fn func(*orgData) error) error {
	st := a.store.org(orgID)
	st.mu.Lock()
	defer st.mu.Unlock()
	working := st.data.clone()
	if err := fn(working); err != nil {
		return err
	}
	st.data = working
	return nil
}

type txAccess struct {
	orgID    string
	data     *orgData
	readOnly bool
}

func (a *txAccess) check(orgID string) error {
	if orgID != a.orgID {
		return fmt.Errorf("%w: unit of work for org %s cannot access org %s", apperrors.ErrInternal, a.orgID, orgID)
	}
	return nil
}

func (a *txAccess) read(orgID string, fn func(*orgData) error) error {
	if err := a.check(orgID); err != nil {
		return err
	}
	return fn(a.data)
}

func (a *txAccess) write(orgID string, fn func(*orgData) error) error {
	if err := a.check(orgID); err != nil {
		return err
	}
	if a.readOnly {
		return fmt.Errorf("%w: write attempted in a read-only snapshot", apperrors.ErrInternal)
	}
	return fn(a.data)
}
