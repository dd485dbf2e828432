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

type accountRepository struct {
	acc access
}

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

func (r *accountRepository) FindAccountByID(_ context.Context, orgID, accountID string) (*domain.Account, error) {
	var out *domain.Account
	err := r.acc.read(orgID, func(d *orgData) error {
		a, ok := d.accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *accountRepository) FindAccountByCode(_ context.Context, orgID, code string) (*domain.Account, error) {
	var out *domain.Account
	err := r.acc.read(orgID, func(d *orgData) error {
		id, ok := d.codes[code]
		if !ok {
			return fmt.Errorf("%w: code %s", apperrors.ErrAccountNotFound, code)
		}
		a := d.accounts[id]
		out = &a
		return nil
	})
	return out, err
}

func (r *accountRepository) FindAccountsByIDs(_ context.Context, orgID string, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	err := r.acc.read(orgID, func(d *orgData) error {
		for _, id := range accountIDs {
			if a, ok := d.accounts[id]; ok {
				out[id] = a
			}
		}
		return nil
	})
	return out, err
}

func (r *accountRepository) ListAccounts(_ context.Context, orgID string) ([]domain.Account, error) {
	var out []domain.Account
	err := r.acc.read(orgID, func(d *orgData) error {
		out = make([]domain.Account, 0, len(d.accounts))
		for _, a := range d.accounts {
			out = append(out, a)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

func (r *accountRepository) CountLineReferences(_ context.Context, orgID, accountID string) (int, error) {
	count := 0
	err := r.acc.read(orgID, func(d *orgData) error {
		for _, e := range d.entries {
			for _, l := range e.Lines {
				if l.AccountID == accountID {
					count++
				}
			}
		}
		return nil
	})
	return count, err
}

func (r *accountRepository) SaveAccount(_ context.Context, account domain.Account) error {
	return r.acc.write(account.OrgID, func(d *orgData) error {
		if _, taken := d.codes[account.Code]; taken {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateCode, account.Code)
		}
		d.accounts[account.AccountID] = account
		d.codes[account.Code] = account.AccountID
		return nil
	})
}

func (r *accountRepository) UpdateAccountStatus(_ context.Context, orgID, accountID string, isActive bool, updatedBy string, updatedAt time.Time) error {
	return r.acc.write(orgID, func(d *orgData) error {
		a, ok := d.accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		a.IsActive = isActive
		a.Touch(updatedBy, updatedAt)
		d.accounts[accountID] = a
		return nil
	})
}

func (r *accountRepository) DeleteAccount(_ context.Context, orgID, accountID string) error {
	return r.acc.write(orgID, func(d *orgData) error {
		a, ok := d.accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		delete(d.accounts, accountID)
		delete(d.codes, a.Code)
		return nil
	})
}
