package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// AccountReader defines read operations for the chart of accounts.
type AccountReader interface {
	// FindAccountByID fails with apperrors.ErrAccountNotFound when absent.
	FindAccountByID(ctx context.Context, orgID, accountID string) (*domain.Account, error)
	// FindAccountByCode fails with apperrors.ErrAccountNotFound when absent.
	FindAccountByCode(ctx context.Context, orgID, code string) (*domain.Account, error)
	// FindAccountsByIDs returns the accounts that exist, keyed by id. Missing ids are simply absent.
	FindAccountsByIDs(ctx context.Context, orgID string, accountIDs []string) (map[string]domain.Account, error)
	// ListAccounts returns every account of the org ordered by code.
	ListAccounts(ctx context.Context, orgID string) ([]domain.Account, error)
	// CountLineReferences counts journal lines in any status that reference the account.
	CountLineReferences(ctx context.Context, orgID, accountID string) (int, error)
}

// AccountWriter defines write operations for the chart of accounts.
type AccountWriter interface {
	// SaveAccount fails with apperrors.ErrDuplicateCode when the code is taken.
	SaveAccount(ctx context.Context, account domain.Account) error
	UpdateAccountStatus(ctx context.Context, orgID, accountID string, isActive bool, updatedBy string, updatedAt time.Time) error
	DeleteAccount(ctx context.Context, orgID, accountID string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
