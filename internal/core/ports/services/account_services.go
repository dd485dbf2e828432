package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// AccountCreator defines operations for creating accounts.
type AccountCreator interface {
	CreateAccount(ctx context.Context, orgID string, req dto.CreateAccountRequest, actorID string) (*domain.Account, error)
}

// AccountReader defines operations for reading accounts.
type AccountReader interface {
	// GetAccount looks the account up by id first, then by code.
	GetAccount(ctx context.Context, orgID, idOrCode string) (*domain.Account, error)
	ListAccounts(ctx context.Context, orgID string) ([]domain.Account, error)
}

// AccountMutator defines operations that change or remove accounts.
type AccountMutator interface {
	DeactivateAccount(ctx context.Context, orgID, accountID, actorID string) (*domain.Account, error)
	// DeleteAccount hard-deletes an account that no journal line references.
	DeleteAccount(ctx context.Context, orgID, accountID, actorID string) error
}

// AccountSvcFacade combines all account-related service interfaces.
type AccountSvcFacade interface {
	AccountCreator
	AccountReader
	AccountMutator
}
