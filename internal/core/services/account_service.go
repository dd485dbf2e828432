package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// accountService owns the chart of accounts.
type accountService struct {
	BaseService
	repos portsrepo.RepositoryProvider
}

// NewAccountService creates a new chart of accounts service.
func NewAccountService(repos portsrepo.RepositoryProvider, opts ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: newBaseService(opts...),
		repos:       repos,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a new active account in the org's chart.
func (s *accountService) CreateAccount(ctx context.Context, orgID string, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: account code and name are required", apperrors.ErrValidation)
	}
	if !domain.IsValidAccountCode(code) {
		return nil, fmt.Errorf("%w: account code %q must be 1 to 32 letters, digits, '.' or '-'", apperrors.ErrValidation, code)
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidType, req.AccountType)
	}

	now := s.now()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		OrgID:       orgID,
		Code:        code,
		Name:        name,
		AccountType: req.AccountType,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(actorID, now),
	}

	if err := s.repos.Accounts.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateCode) {
			s.LogWarn(ctx, "Account code already exists", slog.String("org_id", orgID), slog.String("code", code))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("org_id", orgID), slog.String("code", code))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.LogInfo(ctx, "Account created",
		slog.String("org_id", orgID),
		slog.String("account_id", account.AccountID),
		slog.String("code", code),
		slog.String("type", string(account.AccountType)))
	return &account, nil
}

// GetAccount resolves idOrCode as an account id first and falls back to the code.
func (s *accountService) GetAccount(ctx context.Context, orgID, idOrCode string) (*domain.Account, error) {
	ref := strings.TrimSpace(idOrCode)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty account reference", apperrors.ErrAccountNotFound)
	}
	if uuid.Validate(ref) == nil {
		acc, err := s.repos.Accounts.FindAccountByID(ctx, orgID, ref)
		if err == nil {
			return acc, nil
		}
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			return nil, fmt.Errorf("failed to get account %s: %w", ref, err)
		}
	}
	acc, err := s.repos.Accounts.FindAccountByCode(ctx, orgID, ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, ref)
		}
		return nil, fmt.Errorf("failed to get account %s: %w", ref, err)
	}
	return acc, nil
}

// ListAccounts returns the org's chart of accounts ordered by code.
func (s *accountService) ListAccounts(ctx context.Context, orgID string) ([]domain.Account, error) {
	accounts, err := s.repos.Accounts.ListAccounts(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// DeactivateAccount blocks new journal lines from referencing the account.
// Existing lines, including those of drafts, are unaffected.
func (s *accountService) DeactivateAccount(ctx context.Context, orgID, accountID, actorID string) (*domain.Account, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	var account *domain.Account
	err := s.repos.UnitOfWork.WithinOrgTx(ctx, orgID, func(ctx context.Context, repos portsrepo.Repositories) error {
		acc, err := repos.Accounts.FindAccountByID(ctx, orgID, accountID)
		if err != nil {
			return err
		}
		if acc.IsActive {
			now := s.now()
			if err := repos.Accounts.UpdateAccountStatus(ctx, orgID, accountID, false, actorID, now); err != nil {
				return fmt.Errorf("failed to deactivate account: %w", err)
			}
			acc.IsActive = false
			acc.Touch(actorID, now)
		}
		account = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Account deactivated", slog.String("org_id", orgID), slog.String("account_id", accountID))
	return account, nil
}

// DeleteAccount removes an account that has never been referenced by a journal line.
func (s *accountService) DeleteAccount(ctx context.Context, orgID, accountID, actorID string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	err := s.repos.UnitOfWork.WithinOrgTx(ctx, orgID, func(ctx context.Context, repos portsrepo.Repositories) error {
		if _, err := repos.Accounts.FindAccountByID(ctx, orgID, accountID); err != nil {
			return err
		}
		refs, err := repos.Accounts.CountLineReferences(ctx, orgID, accountID)
		if err != nil {
			return fmt.Errorf("failed to count account references: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("%w: %d journal lines reference account %s", apperrors.ErrAccountInUse, refs, accountID)
		}
		return repos.Accounts.DeleteAccount(ctx, orgID, accountID)
	})
	if err != nil {
		return err
	}

	s.LogInfo(ctx, "Account deleted",
		slog.String("org_id", orgID),
		slog.String("account_id", accountID),
		slog.String("actor_id", actorID))
	return nil
}
