package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// RegisterAccountRoutes registers routes related to accounts under an org group.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:account_ref", h.getAccount)
		accounts.POST("/:account_ref/deactivate", h.deactivateAccount)
		accounts.DELETE("/:account_ref", h.deleteAccount)
	}
}

// actorFromContext reads the org id path param and the authenticated actor.
// It writes the error response itself and reports false when either is missing.
func actorFromContext(c *gin.Context, logger *slog.Logger) (orgID, actorID string, ok bool) {
	orgID = c.Param("org_id")
	if orgID == "" {
		logger.Error("Org ID missing from path")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Org ID required in path", "code": codeInvalidRequest})
		return "", "", false
	}
	actorID, ok = middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": codeUnauthorized})
		return "", "", false
	}
	return orgID, actorID, true
}

// respondAccountError answers a missing account on its own resource with 404;
// journal lines naming an unknown account stay a 400.
func respondAccountError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		logger.Warn(msg, slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": apperrors.ErrAccountNotFound.Code})
		return
	}
	respondError(c, logger, err, msg)
}

// createAccount adds an account to the org's chart.
// @Summary Create an account
// @Description Adds an active account to the organization's chart of accounts
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input, account code or account type"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Account code already exists"
// @Failure 500 {object} map[string]string "Failed to create account"
// @Security BearerAuth
// @Router /orgs/{org_id}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err, "request format")
		return
	}

	logger = logger.With(slog.String("org_id", orgID))
	logger.Info("Received request to create account", slog.String("code", req.Code), slog.String("account_type", string(req.AccountType)))

	account, err := h.accountService.CreateAccount(c.Request.Context(), orgID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts returns the chart of accounts ordered by code.
// @Summary List accounts
// @Description Returns the organization's chart of accounts ordered by code
// @Tags accounts
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Security BearerAuth
// @Router /orgs/{org_id}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, logger, err, "Failed to list accounts")
		return
	}

	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// getAccount resolves the path segment as an account id, then as a code.
// @Summary Get an account
// @Description Retrieves an account by its ID or, failing that, by its code
// @Tags accounts
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   account_ref path string true "Account ID or code"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to get account"
// @Security BearerAuth
// @Router /orgs/{org_id}/accounts/{account_ref} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, _, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	ref := c.Param("account_ref")

	account, err := h.accountService.GetAccount(c.Request.Context(), orgID, ref)
	if err != nil {
		respondAccountError(c, logger, err, "Failed to get account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deactivateAccount stops new lines from referencing the account.
// @Summary Deactivate an account
// @Description Marks the account inactive so new journal lines cannot reference it
// @Tags accounts
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   account_ref path string true "Account ID or code"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to deactivate account"
// @Security BearerAuth
// @Router /orgs/{org_id}/accounts/{account_ref}/deactivate [post]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	accountID := c.Param("account_ref")

	account, err := h.accountService.DeactivateAccount(c.Request.Context(), orgID, accountID, actorID)
	if err != nil {
		respondAccountError(c, logger, err, "Failed to deactivate account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deleteAccount hard-deletes an account no journal line references.
// @Summary Delete an account
// @Description Deletes an account that no journal line references
// @Tags accounts
// @Produce  json
// @Param   org_id path string true "Organization ID"
// @Param   account_ref path string true "Account ID or code"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account is referenced by journal lines"
// @Failure 500 {object} map[string]string "Failed to delete account"
// @Security BearerAuth
// @Router /orgs/{org_id}/accounts/{account_ref} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID, actorID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	accountID := c.Param("account_ref")

	if err := h.accountService.DeleteAccount(c.Request.Context(), orgID, accountID, actorID); err != nil {
		respondAccountError(c, logger, err, "Failed to delete account")
		return
	}

	c.Status(http.StatusNoContent)
}
