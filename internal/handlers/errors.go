package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
)

// Codes for failures that carry no ledger error code.
const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeUnauthorized   = "UNAUTHORIZED"
	codeInternal       = "INTERNAL"
)

// statusFor maps an error category to its HTTP status. Duplicate and
// conflict errors also match ErrValidation, so they are checked first.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrPolicy):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error", "code"} for err. Integrity and unexpected
// failures are logged and answered with an opaque 500.
func respondError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	code := apperrors.Code(err)
	if code == "" {
		code = codeInvalidRequest
	}
	logger.Warn(msg, slog.String("error", err.Error()), slog.String("code", code))
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

// respondBindError answers a request that failed JSON, query or binding validation.
func respondBindError(c *gin.Context, logger *slog.Logger, err error, what string) {
	logger.Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + ": " + err.Error(), "code": codeInvalidRequest})
}
