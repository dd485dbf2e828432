package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Category sentinels. Every coded ledger error matches exactly one of these
// with errors.Is, so callers can branch on the category without knowing the code.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
	ErrDuplicate  = errors.New("resource already exists")
	ErrConflict   = errors.New("conflicting state")
	ErrPolicy     = errors.New("rejected by ledger policy")
	ErrIntegrity  = errors.New("ledger integrity violation")
	ErrInternal   = errors.New("internal error")
)

// LedgerError is a named, recoverable or fatal ledger failure.
type LedgerError struct {
	Code     string
	Message  string
	category error
}

func newLedgerError(code, message string, category error) *LedgerError {
	return &LedgerError{Code: code, Message: message, category: category}
}

func (e *LedgerError) Error() string { return e.Message }

// Is reports whether target is the category this error belongs to.
// Duplicate and conflict errors are caller mistakes too, so they also
// match ErrValidation.
func (e *LedgerError) Is(target error) bool {
	if target == e.category {
		return true
	}
	return target == ErrValidation && (e.category == ErrDuplicate || e.category == ErrConflict)
}

// Category returns the sentinel the error belongs to.
func (e *LedgerError) Category() error { return e.category }

// Chart of accounts
var (
	ErrDuplicateCode   = newLedgerError("DUPLICATE_CODE", "account code already exists", ErrDuplicate)
	ErrInvalidType     = newLedgerError("INVALID_TYPE", "unknown account type", ErrValidation)
	ErrAccountNotFound = newLedgerError("ACCOUNT_NOT_FOUND", "account not found", ErrValidation)
	ErrAccountInactive = newLedgerError("ACCOUNT_INACTIVE", "account is inactive", ErrValidation)
	ErrAccountInUse    = newLedgerError("ACCOUNT_IN_USE", "account is referenced by journal lines", ErrConflict)
)

// Journal ledger and state machine
var (
	ErrUnbalancedEntry    = newLedgerError("UNBALANCED_ENTRY", "journal entry debits and credits do not balance", ErrValidation)
	ErrInvalidLine        = newLedgerError("INVALID_LINE", "invalid journal line", ErrValidation)
	ErrInvalidSource      = newLedgerError("INVALID_SOURCE", "invalid entry source", ErrValidation)
	ErrEntryNotFound      = newLedgerError("ENTRY_NOT_FOUND", "journal entry not found", ErrNotFound)
	ErrEntryNotDraft      = newLedgerError("ENTRY_NOT_DRAFT", "journal entry is not a draft", ErrConflict)
	ErrEntryNotPosted     = newLedgerError("ENTRY_NOT_POSTED", "journal entry is not posted", ErrConflict)
	ErrAlreadyReversed    = newLedgerError("ALREADY_REVERSED", "journal entry has already been reversed", ErrConflict)
	ErrReversalOfReversal = newLedgerError("REVERSAL_OF_REVERSAL", "a reversal entry cannot itself be reversed", ErrConflict)
)

// Fiscal periods
var (
	ErrPeriodNotFound     = newLedgerError("PERIOD_NOT_FOUND", "fiscal period not found", ErrNotFound)
	ErrInvalidTransition  = newLedgerError("INVALID_TRANSITION", "invalid fiscal period transition", ErrConflict)
	ErrInvalidPeriodRange = newLedgerError("INVALID_PERIOD_RANGE", "period must start on or before its end", ErrValidation)
	ErrPeriodOverlap      = newLedgerError("PERIOD_OVERLAP", "fiscal period overlaps an existing period", ErrDuplicate)
	ErrReasonRequired     = newLedgerError("REASON_REQUIRED", "a reason is required", ErrValidation)
	ErrPeriodLocked       = newLedgerError("PERIOD_LOCKED", "fiscal period does not accept postings", ErrPolicy)
)

// Reporting
var (
	ErrInvalidDateRange    = newLedgerError("INVALID_DATE_RANGE", "fromDate must be on or before toDate", ErrValidation)
	ErrInternalConsistency = newLedgerError("INTERNAL_CONSISTENCY", "ledger internal consistency check failed", ErrIntegrity)
)

// ConsistencyError carries the totals that failed a report's integrity check.
// It never leaves the process boundary; handlers answer with an opaque failure.
type ConsistencyError struct {
	Report string
	OrgID  string
	Check  string
	Left   decimal.Decimal
	Right  decimal.Decimal
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: %s report for org %s: %s (%s != %s)",
		ErrInternalConsistency.Message, e.Report, e.OrgID, e.Check, e.Left.String(), e.Right.String())
}

func (e *ConsistencyError) Is(target error) bool {
	return target == ErrInternalConsistency || target == ErrIntegrity
}

// Code extracts the ledger error code from err, or "" if it carries none.
func Code(err error) string {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Code
	}
	if errors.Is(err, ErrInternalConsistency) {
		return ErrInternalConsistency.Code
	}
	return ""
}
