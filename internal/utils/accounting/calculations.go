package accounting

import (
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MinLinesPerEntry is the smallest number of lines a journal entry may carry.
const MinLinesPerEntry = 2

// NormalBalance signs a debit/credit pair to the account type's normal side:
// debit - credit for debit-normal types, credit - debit otherwise.
func NormalBalance(accountType domain.AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	if accountType.IsDebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// FitsScale reports whether amount has no more than scale fractional digits.
func FitsScale(amount decimal.Decimal, scale int32) bool {
	return amount.Equal(amount.Truncate(scale))
}

// ValidateLine checks a single line: non-negative sides, exactly one of them
// positive, and amounts representable at the given scale.
func ValidateLine(index int, line domain.JournalLine, scale int32) error {
	if line.AccountID == "" {
		return fmt.Errorf("%w: line %d has no account", apperrors.ErrInvalidLine, index)
	}
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrInvalidLine, index)
	}
	if line.Debit.IsPositive() == line.Credit.IsPositive() {
		return fmt.Errorf("%w: line %d must have exactly one of debit or credit greater than zero", apperrors.ErrInvalidLine, index)
	}
	if !FitsScale(line.Debit, scale) || !FitsScale(line.Credit, scale) {
		return fmt.Errorf("%w: line %d has more than %d decimal places", apperrors.ErrInvalidLine, index, scale)
	}
	return nil
}

// ValidateEntryLines checks the line count, each line, and that debits equal credits exactly.
func ValidateEntryLines(lines []domain.JournalLine, scale int32) error {
	if len(lines) < MinLinesPerEntry {
		return fmt.Errorf("%w: an entry requires at least %d lines, got %d", apperrors.ErrInvalidLine, MinLinesPerEntry, len(lines))
	}
	for i, l := range lines {
		if err := ValidateLine(i, l, scale); err != nil {
			return err
		}
	}
	return ValidateBalance(domain.JournalEntry{Lines: lines})
}

// ValidateBalance fails with apperrors.ErrUnbalancedEntry unless debits equal credits exactly.
func ValidateBalance(entry domain.JournalEntry) error {
	debit, credit := entry.Totals()
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalancedEntry, debit.String(), credit.String())
	}
	return nil
}
