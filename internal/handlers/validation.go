package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// RegisterValidators adds the ledger binding tags to gin's validator:
// accountcode (1 to 32 letters, digits, '.' or '-') and entrysource.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("accountcode", func(fl validator.FieldLevel) bool {
		return domain.IsValidAccountCode(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register 'accountcode': %w", err)
	}
	if err := v.RegisterValidation("entrysource", func(fl validator.FieldLevel) bool {
		return domain.EntrySource(fl.Field().String()).IsValid()
	}); err != nil {
		return fmt.Errorf("failed to register 'entrysource': %w", err)
	}
	return nil
}
