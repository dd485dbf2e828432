package services

import (
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
)

// RulesFromConfig maps the ledger section of the configuration to posting rules.
func RulesFromConfig(cfg *config.Config) PostingRules {
	if cfg == nil {
		return DefaultPostingRules
	}
	return PostingRules{
		AmountScale:   cfg.Ledger.AmountScale,
		RequirePeriod: cfg.Ledger.RequirePeriod,
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...ServiceOption) *portssvc.ServiceContainer {
	rules := RulesFromConfig(cfg)

	return &portssvc.ServiceContainer{
		Account:   NewAccountService(repos, opts...),
		Journal:   NewJournalService(repos, rules, opts...),
		Posting:   NewPostingService(repos, rules, opts...),
		Period:    NewPeriodService(repos, rules, opts...),
		Reporting: NewReportingService(repos, opts...),
	}
}
