package usecase

import (
	"context"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
	"pmr-assist-service/pkg/logger"
)

// Rule resolution sources, in precedence order
const (
	RuleSourceOperator = "operator"
	RuleSourceMode     = "mode"
	RuleSourceGlobal   = "global"
)

// Global default lead time: 48h on weekdays, 72h when the departure date
// falls on a weekend.
var globalLeadTimeRule = entity.LeadTimeRule{WeekdayHours: 48, WeekendHours: 72}

// Mode-level defaults applied when no operator-specific rule exists.
var modeLeadTimeRules = map[string]entity.LeadTimeRule{
	entity.ModePlane: {WeekdayHours: 48, WeekendHours: 72},
	entity.ModeTrain: {WeekdayHours: 48, WeekendHours: 72},
	entity.ModeBus:   {WeekdayHours: 36, WeekendHours: 48},
	entity.ModeTaxi:  {WeekdayHours: 2, WeekendHours: 2},
}

// Operator-specific rules shipped with the service. Overrides loaded from
// the reference database are merged on top at startup.
var operatorLeadTimeRules = map[string]entity.LeadTimeRule{
	"SNCF":       {WeekdayHours: 48, WeekendHours: 72},
	"Air France": {WeekdayHours: 48, WeekendHours: 48},
	"FlixBus":    {WeekdayHours: 36, WeekendHours: 48},
	"Eurostar":   {WeekdayHours: 24, WeekendHours: 48},
}

// LeadTimeTable resolves the minimum advance-notice rule for a booking.
// It is built once at startup and read-only afterwards, safe for
// concurrent reads.
type LeadTimeTable struct {
	operator map[string]entity.LeadTimeRule
	mode     map[string]entity.LeadTimeRule
	global   entity.LeadTimeRule
}

// NewLeadTimeTable builds the table from the built-in rules.
func NewLeadTimeTable() *LeadTimeTable {
	operator := make(map[string]entity.LeadTimeRule, len(operatorLeadTimeRules))
	for k, v := range operatorLeadTimeRules {
		operator[k] = v
	}
	mode := make(map[string]entity.LeadTimeRule, len(modeLeadTimeRules))
	for k, v := range modeLeadTimeRules {
		mode[k] = v
	}
	return &LeadTimeTable{
		operator: operator,
		mode:     mode,
		global:   globalLeadTimeRule,
	}
}

// NewLeadTimeTableFromRepo builds the table and merges operator overrides
// from the reference database on top of the built-in rules. A load failure
// is logged and the built-in rules are used as-is.
func NewLeadTimeTableFromRepo(ctx context.Context, repo repository.OperatorRuleRepository, log logger.Logger) *LeadTimeTable {
	table := NewLeadTimeTable()
	overrides, err := repo.LoadLeadTimeOverrides(ctx)
	if err != nil {
		log.Error("Failed to load operator lead-time overrides, using built-in rules", "error", err)
		return table
	}
	for operator, rule := range overrides {
		table.operator[operator] = rule
	}
	log.Info("Loaded operator lead-time overrides", "count", len(overrides))
	return table
}

// Resolve returns the effective rule for an operator and mode along with
// the source it came from. Precedence: operator-specific, then mode-level,
// then the global default.
func (t *LeadTimeTable) Resolve(operator, mode string) (entity.LeadTimeRule, string) {
	if rule, ok := t.operator[operator]; ok {
		return rule, RuleSourceOperator
	}
	if rule, ok := t.mode[mode]; ok {
		return rule, RuleSourceMode
	}
	return t.global, RuleSourceGlobal
}
