package repository

import (
	"context"

	"pmr-assist-service/internal/domain/entity"
)

// OperatorRuleRepository defines the interface for operator reference data:
// per-operator lead-time overrides and per mode-pair transfer-minute
// overrides. Loaded once at startup into the read-only in-process tables.
type OperatorRuleRepository interface {
	LoadLeadTimeOverrides(ctx context.Context) (map[string]entity.LeadTimeRule, error)
	LoadTransferOverrides(ctx context.Context) (map[entity.ModePair]int, error)
}
