package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
)

// GormOperatorRuleRepository implements the OperatorRuleRepository interface
type GormOperatorRuleRepository struct {
	db *gorm.DB
}

// NewGormOperatorRuleRepository creates a new GORM operator rule repository
func NewGormOperatorRuleRepository(db *gorm.DB) repository.OperatorRuleRepository {
	return &GormOperatorRuleRepository{
		db: db,
	}
}

// OperatorRules GORM model for per-operator lead-time overrides
type OperatorRules struct {
	ID           uint   `gorm:"primaryKey"`
	Operator     string `gorm:"column:operator;unique"`
	WeekdayHours float64
	WeekendHours float64
	DeletedAt    gorm.DeletedAt `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the default table name
func (OperatorRules) TableName() string {
	return "m_operator_rules"
}

// TransferRules GORM model for per mode-pair transfer-minute overrides
type TransferRules struct {
	ID        uint   `gorm:"primaryKey"`
	FromMode  string `gorm:"column:from_mode;uniqueIndex:idx_mode_pair"`
	ToMode    string `gorm:"column:to_mode;uniqueIndex:idx_mode_pair"`
	Minutes   int
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (TransferRules) TableName() string {
	return "m_transfer_rules"
}

// LoadLeadTimeOverrides returns all per-operator lead-time rules
func (r *GormOperatorRuleRepository) LoadLeadTimeOverrides(ctx context.Context) (map[string]entity.LeadTimeRule, error) {
	var rows []OperatorRules
	result := r.db.WithContext(ctx).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	overrides := make(map[string]entity.LeadTimeRule, len(rows))
	for _, row := range rows {
		overrides[row.Operator] = entity.LeadTimeRule{
			WeekdayHours: row.WeekdayHours,
			WeekendHours: row.WeekendHours,
		}
	}
	return overrides, nil
}

// LoadTransferOverrides returns all per mode-pair transfer-minute rules
func (r *GormOperatorRuleRepository) LoadTransferOverrides(ctx context.Context) (map[entity.ModePair]int, error) {
	var rows []TransferRules
	result := r.db.WithContext(ctx).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	overrides := make(map[entity.ModePair]int, len(rows))
	for _, row := range rows {
		overrides[entity.ModePair{From: row.FromMode, To: row.ToMode}] = row.Minutes
	}
	return overrides, nil
}
