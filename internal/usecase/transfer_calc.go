package usecase

import (
	"context"

	"pmr-assist-service/internal/domain/entity"
	"pmr-assist-service/internal/domain/repository"
	"pmr-assist-service/pkg/logger"
)

// Fallback minutes for a mode pair absent from the matrix.
const defaultTransferMinutes = 15

// Directed base connection minutes between transport modes. Lookups are
// from→to; the matrix is not symmetric (leaving an airport is slower than
// entering one).
var baseTransferMatrix = map[entity.ModePair]int{
	{From: entity.ModePlane, To: entity.ModePlane}: 90,
	{From: entity.ModePlane, To: entity.ModeTrain}: 60,
	{From: entity.ModePlane, To: entity.ModeBus}:   45,
	{From: entity.ModePlane, To: entity.ModeTaxi}:  30,
	{From: entity.ModeTrain, To: entity.ModePlane}: 75,
	{From: entity.ModeTrain, To: entity.ModeTrain}: 20,
	{From: entity.ModeTrain, To: entity.ModeBus}:   15,
	{From: entity.ModeTrain, To: entity.ModeTaxi}:  10,
	{From: entity.ModeBus, To: entity.ModePlane}:   60,
	{From: entity.ModeBus, To: entity.ModeTrain}:   15,
	{From: entity.ModeBus, To: entity.ModeBus}:     15,
	{From: entity.ModeBus, To: entity.ModeTaxi}:    10,
	{From: entity.ModeTaxi, To: entity.ModePlane}:  45,
	{From: entity.ModeTaxi, To: entity.ModeTrain}:  15,
	{From: entity.ModeTaxi, To: entity.ModeBus}:    10,
}

// Extra minutes per mobility aid. Electric wheelchairs carry the largest
// allowance; an unknown aid adds nothing.
var mobilityAidExtraMinutes = map[string]int{
	entity.AidWheelchairElectric: 25,
	entity.AidWheelchairManual:   15,
	entity.AidWalker:             10,
	entity.AidCane:               5,
	entity.AidNone:               0,
}

// TransferCalculator computes the minimum required connection time between
// two consecutive segments. It is the single copy of the minutes matrix,
// consumed by both the planner and the monitor. Read-only after
// construction, safe for concurrent reads.
type TransferCalculator struct {
	matrix map[entity.ModePair]int
}

// NewTransferCalculator builds the calculator from the built-in matrix.
func NewTransferCalculator() *TransferCalculator {
	matrix := make(map[entity.ModePair]int, len(baseTransferMatrix))
	for k, v := range baseTransferMatrix {
		matrix[k] = v
	}
	return &TransferCalculator{matrix: matrix}
}

// NewTransferCalculatorFromRepo builds the calculator and merges mode-pair
// overrides from the reference database. A load failure is logged and the
// built-in matrix is used as-is.
func NewTransferCalculatorFromRepo(ctx context.Context, repo repository.OperatorRuleRepository, log logger.Logger) *TransferCalculator {
	calc := NewTransferCalculator()
	overrides, err := repo.LoadTransferOverrides(ctx)
	if err != nil {
		log.Error("Failed to load transfer-minute overrides, using built-in matrix", "error", err)
		return calc
	}
	for pair, minutes := range overrides {
		calc.matrix[pair] = minutes
	}
	log.Info("Loaded transfer-minute overrides", "count", len(overrides))
	return calc
}

// RequiredMinutes returns the minimum connection time for a directed mode
// pair and a mobility aid.
func (c *TransferCalculator) RequiredMinutes(fromMode, toMode, mobilityAid string) float64 {
	base, ok := c.matrix[entity.ModePair{From: fromMode, To: toMode}]
	if !ok {
		base = defaultTransferMinutes
	}
	return float64(base + mobilityAidExtraMinutes[mobilityAid])
}
