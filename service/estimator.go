package service

import (
	"fmt"
	"math"

	"cpa-savings/domain"
)

func DefaultAssumptions() domain.Assumptions {
	return domain.Assumptions{
		CostReductionRatio:          DefaultCostReductionRatio,
		BookkeepingEliminationRatio: DefaultBookkeepingEliminationRatio,
		HourlyRate:                  DefaultHourlyRate,
	}
}

// ValidateAssumptions checks that both ratios lie in [0, 1] and the hourly
// rate is a finite, non-negative amount.
func ValidateAssumptions(a domain.Assumptions) error {
	if !isRatio(a.CostReductionRatio) {
		return fmt.Errorf("cost reduction ratio must be between 0 and 1, got %v", a.CostReductionRatio)
	}
	if !isRatio(a.BookkeepingEliminationRatio) {
		return fmt.Errorf("bookkeeping elimination ratio must be between 0 and 1, got %v", a.BookkeepingEliminationRatio)
	}
	if math.IsNaN(a.HourlyRate) || math.IsInf(a.HourlyRate, 0) || a.HourlyRate < 0 {
		return fmt.Errorf("hourly rate must be a non-negative amount, got %v", a.HourlyRate)
	}
	return nil
}

func isRatio(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// Estimate derives the savings result for an already-normalized input. It is
// pure: the same input and assumptions always give the same result.
//
// Operational spend (salaries, software, penalties) is reduced by
// CostReductionRatio. Bookkeeping time, valued at HourlyRate, is reduced by
// BookkeepingEliminationRatio.
func Estimate(input domain.CalculatorInput, a domain.Assumptions) domain.CalculationResult {
	operationalAnnualCost := float64(input.Employees)*input.MonthlyCost*MonthsPerYear +
		input.SoftwareSpend*MonthsPerYear +
		input.PenaltyFees

	// hoursSpent is a monthly figure but is valued as an annual cost
	// equivalent, matching the published calculator.
	bookkeepingAnnualCost := input.HoursSpent * a.HourlyRate

	baseline := operationalAnnualCost + bookkeepingAnnualCost

	costReduction := operationalAnnualCost * a.CostReductionRatio
	efficiencyGain := bookkeepingAnnualCost * a.BookkeepingEliminationRatio
	totalSavings := costReduction + efficiencyGain

	optimized := baseline - totalSavings

	percentage := 0.0
	if baseline > 0 {
		percentage = totalSavings / baseline * 100
	}

	return domain.CalculationResult{
		BaselineAnnualCost:      baseline,
		OptimizedAnnualCost:     optimized,
		CostReduction:           costReduction,
		EstimatedEfficiencyGain: efficiencyGain,
		TotalSavings:            math.Max(0, totalSavings),
		PercentageSavings:       math.Max(0, percentage),
	}
}
