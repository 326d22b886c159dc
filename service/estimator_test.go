package service

import (
	"math"
	"testing"

	"cpa-savings/domain"
)

func scenarioA() domain.CalculatorInput {
	return domain.CalculatorInput{
		Employees:     2,
		MonthlyCost:   4000,
		PenaltyFees:   1500,
		SoftwareSpend: 300,
		HoursSpent:    40,
	}
}

func TestEstimate_ScenarioA(t *testing.T) {

	result := Estimate(scenarioA(), DefaultAssumptions())

	expected := domain.CalculationResult{
		BaselineAnnualCost:      103100,
		OptimizedAnnualCost:     75825,
		CostReduction:           25275,
		EstimatedEfficiencyGain: 2000,
		TotalSavings:            27275,
	}

	if result.BaselineAnnualCost != expected.BaselineAnnualCost {
		t.Errorf("baseline: expected %.2f, got %.2f", expected.BaselineAnnualCost, result.BaselineAnnualCost)
	}
	if result.OptimizedAnnualCost != expected.OptimizedAnnualCost {
		t.Errorf("optimized: expected %.2f, got %.2f", expected.OptimizedAnnualCost, result.OptimizedAnnualCost)
	}
	if result.CostReduction != expected.CostReduction {
		t.Errorf("cost reduction: expected %.2f, got %.2f", expected.CostReduction, result.CostReduction)
	}
	if result.EstimatedEfficiencyGain != expected.EstimatedEfficiencyGain {
		t.Errorf("efficiency gain: expected %.2f, got %.2f", expected.EstimatedEfficiencyGain, result.EstimatedEfficiencyGain)
	}
	if result.TotalSavings != expected.TotalSavings {
		t.Errorf("total savings: expected %.2f, got %.2f", expected.TotalSavings, result.TotalSavings)
	}

	wantPct := 27275.0 / 103100.0 * 100
	if math.Abs(result.PercentageSavings-wantPct) > 1e-9 {
		t.Errorf("percentage: expected %.4f, got %.4f", wantPct, result.PercentageSavings)
	}
	if math.Abs(result.PercentageSavings-26.45) > 0.01 {
		t.Errorf("percentage: expected about 26.45, got %.4f", result.PercentageSavings)
	}
}

func TestEstimate_AllZero(t *testing.T) {

	result := Estimate(domain.CalculatorInput{}, DefaultAssumptions())

	if result.BaselineAnnualCost != 0 {
		t.Errorf("expected zero baseline, got %.2f", result.BaselineAnnualCost)
	}
	if result.TotalSavings != 0 {
		t.Errorf("expected zero savings, got %.2f", result.TotalSavings)
	}
	if result.PercentageSavings != 0 {
		t.Errorf("expected zero percentage, got %.2f", result.PercentageSavings)
	}
	if math.IsNaN(result.PercentageSavings) {
		t.Errorf("percentage must not be NaN")
	}
}

func TestEstimate_Invariants(t *testing.T) {

	inputs := []domain.CalculatorInput{
		scenarioA(),
		{},
		{Employees: 1},
		{HoursSpent: 12.5},
		{PenaltyFees: 999.99},
		{Employees: 7, MonthlyCost: 6123.45, SoftwareSpend: 87.3, HoursSpent: 160},
		{Employees: 10000, MonthlyCost: 10_000_000, PenaltyFees: 100_000_000, SoftwareSpend: 10_000_000, HoursSpent: 10_000},
	}

	for _, input := range inputs {
		r := Estimate(input, DefaultAssumptions())

		if r.TotalSavings < 0 || r.PercentageSavings < 0 {
			t.Errorf("%+v: negative savings %+v", input, r)
		}
		if r.TotalSavings != r.CostReduction+r.EstimatedEfficiencyGain {
			t.Errorf("%+v: total %v != %v + %v", input, r.TotalSavings, r.CostReduction, r.EstimatedEfficiencyGain)
		}
		if r.OptimizedAnnualCost != r.BaselineAnnualCost-r.TotalSavings {
			t.Errorf("%+v: optimized %v != %v - %v", input, r.OptimizedAnnualCost, r.BaselineAnnualCost, r.TotalSavings)
		}
		if r.BaselineAnnualCost == 0 && r.PercentageSavings != 0 {
			t.Errorf("%+v: expected zero percentage for zero baseline", input)
		}
		if again := Estimate(input, DefaultAssumptions()); again != r {
			t.Errorf("%+v: estimate is not repeatable: %+v vs %+v", input, r, again)
		}
	}
}

func TestEstimate_OnlyBookkeeping(t *testing.T) {

	result := Estimate(domain.CalculatorInput{HoursSpent: 10}, DefaultAssumptions())

	if result.TotalSavings != 500 {
		t.Errorf("expected 500, got %.2f", result.TotalSavings)
	}
	if result.PercentageSavings != 100 {
		t.Errorf("expected 100%%, got %.2f", result.PercentageSavings)
	}
	if result.OptimizedAnnualCost != 0 {
		t.Errorf("expected zero optimized cost, got %.2f", result.OptimizedAnnualCost)
	}
}

func TestEstimate_CustomAssumptions(t *testing.T) {

	a := DefaultAssumptions()
	a.HourlyRate = 100

	base := Estimate(scenarioA(), DefaultAssumptions())
	doubled := Estimate(scenarioA(), a)

	if doubled.EstimatedEfficiencyGain != 2*base.EstimatedEfficiencyGain {
		t.Errorf("expected efficiency gain %.2f, got %.2f", 2*base.EstimatedEfficiencyGain, doubled.EstimatedEfficiencyGain)
	}
	if doubled.CostReduction != base.CostReduction {
		t.Errorf("cost reduction should not depend on hourly rate")
	}

	a = DefaultAssumptions()
	a.CostReductionRatio = 0.4
	a.BookkeepingEliminationRatio = 0.5
	r := Estimate(scenarioA(), a)

	if r.CostReduction != 101100*0.4 {
		t.Errorf("expected cost reduction %.2f, got %.2f", 101100*0.4, r.CostReduction)
	}
	if r.EstimatedEfficiencyGain != 1000 {
		t.Errorf("expected efficiency gain 1000, got %.2f", r.EstimatedEfficiencyGain)
	}
}

func TestValidateAssumptions(t *testing.T) {

	if err := ValidateAssumptions(DefaultAssumptions()); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}

	bad := []domain.Assumptions{
		{CostReductionRatio: 1.5, BookkeepingEliminationRatio: 1, HourlyRate: 50},
		{CostReductionRatio: -0.1, BookkeepingEliminationRatio: 1, HourlyRate: 50},
		{CostReductionRatio: 0.25, BookkeepingEliminationRatio: 2, HourlyRate: 50},
		{CostReductionRatio: 0.25, BookkeepingEliminationRatio: 1, HourlyRate: -1},
		{CostReductionRatio: math.NaN(), BookkeepingEliminationRatio: 1, HourlyRate: 50},
		{CostReductionRatio: 0.25, BookkeepingEliminationRatio: 1, HourlyRate: math.Inf(1)},
	}
	for _, a := range bad {
		if err := ValidateAssumptions(a); err == nil {
			t.Errorf("expected error for %+v", a)
		}
	}
}
