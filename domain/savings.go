package domain

// CalculatorInput holds the operating-cost figures entered on the form.
// Monthly figures are annualized by the estimator.
type CalculatorInput struct {
	Employees     int     `json:"employees"`
	MonthlyCost   float64 `json:"monthlyCost"`   // salary per accounting employee, per month
	PenaltyFees   float64 `json:"penaltyFees"`   // per year
	SoftwareSpend float64 `json:"softwareSpend"` // per month
	HoursSpent    float64 `json:"hoursSpent"`    // bookkeeping hours per month
}

type CalculationResult struct {
	BaselineAnnualCost      float64 `json:"baselineAnnualCost"`
	OptimizedAnnualCost     float64 `json:"optimizedAnnualCost"`
	CostReduction           float64 `json:"costReduction"`
	EstimatedEfficiencyGain float64 `json:"estimatedEfficiencyGain"`
	TotalSavings            float64 `json:"totalSavings"`
	PercentageSavings       float64 `json:"percentageSavings"`
}

// Assumptions are the business constants behind an estimate. They change per
// engagement, so they are loaded from configuration instead of being inlined.
type Assumptions struct {
	CostReductionRatio          float64 `yaml:"cost_reduction_ratio" json:"costReductionRatio"`
	BookkeepingEliminationRatio float64 `yaml:"bookkeeping_elimination_ratio" json:"bookkeepingEliminationRatio"`
	HourlyRate                  float64 `yaml:"hourly_rate" json:"hourlyRate"`
}
