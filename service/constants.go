package service

// Default business assumptions for an estimate.
const (
	DefaultCostReductionRatio          = 0.25 // share of operational spend removed by outsourcing
	DefaultBookkeepingEliminationRatio = 1.0  // share of in-house bookkeeping time eliminated
	DefaultHourlyRate                  = 50.0 // USD/hour, fully loaded staff time

	MonthsPerYear = 12
)

// Sanity limits for a single submission.
const (
	MaxEmployees     = 10_000
	MaxMonthlyCost   = 10_000_000.0  // per employee
	MaxPenaltyFees   = 100_000_000.0 // per year
	MaxSoftwareSpend = 10_000_000.0  // per month
	MaxHoursSpent    = 10_000.0      // per month
)

const (
	DefaultBookingURL = "https://cal.com/subrahmanyagsa/30min"
	BenchmarkNote     = "Most businesses save between 25–40% by streamlining back-office operations."
)
