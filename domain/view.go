package domain

// SavingsView is the display model for one CalculationResult.
type SavingsView struct {
	Result            CalculationResult
	TotalSavings      string // "$27,275"
	PercentageSavings string // "26.5%"
	Comparison        []Bar
	Breakdown         []Slice
	BenchmarkNote     string
	BookingURL        string
}

type Bar struct {
	Label  string
	Value  float64
	Amount string
	Height float64 // fraction of the tallest bar, 0..1
}

type Slice struct {
	Label      string
	Value      float64
	Amount     string
	Share      float64 // percent of total savings, 0..100
	ShareLabel string  // "93%"
	Offset     float64 // sum of the shares of the preceding slices
	Color      string
}
