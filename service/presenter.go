package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"

	"cpa-savings/domain"
)

var sliceColors = []string{"#0088FE", "#00C49F", "#FFBB28", "#FF8042"}

// Present builds the display model for a result. bookingURL falls back to
// DefaultBookingURL when empty.
func Present(result domain.CalculationResult, bookingURL string) domain.SavingsView {
	if bookingURL == "" {
		bookingURL = DefaultBookingURL
	}

	return domain.SavingsView{
		Result:            result,
		TotalSavings:      FormatCurrency(result.TotalSavings),
		PercentageSavings: FormatPercent(result.PercentageSavings, 1),
		Comparison:        comparisonBars(result),
		Breakdown:         breakdownSlices(result),
		BenchmarkNote:     BenchmarkNote,
		BookingURL:        bookingURL,
	}
}

func comparisonBars(result domain.CalculationResult) []domain.Bar {
	bars := []domain.Bar{
		{Label: "Current Annual Cost", Value: result.BaselineAnnualCost},
		{Label: "Annual Cost with Savings", Value: result.OptimizedAnnualCost},
	}

	tallest := 0.0
	for _, b := range bars {
		tallest = max(tallest, b.Value)
	}
	for i := range bars {
		bars[i].Amount = FormatCurrency(bars[i].Value)
		if tallest > 0 && bars[i].Value > 0 {
			bars[i].Height = bars[i].Value / tallest
		}
	}
	return bars
}

// breakdownSlices splits total savings into its two components. Shares are
// zero when there are no savings to split.
func breakdownSlices(result domain.CalculationResult) []domain.Slice {
	slices := []domain.Slice{
		{Label: "Cost Reduction", Value: result.CostReduction},
		{Label: "Efficiency Gain", Value: result.EstimatedEfficiencyGain},
	}

	offset := 0.0
	for i := range slices {
		s := &slices[i]
		s.Amount = FormatCurrency(s.Value)
		s.Color = sliceColors[i%len(sliceColors)]
		if result.TotalSavings > 0 {
			s.Share = s.Value / result.TotalSavings * 100
		}
		s.ShareLabel = FormatPercent(s.Share, 0)
		s.Offset = offset
		offset += s.Share
	}
	return slices
}

// FormatCurrency renders v as whole US dollars with thousands separators,
// rounding half away from zero: 27275.5 -> "$27,276".
func FormatCurrency(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "$" + groupThousands(d.StringFixed(0))
}

// FormatPercent renders v with the given number of decimal places.
func FormatPercent(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places) + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// SummaryMarkdown is the plain-text report for a view.
func SummaryMarkdown(view domain.SavingsView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Estimated annual savings: %s** (%s of current spend)\n\n",
		view.TotalSavings, view.PercentageSavings)
	for _, bar := range view.Comparison {
		fmt.Fprintf(&b, "- %s: %s\n", bar.Label, bar.Amount)
	}
	for _, s := range view.Breakdown {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", s.Label, s.Amount, s.ShareLabel)
	}
	fmt.Fprintf(&b, "\n%s\n", view.BenchmarkNote)
	return b.String()
}

// RenderSummary converts SummaryMarkdown to HTML.
func RenderSummary(view domain.SavingsView) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(SummaryMarkdown(view)), &buf); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return buf.String(), nil
}
