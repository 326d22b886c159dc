package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"cpa-savings/domain"
	"cpa-savings/repository"
)

type SavingsService struct {
	cache       repository.CacheRepository
	assumptions domain.Assumptions
	cacheTTL    time.Duration
}

// NewSavingsService creates a SavingsService. Results are memoized in cache
// for cacheTTL; a nil cache disables memoization.
func NewSavingsService(
	cache repository.CacheRepository,
	assumptions domain.Assumptions,
	cacheTTL time.Duration,
) (*SavingsService, error) {
	if err := ValidateAssumptions(assumptions); err != nil {
		return nil, err
	}
	return &SavingsService{
		cache:       cache,
		assumptions: assumptions,
		cacheTTL:    cacheTTL,
	}, nil
}

func (s *SavingsService) Assumptions() domain.Assumptions {
	return s.assumptions
}

// Calculate validates the input and returns its savings estimate.
func (s *SavingsService) Calculate(
	ctx context.Context,
	input domain.CalculatorInput,
) (domain.CalculationResult, error) {

	if err := validateInput(input); err != nil {
		return domain.CalculationResult{}, err
	}

	key := s.cacheKey(input)

	if cached, ok := s.lookup(ctx, key); ok {
		return cached, nil
	}

	result := Estimate(input, s.assumptions)

	// Cache failures are not critical
	if s.cache != nil {
		data, err := json.Marshal(result)
		if err == nil {
			err = s.cache.Set(ctx, key, string(data), s.cacheTTL)
		}
		if err != nil {
			log.Printf("Warning: failed to cache savings result: %v", err)
		}
	}

	return result, nil
}

func (s *SavingsService) lookup(ctx context.Context, key string) (domain.CalculationResult, bool) {
	if s.cache == nil {
		return domain.CalculationResult{}, false
	}

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("Warning: failed to read savings cache: %v", err)
		return domain.CalculationResult{}, false
	}
	if !ok {
		return domain.CalculationResult{}, false
	}

	var result domain.CalculationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		log.Printf("Warning: discarding malformed cached result %s: %v", key, err)
		return domain.CalculationResult{}, false
	}
	return result, true
}

// cacheKey covers the assumptions too, so a config change never serves
// results computed under old constants.
func (s *SavingsService) cacheKey(input domain.CalculatorInput) string {
	parts := []string{
		strconv.Itoa(input.Employees),
		formatKeyFloat(input.MonthlyCost),
		formatKeyFloat(input.PenaltyFees),
		formatKeyFloat(input.SoftwareSpend),
		formatKeyFloat(input.HoursSpent),
		formatKeyFloat(s.assumptions.CostReductionRatio),
		formatKeyFloat(s.assumptions.BookkeepingEliminationRatio),
		formatKeyFloat(s.assumptions.HourlyRate),
	}
	return fmt.Sprintf("savings:%016x", xxhash.Sum64String(strings.Join(parts, "|")))
}

func formatKeyFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func validateInput(input domain.CalculatorInput) error {
	if input.Employees < 0 {
		return errors.New("number of employees cannot be negative")
	}
	if input.Employees > MaxEmployees {
		return fmt.Errorf("number of employees exceeds the maximum of %d", MaxEmployees)
	}

	checks := []struct {
		name  string
		value float64
		max   float64
	}{
		{"monthly cost", input.MonthlyCost, MaxMonthlyCost},
		{"penalty fees", input.PenaltyFees, MaxPenaltyFees},
		{"software spend", input.SoftwareSpend, MaxSoftwareSpend},
		{"hours spent", input.HoursSpent, MaxHoursSpent},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%s must be a number", c.name)
		}
		if c.value < 0 {
			return fmt.Errorf("%s cannot be negative", c.name)
		}
		if c.value > c.max {
			return fmt.Errorf("%s exceeds the maximum of %.0f", c.name, c.max)
		}
	}
	return nil
}
