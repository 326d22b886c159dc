package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cpa-savings/domain"
)

type MockCache struct {
	Data       map[string]string
	GetCalls   int
	SetCalls   int
	ForceError bool
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string]string)}
}

func (m *MockCache) Get(_ context.Context, key string) (string, bool, error) {
	m.GetCalls++
	if m.ForceError {
		return "", false, errors.New("cache down")
	}
	val, ok := m.Data[key]
	return val, ok, nil
}

func (m *MockCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	m.SetCalls++
	if m.ForceError {
		return errors.New("cache down")
	}
	m.Data[key] = value
	return nil
}

func newTestService(t *testing.T, cache *MockCache) *SavingsService {
	t.Helper()
	svc, err := NewSavingsService(cache, DefaultAssumptions(), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func TestCalculate_StoresResult(t *testing.T) {

	cache := NewMockCache()
	service := newTestService(t, cache)

	result, err := service.Calculate(context.Background(), scenarioA())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalSavings != 27275 {
		t.Errorf("expected 27275, got %.2f", result.TotalSavings)
	}
	if cache.SetCalls != 1 {
		t.Errorf("expected cache Set to be called once, got %d", cache.SetCalls)
	}
}

func TestCalculate_CacheHit(t *testing.T) {

	cache := NewMockCache()
	service := newTestService(t, cache)
	ctx := context.Background()

	first, _ := service.Calculate(ctx, scenarioA())

	// Tamper with the stored value to prove the second call reads it.
	for k := range cache.Data {
		cache.Data[k] = `{"totalSavings": 1}`
	}

	second, err := service.Calculate(ctx, scenarioA())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.TotalSavings != 1 {
		t.Errorf("expected cached value, got %+v (first %+v)", second, first)
	}
	if cache.SetCalls != 1 {
		t.Errorf("expected no second Set, got %d", cache.SetCalls)
	}
}

func TestCalculate_CacheKeyIncludesAssumptions(t *testing.T) {

	cache := NewMockCache()
	ctx := context.Background()

	a := DefaultAssumptions()
	a.HourlyRate = 100

	s1 := newTestService(t, cache)
	s2, err := NewSavingsService(cache, a, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r1, _ := s1.Calculate(ctx, scenarioA())
	r2, _ := s2.Calculate(ctx, scenarioA())

	if r1 == r2 {
		t.Errorf("expected different results for different assumptions")
	}
	if len(cache.Data) != 2 {
		t.Errorf("expected 2 cache entries, got %d", len(cache.Data))
	}
}

func TestCalculate_CacheFailureIsNotFatal(t *testing.T) {

	cache := NewMockCache()
	cache.ForceError = true
	service := newTestService(t, cache)

	result, err := service.Calculate(context.Background(), scenarioA())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalSavings != 27275 {
		t.Errorf("expected 27275, got %.2f", result.TotalSavings)
	}
}

func TestCalculate_MalformedCacheEntry(t *testing.T) {

	cache := NewMockCache()
	service := newTestService(t, cache)
	ctx := context.Background()

	service.Calculate(ctx, scenarioA())
	for k := range cache.Data {
		cache.Data[k] = "not json"
	}

	result, err := service.Calculate(ctx, scenarioA())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalSavings != 27275 {
		t.Errorf("expected recomputed 27275, got %.2f", result.TotalSavings)
	}
}

func TestCalculate_NilCache(t *testing.T) {

	service, err := NewSavingsService(nil, DefaultAssumptions(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := service.Calculate(context.Background(), domain.CalculatorInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PercentageSavings != 0 {
		t.Errorf("expected 0, got %.2f", result.PercentageSavings)
	}
}

func TestCalculate_InvalidInput(t *testing.T) {

	cache := NewMockCache()
	service := newTestService(t, cache)

	inputs := []domain.CalculatorInput{
		{Employees: -1},
		{Employees: MaxEmployees + 1},
		{MonthlyCost: -10},
		{PenaltyFees: MaxPenaltyFees * 2},
		{HoursSpent: -0.5},
	}

	for _, input := range inputs {
		if _, err := service.Calculate(context.Background(), input); err == nil {
			t.Errorf("expected error for %+v", input)
		}
	}

	if cache.SetCalls != 0 {
		t.Errorf("cache Set should NOT be called")
	}
}

func TestNewSavingsService_InvalidAssumptions(t *testing.T) {

	a := DefaultAssumptions()
	a.CostReductionRatio = 3

	if _, err := NewSavingsService(NewMockCache(), a, time.Hour); err == nil {
		t.Errorf("expected error for invalid assumptions")
	}
}
