package http

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"cpa-savings/domain"
	"cpa-savings/repository"
	"cpa-savings/service"
)

type MockSink struct {
	mu        sync.Mutex
	Delivered []domain.Lead
	ForceErr  error
}

func (m *MockSink) Deliver(_ context.Context, lead domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ForceErr != nil {
		return m.ForceErr
	}
	m.Delivered = append(m.Delivered, lead)
	return nil
}

type testEnv struct {
	router     http.Handler
	dispatcher *service.LeadDispatcher
	reports    chan domain.DeliveryReport
}

// newTestEnv wires the full router. A nil sink disables lead capture.
func newTestEnv(t *testing.T, sink service.LeadSink, mode service.CoercionMode) *testEnv {
	t.Helper()

	cache := repository.NewMemoryCache()
	savings, err := service.NewSavingsService(cache, service.DefaultAssumptions(), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sink == nil {
		sink = service.NoopSink{}
	}
	reports := make(chan domain.DeliveryReport, 8)
	dispatcher := service.NewLeadDispatcher(sink, cache, service.DispatcherOptions{
		OnDelivered: func(r domain.DeliveryReport) { reports <- r },
	})

	limiter := NewRateLimiter(1000, time.Minute)

	t.Cleanup(func() {
		cache.Stop()
		limiter.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		dispatcher.Stop(ctx)
	})

	return &testEnv{
		router: NewRouter(RouterDeps{
			Savings:     savings,
			Dispatcher:  dispatcher,
			RateLimiter: limiter,
			Coercion:    mode,
			BookingURL:  "https://example.com/book",
		}),
		dispatcher: dispatcher,
		reports:    reports,
	}
}

func (e *testEnv) waitReport(t *testing.T) domain.DeliveryReport {
	t.Helper()
	select {
	case r := <-e.reports:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for lead delivery")
	}
	return domain.DeliveryReport{}
}

func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Second)
}
