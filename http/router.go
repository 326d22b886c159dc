package http

import (
	"net/http"

	"cpa-savings/service"
)

type RouterDeps struct {
	Savings     *service.SavingsService
	Dispatcher  *service.LeadDispatcher
	RateLimiter *RateLimiter // nil disables rate limiting
	Coercion    service.CoercionMode
	BookingURL  string
}

// NewRouter registers every route. POST routes go through the rate limiter.
func NewRouter(deps RouterDeps) http.Handler {
	savingsHandler := NewSavingsHandler(deps.Savings)
	leadHandler := NewLeadHandler(deps.Savings, deps.Dispatcher)
	pageHandler := NewPageHandler(deps.Savings, deps.Dispatcher, deps.Coercion, deps.BookingURL)

	limited := func(h http.Handler) http.Handler {
		return RateLimitMiddleware(deps.RateLimiter, h)
	}

	mux := http.NewServeMux()
	mux.Handle("/{$}", limited(pageHandler))
	mux.Handle("/api/savings/estimate", limited(http.HandlerFunc(savingsHandler.Estimate)))
	mux.Handle("/api/savings/lead", limited(http.HandlerFunc(leadHandler.SubmitLead)))
	mux.HandleFunc("GET /api/leads/{id}", leadHandler.LeadStatus)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	return mux
}
