package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cpa-savings/config"
	"cpa-savings/domain"
	httpLayer "cpa-savings/http"
	"cpa-savings/repository"
	"cpa-savings/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var cache repository.CacheRepository
	if cfg.RedisAddr != "" {
		redisCache := repository.NewRedisCache(cfg.RedisAddr, "cpa-savings:")
		defer redisCache.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			log.Printf("Warning: redis at %s unreachable: %v", cfg.RedisAddr, err)
		}
		cancel()
		cache = redisCache
	} else {
		memoryCache := repository.NewMemoryCache()
		defer memoryCache.Stop()
		cache = memoryCache
	}

	savingsService, err := service.NewSavingsService(cache, cfg.Assumptions, cfg.ResultCacheTTL)
	if err != nil {
		log.Fatalf("Invalid assumptions: %v", err)
	}

	var sink service.LeadSink = service.NoopSink{}
	if cfg.WebhookURL != "" {
		sink = service.NewWebhookSink(cfg.WebhookURL, cfg.WebhookPlainText, cfg.WebhookTimeout)
	} else {
		log.Println("LEAD_WEBHOOK_URL not set, lead capture disabled")
	}

	dispatcher := service.NewLeadDispatcher(sink, cache, service.DispatcherOptions{
		QueueSize:       cfg.LeadQueueSize,
		Workers:         cfg.LeadWorkers,
		DeliveryTimeout: cfg.WebhookTimeout,
		OnDelivered: func(r domain.DeliveryReport) {
			if r.Status == domain.DeliveryFailed {
				log.Printf("Lead %s not delivered: %s", r.LeadID, r.Error)
			}
		},
	})

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer rateLimiter.Stop()

	router := httpLayer.NewRouter(httpLayer.RouterDeps{
		Savings:     savingsService,
		Dispatcher:  dispatcher,
		RateLimiter: rateLimiter,
		Coercion:    cfg.Coercion,
		BookingURL:  cfg.BookingURL,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Savings calculator listening on %s (coercion=%s)", cfg.Addr, cfg.Coercion)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Printf("Error starting server: %v", err)
		return
	case <-quit:
		log.Println("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// In-flight leads outlive their requests; give them the rest of the
	// shutdown window.
	if err := dispatcher.Stop(ctx); err != nil {
		log.Printf("Warning: pending leads not delivered: %v", err)
	}

	log.Println("Server exited")
}
