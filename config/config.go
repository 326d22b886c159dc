package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"cpa-savings/domain"
	"cpa-savings/service"
)

type Config struct {
	Addr      string
	RedisAddr string // empty selects the in-memory cache

	WebhookURL       string
	WebhookPlainText bool
	WebhookTimeout   time.Duration
	LeadQueueSize    int
	LeadWorkers      int

	Coercion           service.CoercionMode
	BookingURL         string
	RateLimitPerMinute int
	ResultCacheTTL     time.Duration

	Assumptions domain.Assumptions
}

// Load reads configuration from the environment. An optional .env file in the
// working directory is loaded first; variables already set take precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Addr:       envOr(getenv, "SAVINGS_ADDR", ":8080"),
		RedisAddr:  getenv("REDIS_ADDR"),
		WebhookURL: getenv("LEAD_WEBHOOK_URL"),
		BookingURL: envOr(getenv, "BOOKING_URL", service.DefaultBookingURL),
	}

	var err error
	if cfg.WebhookPlainText, err = parseBool(getenv, "LEAD_WEBHOOK_PLAIN_TEXT", false); err != nil {
		return Config{}, err
	}
	if cfg.WebhookTimeout, err = parseDuration(getenv, "LEAD_WEBHOOK_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.LeadQueueSize, err = parsePositiveInt(getenv, "LEAD_QUEUE_SIZE", service.DefaultLeadQueueSize); err != nil {
		return Config{}, err
	}
	if cfg.LeadWorkers, err = parsePositiveInt(getenv, "LEAD_WORKERS", service.DefaultLeadWorkers); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerMinute, err = parsePositiveInt(getenv, "RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return Config{}, err
	}
	if cfg.ResultCacheTTL, err = parseDuration(getenv, "RESULT_CACHE_TTL", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.Coercion, err = service.ParseCoercionMode(getenv("INPUT_COERCION")); err != nil {
		return Config{}, err
	}

	cfg.Assumptions = service.DefaultAssumptions()
	if path := getenv("ASSUMPTIONS_FILE"); path != "" {
		if cfg.Assumptions, err = LoadAssumptions(path, cfg.Assumptions); err != nil {
			return Config{}, err
		}
	}
	if err := applyAssumptionOverrides(getenv, &cfg.Assumptions); err != nil {
		return Config{}, err
	}
	if err := service.ValidateAssumptions(cfg.Assumptions); err != nil {
		return Config{}, fmt.Errorf("invalid assumptions: %w", err)
	}

	return cfg, nil
}

// LoadAssumptions reads a YAML file on top of base. Keys missing from the
// file keep their base value.
func LoadAssumptions(path string, base domain.Assumptions) (domain.Assumptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Assumptions{}, fmt.Errorf("read assumptions file: %w", err)
	}

	a := base
	if err := yaml.UnmarshalStrict(data, &a); err != nil {
		return domain.Assumptions{}, fmt.Errorf("parse assumptions file %s: %w", path, err)
	}
	return a, nil
}

func applyAssumptionOverrides(getenv func(string) string, a *domain.Assumptions) error {
	overrides := []struct {
		key string
		dst *float64
	}{
		{"SAVINGS_COST_REDUCTION_RATIO", &a.CostReductionRatio},
		{"SAVINGS_BOOKKEEPING_ELIMINATION_RATIO", &a.BookkeepingEliminationRatio},
		{"SAVINGS_HOURLY_RATE", &a.HourlyRate},
	}
	for _, o := range overrides {
		raw := getenv(o.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", o.key, err)
		}
		*o.dst = v
	}
	return nil
}

func envOr(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(getenv func(string) string, key string, def bool) (bool, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func parseDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return v, nil
}

func parsePositiveInt(getenv func(string) string, key string, def int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, v)
	}
	return v, nil
}
