package config

import (
	"strings"
	"time"
)

// Config holds runtime configuration for the API service.
type Config struct {
	Environment     string
	Addr            string
	DatabaseURL     string
	MigrationsDir   string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Coin ledger limits.
	MaxCoinPurchase int

	// Subscription plan durations in days, keyed by plan name.
	MonthlyPlanDays int
	YearlyPlanDays  int

	// Template catalogue query limits.
	TemplatePageLimit  int
	TemplateSortFields []string

	// Live preview stream.
	PreviewBuffer int

	// External billing provider. Billing is skipped when the URL is empty.
	BillingAPIURL  string
	BillingAPIKey  string
	BillingTimeout time.Duration

	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// PlanDurations maps plan names to their configured duration.
func (c Config) PlanDurations() map[string]time.Duration {
	day := 24 * time.Hour
	return map[string]time.Duration{
		"monthly": time.Duration(c.MonthlyPlanDays) * day,
		"yearly":  time.Duration(c.YearlyPlanDays) * day,
	}
}

// Load constructs a Config from environment variables.
func Load() Config {
	return Config{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":4000"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://pagecraft:pagecraft@db:5432/pagecraft?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "./db/migrations"),
		JWTSecret:          GetString("JWT_SECRET", "supersecuresecret"),
		AccessTokenTTL:     time.Duration(GetInt("ACCESS_TOKEN_TTL_MIN", 15)) * time.Minute,
		RefreshTokenTTL:    time.Duration(GetInt("REFRESH_TOKEN_TTL_HOURS", 720)) * time.Hour,
		MaxCoinPurchase:    GetInt("MAX_COIN_PURCHASE", 1000),
		MonthlyPlanDays:    GetInt("PLAN_MONTHLY_DAYS", 30),
		YearlyPlanDays:     GetInt("PLAN_YEARLY_DAYS", 365),
		TemplatePageLimit:  GetInt("TEMPLATE_PAGE_LIMIT", 100),
		TemplateSortFields: splitList(GetString("TEMPLATE_SORT_FIELDS", "name,created_at,updated_at")),
		PreviewBuffer:      GetInt("WS_PREVIEW_BUFFER", 100),
		BillingAPIURL:      GetString("BILLING_API_URL", ""),
		BillingAPIKey:      GetString("BILLING_API_KEY", ""),
		BillingTimeout:     time.Duration(GetInt("BILLING_TIMEOUT_SECONDS", 10)) * time.Second,
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
