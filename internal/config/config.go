package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName      string
	AppEnv       string
	AppURL       string
	Port         string
	AppScheme    string // mobile deep-link scheme for invite URLs (scheme://join/<code>)
	SupportEmail string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Verification (Vertex AI)
	GoogleProject     string
	GoogleLocation    string
	GoogleCredentials string
	GeminiModel       string
	VerifyTimeout     time.Duration

	// Subscriptions
	TrialDuration    time.Duration
	ProductIDMonthly string
	ProductIDYearly  string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string        // Optional: for S3-compatible services
	S3PresignExpiry time.Duration // Expiry for proof display URLs - default: 1 hour
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:      envString("APP_NAME", "Stakeproof"),
		AppEnv:       envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:       envRequired("APP_URL"),
		Port:         envString("PORT", "8090"),
		AppScheme:    envString("APP_SCHEME", "stakeproof"),
		SupportEmail: envString("SUPPORT_EMAIL", "hello@example.com"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/stakeproof.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Verification
		GoogleProject:     envString("GOOGLE_CLOUD_PROJECT", ""),
		GoogleLocation:    envString("GOOGLE_CLOUD_LOCATION", "us-central1"),
		GoogleCredentials: envString("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GeminiModel:       envString("GEMINI_MODEL", "gemini-2.0-flash-001"),
		VerifyTimeout:     envDuration("VERIFY_TIMEOUT", 60*time.Second),

		// Subscriptions
		TrialDuration:    envDuration("TRIAL_DURATION", 7*24*time.Hour),
		ProductIDMonthly: envString("PRODUCT_ID_MONTHLY", "premium_monthly"),
		ProductIDYearly:  envString("PRODUCT_ID_YEARLY", "premium_yearly"),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage (S3-compatible - required for proof uploads)
		S3Region:        envRequired("S3_REGION"),
		S3Bucket:        envRequired("S3_BUCKET"),
		S3AccessKey:     envRequired("S3_ACCESS_KEY"),
		S3SecretKey:     envRequired("S3_SECRET_KEY"),
		S3Endpoint:      envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 1*time.Hour),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures required services are configured for production.
// Development allows the verifier to run without Vertex AI credentials so the
// rest of the API can be exercised locally.
func validateProduction(cfg *Config) {
	if cfg.GoogleProject == "" {
		slog.Error("production deployment requires GOOGLE_CLOUD_PROJECT",
			"hint", "set APP_ENV=development to run without proof verification")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// InviteURL builds the deep link the mobile app registers for joining goals.
func (c *Config) InviteURL(code string) string {
	return c.AppScheme + "://join/" + code
}
