package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                    string
	DatabaseURL             string
	JWTSecret               string
	DataEncryptionKey       string
	FrontendDir             string
	Environment             string
	MigrationsDir           string
	SeedTenantName          string
	SeedAdminEmail          string
	SeedAdminPassword       string
	SeedDemoEmployees       int
	EmailFrom               string
	EmailEnabled            bool
	SMTPHost                string
	SMTPPort                int
	SMTPUser                string
	SMTPPassword            string
	SMTPUseTLS              bool
	RunMigrations           bool
	RunSeed                 bool
	MaxBodyBytes            int64
	RateLimitPerMinute      int
	CORSOrigins             []string
	ComplianceSweepInterval time.Duration
	WarningDigestEnabled    bool
	ReportsDir              string
	MetricsEnabled          bool
	OTelServiceName         string
	OTelEndpoint            string
	OTelInsecure            bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first; variables already set win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("dotenv load failed", "err", err)
	}
	return Config{
		Addr:                    getEnv("APP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		DataEncryptionKey:       getEnv("DATA_ENCRYPTION_KEY", ""),
		FrontendDir:             getEnv("FRONTEND_DIR", "frontend/dist"),
		Environment:             getEnv("APP_ENV", "development"),
		MigrationsDir:           getEnv("MIGRATIONS_DIR", "migrations"),
		SeedTenantName:          getEnv("SEED_TENANT_NAME", "Default Tenant"),
		SeedAdminEmail:          getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:       getEnv("SEED_ADMIN_PASSWORD", ""),
		SeedDemoEmployees:       getEnvInt("SEED_DEMO_EMPLOYEES", 0),
		EmailFrom:               getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:            getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:                getEnv("SMTP_HOST", ""),
		SMTPPort:                getEnvInt("SMTP_PORT", 587),
		SMTPUser:                getEnv("SMTP_USER", ""),
		SMTPPassword:            getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:              getEnvBool("SMTP_USE_TLS", true),
		RunMigrations:           getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:                 getEnvBool("RUN_SEED", true),
		MaxBodyBytes:            int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:      getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		CORSOrigins:             getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		ComplianceSweepInterval: getEnvDuration("COMPLIANCE_SWEEP_INTERVAL", 24*time.Hour),
		WarningDigestEnabled:    getEnvBool("COMPLIANCE_WARNING_DIGEST", true),
		ReportsDir:              getEnv("REPORTS_DIR", "storage/reports"),
		MetricsEnabled:          getEnvBool("METRICS_ENABLED", true),
		OTelServiceName:         getEnv("OTEL_SERVICE_NAME", "workforce"),
		OTelEndpoint:            getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelInsecure:            getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
		if c.SeedDemoEmployees > 0 {
			return fmt.Errorf("SEED_DEMO_EMPLOYEES must be 0 in production")
		}
		for _, origin := range c.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.ComplianceSweepInterval < 0 {
		return fmt.Errorf("COMPLIANCE_SWEEP_INTERVAL must not be negative")
	}
	return nil
}
