package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:             "postgres://localhost/workforce",
		MaxBodyBytes:            1 << 20,
		RateLimitPerMinute:      60,
		ComplianceSweepInterval: 24 * time.Hour,
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("COMPLIANCE_SWEEP_INTERVAL", "6h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SEED_DEMO_EMPLOYEES", "12")
	t.Setenv("COMPLIANCE_WARNING_DIGEST", "false")

	cfg := Load()
	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
	if cfg.ComplianceSweepInterval != 6*time.Hour {
		t.Fatalf("unexpected sweep interval %s", cfg.ComplianceSweepInterval)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.SeedDemoEmployees != 12 {
		t.Fatalf("unexpected demo employees %d", cfg.SeedDemoEmployees)
	}
	if cfg.WarningDigestEnabled {
		t.Fatal("expected warning digest to be disabled")
	}
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("COMPLIANCE_SWEEP_INTERVAL", "daily")
	t.Setenv("SMTP_PORT", "abc")

	cfg := Load()
	if cfg.ComplianceSweepInterval != 24*time.Hour {
		t.Fatalf("expected default interval, got %s", cfg.ComplianceSweepInterval)
	}
	if cfg.SMTPPort != 587 {
		t.Fatalf("expected default port, got %d", cfg.SMTPPort)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: true},
		{name: "production without secret", mutate: func(c *Config) { c.Environment = "production" }, wantErr: true},
		{name: "production with demo data", mutate: func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "s"
			c.DataEncryptionKey = "k"
			c.SeedDemoEmployees = 5
		}, wantErr: true},
		{name: "production wildcard cors", mutate: func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = "s"
			c.DataEncryptionKey = "k"
			c.CORSOrigins = []string{"*"}
		}, wantErr: true},
		{name: "email without host", mutate: func(c *Config) { c.EmailEnabled = true }, wantErr: true},
		{name: "tiny body limit", mutate: func(c *Config) { c.MaxBodyBytes = 10 }, wantErr: true},
		{name: "negative sweep", mutate: func(c *Config) { c.ComplianceSweepInterval = -time.Second }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
