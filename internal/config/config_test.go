package config

import (
	"testing"
	"time"
)

func TestLoad_ReportsMissingRequired(t *testing.T) {
	// Ensure a clean env by not setting anything and calling validation directly.
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func validBase() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "voice", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
		Media: MediaConfig{APIKey: "devkey", APISecret: "devsecret", WSURL: "wss://media.local"},
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validBase()
	c.App.Env = "production"
	c.Auth.JWTIssuer = "issuer"
	c.Auth.JWTAudience = "aud"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_MediaTokenTTLDefaults(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Media.DirectTokenTTL != time.Hour {
		t.Fatalf("expected 1h direct token ttl, got %v", c.Media.DirectTokenTTL)
	}
	if c.Media.ChannelTokenTTL != 4*time.Hour {
		t.Fatalf("expected 4h channel token ttl, got %v", c.Media.ChannelTokenTTL)
	}
}

func TestValidate_MediaCredentialsRequired(t *testing.T) {
	c := validBase()
	c.Media.APISecret = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for missing MEDIA_API_SECRET")
	}
}

func TestValidate_RateLimitBackendDefaultsToMemory(t *testing.T) {
	c := validBase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.RateLimit.Backend != "memory" {
		t.Fatalf("expected memory backend default, got %q", c.RateLimit.Backend)
	}
}

func TestValidate_RejectsUnknownRateLimitBackend(t *testing.T) {
	c := validBase()
	c.RateLimit.Backend = "memcached"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unknown RATE_LIMIT_BACKEND")
	}
}

func setValidEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":          "local",
		"APP_PORT":         "8080",
		"DB_HOST":          "localhost",
		"DB_PORT":          "5432",
		"DB_USER":          "postgres",
		"DB_PASSWORD":      "x",
		"DB_NAME":          "voice",
		"DB_SSLMODE":       "",
		"REDIS_HOST":       "localhost",
		"REDIS_PORT":       "6379",
		"JWT_SECRET":       "secret",
		"MEDIA_API_KEY":    "devkey",
		"MEDIA_API_SECRET": "devsecret",
		"MEDIA_WS_URL":     "wss://media.local",

		// Optional knobs cleared so ambient env cannot leak in.
		"JWT_ISSUER":              "",
		"JWT_AUDIENCE":            "",
		"MEDIA_DIRECT_TOKEN_TTL":  "",
		"MEDIA_CHANNEL_TOKEN_TTL": "",
		"RATE_LIMIT_BACKEND":      "",
		"RATE_LIMIT_MAX":          "",
		"RATE_LIMIT_WINDOW":       "",
	} {
		t.Setenv(k, v)
	}
}

func TestLoad_RejectsMalformedDuration(t *testing.T) {
	setValidEnv(t)
	t.Setenv("MEDIA_DIRECT_TOKEN_TTL", "1hr")

	if _, err := Load(); err == nil {
		t.Fatalf("malformed duration must not be silently replaced by the default")
	}
}

func TestLoad_ReadsRateLimitBackend(t *testing.T) {
	setValidEnv(t)
	t.Setenv("RATE_LIMIT_BACKEND", "redis")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.RateLimit.Backend != "redis" {
		t.Fatalf("expected redis backend, got %q", c.RateLimit.Backend)
	}
}
