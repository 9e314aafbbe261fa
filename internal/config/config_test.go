package config

import (
	"log/slog"
	"testing"
	"time"
)

// clearEnv はテスト対象の環境変数を空にする。
// 空文字は未設定と同じ扱いになる。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "USE_STUB_AUTH", "USE_STUB_POSTS", "SESSION_SECRET", "SESSION_MAX_AGE",
		"STUB_AUTHOR_ID", "POSTS_FIXTURE_PATH", "RATE_LIMIT_GENERAL", "RATE_LIMIT_POST_CREATE",
		"LOG_LEVEL", "SERVER_PORT", "BASE_URL", "SHUTDOWN_TIMEOUT", "COOKIE_DOMAIN", "COOKIE_SECURE", "CORS_ALLOWED_ORIGIN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_DefaultsToProduction(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.DeploymentMode != DeploymentProduction {
		t.Errorf("DeploymentMode = %q, want %q", cfg.DeploymentMode, DeploymentProduction)
	}
	if !cfg.IsProduction() {
		t.Error("expected IsProduction() to be true")
	}
	if cfg.AuthGate.Enabled() || cfg.PostsGate.Enabled() {
		t.Error("stub gates must be closed by default")
	}
	if !cfg.CookieSecure {
		t.Error("expected CookieSecure in production")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.SessionMaxAge != 604800 {
		t.Errorf("SessionMaxAge = %d, want %d", cfg.SessionMaxAge, 604800)
	}
	if cfg.StubAuthorID != "stub-user-1" {
		t.Errorf("StubAuthorID = %q, want %q", cfg.StubAuthorID, "stub-user-1")
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 120)
	}
	if cfg.RateLimitPostCreate != 30 {
		t.Errorf("RateLimitPostCreate = %d, want %d", cfg.RateLimitPostCreate, 30)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelInfo)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, 30*time.Second)
	}
	if cfg.CookieSecure {
		t.Error("expected CookieSecure=false for http BASE_URL in development")
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "http://localhost:3000")
	}
}

func TestLoad_StubAuthRequiresSessionSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("USE_STUB_AUTH", "true")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when SESSION_SECRET is missing with stub auth enabled")
	}
}

func TestLoad_StubGatesResolvedIndependently(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("USE_STUB_AUTH", "false")
	t.Setenv("USE_STUB_POSTS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.AuthGate.Enabled() {
		t.Error("AuthGate should be closed")
	}
	if !cfg.PostsGate.Enabled() {
		t.Error("PostsGate should be open")
	}
	if cfg.AuthGate.Name() != "auth" || cfg.PostsGate.Name() != "posts" {
		t.Errorf("gate names = %q/%q", cfg.AuthGate.Name(), cfg.PostsGate.Name())
	}
}

func TestLoad_ProductionIgnoresOptIn(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("USE_STUB_AUTH", "true")
	t.Setenv("USE_STUB_POSTS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.AuthGate.Enabled() || cfg.PostsGate.Enabled() {
		t.Error("production must disable every stub gate")
	}
	if !cfg.PostsGate.Production() {
		t.Error("expected PostsGate.Production() to be true")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "test")
	t.Setenv("SESSION_MAX_AGE", "3600")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("BASE_URL", "https://memo.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.SessionMaxAge != 3600 {
		t.Errorf("SessionMaxAge = %d, want %d", cfg.SessionMaxAge, 3600)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelDebug)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "9090")
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, 5*time.Second)
	}
	if !cfg.CookieSecure {
		t.Error("expected CookieSecure=true for https BASE_URL")
	}
}

func TestLoad_InvalidNumbersFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_MAX_AGE", "not-a-number")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("LOG_LEVEL", "verbose")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.SessionMaxAge != 604800 {
		t.Errorf("SessionMaxAge = %d, want default", cfg.SessionMaxAge)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want default", cfg.ShutdownTimeout)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want default", cfg.LogLevel)
	}
}

func TestLoad_CookieSecureOverride(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		value string
		want  bool
	}{
		{"development explicit true", "development", "true", true},
		{"development explicit false", "development", "false", false},
		{"development invalid falls back to scheme", "development", "maybe", false},
		{"production cannot disable", "production", "false", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", tt.mode)
			t.Setenv("COOKIE_SECURE", tt.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cfg.CookieSecure != tt.want {
				t.Errorf("CookieSecure = %v, want %v", cfg.CookieSecure, tt.want)
			}
		})
	}
}
