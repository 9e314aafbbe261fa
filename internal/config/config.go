// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// DeploymentMode はデプロイ環境の種別を表す。
type DeploymentMode string

const (
	DeploymentProduction  DeploymentMode = "production"
	DeploymentDevelopment DeploymentMode = "development"
	DeploymentTest        DeploymentMode = "test"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Deployment
	DeploymentMode DeploymentMode

	// Stub gates
	AuthGate  StubGate
	PostsGate StubGate

	// Session
	SessionSecret string
	SessionMaxAge int

	// Stub data
	StubAuthorID     string
	PostsFixturePath string

	// Rate Limit (req/min)
	RateLimitGeneral    int
	RateLimitPostCreate int

	// Logging
	LogLevel slog.Level

	// Server
	ServerPort      string
	BaseURL         string
	ShutdownTimeout time.Duration

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// IsProduction は本番デプロイかどうかを返す。
func (c *Config) IsProduction() bool {
	return c.DeploymentMode == DeploymentProduction
}

// Load は環境変数からConfigを読み込む。
// APP_ENV未設定時はproductionとして扱い、スタブは一切有効にならない。
func Load() (*Config, error) {
	cfg := &Config{}

	mode := getEnvString("APP_ENV", string(DeploymentProduction))
	cfg.DeploymentMode = DeploymentMode(mode)

	cfg.AuthGate = NewStubGate("auth", os.Getenv("USE_STUB_AUTH"), mode)
	cfg.PostsGate = NewStubGate("posts", os.Getenv("USE_STUB_POSTS"), mode)

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")

	// スタブ認証が有効な場合のみ署名鍵を必須とする
	var missing []string
	if cfg.AuthGate.Enabled() && cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 60*60*24*7)
	cfg.StubAuthorID = getEnvString("STUB_AUTHOR_ID", "stub-user-1")
	cfg.PostsFixturePath = getEnvString("POSTS_FIXTURE_PATH", "")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitPostCreate = getEnvInt("RATE_LIMIT_POST_CREATE", 30)
	cfg.LogLevel = getEnvLogLevel("LOG_LEVEL", slog.LevelInfo)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:3000")
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	// 本番では常にSecure。それ以外はCOOKIE_SECUREで明示でき、未指定ならBASE_URLのスキームに従う
	cfg.CookieSecure = cfg.IsProduction() || getEnvBool("COOKIE_SECURE", strings.HasPrefix(cfg.BaseURL, "https://"))
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvLogLevel(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return defaultVal
	}
	return level
}
