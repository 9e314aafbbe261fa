// Package auth はスタブ認証のセッション管理を提供する。
package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/memotodo/internal/config"
	"github.com/hitoshi/memotodo/internal/metrics"
	"github.com/hitoshi/memotodo/internal/model"
)

// DefaultMaxAge はセッションのデフォルト有効期間（7日）。
const DefaultMaxAge = 7 * 24 * time.Hour

// DefaultIdentity はスタブログインで発行される固定ユーザー。
func DefaultIdentity() model.Session {
	return model.Session{
		UserID: "stub-user-1",
		Email:  "stub@example.com",
		Name:   "スタブユーザー",
	}
}

// ProviderConfig はProviderの設定。
type ProviderConfig struct {
	Secret   string
	MaxAge   time.Duration
	Identity model.Session
}

// Provider はスタブ認証のセッションプロバイダー。
// ゲートが閉じている場合、サインイン・サインアウトはSTUB_AUTH_DISABLEDで失敗し、
// セッション取得は常に未ログインとなる。
type Provider struct {
	gate     config.StubGate
	codec    *TokenCodec
	maxAge   time.Duration
	identity model.Session
	metrics  metrics.MetricsCollector
}

// NewProvider はProviderを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewProvider(gate config.StubGate, cfg ProviderConfig, collector metrics.MetricsCollector) *Provider {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if !cfg.Identity.Valid() {
		cfg.Identity = DefaultIdentity()
	}
	return &Provider{
		gate:     gate,
		codec:    NewTokenCodec(cfg.Secret),
		maxAge:   cfg.MaxAge,
		identity: cfg.Identity,
		metrics:  collector,
	}
}

// Enabled はスタブ認証が有効かどうかを返す。
func (p *Provider) Enabled() bool {
	return p.gate.Enabled()
}

// SignIn は固定のスタブユーザーでセッションを発行し、storeに保存する。
// 既存のセッションがあれば上書きする。
func (p *Provider) SignIn(ctx context.Context, store CredentialStore) (*model.Session, error) {
	if !p.gate.Enabled() {
		err := model.NewStubAuthDisabledError()
		p.record("signIn", err)
		return nil, err
	}

	token, err := p.codec.Encode(p.identity, p.maxAge)
	if err != nil {
		p.record("signIn", err)
		return nil, err
	}
	store.Set(token, p.maxAge)

	slog.InfoContext(ctx, "stub user signed in", slog.String("user_id", p.identity.UserID))
	p.record("signIn", nil)

	session := p.identity
	return &session, nil
}

// SignOut はstoreからセッションを削除する。未ログインでも成功する。
func (p *Provider) SignOut(ctx context.Context, store CredentialStore) error {
	if !p.gate.Enabled() {
		err := model.NewStubAuthDisabledError()
		p.record("signOut", err)
		return err
	}

	store.Delete()
	slog.InfoContext(ctx, "stub user signed out")
	p.record("signOut", nil)
	return nil
}

// GetSession はstoreのセッションを返す。未ログインの場合はnil。
// 復元できない認証情報は削除したうえで未ログインとして扱う。
func (p *Provider) GetSession(ctx context.Context, store CredentialStore) *model.Session {
	if !p.gate.Enabled() {
		return nil
	}

	token, ok := store.Get()
	if !ok {
		return nil
	}

	session, err := p.codec.Decode(token)
	if err != nil {
		slog.WarnContext(ctx, "discarding unreadable session credential", slog.String("error", err.Error()))
		store.Delete()
		return nil
	}
	return session
}

// IsAuthenticated はセッションが存在するかを返す。
func (p *Provider) IsAuthenticated(ctx context.Context, store CredentialStore) bool {
	return p.GetSession(ctx, store) != nil
}

func (p *Provider) record(action string, err error) {
	if p.metrics != nil {
		p.metrics.RecordAuthAction(action, metrics.ResultOf(err))
	}
}
