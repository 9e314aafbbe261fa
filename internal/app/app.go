// Package app はアプリケーションの初期化と起動を提供する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/memotodo/internal/auth"
	"github.com/hitoshi/memotodo/internal/config"
	"github.com/hitoshi/memotodo/internal/fixture"
	"github.com/hitoshi/memotodo/internal/handler"
	"github.com/hitoshi/memotodo/internal/logger"
	"github.com/hitoshi/memotodo/internal/metrics"
	"github.com/hitoshi/memotodo/internal/middleware"
	"github.com/hitoshi/memotodo/internal/model"
	"github.com/hitoshi/memotodo/internal/post"
	"github.com/hitoshi/memotodo/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	go func() {
		select {
		case <-stop:
			slog.Info("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	root := NewRootCommand(w)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// Server はワイヤリング済みのHTTPハンドラーとそのリソースを保持する。
type Server struct {
	cfg         *config.Config
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
}

// NewServer は設定から全依存関係をワイヤリングしたServerを生成する。
// regがnilの場合は新しいレジストリを使用する。
func NewServer(cfg *config.Config, log *slog.Logger, reg *prometheus.Registry) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// 1. 初期データの読み込み（スタブ選択時のみ使用される）
	var seed []model.Post
	if cfg.PostsGate.Enabled() {
		samples, err := fixture.LoadFile(cfg.PostsFixturePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load post fixtures: %w", err)
		}
		seed, err = fixture.ToPosts(samples, cfg.StubAuthorID, time.Local)
		if err != nil {
			return nil, fmt.Errorf("failed to convert post fixtures: %w", err)
		}
	}

	// 2. メトリクス
	collector := metrics.NewCollector(reg)

	// 3. リポジトリとドメインサービス
	posts := repository.NewPostRepository(cfg.PostsGate, seed)
	postService := post.NewService(posts, cfg.PostsGate, collector)

	identity := auth.DefaultIdentity()
	identity.UserID = cfg.StubAuthorID
	provider := auth.NewProvider(cfg.AuthGate, auth.ProviderConfig{
		Secret:   cfg.SessionSecret,
		MaxAge:   time.Duration(cfg.SessionMaxAge) * time.Second,
		Identity: identity,
	}, collector)

	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitPostCreate),
	)

	// 4. ルーターの構築
	deps := &handler.RouterDeps{
		Logger:            logger.ForComponent(log, "http"),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRF: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter: rateLimiter,
		HSTS:        cfg.CookieSecure,

		AuthProvider: provider,
		Cookie: auth.CookieOptions{
			Name:   auth.SessionCookieName,
			Path:   "/",
			Domain: cfg.CookieDomain,
			Secure: cfg.CookieSecure,
		},

		PostService: postService,

		Metrics:        collector,
		MetricsHandler: metrics.Handler(reg),

		Health: handler.HealthStatus{
			DeploymentMode: string(cfg.DeploymentMode),
			AuthStub:       cfg.AuthGate.Enabled(),
			PostsStub:      cfg.PostsGate.Enabled(),
		},
	}
	if !cfg.IsProduction() {
		deps.DevService = postService
	}

	log.Info("dependencies wired",
		slog.String("deployment_mode", string(cfg.DeploymentMode)),
		slog.Bool("stub_auth", cfg.AuthGate.Enabled()),
		slog.Bool("stub_posts", cfg.PostsGate.Enabled()),
		slog.Int("seed_posts", len(seed)),
	)

	return &Server{
		cfg:         cfg,
		handler:     handler.NewRouter(deps),
		rateLimiter: rateLimiter,
	}, nil
}

// Handler はルーティング済みのHTTPハンドラーを返す。
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close はバックグラウンドで動作するリソースを停止する。
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// Serve はlnでHTTPサーバーを起動し、ctxがキャンセルされるとグレースフルシャットダウンを行う。
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、SERVER_PORTでHTTPサーバーを起動する。
func runServe(ctx context.Context, cfg *config.Config) error {
	srv, err := NewServer(cfg, slog.Default(), nil)
	if err != nil {
		return err
	}
	defer srv.Close()

	ln, err := net.Listen("tcp", ":"+cfg.ServerPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.ServerPort, err)
	}

	return srv.Serve(ctx, ln)
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// runFixtures は初期データを検証し、一覧をwに出力する。
func runFixtures(w io.Writer, path, authorID string) error {
	samples, err := fixture.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load fixtures: %w", err)
	}
	posts, err := fixture.ToPosts(samples, authorID, time.Local)
	if err != nil {
		return fmt.Errorf("invalid fixtures: %w", err)
	}

	counts := map[model.PostMode]int{}
	for i, p := range posts {
		counts[p.Mode]++
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			p.PostID, p.Mode, p.UpdatedAt.Format(fixture.DateLayout), samples[i].Body)
	}
	fmt.Fprintf(w, "total=%d memo=%d todo=%d\n",
		len(posts), counts[model.PostModeMemo], counts[model.PostModeTodo])
	return nil
}
