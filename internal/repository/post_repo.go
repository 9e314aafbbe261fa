package repository

import (
	"log/slog"

	"github.com/hitoshi/memotodo/internal/config"
	"github.com/hitoshi/memotodo/internal/model"
)

// NewPostRepository はゲートの判定結果に応じて投稿リポジトリの実装を選択する。
// 起動時に1回だけ呼び出し、以降の呼び出し側はどちらの実装かを意識しない。
// ゲートが閉じている場合seedは使用しない。
func NewPostRepository(gate config.StubGate, seed []model.Post) PostRepository {
	if gate.Enabled() {
		slog.Info("post repository: using in-memory stub",
			slog.String("gate", gate.Name()),
			slog.Int("seed_count", len(seed)),
		)
		return NewMemoryPostRepo(seed)
	}

	slog.Warn("post repository: stub disabled, production backend is not implemented",
		slog.String("gate", gate.Name()),
		slog.Bool("production", gate.Production()),
	)
	return NewUnimplementedPostRepo()
}
