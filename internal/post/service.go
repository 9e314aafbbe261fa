// Package post は投稿管理のドメインロジックを提供する。
package post

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hitoshi/memotodo/internal/config"
	"github.com/hitoshi/memotodo/internal/metrics"
	"github.com/hitoshi/memotodo/internal/model"
	"github.com/hitoshi/memotodo/internal/repository"
)

// MaxLimit は一覧取得で指定できるlimitの上限。
const MaxLimit = 100

// ListQuery は一覧取得のクエリパラメータ。
// 文字列フィールドは空のとき未指定として扱う。Limitが0の場合はデフォルト件数。
type ListQuery struct {
	Mode      string
	Status    string
	SortBy    string
	SortOrder string
	Offset    int
	Limit     int
}

// CreateInput は投稿作成の入力。
type CreateInput struct {
	ContentJSON string
	Mode        string
}

// UpdateInput は投稿更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	ContentJSON *string
	Mode        *string
}

// Service は投稿管理のサービス層。
// 呼び出し元ユーザーの投稿のみを扱い、他ユーザーの投稿は存在しないものとして扱う。
type Service struct {
	repo    repository.PostRepository
	gate    config.StubGate
	metrics metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(repo repository.PostRepository, gate config.StubGate, collector metrics.MetricsCollector) *Service {
	return &Service{
		repo:    repo,
		gate:    gate,
		metrics: collector,
	}
}

// List はユーザーの投稿一覧を返す。
func (s *Service) List(ctx context.Context, userID string, q ListQuery) ([]model.Post, error) {
	opts, err := buildFindManyOptions(userID, q)
	if err != nil {
		s.record("list", err)
		return nil, err
	}

	posts, err := s.repo.FindMany(ctx, opts)
	s.record("list", err)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	return posts, nil
}

// Get はユーザーの投稿を1件取得する。ゴミ箱にある投稿も取得できる。
func (s *Service) Get(ctx context.Context, userID, postID string) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		s.record("get", err)
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil || post.AuthorID != userID {
		err := model.NewPostNotFoundError(postID)
		s.record("get", err)
		return nil, err
	}
	s.record("get", nil)
	return post, nil
}

// Create は投稿を作成する。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Post, error) {
	mode, err := model.ParsePostMode(input.Mode)
	if err != nil {
		s.record("create", err)
		return nil, err
	}
	if err := validateContent(input.ContentJSON); err != nil {
		s.record("create", err)
		return nil, err
	}

	post, err := s.repo.Create(ctx, repository.CreatePostInput{
		AuthorID:    userID,
		ContentJSON: input.ContentJSON,
		Mode:        mode,
	})
	s.record("create", err)
	if err != nil {
		return nil, fmt.Errorf("投稿の作成に失敗しました: %w", err)
	}

	slog.Info("post created",
		slog.String("post_id", post.PostID),
		slog.String("user_id", userID),
		slog.String("mode", string(post.Mode)),
	)
	return post, nil
}

// Update は投稿を部分更新する。
func (s *Service) Update(ctx context.Context, userID, postID string, input UpdateInput) (*model.Post, error) {
	var repoInput repository.UpdatePostInput
	if input.Mode != nil {
		mode, err := model.ParsePostMode(*input.Mode)
		if err != nil {
			s.record("update", err)
			return nil, err
		}
		repoInput.Mode = &mode
	}
	if input.ContentJSON != nil {
		if err := validateContent(*input.ContentJSON); err != nil {
			s.record("update", err)
			return nil, err
		}
		repoInput.ContentJSON = input.ContentJSON
	}

	if err := s.authorize(ctx, userID, postID); err != nil {
		s.record("update", err)
		return nil, err
	}

	post, err := s.repo.Update(ctx, postID, repoInput)
	s.record("update", err)
	if err != nil {
		return nil, fmt.Errorf("投稿の更新に失敗しました: %w", err)
	}
	return post, nil
}

// Trash は投稿をゴミ箱に移動する。
func (s *Service) Trash(ctx context.Context, userID, postID string) error {
	return s.transition(ctx, "trash", userID, postID, s.repo.SoftDelete)
}

// Restore は投稿をゴミ箱から戻す。
func (s *Service) Restore(ctx context.Context, userID, postID string) error {
	return s.transition(ctx, "restore", userID, postID, s.repo.Restore)
}

// Delete は投稿を完全に削除する。
func (s *Service) Delete(ctx context.Context, userID, postID string) error {
	return s.transition(ctx, "delete", userID, postID, s.repo.HardDelete)
}

// ResetStubStore はスタブストアを初期データに戻す。
// 本番デプロイモードではRESET_FORBIDDENを返し、ゲートが閉じている場合は何もしない。
// 初期データに戻した場合はtrueを返す。
func (s *Service) ResetStubStore(ctx context.Context) (bool, error) {
	if s.gate.Production() {
		slog.Warn("stub store reset rejected in production")
		s.recordReset(metrics.ResultRejected)
		return false, model.NewResetForbiddenError()
	}
	if !s.gate.Enabled() {
		s.recordReset(metrics.ResultNotImplemented)
		return false, nil
	}

	resetter, ok := s.repo.(repository.StoreResetter)
	if !ok {
		s.recordReset(metrics.ResultNotImplemented)
		return false, nil
	}
	resetter.Reset()

	slog.Info("stub store reset", slog.String("gate", s.gate.Name()))
	s.recordReset(metrics.ResultSuccess)
	return true, nil
}

func (s *Service) transition(ctx context.Context, op, userID, postID string, fn func(context.Context, string) error) error {
	if err := s.authorize(ctx, userID, postID); err != nil {
		s.record(op, err)
		return err
	}

	err := fn(ctx, postID)
	s.record(op, err)
	if err != nil {
		return fmt.Errorf("投稿操作(%s)に失敗しました: %w", op, err)
	}
	return nil
}

// authorize は他ユーザーの投稿への操作をNotFoundとして拒否する。
// 投稿が見つからない場合はリポジトリ側の結果（NotFoundまたはNotImplemented）に委ねる。
func (s *Service) authorize(ctx context.Context, userID, postID string) error {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post != nil && post.AuthorID != userID {
		return model.NewPostNotFoundError(postID)
	}
	return nil
}

func (s *Service) record(op string, err error) {
	if s.metrics != nil {
		s.metrics.RecordPostOperation(op, metrics.ResultOf(err))
	}
}

func (s *Service) recordReset(result string) {
	if s.metrics != nil {
		s.metrics.RecordStoreReset(result)
	}
}

func buildFindManyOptions(userID string, q ListQuery) (repository.FindManyOptions, error) {
	opts := repository.FindManyOptions{AuthorID: userID}

	if q.Mode != "" {
		mode, err := model.ParsePostMode(q.Mode)
		if err != nil {
			return opts, err
		}
		opts.Mode = mode
	}
	if q.Status != "" {
		status, err := model.ParsePostStatus(q.Status)
		if err != nil {
			return opts, err
		}
		opts.Status = status
	}
	if q.SortBy != "" {
		sortBy, err := model.ParsePostSortField(q.SortBy)
		if err != nil {
			return opts, err
		}
		opts.SortBy = sortBy
	}
	if q.SortOrder != "" {
		order, err := model.ParseSortOrder(q.SortOrder)
		if err != nil {
			return opts, err
		}
		opts.SortOrder = order
	}

	if q.Offset < 0 {
		return opts, model.NewInvalidPaginationError("offset must be >= 0")
	}
	if q.Limit < 0 || q.Limit > MaxLimit {
		return opts, model.NewInvalidPaginationError(fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}
	opts.Offset = q.Offset
	opts.Limit = q.Limit

	return opts, nil
}

// validateContent はcontentJSONがJSONとして解釈できることを確認する。中身の構造は検査しない。
func validateContent(content string) error {
	if content == "" {
		return model.NewInvalidRequestError("contentJSON is required")
	}
	if !json.Valid([]byte(content)) {
		return model.NewInvalidRequestError("contentJSON must be valid JSON")
	}
	return nil
}
