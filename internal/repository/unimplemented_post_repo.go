package repository

import (
	"context"

	"github.com/hitoshi/memotodo/internal/model"
)

// postFeature はNotImplementedエラーのメッセージに使う機能名。
const postFeature = "投稿CRUD"

// UnimplementedPostRepo は本番バックエンドが提供されるまでの代替実装。
// 書き込みと一覧取得はNOT_IMPLEMENTEDで失敗し、FindByIDのみ常にnilを返す。
type UnimplementedPostRepo struct{}

// NewUnimplementedPostRepo はUnimplementedPostRepoを生成する。
func NewUnimplementedPostRepo() *UnimplementedPostRepo {
	return &UnimplementedPostRepo{}
}

// Create は常にNOT_IMPLEMENTEDを返す。
func (r *UnimplementedPostRepo) Create(ctx context.Context, input CreatePostInput) (*model.Post, error) {
	return nil, model.NewNotImplementedError(postFeature)
}

// FindMany は常にNOT_IMPLEMENTEDを返す。
func (r *UnimplementedPostRepo) FindMany(ctx context.Context, opts FindManyOptions) ([]model.Post, error) {
	return nil, model.NewNotImplementedError(postFeature)
}

// FindByID は常に未検出（nil）を返す。
func (r *UnimplementedPostRepo) FindByID(ctx context.Context, postID string) (*model.Post, error) {
	return nil, nil
}

// Update は常にNOT_IMPLEMENTEDを返す。
func (r *UnimplementedPostRepo) Update(ctx context.Context, postID string, input UpdatePostInput) (*model.Post, error) {
	return nil, model.NewNotImplementedError(postFeature)
}

// SoftDelete は常にNOT_IMPLEMENTEDを返す。
func (r *UnimplementedPostRepo) SoftDelete(ctx context.Context, postID string) error {
	return model.NewNotImplementedError(postFeature)
}

// Restore は常にNOT_IMPLEMENTEDを返す。
func (r *UnimplementedPostRepo) Restore(ctx context.Context, postID string) error {
	return model.NewNotImplementedError(postFeature)
}

// HardDelete は常にNOT_IMPLEMENTEDを返す。
func (r *UnimplementedPostRepo) HardDelete(ctx context.Context, postID string) error {
	return model.NewNotImplementedError(postFeature)
}

// compile-time interface check
var _ PostRepository = (*UnimplementedPostRepo)(nil)
