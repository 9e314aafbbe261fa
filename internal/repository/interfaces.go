// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/memotodo/internal/model"
)

// 一覧取得のデフォルト値
const (
	DefaultLimit     = 10
	DefaultSortBy    = model.SortByUpdatedAt
	DefaultSortOrder = model.SortDesc
)

// CreatePostInput は投稿作成時の入力。
type CreatePostInput struct {
	AuthorID    string
	ContentJSON string
	Mode        model.PostMode
}

// UpdatePostInput は投稿の部分更新入力。nilのフィールドは変更しない。
type UpdatePostInput struct {
	ContentJSON *string
	Mode        *model.PostMode
}

// FindManyOptions は投稿一覧取得の条件。
// 各フィルタはゼロ値のとき無視され、指定されたものはAND条件で結合される。
// Statusを省略した場合はactiveとtrashedの両方を返す。
type FindManyOptions struct {
	AuthorID  string
	Mode      model.PostMode
	Status    model.PostStatus
	Offset    int
	Limit     int                 // 0以下の場合はDefaultLimit
	SortBy    model.PostSortField // 空の場合はupdatedAt
	SortOrder model.SortOrder     // 空の場合はdesc
}

// PostRepository は投稿データの永続化インターフェース。
// 返却する投稿はすべてスナップショットで、呼び出し側が変更しても保存状態には影響しない。
type PostRepository interface {
	// Create は投稿を作成する。postId・タイムスタンプ・statusはリポジトリが設定する。
	Create(ctx context.Context, input CreatePostInput) (*model.Post, error)

	// FindMany はフィルタ・ソート・ページネーションを適用した投稿一覧を返す。
	FindMany(ctx context.Context, opts FindManyOptions) ([]model.Post, error)

	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	// ゴミ箱にある投稿も取得対象となる。
	FindByID(ctx context.Context, postID string) (*model.Post, error)

	// Update は投稿を部分更新する。成功時は値が変わらなくてもupdatedAtを更新する。
	Update(ctx context.Context, postID string, input UpdatePostInput) (*model.Post, error)

	// SoftDelete は投稿をゴミ箱に移動する。既にゴミ箱にある場合も成功する。
	SoftDelete(ctx context.Context, postID string) error

	// Restore は投稿をゴミ箱から戻す。既にactiveな場合も成功する。
	Restore(ctx context.Context, postID string) error

	// HardDelete は投稿を完全に削除する。
	HardDelete(ctx context.Context, postID string) error
}

// StoreResetter は初期データへのリセットを提供するストア。
// スタブ実装のみが満たす。
type StoreResetter interface {
	Reset()
}
