package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/memotodo/internal/model"
)

// maxIDAttempts はpostId衝突時に再生成する上限回数。
const maxIDAttempts = 3

// NewPostID はタイムスタンプ由来のプレフィックスとランダムなサフィックスを持つ投稿IDを生成する。
// UUIDv7は先頭48bitがミリ秒タイムスタンプ、残りが乱数。
func NewPostID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "post-" + uuid.NewString()
	}
	return "post-" + id.String()
}

// MemoryPostRepo はメモリ上のスライスに投稿を保持するスタブ実装。
// プロセスまたはテストごとに生成して参照で渡す。
// すべての操作はミューテックスで直列化され、1回の呼び出しが1つの原子的な単位となる。
type MemoryPostRepo struct {
	mu    sync.RWMutex
	posts []model.Post
	seed  []model.Post
	now   func() time.Time
	newID func() string
}

// MemoryOption はMemoryPostRepoの生成オプション。
type MemoryOption func(*MemoryPostRepo)

// WithClock は現在時刻の取得関数を差し替える。
func WithClock(now func() time.Time) MemoryOption {
	return func(r *MemoryPostRepo) {
		r.now = now
	}
}

// WithIDGenerator はpostIdの生成関数を差し替える。
func WithIDGenerator(gen func() string) MemoryOption {
	return func(r *MemoryPostRepo) {
		r.newID = gen
	}
}

// NewMemoryPostRepo は初期データseedを投入済みのMemoryPostRepoを生成する。
// seedは複製して保持するため、呼び出し側が後から変更しても影響しない。
func NewMemoryPostRepo(seed []model.Post, opts ...MemoryOption) *MemoryPostRepo {
	r := &MemoryPostRepo{
		seed:  clonePosts(seed),
		now:   time.Now,
		newID: NewPostID,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.posts = clonePosts(r.seed)
	return r
}

// Reset はストアを空にして初期データを再投入する。それまでの変更はすべて破棄される。
func (r *MemoryPostRepo) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = clonePosts(r.seed)
}

// Len は保持している投稿数を返す。
func (r *MemoryPostRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.posts)
}

// Create は投稿を作成する。
func (r *MemoryPostRepo) Create(ctx context.Context, input CreatePostInput) (*model.Post, error) {
	if !input.Mode.Valid() {
		return nil, model.NewInvalidModeError(string(input.Mode))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	postID, err := r.uniqueID()
	if err != nil {
		return nil, err
	}

	now := r.now()
	post := model.Post{
		PostID:      postID,
		AuthorID:    input.AuthorID,
		ContentJSON: input.ContentJSON,
		Status:      model.PostStatusActive,
		Mode:        input.Mode,
		CreatedAt:   now,
		UpdatedAt:   now,
		DeletedAt:   nil,
	}
	r.posts = append(r.posts, post)

	out := post.Clone()
	return &out, nil
}

// FindMany はフィルタ・ソート・ページネーションを適用した投稿一覧を返す。
// ソートは安定ソートのため、キーが同値の投稿は格納順を保つ。
func (r *MemoryPostRepo) FindMany(ctx context.Context, opts FindManyOptions) ([]model.Post, error) {
	r.mu.RLock()
	filtered := make([]model.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if opts.AuthorID != "" && p.AuthorID != opts.AuthorID {
			continue
		}
		if opts.Mode != "" && p.Mode != opts.Mode {
			continue
		}
		if opts.Status != "" && p.Status != opts.Status {
			continue
		}
		filtered = append(filtered, p.Clone())
	}
	r.mu.RUnlock()

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	order := opts.SortOrder
	if order == "" {
		order = DefaultSortOrder
	}

	key := func(p model.Post) time.Time {
		if sortBy == model.SortByCreatedAt {
			return p.CreatedAt
		}
		return p.UpdatedAt
	}
	slices.SortStableFunc(filtered, func(a, b model.Post) int {
		c := key(a).Compare(key(b))
		if order == model.SortDesc {
			return -c
		}
		return c
	})

	offset := max(opts.Offset, 0)
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset >= len(filtered) {
		return []model.Post{}, nil
	}
	end := min(offset+limit, len(filtered))

	return filtered[offset:end], nil
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *MemoryPostRepo) FindByID(ctx context.Context, postID string) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(postID)
	if i < 0 {
		return nil, nil
	}
	out := r.posts[i].Clone()
	return &out, nil
}

// Update は投稿を部分更新する。
func (r *MemoryPostRepo) Update(ctx context.Context, postID string, input UpdatePostInput) (*model.Post, error) {
	if input.Mode != nil && !input.Mode.Valid() {
		return nil, model.NewInvalidModeError(string(*input.Mode))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(postID)
	if i < 0 {
		return nil, model.NewPostNotFoundError(postID)
	}

	post := r.posts[i]
	if input.ContentJSON != nil {
		post.ContentJSON = *input.ContentJSON
	}
	if input.Mode != nil {
		post.Mode = *input.Mode
	}
	post.UpdatedAt = r.touch(post.UpdatedAt)
	r.posts[i] = post

	out := post.Clone()
	return &out, nil
}

// SoftDelete は投稿をゴミ箱に移動する。
func (r *MemoryPostRepo) SoftDelete(ctx context.Context, postID string) error {
	return r.mutate(postID, func(p *model.Post, now time.Time) {
		p.Status = model.PostStatusTrashed
		p.DeletedAt = &now
	})
}

// Restore は投稿をゴミ箱から戻す。
func (r *MemoryPostRepo) Restore(ctx context.Context, postID string) error {
	return r.mutate(postID, func(p *model.Post, now time.Time) {
		p.Status = model.PostStatusActive
		p.DeletedAt = nil
	})
}

// HardDelete は投稿をストアから取り除く。
func (r *MemoryPostRepo) HardDelete(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(postID)
	if i < 0 {
		return model.NewPostNotFoundError(postID)
	}
	r.posts = slices.Delete(r.posts, i, i+1)
	return nil
}

// mutate はpostIDの投稿にfnを適用し、updatedAtを更新する。
func (r *MemoryPostRepo) mutate(postID string, fn func(p *model.Post, now time.Time)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(postID)
	if i < 0 {
		return model.NewPostNotFoundError(postID)
	}

	post := r.posts[i]
	now := r.touch(post.UpdatedAt)
	fn(&post, now)
	post.UpdatedAt = now
	r.posts[i] = post
	return nil
}

// touch は現在時刻を返す。ただしprevより前に戻ることはない。
func (r *MemoryPostRepo) touch(prev time.Time) time.Time {
	now := r.now()
	if now.Before(prev) {
		return prev
	}
	return now
}

// indexOf はpostIDの位置を返す。呼び出し側でロックを保持していること。
func (r *MemoryPostRepo) indexOf(postID string) int {
	return slices.IndexFunc(r.posts, func(p model.Post) bool {
		return p.PostID == postID
	})
}

// uniqueID はストア内で重複しないpostIdを生成する。呼び出し側でロックを保持していること。
func (r *MemoryPostRepo) uniqueID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := r.newID()
		if id != "" && r.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique post ID after %d attempts", maxIDAttempts)
}

func clonePosts(src []model.Post) []model.Post {
	out := make([]model.Post, len(src))
	for i, p := range src {
		out[i] = p.Clone()
	}
	return out
}

// compile-time interface check
var (
	_ PostRepository = (*MemoryPostRepo)(nil)
	_ StoreResetter  = (*MemoryPostRepo)(nil)
)
