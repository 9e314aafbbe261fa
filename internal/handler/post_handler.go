package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/memotodo/internal/middleware"
	"github.com/hitoshi/memotodo/internal/model"
	"github.com/hitoshi/memotodo/internal/post"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	List(ctx context.Context, userID string, q post.ListQuery) ([]model.Post, error)
	Get(ctx context.Context, userID, postID string) (*model.Post, error)
	Create(ctx context.Context, userID string, input post.CreateInput) (*model.Post, error)
	Update(ctx context.Context, userID, postID string, input post.UpdateInput) (*model.Post, error)
	Trash(ctx context.Context, userID, postID string) error
	Restore(ctx context.Context, userID, postID string) error
	Delete(ctx context.Context, userID, postID string) error
}

// PostHandler は投稿管理のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// createPostRequest は投稿作成リクエストのボディ。
type createPostRequest struct {
	ContentJSON string `json:"contentJSON"`
	Mode        string `json:"mode"`
}

// updatePostRequest は投稿更新リクエストのボディ。省略したフィールドは変更しない。
type updatePostRequest struct {
	ContentJSON *string `json:"contentJSON,omitempty"`
	Mode        *string `json:"mode,omitempty"`
}

type postListResponse struct {
	Posts []model.Post `json:"posts"`
}

// ListPosts は投稿一覧を返す。
// GET /api/posts?mode=&status=&sortBy=&sortOrder=&offset=&limit=
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	offset, err := parseIntParam(q.Get("offset"))
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidPaginationError("offset must be an integer"))
		return
	}
	limit, err := parseIntParam(q.Get("limit"))
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidPaginationError("limit must be an integer"))
		return
	}

	posts, err := h.service.List(r.Context(), userID, post.ListQuery{
		Mode:      q.Get("mode"),
		Status:    q.Get("status"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}

	writeJSON(w, http.StatusOK, postListResponse{Posts: posts})
}

// CreatePost は投稿を作成する。
// POST /api/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createPostRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	p, err := h.service.Create(r.Context(), userID, post.CreateInput{
		ContentJSON: req.ContentJSON,
		Mode:        req.Mode,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// GetPost は投稿を1件返す。
// GET /api/posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// UpdatePost は投稿を部分更新する。
// PATCH /api/posts/{id}
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updatePostRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	p, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), post.UpdateInput{
		ContentJSON: req.ContentJSON,
		Mode:        req.Mode,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// TrashPost は投稿をゴミ箱に移動する。
// POST /api/posts/{id}/trash
func (h *PostHandler) TrashPost(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Trash)
}

// RestorePost は投稿をゴミ箱から戻す。
// POST /api/posts/{id}/restore
func (h *PostHandler) RestorePost(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Restore)
}

// DeletePost は投稿を完全に削除する。
// DELETE /api/posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Delete)
}

func (h *PostHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID, postID string) error) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := fn(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseIntParam は整数のクエリパラメータを解析する。空文字は0として扱う。
func parseIntParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
