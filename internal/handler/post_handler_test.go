package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/memotodo/internal/middleware"
	"github.com/hitoshi/memotodo/internal/model"
	"github.com/hitoshi/memotodo/internal/post"
)

// --- モック定義 ---

type mockPostService struct {
	listFn    func(ctx context.Context, userID string, q post.ListQuery) ([]model.Post, error)
	getFn     func(ctx context.Context, userID, postID string) (*model.Post, error)
	createFn  func(ctx context.Context, userID string, input post.CreateInput) (*model.Post, error)
	updateFn  func(ctx context.Context, userID, postID string, input post.UpdateInput) (*model.Post, error)
	trashFn   func(ctx context.Context, userID, postID string) error
	restoreFn func(ctx context.Context, userID, postID string) error
	deleteFn  func(ctx context.Context, userID, postID string) error
}

func (m *mockPostService) List(ctx context.Context, userID string, q post.ListQuery) ([]model.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, q)
	}
	return []model.Post{}, nil
}

func (m *mockPostService) Get(ctx context.Context, userID, postID string) (*model.Post, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, postID)
	}
	return nil, model.NewPostNotFoundError(postID)
}

func (m *mockPostService) Create(ctx context.Context, userID string, input post.CreateInput) (*model.Post, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, input)
	}
	return nil, nil
}

func (m *mockPostService) Update(ctx context.Context, userID, postID string, input post.UpdateInput) (*model.Post, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, postID, input)
	}
	return nil, nil
}

func (m *mockPostService) Trash(ctx context.Context, userID, postID string) error {
	if m.trashFn != nil {
		return m.trashFn(ctx, userID, postID)
	}
	return nil
}

func (m *mockPostService) Restore(ctx context.Context, userID, postID string) error {
	if m.restoreFn != nil {
		return m.restoreFn(ctx, userID, postID)
	}
	return nil
}

func (m *mockPostService) Delete(ctx context.Context, userID, postID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, postID)
	}
	return nil
}

// --- テストヘルパー ---

// newPostRequest はユーザーIDとURLパラメータidを設定したリクエストを生成する。
func newPostRequest(method, target string, body io.Reader, postID string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := middleware.ContextWithUserID(req.Context(), "user-1")
	if postID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", postID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func samplePost(id string) *model.Post {
	ts := time.Date(2025, 12, 7, 14, 30, 0, 0, time.UTC)
	return &model.Post{
		PostID:      id,
		AuthorID:    "user-1",
		ContentJSON: `{"type":"doc"}`,
		Status:      model.PostStatusActive,
		Mode:        model.PostModeMemo,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// --- ListPosts ---

func TestPostHandler_ListPosts_PassesQuery(t *testing.T) {
	var got post.ListQuery
	var gotUser string
	h := NewPostHandler(&mockPostService{
		listFn: func(ctx context.Context, userID string, q post.ListQuery) ([]model.Post, error) {
			gotUser = userID
			got = q
			return []model.Post{*samplePost("post-001")}, nil
		},
	})

	req := newPostRequest(http.MethodGet, "/api/posts?mode=todo&status=trashed&sortBy=createdAt&sortOrder=asc&offset=5&limit=20", nil, "")
	w := httptest.NewRecorder()
	h.ListPosts(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", w.Code, w.Body.String())
	}
	want := post.ListQuery{Mode: "todo", Status: "trashed", SortBy: "createdAt", SortOrder: "asc", Offset: 5, Limit: 20}
	if got != want {
		t.Errorf("query = %+v, want %+v", got, want)
	}
	if gotUser != "user-1" {
		t.Errorf("userID = %q, want user-1", gotUser)
	}

	var resp postListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(resp.Posts) != 1 || resp.Posts[0].PostID != "post-001" {
		t.Errorf("posts = %+v", resp.Posts)
	}
}

// TestPostHandler_ListPosts_EmptyIsArray は0件の場合にnullではなく空配列を返すことを検証する。
func TestPostHandler_ListPosts_EmptyIsArray(t *testing.T) {
	h := NewPostHandler(&mockPostService{})

	w := httptest.NewRecorder()
	h.ListPosts(w, newPostRequest(http.MethodGet, "/api/posts", nil, ""))

	if !strings.Contains(w.Body.String(), `"posts":[]`) {
		t.Errorf("body = %s, want empty array", w.Body.String())
	}
}

func TestPostHandler_ListPosts_NonIntegerPagination(t *testing.T) {
	h := NewPostHandler(&mockPostService{
		listFn: func(ctx context.Context, userID string, q post.ListQuery) ([]model.Post, error) {
			t.Fatal("List should not be called")
			return nil, nil
		},
	})

	for _, target := range []string{"/api/posts?offset=abc", "/api/posts?limit=1.5"} {
		w := httptest.NewRecorder()
		h.ListPosts(w, newPostRequest(http.MethodGet, target, nil, ""))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
		}
		if !strings.Contains(w.Body.String(), model.ErrCodeInvalidPagination) {
			t.Errorf("%s: body = %s", target, w.Body.String())
		}
	}
}

func TestPostHandler_ListPosts_NotImplemented(t *testing.T) {
	h := NewPostHandler(&mockPostService{
		listFn: func(ctx context.Context, userID string, q post.ListQuery) ([]model.Post, error) {
			return nil, model.NewNotImplementedError("posts")
		},
	})

	w := httptest.NewRecorder()
	h.ListPosts(w, newPostRequest(http.MethodGet, "/api/posts", nil, ""))

	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", w.Code)
	}
}

func TestPostHandler_NoUserID(t *testing.T) {
	h := NewPostHandler(&mockPostService{})

	w := httptest.NewRecorder()
	h.ListPosts(w, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

// --- CreatePost ---

func TestPostHandler_CreatePost(t *testing.T) {
	var got post.CreateInput
	h := NewPostHandler(&mockPostService{
		createFn: func(ctx context.Context, userID string, input post.CreateInput) (*model.Post, error) {
			got = input
			p := samplePost("post-new")
			p.Mode = model.PostModeTodo
			return p, nil
		},
	})

	body := `{"contentJSON":"{\"type\":\"doc\"}","mode":"todo"}`
	w := httptest.NewRecorder()
	h.CreatePost(w, newPostRequest(http.MethodPost, "/api/posts", strings.NewReader(body), ""))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body = %s", w.Code, w.Body.String())
	}
	if got.ContentJSON != `{"type":"doc"}` || got.Mode != "todo" {
		t.Errorf("input = %+v", got)
	}

	var resp model.Post
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.PostID != "post-new" || resp.Mode != model.PostModeTodo {
		t.Errorf("response = %+v", resp)
	}
}

func TestPostHandler_CreatePost_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"invalid mode", `{"contentJSON":"{}","mode":"blog"}`, model.NewInvalidModeError("blog"), http.StatusBadRequest},
		{"not implemented", `{"contentJSON":"{}","mode":"memo"}`, model.NewNotImplementedError("posts"), http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPostHandler(&mockPostService{
				createFn: func(ctx context.Context, userID string, input post.CreateInput) (*model.Post, error) {
					return nil, tt.err
				},
			})

			w := httptest.NewRecorder()
			h.CreatePost(w, newPostRequest(http.MethodPost, "/api/posts", strings.NewReader(tt.body), ""))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

// --- GetPost / UpdatePost ---

func TestPostHandler_GetPost(t *testing.T) {
	h := NewPostHandler(&mockPostService{
		getFn: func(ctx context.Context, userID, postID string) (*model.Post, error) {
			if postID == "post-001" {
				return samplePost(postID), nil
			}
			return nil, model.NewPostNotFoundError(postID)
		},
	})

	w := httptest.NewRecorder()
	h.GetPost(w, newPostRequest(http.MethodGet, "/api/posts/post-001", nil, "post-001"))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	h.GetPost(w, newPostRequest(http.MethodGet, "/api/posts/missing", nil, "missing"))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// TestPostHandler_UpdatePost_PartialFields は省略したフィールドがnilとして渡されることを検証する。
func TestPostHandler_UpdatePost_PartialFields(t *testing.T) {
	var got post.UpdateInput
	var gotID string
	h := NewPostHandler(&mockPostService{
		updateFn: func(ctx context.Context, userID, postID string, input post.UpdateInput) (*model.Post, error) {
			gotID = postID
			got = input
			return samplePost(postID), nil
		},
	})

	w := httptest.NewRecorder()
	h.UpdatePost(w, newPostRequest(http.MethodPatch, "/api/posts/post-003", strings.NewReader(`{"mode":"diary"}`), "post-003"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", w.Code, w.Body.String())
	}
	if gotID != "post-003" {
		t.Errorf("postID = %q, want post-003", gotID)
	}
	if got.ContentJSON != nil {
		t.Error("ContentJSON should be nil when omitted")
	}
	if got.Mode == nil || *got.Mode != "diary" {
		t.Errorf("Mode = %v, want diary", got.Mode)
	}
}

// --- Trash / Restore / Delete ---

func TestPostHandler_Transitions(t *testing.T) {
	var calls []string
	record := func(name string) func(ctx context.Context, userID, postID string) error {
		return func(ctx context.Context, userID, postID string) error {
			calls = append(calls, name+":"+postID)
			return nil
		}
	}
	h := NewPostHandler(&mockPostService{
		trashFn:   record("trash"),
		restoreFn: record("restore"),
		deleteFn:  record("delete"),
	})

	tests := []struct {
		name    string
		method  string
		handler http.HandlerFunc
	}{
		{"trash", http.MethodPost, h.TrashPost},
		{"restore", http.MethodPost, h.RestorePost},
		{"delete", http.MethodDelete, h.DeletePost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, newPostRequest(tt.method, "/api/posts/post-002", nil, "post-002"))
			if w.Code != http.StatusNoContent {
				t.Errorf("status = %d, want 204", w.Code)
			}
		})
	}

	want := []string{"trash:post-002", "restore:post-002", "delete:post-002"}
	if strings.Join(calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestPostHandler_Transitions_NotFound(t *testing.T) {
	h := NewPostHandler(&mockPostService{
		trashFn: func(ctx context.Context, userID, postID string) error {
			return model.NewPostNotFoundError(postID)
		},
	})

	w := httptest.NewRecorder()
	h.TrashPost(w, newPostRequest(http.MethodPost, "/api/posts/missing/trash", nil, "missing"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
