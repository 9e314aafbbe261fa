// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/memotodo/internal/auth"
	"github.com/hitoshi/memotodo/internal/middleware"
	"github.com/hitoshi/memotodo/internal/model"
)

// スタブ認証アクション
const (
	actionSignIn  = "signIn"
	actionSignOut = "signOut"
)

// AuthProvider は認証ハンドラーが必要とするセッションプロバイダーのインターフェース。
// auth.Providerが満たす。
type AuthProvider interface {
	SignIn(ctx context.Context, store auth.CredentialStore) (*model.Session, error)
	SignOut(ctx context.Context, store auth.CredentialStore) error
	GetSession(ctx context.Context, store auth.CredentialStore) *model.Session
}

// AuthHandler はスタブ認証のHTTPハンドラー。
type AuthHandler struct {
	provider AuthProvider
	cookie   auth.CookieOptions
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(provider AuthProvider, cookie auth.CookieOptions) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		cookie:   cookie,
	}
}

type stubActionRequest struct {
	Action string `json:"action"`
}

type stubActionResponse struct {
	Success bool `json:"success"`
}

type sessionResponse struct {
	Session *model.Session `json:"session"`
}

// Action はサインイン・サインアウトを実行する。
// POST /api/auth/stub {"action":"signIn"|"signOut"}
func (h *AuthHandler) Action(w http.ResponseWriter, r *http.Request) {
	var req stubActionRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	store := auth.NewCookieStore(w, r, h.cookie)

	var err error
	switch req.Action {
	case actionSignIn:
		_, err = h.provider.SignIn(r.Context(), store)
	case actionSignOut:
		err = h.provider.SignOut(r.Context(), store)
	default:
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("Invalid action"))
		return
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stubActionResponse{Success: true})
}

// Session は現在のセッションを返す。未ログインの場合はnull。
// GET /api/auth/stub
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := h.provider.GetSession(r.Context(), auth.NewCookieStore(w, r, h.cookie))
	writeJSON(w, http.StatusOK, sessionResponse{Session: session})
}
