// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, post, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodePostNotFound      = "POST_NOT_FOUND"
	ErrCodeNotImplemented    = "NOT_IMPLEMENTED"
	ErrCodeStubAuthDisabled  = "STUB_AUTH_DISABLED"
	ErrCodeResetForbidden    = "RESET_FORBIDDEN"
	ErrCodeInvalidMode       = "INVALID_MODE"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeInvalidSort       = "INVALID_SORT"
	ErrCodeInvalidPagination = "INVALID_PAGINATION"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeCSRFTokenInvalid  = "CSRF_TOKEN_INVALID"
	ErrCodeRateLimited       = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// HasErrorCode はerrのチェーン中に指定コードのAPIErrorが含まれるかを返す。
// 呼び出し側はNotFoundとNotImplementedをこれで区別する。
func HasErrorCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// HasErrorCategory はerrのチェーン中に指定カテゴリのAPIErrorが含まれるかを返す。
func HasErrorCategory(err error, category string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Category == category
	}
	return false
}

// IsNotFound は投稿未検出エラーかどうかを返す。
func IsNotFound(err error) bool {
	return HasErrorCode(err, ErrCodePostNotFound)
}

// IsNotImplemented は本番実装未提供エラーかどうかを返す。
func IsNotImplemented(err error) bool {
	return HasErrorCode(err, ErrCodeNotImplemented)
}

// NewPostNotFoundError は投稿未検出エラーを生成する。
func NewPostNotFoundError(postID string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("投稿が見つかりません: %s", postID),
		Category: "post",
		Action:   "投稿は既に削除されている可能性があります。一覧を更新してください。",
	}
}

// NewNotImplementedError は本番バックエンドが未実装の場合のエラーを生成する。
func NewNotImplementedError(feature string) *APIError {
	return &APIError{
		Code:     ErrCodeNotImplemented,
		Message:  fmt.Sprintf("本番%sは未実装です", feature),
		Category: "system",
		Action:   "スタブ環境（USE_STUB_*=true かつ APP_ENV が production 以外）で利用してください。",
	}
}

// NewStubAuthDisabledError はスタブ認証が無効な場合のエラーを生成する。
func NewStubAuthDisabledError() *APIError {
	return &APIError{
		Code:     ErrCodeStubAuthDisabled,
		Message:  "スタブ認証は無効です",
		Category: "auth",
		Action:   "USE_STUB_AUTH=true を設定し、production 以外の環境で起動してください。",
	}
}

// NewResetForbiddenError は本番環境でストアのリセットが要求された場合のエラーを生成する。
func NewResetForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeResetForbidden,
		Message:  "本番環境ではリセットできません",
		Category: "system",
		Action:   "リセットは開発・テスト環境でのみ実行してください。",
	}
}

// NewInvalidModeError は無効なモード指定のエラーを生成する。
func NewInvalidModeError(mode string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMode,
		Message:  fmt.Sprintf("無効なモードです: %s", mode),
		Category: "validation",
		Action:   "モードには memo、todo、diary のいずれかを指定してください。",
	}
}

// NewInvalidStatusError は無効なステータス指定のエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なステータスです: %s", status),
		Category: "validation",
		Action:   "ステータスには active、trashed のいずれかを指定してください。",
	}
}

// NewInvalidSortError は無効なソート指定のエラーを生成する。
func NewInvalidSortError(param, value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSort,
		Message:  fmt.Sprintf("無効なソート指定です: %s=%s", param, value),
		Category: "validation",
		Action:   "sortBy には createdAt/updatedAt、sortOrder には asc/desc を指定してください。",
	}
}

// NewInvalidPaginationError は無効なページネーション指定のエラーを生成する。
func NewInvalidPaginationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPagination,
		Message:  fmt.Sprintf("無効なページネーション指定です: %s", reason),
		Category: "validation",
		Action:   "offset は0以上、limit は1から100の整数を指定してください。",
	}
}

// NewInvalidRequestError はリクエストボディ不正のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  reason,
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewCSRFTokenInvalidError はCSRFトークン検証失敗のエラーを生成する。
func NewCSRFTokenInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFTokenInvalid,
		Message:  "CSRFトークンの検証に失敗しました。",
		Category: "auth",
		Action:   "ページを再読み込みしてから再度お試しください。",
	}
}

// NewRateLimitedError はレート制限超過のエラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
