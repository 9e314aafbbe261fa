// Package model はドメインモデルを定義する。
package model

import "time"

// Post はユーザーの投稿（メモ/ToDo/日記）を表す。
// ContentJSONはリッチテキストエディタのドキュメントをシリアライズした文字列で、
// この層では構造を解釈せずそのまま保存・返却する。
type Post struct {
	PostID      string     `json:"postId"`
	AuthorID    string     `json:"authorId"`
	ContentJSON string     `json:"contentJSON"`
	Status      PostStatus `json:"status"`
	Mode        PostMode   `json:"mode"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt"`
}

// Clone は投稿のスナップショットを返す。
// DeletedAtのポインタも複製するため、返却値を変更しても元の投稿には影響しない。
func (p Post) Clone() Post {
	c := p
	if p.DeletedAt != nil {
		d := *p.DeletedAt
		c.DeletedAt = &d
	}
	return c
}

// IsTrashed は投稿がゴミ箱にあるかを返す。
func (p Post) IsTrashed() bool {
	return p.Status == PostStatusTrashed
}

// PostMode は投稿の分類タグを表す。
type PostMode string

const (
	// PostModeMemo はメモ。
	PostModeMemo PostMode = "memo"
	// PostModeTodo はToDo。
	PostModeTodo PostMode = "todo"
	// PostModeDiary は日記。
	PostModeDiary PostMode = "diary"
)

// Valid は定義済みのモードかどうかを返す。
func (m PostMode) Valid() bool {
	switch m {
	case PostModeMemo, PostModeTodo, PostModeDiary:
		return true
	default:
		return false
	}
}

// ParsePostMode は文字列をPostModeに変換する。未定義の値はAPIErrorを返す。
func ParsePostMode(s string) (PostMode, error) {
	m := PostMode(s)
	if !m.Valid() {
		return "", NewInvalidModeError(s)
	}
	return m, nil
}

// PostStatus は投稿のライフサイクル状態を表す。
type PostStatus string

const (
	// PostStatusActive は通常状態。
	PostStatusActive PostStatus = "active"
	// PostStatusTrashed はゴミ箱に移動された状態。
	PostStatusTrashed PostStatus = "trashed"
)

// Valid は定義済みのステータスかどうかを返す。
func (s PostStatus) Valid() bool {
	return s == PostStatusActive || s == PostStatusTrashed
}

// ParsePostStatus は文字列をPostStatusに変換する。
func ParsePostStatus(s string) (PostStatus, error) {
	st := PostStatus(s)
	if !st.Valid() {
		return "", NewInvalidStatusError(s)
	}
	return st, nil
}

// PostSortField は一覧取得時のソートキー。
type PostSortField string

const (
	SortByCreatedAt PostSortField = "createdAt"
	SortByUpdatedAt PostSortField = "updatedAt"
)

// ParsePostSortField は文字列をPostSortFieldに変換する。
func ParsePostSortField(s string) (PostSortField, error) {
	switch f := PostSortField(s); f {
	case SortByCreatedAt, SortByUpdatedAt:
		return f, nil
	default:
		return "", NewInvalidSortError("sortBy", s)
	}
}

// SortOrder はソート順。
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder は文字列をSortOrderに変換する。
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case SortAsc, SortDesc:
		return o, nil
	default:
		return "", NewInvalidSortError("sortOrder", s)
	}
}
