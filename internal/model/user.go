// Package model はドメインモデルを定義する。
package model

// Session はログイン中のユーザーを表すセッションレコード。
// Cookieに保存される認証情報から復元され、部分更新は行わない。
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Valid はセッションとして最低限の識別子を持つかを返す。
func (s *Session) Valid() bool {
	return s != nil && s.UserID != ""
}
