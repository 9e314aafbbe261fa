package auth

import (
	"net/http"
	"time"
)

// SessionCookieName はスタブセッションを保存するCookie名。
const SessionCookieName = "stub-session"

// CredentialStore はセッション認証情報の保存先。
// HTTPではリクエスト単位のCookie、テストではメモリ上の値として実装する。
type CredentialStore interface {
	// Get は保存済みの認証情報を返す。存在しない場合はfalse。
	Get() (string, bool)
	// Set は認証情報を有効期間付きで保存する。
	Set(value string, maxAge time.Duration)
	// Delete は認証情報を削除する。
	Delete()
}

// CookieOptions はセッションCookieの属性。
type CookieOptions struct {
	Name   string
	Path   string
	Domain string
	Secure bool
}

// CookieStore はHTTP Only Cookieを使うCredentialStore。
// 同一リクエスト内でSet/Deleteした結果は以降のGetに反映される。
type CookieStore struct {
	w       http.ResponseWriter
	r       *http.Request
	opts    CookieOptions
	pending *string
	deleted bool
}

// NewCookieStore はリクエスト・レスポンスに紐づくCookieStoreを生成する。
func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	if opts.Name == "" {
		opts.Name = SessionCookieName
	}
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &CookieStore{w: w, r: r, opts: opts}
}

// Get は認証情報を返す。
func (s *CookieStore) Get() (string, bool) {
	if s.deleted {
		return "", false
	}
	if s.pending != nil {
		return *s.pending, true
	}
	cookie, err := s.r.Cookie(s.opts.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Set はSet-Cookieヘッダーで認証情報を保存する。
func (s *CookieStore) Set(value string, maxAge time.Duration) {
	http.SetCookie(s.w, s.cookie(value, int(maxAge.Seconds())))
	s.pending = &value
	s.deleted = false
}

// Delete は有効期限切れのCookieを発行して認証情報を削除する。
func (s *CookieStore) Delete() {
	http.SetCookie(s.w, s.cookie("", -1))
	s.pending = nil
	s.deleted = true
}

func (s *CookieStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.opts.Name,
		Value:    value,
		Path:     s.opts.Path,
		Domain:   s.opts.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// compile-time interface check
var _ CredentialStore = (*CookieStore)(nil)
