// Package fixture はスタブ投稿ストアの初期データ（サンプル投稿）を提供する。
package fixture

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hitoshi/memotodo/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed sample_posts.yaml
var embeddedSamples []byte

// DateLayout はサンプルデータの日時文字列の書式（例: "2025/12/07 14:30"）。
const DateLayout = "2006/01/02 15:04"

// Category はサンプルデータ上のカテゴリ表記。
type Category string

const (
	// CategoryMemo はメモとして扱うカテゴリ。
	CategoryMemo Category = "メモ"
	// CategoryTodo はToDoとして扱うカテゴリ。
	CategoryTodo Category = "ToDo"
)

// Mode はカテゴリを投稿モードに変換する。
func (c Category) Mode() (model.PostMode, error) {
	switch c {
	case CategoryMemo:
		return model.PostModeMemo, nil
	case CategoryTodo:
		return model.PostModeTodo, nil
	default:
		return "", fmt.Errorf("unknown sample category: %q", c)
	}
}

// SamplePost はサンプル投稿1件分のレコード。
type SamplePost struct {
	ID        string   `yaml:"id" json:"id"`
	Category  Category `yaml:"category" json:"category"`
	UpdatedAt string   `yaml:"updatedAt" json:"updatedAt"`
	CreatedAt string   `yaml:"createdAt" json:"createdAt"`
	Body      string   `yaml:"body" json:"body"`
}

// Load は埋め込み済みのサンプル投稿を読み込む。
func Load() ([]SamplePost, error) {
	return Parse(embeddedSamples)
}

// LoadFile は指定パスのYAMLファイルからサンプル投稿を読み込む。
// pathが空の場合は埋め込みデータを返す。
func LoadFile(path string) ([]SamplePost, error) {
	if path == "" {
		return Load()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

// Parse はYAMLバイト列をサンプル投稿のリストとして解析する。
func Parse(data []byte) ([]SamplePost, error) {
	var samples []SamplePost
	if err := yaml.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("failed to parse fixture yaml: %w", err)
	}
	return samples, nil
}

// ParseDate は "2025/12/07 14:30" 形式の日時文字列を指定ロケーションの時刻として解析する。
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid fixture date %q: %w", s, err)
	}
	return t, nil
}

// ToPosts はサンプル投稿を全件activeなPostに変換する。
// 本文は1段落だけのリッチテキストドキュメントとしてシリアライズする。
// ID重複や updatedAt < createdAt のレコードはエラーとする。
func ToPosts(samples []SamplePost, authorID string, loc *time.Location) ([]model.Post, error) {
	posts := make([]model.Post, 0, len(samples))
	seen := make(map[string]struct{}, len(samples))

	for _, s := range samples {
		if s.ID == "" {
			return nil, fmt.Errorf("fixture record without id")
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("duplicate fixture id: %s", s.ID)
		}
		seen[s.ID] = struct{}{}

		mode, err := s.Category.Mode()
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", s.ID, err)
		}
		createdAt, err := ParseDate(s.CreatedAt, loc)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", s.ID, err)
		}
		updatedAt, err := ParseDate(s.UpdatedAt, loc)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", s.ID, err)
		}
		if updatedAt.Before(createdAt) {
			return nil, fmt.Errorf("fixture %s: updatedAt is before createdAt", s.ID)
		}
		content, err := ParagraphDocument(s.Body)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", s.ID, err)
		}

		posts = append(posts, model.Post{
			PostID:      s.ID,
			AuthorID:    authorID,
			ContentJSON: content,
			Status:      model.PostStatusActive,
			Mode:        mode,
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
			DeletedAt:   nil,
		})
	}

	return posts, nil
}

// DefaultPosts は埋め込みサンプルをローカルタイムゾーンで変換した初期データを返す。
func DefaultPosts(authorID string) ([]model.Post, error) {
	samples, err := Load()
	if err != nil {
		return nil, err
	}
	return ToPosts(samples, authorID, time.Local)
}

type docNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []docNode `json:"content,omitempty"`
}

// ParagraphDocument はテキスト1段落のみのエディタドキュメントJSONを生成する。
func ParagraphDocument(text string) (string, error) {
	doc := docNode{
		Type: "doc",
		Content: []docNode{{
			Type:    "paragraph",
			Content: []docNode{{Type: "text", Text: text}},
		}},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(b), nil
}
