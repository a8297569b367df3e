package model

import "time"

// 投稿の入力制限。
const (
	PostTitleMaxLen   = 100
	PostContentMaxLen = 5000
	PostMaxImages     = 3
	PostExcerptLen    = 150
)

// DefaultPostCategories は投稿カテゴリの既定値。
// 先頭がカテゴリ未指定時のデフォルトになる。
// マスター設定ファイルで上書きできる。
var DefaultPostCategories = []string{"活動報告", "お知らせ", "労使協議会", "その他"}

// Post は管理者が作成するお知らせ・ニュース投稿を表す。
type Post struct {
	ID          string
	Title       string
	Content     string
	Excerpt     string
	Category    string
	IsPublished bool
	ImageURLs   []string
	PDFURLs     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PostUpdate は投稿の部分更新を表す。
// nilのフィールドは変更しない（マージセマンティクス）。
// ImageURLs/PDFURLsはnilの場合のみ据え置き、空スライスはクリアを意味する。
type PostUpdate struct {
	Title       *string
	Content     *string
	Excerpt     *string
	Category    *string
	IsPublished *bool
	ImageURLs   []string
	PDFURLs     []string
}
