// Package post はお知らせ投稿の作成・公開・アーカイブのサービス層を提供する。
package post

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/kumivoice/internal/aggregate"
	"github.com/hitoshi/kumivoice/internal/config"
	"github.com/hitoshi/kumivoice/internal/metrics"
	"github.com/hitoshi/kumivoice/internal/model"
	"github.com/hitoshi/kumivoice/internal/repository"
	"github.com/hitoshi/kumivoice/internal/security"
)

// DefaultPublishedLimit は公開一覧のデフォルト取得件数。
// トップページに最新の投稿を数件表示する用途。
const DefaultPublishedLimit = 3

// CreateInput は投稿作成の入力を表す。
type CreateInput struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	IsPublished bool     `json:"isPublished"`
	ImageURLs   []string `json:"imageUrls"`
	PDFURLs     []string `json:"pdfUrls"`
}

// Service は投稿のサービス層。検証・サニタイズ・抜粋生成・保存を担当する。
type Service struct {
	repo      repository.PostRepository
	sanitizer security.ContentSanitizerService
	master    *config.Master
	engine    *aggregate.Engine
	collector metrics.MetricsCollector
}

// NewService は新しい投稿サービスを生成する。
// collectorはnil可（メトリクスを記録しない）。
func NewService(
	repo repository.PostRepository,
	sanitizer security.ContentSanitizerService,
	master *config.Master,
	engine *aggregate.Engine,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		master:    master,
		engine:    engine,
		collector: collector,
	}
}

// Create は投稿を検証・サニタイズして保存する。
// タイトルと本文は必須。タイトル100文字・本文5000文字・画像3枚の上限を適用する。
// カテゴリが空の場合はマスター定義の先頭カテゴリになる。
// 抜粋はタグ除去後の本文の先頭150文字から自動生成する。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Post, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)

	if title == "" {
		return nil, model.NewRequiredFieldError("タイトル")
	}
	if content == "" {
		return nil, model.NewRequiredFieldError("本文")
	}
	if utf8.RuneCountInString(title) > model.PostTitleMaxLen {
		return nil, model.NewTitleTooLongError(model.PostTitleMaxLen)
	}
	if utf8.RuneCountInString(content) > model.PostContentMaxLen {
		return nil, model.NewContentTooLongError(model.PostContentMaxLen)
	}
	if len(input.ImageURLs) > model.PostMaxImages {
		return nil, model.NewTooManyImagesError(model.PostMaxImages)
	}

	category, err := s.resolveCategory(input.Category)
	if err != nil {
		return nil, err
	}

	sanitized := s.sanitizer.Sanitize(content)

	post := &model.Post{
		Title:       title,
		Content:     sanitized,
		Excerpt:     s.deriveExcerpt(sanitized),
		Category:    category,
		IsPublished: input.IsPublished,
		ImageURLs:   input.ImageURLs,
		PDFURLs:     input.PDFURLs,
	}

	saved, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if saved.IsPublished && s.collector != nil {
		s.collector.RecordPostPublished(saved.Category)
	}
	slog.Info("post created",
		slog.String("post_id", saved.ID),
		slog.String("category", saved.Category),
		slog.Bool("published", saved.IsPublished),
	)

	return saved, nil
}

// List は全投稿（下書き含む）を新しい順で返す。管理画面用。
func (s *Service) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// ListPublished は公開済み投稿を新しい順で返す。
// limit<=0の場合はDefaultPublishedLimit件に制限する。
func (s *Service) ListPublished(ctx context.Context, limit int) ([]model.Post, error) {
	if limit <= 0 {
		limit = DefaultPublishedLimit
	}
	posts, err := s.repo.ListPublished(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list published posts: %w", err)
	}
	return posts, nil
}

// Archive は公開済み投稿のうち指定年月に作成されたものを返す。
// year/monthがともに0の場合は全公開投稿を返す。
func (s *Service) Archive(ctx context.Context, year, month int) ([]model.Post, error) {
	posts, err := s.repo.ListPublished(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list published posts: %w", err)
	}
	if year == 0 && month == 0 {
		return posts, nil
	}
	if year < 1 || month < 1 || month > 12 {
		return nil, model.NewInvalidYearMonthError()
	}
	return s.engine.FilterPostsByMonth(posts, year, month), nil
}

// Get は指定IDの投稿を返す。見つからない場合はPOST_NOT_FOUNDエラー。
func (s *Service) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}
	return post, nil
}

// GetPublished は指定IDの公開済み投稿を返す。
// 下書きは公開ページから参照できないため、未公開もPOST_NOT_FOUND扱いにする。
func (s *Service) GetPublished(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished {
		return nil, model.NewPostNotFoundError(id)
	}
	return post, nil
}

// Update は投稿を部分更新する。nilのフィールドは既存値を保持する。
// 本文が更新され抜粋が明示されていない場合は抜粋を再生成する。
func (s *Service) Update(ctx context.Context, id string, update model.PostUpdate) (*model.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	wasPublished := post.IsPublished

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, model.NewRequiredFieldError("タイトル")
		}
		if utf8.RuneCountInString(title) > model.PostTitleMaxLen {
			return nil, model.NewTitleTooLongError(model.PostTitleMaxLen)
		}
		post.Title = title
	}
	if update.Content != nil {
		content := strings.TrimSpace(*update.Content)
		if content == "" {
			return nil, model.NewRequiredFieldError("本文")
		}
		if utf8.RuneCountInString(content) > model.PostContentMaxLen {
			return nil, model.NewContentTooLongError(model.PostContentMaxLen)
		}
		post.Content = s.sanitizer.Sanitize(content)
		// 抜粋が明示されていなければ本文から再生成する
		if update.Excerpt == nil {
			post.Excerpt = s.deriveExcerpt(post.Content)
		}
	}
	if update.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*update.Excerpt)
	}
	if update.Category != nil {
		category, err := s.resolveCategory(*update.Category)
		if err != nil {
			return nil, err
		}
		post.Category = category
	}
	if update.IsPublished != nil {
		post.IsPublished = *update.IsPublished
	}
	if update.ImageURLs != nil {
		if len(update.ImageURLs) > model.PostMaxImages {
			return nil, model.NewTooManyImagesError(model.PostMaxImages)
		}
		post.ImageURLs = update.ImageURLs
	}
	if update.PDFURLs != nil {
		post.PDFURLs = update.PDFURLs
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	if !wasPublished && post.IsPublished && s.collector != nil {
		s.collector.RecordPostPublished(post.Category)
	}

	return post, nil
}

// Delete は指定IDの投稿を削除する。見つからない場合はPOST_NOT_FOUNDエラー。
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if !deleted {
		return model.NewPostNotFoundError(id)
	}
	slog.Info("post deleted", slog.String("post_id", id))
	return nil
}

// resolveCategory はカテゴリを決定する。
// 空の場合はマスター定義の先頭、未定義のカテゴリはINVALID_CATEGORYエラー。
func (s *Service) resolveCategory(category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return s.master.Categories[0], nil
	}
	if !s.master.ValidCategory(category) {
		return "", model.NewInvalidCategoryError(category)
	}
	return category, nil
}

// deriveExcerpt はサニタイズ済み本文から一覧表示用の抜粋を生成する。
// タグを除去したテキストの先頭150文字。超過した場合は「...」を付ける。
func (s *Service) deriveExcerpt(sanitizedContent string) string {
	plain := s.sanitizer.StripTags(sanitizedContent)
	if utf8.RuneCountInString(plain) <= model.PostExcerptLen {
		return plain
	}
	runes := []rune(plain)
	return string(runes[:model.PostExcerptLen]) + "..."
}
