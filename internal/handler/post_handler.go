package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/kumivoice/internal/model"
	"github.com/hitoshi/kumivoice/internal/post"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	Create(ctx context.Context, input post.CreateInput) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	ListPublished(ctx context.Context, limit int) ([]model.Post, error)
	Archive(ctx context.Context, year, month int) ([]model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	GetPublished(ctx context.Context, id string) (*model.Post, error)
	Update(ctx context.Context, id string, update model.PostUpdate) (*model.Post, error)
	Delete(ctx context.Context, id string) error
}

// PostHandler は投稿のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// postResponse は投稿のAPIレスポンス。
type postResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Excerpt     string    `json:"excerpt"`
	Category    string    `json:"category"`
	IsPublished bool      `json:"isPublished"`
	ImageURLs   []string  `json:"imageUrls"`
	PDFURLs     []string  `json:"pdfUrls"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// postSummaryResponse は公開一覧用の投稿サマリー。本文は含めない。
type postSummaryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	Category  string    `json:"category"`
	ImageURLs []string  `json:"imageUrls"`
	CreatedAt time.Time `json:"createdAt"`
}

// postUpdateRequest は投稿更新リクエストのボディ。
// 省略されたフィールドは変更しない。imageUrls/pdfUrlsは空配列でクリア。
type postUpdateRequest struct {
	Title       *string  `json:"title"`
	Content     *string  `json:"content"`
	Excerpt     *string  `json:"excerpt"`
	Category    *string  `json:"category"`
	IsPublished *bool    `json:"isPublished"`
	ImageURLs   []string `json:"imageUrls"`
	PDFURLs     []string `json:"pdfUrls"`
}

// ListPublished は公開済み投稿の一覧を返す。
// GET /api/posts?limit=3
func (h *PostHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			limit = n
		}
	}

	posts, err := h.service.ListPublished(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writePostSummaries(w, posts)
}

// Archive はアーカイブページ用の公開投稿一覧を返す。
// GET /api/posts/archive?year=2025&month=7（年月なしで全件）
func (h *PostHandler) Archive(w http.ResponseWriter, r *http.Request) {
	var year, month int
	if r.URL.Query().Get("year") != "" || r.URL.Query().Get("month") != "" {
		var err error
		year, month, err = parseYearMonth(r)
		if err != nil {
			handleServiceError(w, err)
			return
		}
	}

	posts, err := h.service.Archive(r.Context(), year, month)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writePostSummaries(w, posts)
}

// GetPublic は公開済み投稿の詳細を返す。下書きは404。
// GET /api/posts/{id}
func (h *PostHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.service.GetPublished(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPostResponse(p))
}

// Create は投稿を新規作成する。
// POST /api/admin/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input post.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	saved, err := h.service.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPostResponse(saved))
}

// List は全投稿（下書き含む）の一覧を返す。管理画面用。
// GET /api/admin/posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]postResponse, len(posts))
	for i := range posts {
		results[i] = toPostResponse(&posts[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// Get は投稿の詳細（下書き含む）を返す。管理画面用。
// GET /api/admin/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPostResponse(p))
}

// Update は投稿を部分更新する。
// PATCH /api/admin/posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req postUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	updated, err := h.service.Update(r.Context(), id, model.PostUpdate{
		Title:       req.Title,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Category:    req.Category,
		IsPublished: req.IsPublished,
		ImageURLs:   req.ImageURLs,
		PDFURLs:     req.PDFURLs,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPostResponse(updated))
}

// Delete は投稿を削除する。
// DELETE /api/admin/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writePostSummaries(w http.ResponseWriter, posts []model.Post) {
	results := make([]postSummaryResponse, len(posts))
	for i, p := range posts {
		results[i] = postSummaryResponse{
			ID:        p.ID,
			Title:     p.Title,
			Excerpt:   p.Excerpt,
			Category:  p.Category,
			ImageURLs: p.ImageURLs,
			CreatedAt: p.CreatedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

func toPostResponse(p *model.Post) postResponse {
	return postResponse{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Excerpt:     p.Excerpt,
		Category:    p.Category,
		IsPublished: p.IsPublished,
		ImageURLs:   p.ImageURLs,
		PDFURLs:     p.PDFURLs,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
