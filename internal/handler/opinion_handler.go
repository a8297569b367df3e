package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/kumivoice/internal/aggregate"
	"github.com/hitoshi/kumivoice/internal/model"
	"github.com/hitoshi/kumivoice/internal/opinion"
)

// OpinionServiceInterface は意見ハンドラーが必要とするサービスインターフェース。
type OpinionServiceInterface interface {
	Submit(ctx context.Context, input opinion.SubmitInput) (*model.Opinion, error)
	List(ctx context.Context) ([]model.Opinion, error)
	Get(ctx context.Context, id string) (*model.Opinion, error)
	Update(ctx context.Context, id string, update model.OpinionUpdate) (*model.Opinion, error)
	MarkRead(ctx context.Context, id string) (*model.Opinion, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (aggregate.Stats, error)
	GroupedByDepartment(ctx context.Context) ([]aggregate.DepartmentGroup, error)
	MonthlyStats(ctx context.Context) (map[string]aggregate.MonthStats, error)
	ListByMonth(ctx context.Context, year, month int) ([]model.Opinion, error)
	ExportMonthlyReport(ctx context.Context, year, month int) (*opinion.ExportResult, error)
}

// OpinionHandler は意見のHTTPハンドラー。
type OpinionHandler struct {
	service OpinionServiceInterface
}

// NewOpinionHandler はOpinionHandlerを生成する。
func NewOpinionHandler(service OpinionServiceInterface) *OpinionHandler {
	return &OpinionHandler{service: service}
}

// opinionResponse は意見のAPIレスポンス。
// 公開APIでは使わない（意見は管理者のみ閲覧できる）。
type opinionResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Department  string    `json:"department"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject"`
	Content     string    `json:"content"`
	IsAnonymous bool      `json:"isAnonymous"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`
}

// opinionUpdateRequest は意見更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type opinionUpdateRequest struct {
	Name        *string `json:"name"`
	Department  *string `json:"department"`
	Email       *string `json:"email"`
	Subject     *string `json:"subject"`
	Content     *string `json:"content"`
	IsAnonymous *bool   `json:"isAnonymous"`
	IsRead      *bool   `json:"isRead"`
}

// departmentGroupResponse は分会別グループのAPIレスポンス。
type departmentGroupResponse struct {
	Department string            `json:"department"`
	Count      int               `json:"count"`
	Opinions   []opinionResponse `json:"opinions"`
}

// Submit は公開フォームからの意見投稿を処理する。
// POST /api/opinions
func (h *OpinionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input opinion.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	saved, err := h.service.Submit(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 公開APIには受付結果のみ返す（投稿内容は反響しない）
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"id":      saved.ID,
	})
}

// List は全意見の一覧を返す。
// GET /api/admin/opinions
func (h *OpinionHandler) List(w http.ResponseWriter, r *http.Request) {
	opinions, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]opinionResponse, len(opinions))
	for i := range opinions {
		results[i] = toOpinionResponse(&opinions[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// Get は意見の詳細を返す。
// GET /api/admin/opinions/{id}
func (h *OpinionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	op, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toOpinionResponse(op))
}

// Update は意見を部分更新する。
// PATCH /api/admin/opinions/{id}
func (h *OpinionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req opinionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	updated, err := h.service.Update(r.Context(), id, model.OpinionUpdate{
		Name:        req.Name,
		Department:  req.Department,
		Email:       req.Email,
		Subject:     req.Subject,
		Content:     req.Content,
		IsAnonymous: req.IsAnonymous,
		IsRead:      req.IsRead,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toOpinionResponse(updated))
}

// MarkRead は意見を既読にする。
// POST /api/admin/opinions/{id}/read
func (h *OpinionHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	updated, err := h.service.MarkRead(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toOpinionResponse(updated))
}

// Delete は意見を削除する。
// DELETE /api/admin/opinions/{id}
func (h *OpinionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats はダッシュボード用のサマリー統計を返す。
// GET /api/admin/stats
func (h *OpinionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// Grouped は分会別にグループ化した意見一覧を返す。
// GET /api/admin/opinions/grouped
func (h *OpinionHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.GroupedByDepartment(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]departmentGroupResponse, len(groups))
	for i, g := range groups {
		ops := make([]opinionResponse, len(g.Opinions))
		for j := range g.Opinions {
			ops[j] = toOpinionResponse(&g.Opinions[j])
		}
		results[i] = departmentGroupResponse{
			Department: g.Department,
			Count:      len(g.Opinions),
			Opinions:   ops,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// MonthlyStats は月別の集計を返す。
// GET /api/admin/opinions/monthly-stats
func (h *OpinionHandler) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.MonthlyStats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// ListByMonth は指定年月の意見一覧を返す。
// GET /api/admin/opinions/by-month?year=2025&month=7
func (h *OpinionHandler) ListByMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	opinions, err := h.service.ListByMonth(r.Context(), year, month)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]opinionResponse, len(opinions))
	for i := range opinions {
		results[i] = toOpinionResponse(&opinions[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// exportRequest は報告書エクスポートリクエストのボディ。
// 年月は数値・文字列のどちらでも受け付ける。
type exportRequest struct {
	Year  json.Number `json:"year"`
	Month json.Number `json:"month"`
}

// Export は月次報告書をWord文書としてダウンロードさせる。
// POST /api/admin/opinions/export {"year": 2025, "month": 7}
func (h *OpinionHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	year, err := strconv.Atoi(req.Year.String())
	if err != nil {
		handleServiceError(w, model.NewInvalidYearMonthError())
		return
	}
	month, err := strconv.Atoi(req.Month.String())
	if err != nil {
		handleServiceError(w, model.NewInvalidYearMonthError())
		return
	}

	result, err := h.service.ExportMonthlyReport(r.Context(), year, month)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 日本語ファイル名はRFC 5987形式でエンコードする
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(result.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Write(result.Data)
}

// --- ヘルパー関数 ---

// parseYearMonth はクエリパラメータから年月を読み取る。
func parseYearMonth(r *http.Request) (int, int, error) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0, 0, model.NewInvalidYearMonthError()
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		return 0, 0, model.NewInvalidYearMonthError()
	}
	return year, month, nil
}

// toOpinionResponse はmodel.OpinionからAPIレスポンスに変換する。
func toOpinionResponse(op *model.Opinion) opinionResponse {
	return opinionResponse{
		ID:          op.ID,
		Name:        op.Name,
		DisplayName: op.DisplayName(),
		Department:  op.DepartmentLabel(),
		Email:       op.Email,
		Subject:     op.Subject,
		Content:     op.Content,
		IsAnonymous: op.IsAnonymous,
		IsRead:      op.IsRead,
		CreatedAt:   op.CreatedAt,
	}
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// invalidRequestError はJSONボディ解析失敗時のエラーを生成する。
func invalidRequestError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeLoginFailed:
		return http.StatusUnauthorized
	case model.ErrCodeRequiredField, model.ErrCodeContentTooLong, model.ErrCodeTitleTooLong,
		model.ErrCodeInvalidEmail, model.ErrCodeInvalidCategory, model.ErrCodeTooManyImages,
		model.ErrCodeInvalidYearMonth, "INVALID_REQUEST":
		return http.StatusBadRequest
	case model.ErrCodeOpinionNotFound, model.ErrCodePostNotFound, model.ErrCodeNoOpinionsForMonth:
		return http.StatusNotFound
	case model.ErrCodeFileRequired, model.ErrCodeUnsupportedFileType:
		return http.StatusBadRequest
	case model.ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
