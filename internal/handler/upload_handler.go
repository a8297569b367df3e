package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/hitoshi/kumivoice/internal/model"
	"github.com/hitoshi/kumivoice/internal/upload"
)

// UploadServiceInterface はアップロードハンドラーが必要とするサービスインターフェース。
type UploadServiceInterface interface {
	UploadImage(ctx context.Context, r io.Reader, size int64, contentType string) (*upload.Result, error)
	UploadPDF(ctx context.Context, r io.Reader, size int64, contentType string) (*upload.Result, error)
	Delete(ctx context.Context, key string) error
}

// UploadHandler は添付ファイルアップロードのHTTPハンドラー。
type UploadHandler struct {
	service UploadServiceInterface
}

// NewUploadHandler はUploadHandlerを生成する。
func NewUploadHandler(service UploadServiceInterface) *UploadHandler {
	return &UploadHandler{service: service}
}

// multipartMaxMemory はmultipartフォーム解析時のメモリ上限。
// 超過分は一時ファイルに書き出される。
const multipartMaxMemory = 8 * 1024 * 1024

// UploadImage は投稿添付画像のアップロードを処理する。
// POST /api/admin/uploads/image（multipart/form-data、フィールド名"file"）
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, upload.ImageMaxBytes, h.service.UploadImage)
}

// UploadPDF は投稿添付PDFのアップロードを処理する。
// POST /api/admin/uploads/pdf（multipart/form-data、フィールド名"file"）
func (h *UploadHandler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, upload.PDFMaxBytes, h.service.UploadPDF)
}

// Delete はアップロード済みファイルを削除する。
// DELETE /api/admin/uploads?key=images/xxx.jpg
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewFileRequiredError())
		return
	}

	if err := h.service.Delete(r.Context(), key); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type uploadFunc func(ctx context.Context, r io.Reader, size int64, contentType string) (*upload.Result, error)

func (h *UploadHandler) handleUpload(w http.ResponseWriter, r *http.Request, maxBytes int64, fn uploadFunc) {
	// サイズ超過のボディを検証前に読み切らないよう、リクエスト全体に上限をかける
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartMaxMemory)

	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		writeAPIErrorResponse(w, http.StatusRequestEntityTooLarge, model.NewFileTooLargeError(maxBytes))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewFileRequiredError())
		return
	}
	defer file.Close()

	result, err := fn(r.Context(), file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}
