// Package upload は投稿添付ファイル（画像・PDF）のアップロード処理を提供する。
package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hitoshi/kumivoice/internal/metrics"
	"github.com/hitoshi/kumivoice/internal/model"
	"github.com/hitoshi/kumivoice/internal/storage"
)

// ファイルサイズ上限。
const (
	ImageMaxBytes = 2 * 1024 * 1024 // 2MB
	PDFMaxBytes   = 5 * 1024 * 1024 // 5MB
)

// imageExtensions は許可される画像形式と保存時の拡張子。
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// Result はアップロード結果を表す。
type Result struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// Service は添付ファイルの検証とオブジェクトストレージへの保存を担当する。
type Service struct {
	store     storage.Storage
	collector metrics.MetricsCollector
}

// NewService は新しいアップロードサービスを生成する。
// collectorはnil可（メトリクスを記録しない）。
func NewService(store storage.Storage, collector metrics.MetricsCollector) *Service {
	return &Service{store: store, collector: collector}
}

// UploadImage は画像ファイルを検証して保存し、公開URLを返す。
// JPEG・PNG・GIFのみ、2MB以下。キーは"images/<uuid>.<ext>"。
func (s *Service) UploadImage(ctx context.Context, r io.Reader, size int64, contentType string) (*Result, error) {
	if size <= 0 {
		return nil, model.NewFileRequiredError()
	}
	if size > ImageMaxBytes {
		return nil, model.NewFileTooLargeError(ImageMaxBytes)
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, model.NewUnsupportedFileTypeError(contentType)
	}

	key := fmt.Sprintf("images/%s.%s", uuid.New().String(), ext)
	return s.put(ctx, key, r, size, contentType, "image")
}

// UploadPDF はPDFファイルを検証して保存し、公開URLを返す。
// 5MB以下。キーは"pdfs/<uuid>.pdf"。
func (s *Service) UploadPDF(ctx context.Context, r io.Reader, size int64, contentType string) (*Result, error) {
	if size <= 0 {
		return nil, model.NewFileRequiredError()
	}
	if size > PDFMaxBytes {
		return nil, model.NewFileTooLargeError(PDFMaxBytes)
	}
	if contentType != "application/pdf" {
		return nil, model.NewUnsupportedFileTypeError(contentType)
	}

	key := fmt.Sprintf("pdfs/%s.pdf", uuid.New().String())
	return s.put(ctx, key, r, size, contentType, "pdf")
}

// Delete は保存済みファイルを削除する。
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	slog.Info("upload deleted", slog.String("key", key))
	return nil
}

func (s *Service) put(ctx context.Context, key string, r io.Reader, size int64, contentType, fileType string) (*Result, error) {
	info, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store object: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordUpload(fileType)
	}
	slog.Info("file uploaded",
		slog.String("key", info.Key),
		slog.String("content_type", contentType),
		slog.Int64("size", info.Size),
	)

	return &Result{
		URL:  s.store.PublicURL(info.Key),
		Key:  info.Key,
		Size: info.Size,
	}, nil
}
