package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/hitoshi/kumivoice/internal/model"
	"github.com/hitoshi/kumivoice/internal/upload"
)

// --- モック定義 ---

type mockUploadService struct {
	uploadImageFn func(ctx context.Context, r io.Reader, size int64, contentType string) (*upload.Result, error)
	uploadPDFFn   func(ctx context.Context, r io.Reader, size int64, contentType string) (*upload.Result, error)
	deleteFn      func(ctx context.Context, key string) error
}

func (m *mockUploadService) UploadImage(ctx context.Context, r io.Reader, size int64, contentType string) (*upload.Result, error) {
	if m.uploadImageFn != nil {
		return m.uploadImageFn(ctx, r, size, contentType)
	}
	return &upload.Result{URL: "http://localhost/uploads/images/x.jpg", Key: "images/x.jpg", Size: size}, nil
}

func (m *mockUploadService) UploadPDF(ctx context.Context, r io.Reader, size int64, contentType string) (*upload.Result, error) {
	if m.uploadPDFFn != nil {
		return m.uploadPDFFn(ctx, r, size, contentType)
	}
	return &upload.Result{URL: "http://localhost/uploads/pdfs/x.pdf", Key: "pdfs/x.pdf", Size: size}, nil
}

func (m *mockUploadService) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

// newMultipartRequest は"file"フィールドを持つmultipartリクエストを生成する。
func newMultipartRequest(t *testing.T, target, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create multipart part: %v", err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// --- テスト ---

func TestUploadHandler_UploadImage_Success_Returns201(t *testing.T) {
	var gotContentType string
	svc := &mockUploadService{
		uploadImageFn: func(ctx context.Context, r io.Reader, size int64, contentType string) (*upload.Result, error) {
			gotContentType = contentType
			return &upload.Result{URL: "http://localhost/uploads/images/a.jpg", Key: "images/a.jpg", Size: size}, nil
		},
	}
	h := NewUploadHandler(svc)

	req := newMultipartRequest(t, "/api/admin/uploads/image", "photo.jpg", "image/jpeg", []byte("fake image data"))
	w := httptest.NewRecorder()

	h.UploadImage(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if gotContentType != "image/jpeg" {
		t.Errorf("content type = %q, want image/jpeg", gotContentType)
	}

	var resp upload.Result
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Key != "images/a.jpg" {
		t.Errorf("key = %q, want images/a.jpg", resp.Key)
	}
}

func TestUploadHandler_UploadImage_MissingFile_Returns400(t *testing.T) {
	h := NewUploadHandler(&mockUploadService{})

	// "file"フィールドなしのmultipartボディ
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "value")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()

	h.UploadImage(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp apiErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != model.ErrCodeFileRequired {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeFileRequired)
	}
}

func TestUploadHandler_UploadImage_UnsupportedType_Returns400(t *testing.T) {
	svc := &mockUploadService{
		uploadImageFn: func(ctx context.Context, r io.Reader, size int64, contentType string) (*upload.Result, error) {
			return nil, model.NewUnsupportedFileTypeError(contentType)
		},
	}
	h := NewUploadHandler(svc)

	req := newMultipartRequest(t, "/api/admin/uploads/image", "anim.webp", "image/webp", []byte("data"))
	w := httptest.NewRecorder()

	h.UploadImage(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUploadHandler_UploadImage_TooLarge_Returns413(t *testing.T) {
	svc := &mockUploadService{
		uploadImageFn: func(ctx context.Context, r io.Reader, size int64, contentType string) (*upload.Result, error) {
			return nil, model.NewFileTooLargeError(upload.ImageMaxBytes)
		},
	}
	h := NewUploadHandler(svc)

	req := newMultipartRequest(t, "/api/admin/uploads/image", "big.jpg", "image/jpeg", []byte("data"))
	w := httptest.NewRecorder()

	h.UploadImage(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestUploadHandler_UploadPDF_Success_Returns201(t *testing.T) {
	h := NewUploadHandler(&mockUploadService{})

	req := newMultipartRequest(t, "/api/admin/uploads/pdf", "doc.pdf", "application/pdf", []byte("%PDF-1.7"))
	w := httptest.NewRecorder()

	h.UploadPDF(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
}

func TestUploadHandler_Delete_Success_Returns204(t *testing.T) {
	var deletedKey string
	svc := &mockUploadService{
		deleteFn: func(ctx context.Context, key string) error {
			deletedKey = key
			return nil
		},
	}
	h := NewUploadHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/uploads?key=images/a.jpg", nil)
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if deletedKey != "images/a.jpg" {
		t.Errorf("deleted key = %q, want images/a.jpg", deletedKey)
	}
}

func TestUploadHandler_Delete_MissingKey_Returns400(t *testing.T) {
	h := NewUploadHandler(&mockUploadService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/uploads", nil)
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
