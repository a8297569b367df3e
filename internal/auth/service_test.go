package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/kumivoice/internal/model"
)

// --- モック定義 ---

type mockSessionRepo struct {
	createFn        func(ctx context.Context, session *model.AdminSession) error
	findByIDFn      func(ctx context.Context, id string) (*model.AdminSession, error)
	deleteByIDFn    func(ctx context.Context, id string) error
	deleteExpiredFn func(ctx context.Context) (int64, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.AdminSession) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.AdminSession, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

func newTestService(repo *mockSessionRepo) *Service {
	return NewService(repo, "admin", "secret", 24*time.Hour)
}

// --- テスト ---

func TestLogin_ValidCredentials_CreatesSession(t *testing.T) {
	var created *model.AdminSession
	repo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.AdminSession) error {
			created = session
			return nil
		},
	}
	svc := newTestService(repo)

	session, err := svc.Login(context.Background(), "admin", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session == nil {
		t.Fatal("expected non-nil session")
	}
	if session.ID == "" {
		t.Error("expected non-empty session ID")
	}
	if len(session.ID) != 64 {
		t.Errorf("session ID length = %d, want 64 hex chars", len(session.ID))
	}
	if created == nil || created.ID != session.ID {
		t.Error("session was not persisted")
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Error("session should expire in the future")
	}
}

func TestLogin_WrongPassword_ReturnsLoginFailed(t *testing.T) {
	repo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.AdminSession) error {
			t.Fatal("session should not be created on failed login")
			return nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), "admin", "wrong")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeLoginFailed {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeLoginFailed)
	}
}

func TestLogin_WrongUsername_ReturnsSameError(t *testing.T) {
	svc := newTestService(&mockSessionRepo{})

	_, errUser := svc.Login(context.Background(), "wrong", "secret")
	_, errPass := svc.Login(context.Background(), "admin", "wrong")

	var apiErrUser, apiErrPass *model.APIError
	if !errors.As(errUser, &apiErrUser) || !errors.As(errPass, &apiErrPass) {
		t.Fatal("expected APIError for both cases")
	}
	// ユーザー名誤りとパスワード誤りで応答が区別できないこと
	if apiErrUser.Code != apiErrPass.Code || apiErrUser.Message != apiErrPass.Message {
		t.Error("login failure responses must be indistinguishable")
	}
}

func TestLogin_SessionIDsAreUnique(t *testing.T) {
	svc := newTestService(&mockSessionRepo{})

	s1, err := svc.Login(context.Background(), "admin", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	s2, err := svc.Login(context.Background(), "admin", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if s1.ID == s2.ID {
		t.Error("session IDs must be unique per login")
	}
}

func TestLogout_DeletesSession(t *testing.T) {
	var deletedID string
	repo := &mockSessionRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	svc := newTestService(repo)

	if err := svc.Logout(context.Background(), "session-123"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if deletedID != "session-123" {
		t.Errorf("deleted ID = %q, want session-123", deletedID)
	}
}

func TestLogout_EmptySessionID_NoOp(t *testing.T) {
	repo := &mockSessionRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			t.Fatal("delete should not be called for empty session ID")
			return nil
		},
	}
	svc := newTestService(repo)

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Errorf("Logout with empty ID returned error: %v", err)
	}
}

func TestValidate_ValidSession(t *testing.T) {
	repo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.AdminSession, error) {
			return &model.AdminSession{ID: id, ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	svc := newTestService(repo)

	session, err := svc.Validate(context.Background(), "session-123")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if session.ID != "session-123" {
		t.Errorf("session ID = %q, want session-123", session.ID)
	}
}

func TestValidate_UnknownSession_ReturnsUnauthorized(t *testing.T) {
	svc := newTestService(&mockSessionRepo{})

	_, err := svc.Validate(context.Background(), "unknown")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUnauthorized {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUnauthorized)
	}
}

func TestValidate_EmptySessionID_ReturnsUnauthorized(t *testing.T) {
	svc := newTestService(&mockSessionRepo{})

	_, err := svc.Validate(context.Background(), "")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUnauthorized {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUnauthorized)
	}
}

func TestCleanupExpired_ReturnsCount(t *testing.T) {
	repo := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 3, nil
		},
	}
	svc := newTestService(repo)

	n, err := svc.CleanupExpired(context.Background())
	if err != nil {
		t.Fatalf("CleanupExpired returned error: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}
