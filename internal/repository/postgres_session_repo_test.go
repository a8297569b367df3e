package repository

import (
	"testing"
	"time"

	"github.com/hitoshi/kumivoice/internal/model"
)

// PostgresAdminSessionRepoがAdminSessionRepositoryインターフェースを満たすことを検証
func TestPostgresAdminSessionRepo_ImplementsInterface(t *testing.T) {
	var _ AdminSessionRepository = (*PostgresAdminSessionRepo)(nil)
}

func TestNewPostgresAdminSessionRepo_Initializes(t *testing.T) {
	repo := NewPostgresAdminSessionRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// セッションモデルの有効期限の前後関係を検証
func TestAdminSessionModel_Expiry(t *testing.T) {
	now := time.Now()
	session := &model.AdminSession{
		ID:        "abc123",
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
	}

	if !session.ExpiresAt.After(session.CreatedAt) {
		t.Error("ExpiresAt should be after CreatedAt")
	}
}
