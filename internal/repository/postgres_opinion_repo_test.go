package repository

import (
	"testing"
	"time"

	"github.com/hitoshi/kumivoice/internal/model"
)

// PostgresOpinionRepoがOpinionRepositoryインターフェースを満たすことを検証
func TestPostgresOpinionRepo_ImplementsInterface(t *testing.T) {
	var _ OpinionRepository = (*PostgresOpinionRepo)(nil)
}

// NewPostgresOpinionRepoが正しく初期化されることを検証
func TestNewPostgresOpinionRepo_Initializes(t *testing.T) {
	repo := NewPostgresOpinionRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// Opinionモデルのフィールドが正しく構築されることを検証
func TestPostgresOpinionRepo_OpinionModel_Fields(t *testing.T) {
	now := time.Now()
	op := &model.Opinion{
		ID:          "1",
		Name:        "山田太郎",
		Department:  "第一分会",
		Email:       "yamada@example.com",
		Subject:     "休憩室について",
		Content:     "休憩室の椅子を増やしてほしいです。",
		IsAnonymous: false,
		IsRead:      false,
		CreatedAt:   now,
	}

	if op.DepartmentLabel() != "第一分会" {
		t.Errorf("DepartmentLabel = %q, want 第一分会", op.DepartmentLabel())
	}
	if op.DisplayName() != "山田太郎" {
		t.Errorf("DisplayName = %q, want 山田太郎", op.DisplayName())
	}
}

// 分会未入力と匿名希望の表示ルールを検証
func TestPostgresOpinionRepo_OpinionModel_Sentinels(t *testing.T) {
	op := &model.Opinion{Name: "山田太郎", IsAnonymous: true}

	if op.DepartmentLabel() != model.DepartmentUnspecified {
		t.Errorf("DepartmentLabel = %q, want %q", op.DepartmentLabel(), model.DepartmentUnspecified)
	}
	if op.DisplayName() != model.AnonymousDisplayName {
		t.Errorf("DisplayName = %q, want %q", op.DisplayName(), model.AnonymousDisplayName)
	}
	// 表示用の置換であり、保存値は変更されない
	if op.Name != "山田太郎" {
		t.Errorf("Name = %q, want 山田太郎", op.Name)
	}
}
