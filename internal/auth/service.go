// Package auth は管理者認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/kumivoice/internal/model"
	"github.com/hitoshi/kumivoice/internal/repository"
)

// Service は管理者のログイン・ログアウト・セッション検証を提供する。
// 管理者は環境変数で定義された単一プリンシパルのみ。
type Service struct {
	sessions repository.AdminSessionRepository

	adminUsername string
	adminPassword string
	sessionMaxAge time.Duration
}

// NewService は新しい認証サービスを生成する。
func NewService(sessions repository.AdminSessionRepository, adminUsername, adminPassword string, sessionMaxAge time.Duration) *Service {
	return &Service{
		sessions:      sessions,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		sessionMaxAge: sessionMaxAge,
	}
}

// Login は管理者資格情報を検証し、新しいセッションを生成する。
// 資格情報が一致しない場合はLOGIN_FAILEDエラーを返す。
// ユーザー名とパスワードのどちらが誤っているかは応答から判別できない。
func (s *Service) Login(ctx context.Context, username, password string) (*model.AdminSession, error) {
	// タイミング攻撃を避けるため定数時間比較を使う
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
	if !userOK || !passOK {
		slog.Warn("admin login failed", slog.String("username", username))
		return nil, model.NewLoginFailedError()
	}

	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.AdminSession{
		ID:        sessionID,
		ExpiresAt: now.Add(s.sessionMaxAge),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("admin logged in")
	return session, nil
}

// Logout は指定されたセッションを削除する。
// 存在しないセッションIDでもエラーにしない（冪等）。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	slog.Info("admin logged out")
	return nil
}

// Validate はセッションIDの有効性を確認する。
// 有効なセッションが存在しない場合はUNAUTHORIZEDエラーを返す。
func (s *Service) Validate(ctx context.Context, sessionID string) (*model.AdminSession, error) {
	if sessionID == "" {
		return nil, model.NewUnauthorizedError()
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewUnauthorizedError()
	}
	return session, nil
}

// CleanupExpired は期限切れセッションを削除し、削除件数を返す。
// 定期メンテナンスやserve起動時に呼ばれる。
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	if n > 0 {
		slog.Info("expired sessions cleaned up", slog.Int64("count", n))
	}
	return n, nil
}

// generateSessionID は暗号的に安全な128ビットのセッションIDを16進文字列で生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
