// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/kumivoice/internal/model"
)

// OpinionRepository は意見データの永続化インターフェース。
type OpinionRepository interface {
	// Create は意見を作成し、DBが採番したIDと作成日時を含む保存結果を返す。
	Create(ctx context.Context, opinion *model.Opinion) (*model.Opinion, error)

	// List は全意見を作成日時の降順（新しい順）で返す。
	List(ctx context.Context) ([]model.Opinion, error)

	// FindByID は指定IDの意見を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Opinion, error)

	// Update は意見の全フィールドを保存する。マージはサービス層で行う。
	Update(ctx context.Context, opinion *model.Opinion) error

	// Delete は指定IDの意見を削除する。削除された場合trueを返す。
	Delete(ctx context.Context, id string) (bool, error)
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// Create は投稿を作成し、DBが採番したIDとタイムスタンプを含む保存結果を返す。
	Create(ctx context.Context, post *model.Post) (*model.Post, error)

	// List は全投稿を作成日時の降順で返す。
	List(ctx context.Context) ([]model.Post, error)

	// ListPublished は公開済み投稿を作成日時の降順で返す。limit<=0は無制限。
	ListPublished(ctx context.Context, limit int) ([]model.Post, error)

	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// Update は投稿の全フィールドを保存し、updated_atを更新する。
	Update(ctx context.Context, post *model.Post) error

	// Delete は指定IDの投稿を削除する。削除された場合trueを返す。
	Delete(ctx context.Context, id string) (bool, error)
}

// AdminSessionRepository は管理者セッションの永続化インターフェース。
type AdminSessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.AdminSession) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.AdminSession, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
