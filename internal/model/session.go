package model

import "time"

// AdminSession は管理者のログインセッションを表す。
// 管理者は単一プリンシパルのため、ユーザーIDは持たない。
type AdminSession struct {
	ID        string
	ExpiresAt time.Time
	CreatedAt time.Time
}
