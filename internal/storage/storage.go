// Package storage はアップロードファイルのオブジェクトストレージ抽象を提供する。
// 実装はローカルディスクを使わず、ストリーミングI/Oのみで動作する。
package storage

import (
	"context"
	"io"
)

// PutObjectOptions はオブジェクトアップロードのオプション。
// Sizeは正確なバイト数。不明な場合は-1を指定する。
type PutObjectOptions struct {
	Size        int64
	ContentType string
}

// ObjectInfo は保存されたオブジェクトの基本情報。
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
}

// Storage はS3互換オブジェクトストレージのクライアントインターフェース。
// 全メソッドはゴルーチンセーフ。
type Storage interface {
	// Put はreaderの内容を指定キーでアップロードする。
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete は指定キーのオブジェクトを削除する。
	Delete(ctx context.Context, key string) error
	// PublicURL は指定キーの公開URLを返す。
	PublicURL(key string) string
}
