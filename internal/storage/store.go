package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound 记录不存在 / Record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable 存储无法打开 / Storage could not be opened
	ErrUnavailable = errors.New("storage unavailable")
	// ErrQuotaExceeded 写入超出配额 / Write rejected by quota
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// BlobStore 以 id 为键的图片记录存储
// BlobStore holds image records keyed by id
type BlobStore interface {
	Open(ctx context.Context) error
	Put(ctx context.Context, name string, payload []byte) (ImageRecord, error)
	Get(ctx context.Context, id string) (ImageRecord, error)
	ListAll(ctx context.Context) ([]ImageRecord, error)
	DeleteByID(ctx context.Context, id string) error
}

// KVStore 键值存储，相当于浏览器 localStorage
// KVStore is a string key/value table, the localStorage of the desk
type KVStore interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string) error
}

// Store 持久化接口 / Store is the full persistence interface
type Store interface {
	BlobStore
	KVStore

	// 生命周期 / Lifecycle
	Close() error
}
