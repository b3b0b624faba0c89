package storage

import "time"

// ImageRecord 已上传的图片
// ImageRecord is one uploaded image
type ImageRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Options SQLite 存储选项
// Options configures a SQLiteStore
type Options struct {
	Path string
	// MaxImageBytes 单张图片上限，0 表示不限
	// MaxImageBytes caps one payload; 0 disables the check
	MaxImageBytes int64
	// QuotaBytes 所有图片数据 URI 的总上限，0 表示不限
	// QuotaBytes caps the summed data URI size; 0 disables the check
	QuotaBytes int64

	Now   func() time.Time
	NewID func() (string, error)
}
