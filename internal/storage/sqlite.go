package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// SQLiteStore 基于 SQLite (WAL 模式) 的持久化实现
// SQLiteStore implements Store using SQLite with WAL mode. The database is
// opened lazily: the first Open (or the first operation) initializes it and
// every other caller waits on the same ready signal.
type SQLiteStore struct {
	opts Options

	startOnce sync.Once
	ready     chan struct{}
	openErr   error
	db        *sql.DB
}

// NewSQLiteStore 创建未打开的存储
// NewSQLiteStore creates a store; nothing touches disk until Open
func NewSQLiteStore(opts Options) *SQLiteStore {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = newImageID
	}
	return &SQLiteStore{opts: opts, ready: make(chan struct{})}
}

// Open 幂等初始化
// Open initializes the database once. Concurrent callers block until the
// first initialization finishes and all observe its result.
func (s *SQLiteStore) Open(ctx context.Context) error {
	first := false
	s.startOnce.Do(func() { first = true })
	if first {
		s.openErr = s.open()
		close(s.ready)
		return s.openErr
	}
	select {
	case <-s.ready:
		return s.openErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SQLiteStore) open() error {
	dbPath := strings.TrimSpace(s.opts.Path)
	if dbPath == "" {
		return fmt.Errorf("%w: sqlite db path is empty", ErrUnavailable)
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return fmt.Errorf("%w: create db directory: %w", ErrUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("%w: open sqlite: %w", ErrUnavailable, err)
	}
	// 单连接：所有操作按序执行 / One connection keeps operations serialized
	db.SetMaxOpenConns(1)

	// 启用 WAL 模式和优化 PRAGMA / Enable WAL and performance PRAGMAs
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return fmt.Errorf("%w: exec %q: %w", ErrUnavailable, p, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: ensure schema: %w", ErrUnavailable, err)
	}
	s.db = db
	return nil
}

func ensureSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS images (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		data       TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_images_created ON images(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// await 等待初始化完成 / Waits for (and triggers) initialization
func (s *SQLiteStore) await(ctx context.Context) (*sql.DB, error) {
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	return s.db, nil
}

// Close 关闭数据库连接 / Close the database connection
func (s *SQLiteStore) Close() error {
	select {
	case <-s.ready:
	default:
		return nil
	}
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// --- Image Operations ---

func (s *SQLiteStore) Put(ctx context.Context, name string, payload []byte) (ImageRecord, error) {
	db, err := s.await(ctx)
	if err != nil {
		return ImageRecord{}, err
	}
	if s.opts.MaxImageBytes > 0 && int64(len(payload)) > s.opts.MaxImageBytes {
		return ImageRecord{}, fmt.Errorf("%w: image is %d bytes, limit %d", ErrQuotaExceeded, len(payload), s.opts.MaxImageBytes)
	}

	id, err := s.opts.NewID()
	if err != nil {
		return ImageRecord{}, fmt.Errorf("new image id: %w", err)
	}
	rec := ImageRecord{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Data:      EncodeDataURI(payload),
		CreatedAt: s.opts.Now(),
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ImageRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if s.opts.QuotaBytes > 0 {
		var used int64
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(SUM(LENGTH(data)), 0) FROM images").Scan(&used); err != nil {
			return ImageRecord{}, fmt.Errorf("measure usage: %w", err)
		}
		if used+int64(len(rec.Data)) > s.opts.QuotaBytes {
			return ImageRecord{}, fmt.Errorf("%w: %d of %d bytes used", ErrQuotaExceeded, used, s.opts.QuotaBytes)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO images (id, name, data, created_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Data, formatTime(rec.CreatedAt),
	); err != nil {
		return ImageRecord{}, fmt.Errorf("insert image: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ImageRecord{}, fmt.Errorf("commit image: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (ImageRecord, error) {
	db, err := s.await(ctx)
	if err != nil {
		return ImageRecord{}, err
	}
	id = strings.TrimSpace(id)
	row := db.QueryRowContext(ctx, `SELECT id, name, data, created_at FROM images WHERE id=?`, id)

	var rec ImageRecord
	var createdAt string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Data, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ImageRecord{}, fmt.Errorf("%w: image %s", ErrNotFound, id)
		}
		return ImageRecord{}, fmt.Errorf("load image: %w", err)
	}
	rec.CreatedAt = parseTime(createdAt)
	return rec, nil
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]ImageRecord, error) {
	db, err := s.await(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, data, created_at FROM images ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var records []ImageRecord
	for rows.Next() {
		var rec ImageRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Data, &createdAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		rec.CreatedAt = parseTime(createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteByID 删除记录；不存在时视为成功
// DeleteByID removes a record; a missing id is not an error
func (s *SQLiteStore) DeleteByID(ctx context.Context, id string) error {
	db, err := s.await(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM images WHERE id=?", strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// --- Key/Value Operations ---

func (s *SQLiteStore) GetValue(ctx context.Context, key string) (string, bool, error) {
	db, err := s.await(ctx)
	if err != nil {
		return "", false, err
	}
	var value string
	err = db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key=?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetValue(ctx context.Context, key, value string) error {
	db, err := s.await(ctx)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, formatTime(s.opts.Now()))
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// --- Helpers ---

// newImageID UUIDv7：唯一且按时间排序
// newImageID returns a UUIDv7, unique and time ordered
func newImageID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
