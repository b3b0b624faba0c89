package todo

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"focusdesk/internal/storage"
)

type memStore struct {
	values  map[string]string
	failSet error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) GetValue(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) SetValue(_ context.Context, key, value string) error {
	if m.failSet != nil {
		return m.failSet
	}
	m.values[key] = value
	return nil
}

func TestAddPrependsNewestFirst(t *testing.T) {
	ctx := context.Background()
	l := New(newMemStore(), nil)
	if _, err := l.Add(ctx, "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Add(ctx, "  second  "); err != nil {
		t.Fatal(err)
	}
	items := l.Items(FilterAll)
	if len(items) != 2 || items[0].Text != "second" || items[1].Text != "first" {
		t.Fatalf("items=%+v, want newest first", items)
	}
	if items[0].ID == items[1].ID {
		t.Fatal("ids must differ")
	}
	if _, err := l.Add(ctx, "   "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("err=%v, want ErrEmptyText", err)
	}
}

func TestToggleAndDelete(t *testing.T) {
	ctx := context.Background()
	l := New(newMemStore(), nil)
	a, _ := l.Add(ctx, "a")
	b, _ := l.Add(ctx, "b")

	got, err := l.Toggle(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Completed {
		t.Fatal("toggle should complete")
	}
	got, _ = l.Toggle(ctx, a.ID)
	if got.Completed {
		t.Fatal("second toggle should reopen")
	}
	if _, err := l.Toggle(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}

	if err := l.Delete(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if err := l.Delete(ctx, b.ID); err != nil {
		t.Fatalf("deleting twice: %v", err)
	}
	items := l.Items(FilterAll)
	if len(items) != 1 || items[0].ID != a.ID {
		t.Fatalf("items=%+v", items)
	}
}

func TestFiltersAndClearCompleted(t *testing.T) {
	ctx := context.Background()
	l := New(newMemStore(), nil)
	a, _ := l.Add(ctx, "a")
	l.Add(ctx, "b")
	c, _ := l.Add(ctx, "c")
	l.Toggle(ctx, a.ID)
	l.Toggle(ctx, c.ID)

	if n := len(l.Items(FilterActive)); n != 1 {
		t.Fatalf("active=%d, want 1", n)
	}
	if n := len(l.Items(FilterCompleted)); n != 2 {
		t.Fatalf("completed=%d, want 2", n)
	}
	if l.Remaining() != 1 {
		t.Fatalf("Remaining=%d", l.Remaining())
	}
	removed, err := l.ClearCompleted(ctx)
	if err != nil || removed != 2 {
		t.Fatalf("ClearCompleted=%d, %v", removed, err)
	}
	if FilterCompleted.Next() != FilterAll {
		t.Fatal("filter cycle should wrap")
	}
}

func TestPersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewSQLiteStore(storage.Options{Path: filepath.Join(t.TempDir(), "todo.db")})
	t.Cleanup(func() { _ = store.Close() })

	l := New(store, nil)
	if err := l.Load(ctx); err != nil {
		t.Fatal(err)
	}
	a, _ := l.Add(ctx, "write report")
	l.Add(ctx, "stretch")
	l.Toggle(ctx, a.ID)
	want := l.Items(FilterAll)

	reloaded := New(store, nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if got := reloaded.Items(FilterAll); !reflect.DeepEqual(got, want) {
		t.Fatalf("reloaded=%+v, want %+v", got, want)
	}
}

func TestLoadMalformedAndMissing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	l := New(store, nil)
	if err := l.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if len(l.Items(FilterAll)) != 0 {
		t.Fatal("missing data should load empty")
	}

	store.values[StorageKey] = "{not json"
	if err := l.Load(ctx); err != nil {
		t.Fatalf("malformed data should not fail: %v", err)
	}
	if len(l.Items(FilterAll)) != 0 {
		t.Fatal("malformed data should load empty")
	}
}

func TestFailedSaveKeepsList(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	l := New(store, nil)
	l.Add(ctx, "kept")

	store.failSet = storage.ErrQuotaExceeded
	if _, err := l.Add(ctx, "lost"); !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Fatalf("err=%v, want wrapped quota error", err)
	}
	items := l.Items(FilterAll)
	if len(items) != 1 || items[0].Text != "kept" {
		t.Fatalf("items=%+v after failed save", items)
	}
}

func TestDeletedIDsAreNotReused(t *testing.T) {
	ctx := context.Background()
	store := storage.NewSQLiteStore(storage.Options{Path: filepath.Join(t.TempDir(), "todo.db")})
	t.Cleanup(func() { _ = store.Close() })

	l := New(store, nil)
	if err := l.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Add(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	b, err := l.Add(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Delete(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	c, err := l.Add(ctx, "c")
	if err != nil {
		t.Fatal(err)
	}
	if c.ID == b.ID || c.ID != 3 {
		t.Fatalf("new item id=%d after deleting %d, want 3", c.ID, b.ID)
	}

	// 重载后高水位仍然有效 / The high-water mark survives a reload
	if err := l.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	reloaded := New(store, nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatal(err)
	}
	d, err := reloaded.Add(ctx, "d")
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != 4 {
		t.Fatalf("id after reload=%d, want 4", d.ID)
	}
}

func TestIDMarkFallsBackToItems(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.values[StorageKey] = `[{"id":7,"text":"old","completed":false}]`
	store.values[NextIDKey] = "garbage"

	l := New(store, nil)
	if err := l.Load(ctx); err != nil {
		t.Fatal(err)
	}
	item, err := l.Add(ctx, "new")
	if err != nil {
		t.Fatal(err)
	}
	if item.ID != 8 {
		t.Fatalf("id=%d, want 8", item.ID)
	}
	if got := store.values[NextIDKey]; got != "9" {
		t.Fatalf("stored mark=%q, want 9", got)
	}
}
