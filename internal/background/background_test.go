package background

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"focusdesk/internal/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestPicker(t *testing.T) (*Picker, *storage.SQLiteStore) {
	t.Helper()
	store := storage.NewSQLiteStore(storage.Options{Path: filepath.Join(t.TempDir(), "bg.db")})
	t.Cleanup(func() { _ = store.Close() })
	return NewPicker(store), store
}

func TestSelectedDefaultsToFirstPreset(t *testing.T) {
	p, _ := newTestPicker(t)
	bg, err := p.Selected(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if bg.ID != Presets[0].ID {
		t.Fatalf("Selected=%s, want %s", bg.ID, Presets[0].ID)
	}
}

func TestSelectPersists(t *testing.T) {
	ctx := context.Background()
	p, store := newTestPicker(t)
	if _, err := p.Select(ctx, "ocean"); err != nil {
		t.Fatal(err)
	}
	again := NewPicker(store)
	bg, err := again.Selected(ctx)
	if err != nil || bg.ID != "ocean" {
		t.Fatalf("Selected=%+v, %v", bg, err)
	}
	if _, err := p.Select(ctx, "nope"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("err=%v, want ErrUnknown", err)
	}
}

func TestUploadListRemove(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPicker(t)

	path := filepath.Join(t.TempDir(), "sky.png")
	if err := os.WriteFile(path, pngHeader, 0o644); err != nil {
		t.Fatal(err)
	}
	up, err := p.Upload(ctx, path)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if up.Kind != KindUpload || up.Name != "sky.png" || up.ID != UploadID(up.ImageID) {
		t.Fatalf("upload=%+v", up)
	}

	all, err := p.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(Presets)+1 || all[len(all)-1].ID != up.ID {
		t.Fatalf("List=%+v", all)
	}

	if _, err := p.Select(ctx, up.ID); err != nil {
		t.Fatal(err)
	}
	if err := p.Remove(ctx, up.ID); err != nil {
		t.Fatal(err)
	}
	bg, _ := p.Selected(ctx)
	if bg.ID != Presets[0].ID {
		t.Fatalf("removing the selected upload should reset, got %s", bg.ID)
	}
	if err := p.Remove(ctx, "forest"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("removing a preset: err=%v", err)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	p, _ := newTestPicker(t)
	if _, err := p.UploadBytes(context.Background(), "notes.txt", []byte("plain text")); !errors.Is(err, ErrNotImage) {
		t.Fatalf("err=%v, want ErrNotImage", err)
	}
}

func TestCycleWraps(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPicker(t)
	bg, err := p.Cycle(ctx, -1)
	if err != nil {
		t.Fatal(err)
	}
	if bg.ID != Presets[len(Presets)-1].ID {
		t.Fatalf("Cycle(-1)=%s", bg.ID)
	}
	bg, _ = p.Cycle(ctx, 1)
	if bg.ID != Presets[0].ID {
		t.Fatalf("Cycle(+1)=%s", bg.ID)
	}
}
