package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenWritesToFile(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(Options{Dir: dir, Level: "debug"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l.Debug("timer completed", "label", "Focus")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "focusdesk.log"))
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "timer completed") || !strings.Contains(out, "label=Focus") {
		t.Fatalf("unexpected log output: %q", out)
	}
}

func TestOpenTruncatesOversizedLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "focusdesk.log")
	if err := os.WriteFile(path, make([]byte, (1<<20)+1), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := Open(Options{Dir: dir, MaxMB: 1})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l.Info("fresh")
	_ = l.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() > 1024 {
		t.Fatalf("log not truncated: %d bytes", info.Size())
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Info("dropped")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
}
