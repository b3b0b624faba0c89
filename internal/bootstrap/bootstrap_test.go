package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"focusdesk/internal/config"
	"focusdesk/internal/logging"
	"focusdesk/internal/storage"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.BaseDir = filepath.Join(t.TempDir(), "data")
	cfg.Audio.Enabled = false
	return cfg
}

func TestBuildSuccessWithTempDir(t *testing.T) {
	cfg := testConfig(t)
	res, err := Build(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer res.Close()

	if res.StartupErr != nil {
		t.Fatalf("StartupErr: %v", res.StartupErr)
	}
	if _, err := os.Stat(cfg.DBPath()); err != nil {
		t.Fatalf("db not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.LogDir(), "focusdesk.log")); err != nil {
		t.Fatalf("log not created: %v", err)
	}
	snap := res.Timer.Snapshot()
	if snap.Config.Seconds != 30*60 || snap.Display != "30:00" {
		t.Fatalf("default preset: %+v", snap)
	}
	if len(res.Presets) != 4 {
		t.Fatalf("presets=%d", len(res.Presets))
	}
	if res.Remote != nil {
		t.Fatal("remote quotes should be off by default")
	}
	if res.Player.Enabled() {
		t.Fatal("audio should be disabled")
	}
}

func TestBuildTodosSurviveRebuild(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	res, err := Build(ctx, cfg, Options{Logger: logging.Discard()})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := res.Todos.Add(ctx, "write report"); err != nil {
		t.Fatal(err)
	}
	if _, err := res.Backgrounds.Select(ctx, "ocean"); err != nil {
		t.Fatal(err)
	}
	if err := res.Close(); err != nil {
		t.Fatal(err)
	}

	res, err = Build(ctx, cfg, Options{Logger: logging.Discard()})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()
	if got := res.Todos.Remaining(); got != 1 {
		t.Fatalf("remaining=%d", got)
	}
	bg, err := res.Backgrounds.Selected(ctx)
	if err != nil || bg.ID != "ocean" {
		t.Fatalf("background=%+v err=%v", bg, err)
	}
}

func TestBuildUnavailableStoreIsStartupErr(t *testing.T) {
	cfg := testConfig(t)
	// 用普通文件占住目录位置 / A regular file where the data dir should be
	if err := os.WriteFile(cfg.Storage.BaseDir, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := Build(context.Background(), cfg, Options{Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("Build should not fail: %v", err)
	}
	defer res.Close()
	if !errors.Is(res.StartupErr, storage.ErrUnavailable) {
		t.Fatalf("StartupErr=%v", res.StartupErr)
	}
	if !errors.Is(res.TUIDeps().StartupErr, storage.ErrUnavailable) {
		t.Fatal("TUI deps should carry the startup error")
	}
	if _, err := res.Todos.Add(context.Background(), "x"); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("Add err=%v", err)
	}
}

func TestBuildRemoteQuotes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Quotes.Remote.Enabled = true
	cfg.Quotes.Remote.BaseURL = "http://127.0.0.1:1/v1"
	res, err := Build(context.Background(), cfg, Options{Logger: logging.Discard()})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()
	if res.Remote == nil || res.TUIDeps().FetchQuotes == nil {
		t.Fatal("remote source not wired")
	}
	if _, err := res.FetchQuotes(context.Background()); err == nil {
		t.Fatal("expected a connection error")
	}
}

func TestAPIDepsUploadLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.MaxImageKB = 10
	res, err := Build(context.Background(), cfg, Options{Logger: logging.Discard()})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()
	if got := res.APIDeps().MaxUploadBytes; got != 10<<10+multipartOverhead {
		t.Fatalf("MaxUploadBytes=%d", got)
	}
}

func TestBuildUnnormalizedConfigFallsBack(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"zero", config.Config{}},
		{"index out of range", config.Config{Timer: config.TimerConfig{
			Presets:       []config.PresetConfig{{Minutes: 10, Label: "Short"}},
			DefaultPreset: 5,
		}}},
		{"negative index", config.Config{Timer: config.TimerConfig{
			Presets:       []config.PresetConfig{{Minutes: 10, Label: "Short"}},
			DefaultPreset: -1,
		}}},
		{"only unusable presets", config.Config{Timer: config.TimerConfig{
			Presets: []config.PresetConfig{{Minutes: 0, Label: "Zero"}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.Storage.BaseDir = filepath.Join(t.TempDir(), "data")
			res, err := Build(context.Background(), cfg, Options{Logger: logging.Discard()})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			defer res.Close()

			if len(res.Presets) == 0 {
				t.Fatal("expected at least one preset")
			}
			snap := res.Timer.Snapshot()
			if snap.Config != res.Presets[0] || snap.Remaining <= 0 {
				t.Fatalf("timer=%+v, want first preset %+v", snap, res.Presets[0])
			}
		})
	}
}
