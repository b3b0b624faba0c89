package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	work := t.TempDir()
	oldwd, _ := os.Getwd()
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	return home
}

func TestDefaults(t *testing.T) {
	home := isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Timer.Presets) != 4 || cfg.Timer.Presets[0].Minutes != 15 || cfg.Timer.Presets[0].Label != "Break" {
		t.Fatalf("presets=%+v", cfg.Timer.Presets)
	}
	if cfg.Storage.BaseDir != filepath.Join(home, ".focusdesk") {
		t.Fatalf("base_dir=%q", cfg.Storage.BaseDir)
	}
	if cfg.DBPath() != filepath.Join(home, ".focusdesk", "focusdesk.db") {
		t.Fatalf("DBPath=%q", cfg.DBPath())
	}
	if !cfg.Audio.Enabled || cfg.Audio.Volume != DefaultAudioVolume {
		t.Fatalf("audio=%+v", cfg.Audio)
	}
}

func TestLoadJSONCAndPrecedence(t *testing.T) {
	home := isolate(t)

	globalDir := filepath.Join(home, ".focusdesk")
	if err := os.MkdirAll(globalDir, 0o755); err != nil {
		t.Fatal(err)
	}
	globalCfg := `{
  // global
  "audio": {"volume": 0.2, "noise": "brown"},
  "serve": {"addr": "127.0.0.1:1"}
}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalCfg), 0o644); err != nil {
		t.Fatal(err)
	}
	projectCfg := `{
  /* project */
  "audio": {"volume": 0.8, "enabled": false},
  "timer": {"presets": [{"minutes": 25, "label": "Pomodoro"}, {"minutes": 5}]}
}`
	if err := os.WriteFile("focusdesk.config.json", []byte(projectCfg), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Audio.Volume != 0.8 || cfg.Audio.Enabled {
		t.Fatalf("audio=%+v, want project values", cfg.Audio)
	}
	if cfg.Audio.Noise != "brown" || cfg.Serve.Addr != "127.0.0.1:1" {
		t.Fatalf("global values lost: %+v %+v", cfg.Audio, cfg.Serve)
	}
	if len(cfg.Timer.Presets) != 2 || cfg.Timer.Presets[1].Label != "Focus" {
		t.Fatalf("presets=%+v", cfg.Timer.Presets)
	}
	if cfg.Timer.DefaultPreset != DefaultTimerPreset {
		t.Fatalf("default_preset=%d", cfg.Timer.DefaultPreset)
	}
}

func TestLoadYAML(t *testing.T) {
	isolate(t)
	yamlCfg := `
quotes:
  interval_seconds: 60
  items:
    - text: Keep going
      author: Anon
  remote:
    enabled: true
    model: local-model
storage:
  max_image_kb: 128
`
	path := filepath.Join(t.TempDir(), "desk.yaml")
	if err := os.WriteFile(path, []byte(yamlCfg), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Quotes.IntervalSeconds != 60 || len(cfg.Quotes.Items) != 1 || cfg.Quotes.Items[0].Author != "Anon" {
		t.Fatalf("quotes=%+v", cfg.Quotes)
	}
	if !cfg.Quotes.Remote.Enabled || cfg.Quotes.Remote.Model != "local-model" {
		t.Fatalf("remote=%+v", cfg.Quotes.Remote)
	}
	if cfg.Storage.MaxImageKB != 128 || cfg.Storage.QuotaMB != DefaultStorageQuotaMB {
		t.Fatalf("storage=%+v", cfg.Storage)
	}
}

func TestEnvOverride(t *testing.T) {
	isolate(t)
	if err := os.WriteFile("focusdesk.config.json", []byte(`{"serve":{"addr":"127.0.0.1:2"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	home := t.TempDir()
	t.Setenv("FOCUSDESK_ADDR", "127.0.0.1:3")
	t.Setenv("FOCUSDESK_VOLUME", "0")
	t.Setenv("FOCUSDESK_AUDIO", "false")
	t.Setenv("FOCUSDESK_HOME", home)
	t.Setenv("FOCUSDESK_QUOTES_API_KEY", "secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Serve.Addr != "127.0.0.1:3" {
		t.Fatalf("addr=%q", cfg.Serve.Addr)
	}
	if cfg.Audio.Volume != 0 || cfg.Audio.Enabled {
		t.Fatalf("audio=%+v", cfg.Audio)
	}
	if cfg.Storage.BaseDir != home || cfg.Quotes.Remote.APIKey != "secret" {
		t.Fatalf("storage=%q key=%q", cfg.Storage.BaseDir, cfg.Quotes.Remote.APIKey)
	}
}

func TestEnvRejectsBadVolume(t *testing.T) {
	isolate(t)
	t.Setenv("FOCUSDESK_VOLUME", "3")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "FOCUSDESK_VOLUME") {
		t.Fatalf("err=%v", err)
	}
	t.Setenv("FOCUSDESK_VOLUME", "loud")
	if _, err := Load(""); err == nil {
		t.Fatal("non-numeric volume should fail")
	}
}

func TestEnvConfigPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "alt.json")
	if err := os.WriteFile(path, []byte(`{"ui":{"locale":"zh-CN"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FOCUSDESK_CONFIG_PATH", path)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Locale != "zh-CN" {
		t.Fatalf("locale=%q", cfg.UI.Locale)
	}
}

func TestNormalizeClampsAndFallsBack(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.Timer.Presets = []PresetConfig{{Minutes: 0}, {Minutes: -5}}
	cfg.Timer.DefaultPreset = 9
	cfg.Audio.Volume = 4
	cfg.Audio.Noise = "pink"
	if err := normalize(&cfg); err != nil {
		t.Fatal(err)
	}
	if len(cfg.Timer.Presets) != 4 || cfg.Timer.DefaultPreset != 0 {
		t.Fatalf("timer=%+v", cfg.Timer)
	}
	if cfg.Audio.Volume != 1 || cfg.Audio.Noise != "white" {
		t.Fatalf("audio=%+v", cfg.Audio)
	}
}

func TestInitScaffoldAndWriteLocale(t *testing.T) {
	dir := t.TempDir()
	path, err := InitProjectConfigScaffold(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteUILocale(dir, "zh-CN"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"locale": "zh-CN"`) || !strings.Contains(string(data), `"presets"`) {
		t.Fatalf("config=%s", data)
	}
}
