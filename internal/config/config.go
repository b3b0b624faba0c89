package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type PresetConfig struct {
	Minutes int    `json:"minutes" yaml:"minutes"`
	Label   string `json:"label" yaml:"label"`
}

type TimerConfig struct {
	Presets []PresetConfig `json:"presets" yaml:"presets"`
	// DefaultPreset 启动时选中的预设下标（从 0 开始）
	// DefaultPreset is the zero-based index of the preset selected at startup
	DefaultPreset int `json:"default_preset" yaml:"default_preset"`
}

type AudioConfig struct {
	Enabled bool    `json:"enabled" yaml:"enabled"`
	Volume  float64 `json:"volume" yaml:"volume"`
	Noise   string  `json:"noise" yaml:"noise"`
}

type QuoteItem struct {
	Text   string `json:"text" yaml:"text"`
	Author string `json:"author" yaml:"author"`
}

type RemoteQuotesConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	BaseURL   string `json:"base_url" yaml:"base_url"`
	Model     string `json:"model" yaml:"model"`
	APIKey    string `json:"api_key" yaml:"api_key"`
	TimeoutMS int    `json:"timeout_ms" yaml:"timeout_ms"`
}

type QuotesConfig struct {
	IntervalSeconds int                `json:"interval_seconds" yaml:"interval_seconds"`
	Items           []QuoteItem        `json:"items" yaml:"items"`
	Remote          RemoteQuotesConfig `json:"remote" yaml:"remote"`
}

type StorageConfig struct {
	BaseDir    string `json:"base_dir" yaml:"base_dir"`
	MaxImageKB int    `json:"max_image_kb" yaml:"max_image_kb"`
	QuotaMB    int    `json:"quota_mb" yaml:"quota_mb"`
	LogMaxMB   int    `json:"log_max_mb" yaml:"log_max_mb"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

type ServeConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type UIConfig struct {
	Locale string `json:"locale" yaml:"locale"`
}

type Config struct {
	Timer   TimerConfig   `json:"timer" yaml:"timer"`
	Audio   AudioConfig   `json:"audio" yaml:"audio"`
	Quotes  QuotesConfig  `json:"quotes" yaml:"quotes"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Serve   ServeConfig   `json:"serve" yaml:"serve"`
	UI      UIConfig      `json:"ui" yaml:"ui"`
}

type fileTimerConfig struct {
	Presets       *[]PresetConfig `json:"presets" yaml:"presets"`
	DefaultPreset *int            `json:"default_preset" yaml:"default_preset"`
}

type fileAudioConfig struct {
	Enabled *bool    `json:"enabled" yaml:"enabled"`
	Volume  *float64 `json:"volume" yaml:"volume"`
	Noise   *string  `json:"noise" yaml:"noise"`
}

type fileRemoteQuotesConfig struct {
	Enabled   *bool  `json:"enabled" yaml:"enabled"`
	BaseURL   string `json:"base_url" yaml:"base_url"`
	Model     string `json:"model" yaml:"model"`
	APIKey    string `json:"api_key" yaml:"api_key"`
	TimeoutMS int    `json:"timeout_ms" yaml:"timeout_ms"`
}

type fileQuotesConfig struct {
	IntervalSeconds int                     `json:"interval_seconds" yaml:"interval_seconds"`
	Items           *[]QuoteItem            `json:"items" yaml:"items"`
	Remote          *fileRemoteQuotesConfig `json:"remote" yaml:"remote"`
}

type fileConfig struct {
	Timer   *fileTimerConfig  `json:"timer" yaml:"timer"`
	Audio   *fileAudioConfig  `json:"audio" yaml:"audio"`
	Quotes  *fileQuotesConfig `json:"quotes" yaml:"quotes"`
	Storage *StorageConfig    `json:"storage" yaml:"storage"`
	Log     *LogConfig        `json:"log" yaml:"log"`
	Serve   *ServeConfig      `json:"serve" yaml:"serve"`
	UI      *UIConfig         `json:"ui" yaml:"ui"`
}

func Default() Config {
	return Config{
		Timer: TimerConfig{
			Presets: []PresetConfig{
				{Minutes: 15, Label: "Break"},
				{Minutes: 30, Label: "Focus"},
				{Minutes: 45, Label: "Focus"},
				{Minutes: 60, Label: "Focus"},
			},
			DefaultPreset: DefaultTimerPreset,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  DefaultAudioVolume,
			Noise:   "white",
		},
		Quotes: QuotesConfig{
			IntervalSeconds: DefaultQuoteIntervalSeconds,
			Remote: RemoteQuotesConfig{
				BaseURL:   "https://api.openai.com/v1",
				Model:     "gpt-4o-mini",
				TimeoutMS: 10000,
			},
		},
		Storage: StorageConfig{
			BaseDir:    "~/.focusdesk",
			MaxImageKB: DefaultStorageMaxImageKB,
			QuotaMB:    DefaultStorageQuotaMB,
			LogMaxMB:   DefaultStorageLogMaxMB,
		},
		Log:   LogConfig{Level: "info"},
		Serve: ServeConfig{Addr: "127.0.0.1:7425"},
	}
}

// Load 按 默认值 < 全局配置 < 项目配置 < 环境变量 的顺序合并
// Load layers defaults < global config < project (or explicit) config < environment
func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	overrides, err := readEnv()
	if err != nil {
		return Config{}, err
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(overrides.ConfigPath); envPath != "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	if err := applyEnv(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	dir := filepath.Join(home, ".focusdesk")
	return []string{
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "config.yaml"),
	}
}

func findProjectConfigPath() string {
	candidates := []string{
		"focusdesk.config.json",
		"focusdesk.yaml",
		".focusdesk/config.json",
		".focusdesk/config.yaml",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	var fileCfg fileConfig
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return fmt.Errorf("parse config %q: %w", resolved, err)
		}
	default:
		if err := json.Unmarshal(stripJSONComments(data), &fileCfg); err != nil {
			return fmt.Errorf("parse config %q: %w", resolved, err)
		}
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Timer != nil {
		if fc.Timer.Presets != nil {
			cfg.Timer.Presets = append([]PresetConfig(nil), (*fc.Timer.Presets)...)
		}
		if fc.Timer.DefaultPreset != nil {
			cfg.Timer.DefaultPreset = *fc.Timer.DefaultPreset
		}
	}
	if fc.Audio != nil {
		if fc.Audio.Enabled != nil {
			cfg.Audio.Enabled = *fc.Audio.Enabled
		}
		if fc.Audio.Volume != nil {
			cfg.Audio.Volume = *fc.Audio.Volume
		}
		if fc.Audio.Noise != nil {
			cfg.Audio.Noise = *fc.Audio.Noise
		}
	}
	if fc.Quotes != nil {
		cfg.Quotes = mergeQuotes(cfg.Quotes, *fc.Quotes)
	}
	if fc.Storage != nil {
		cfg.Storage = mergeStorage(cfg.Storage, *fc.Storage)
	}
	if fc.Log != nil && strings.TrimSpace(fc.Log.Level) != "" {
		cfg.Log.Level = fc.Log.Level
	}
	if fc.Serve != nil && strings.TrimSpace(fc.Serve.Addr) != "" {
		cfg.Serve.Addr = fc.Serve.Addr
	}
	if fc.UI != nil && strings.TrimSpace(fc.UI.Locale) != "" {
		cfg.UI.Locale = fc.UI.Locale
	}
}

func mergeQuotes(base QuotesConfig, override fileQuotesConfig) QuotesConfig {
	if override.IntervalSeconds > 0 {
		base.IntervalSeconds = override.IntervalSeconds
	}
	if override.Items != nil {
		base.Items = append([]QuoteItem(nil), (*override.Items)...)
	}
	if r := override.Remote; r != nil {
		if r.Enabled != nil {
			base.Remote.Enabled = *r.Enabled
		}
		if strings.TrimSpace(r.BaseURL) != "" {
			base.Remote.BaseURL = r.BaseURL
		}
		if strings.TrimSpace(r.Model) != "" {
			base.Remote.Model = r.Model
		}
		if strings.TrimSpace(r.APIKey) != "" {
			base.Remote.APIKey = r.APIKey
		}
		if r.TimeoutMS > 0 {
			base.Remote.TimeoutMS = r.TimeoutMS
		}
	}
	return base
}

func mergeStorage(base StorageConfig, override StorageConfig) StorageConfig {
	if strings.TrimSpace(override.BaseDir) != "" {
		base.BaseDir = override.BaseDir
	}
	if override.MaxImageKB > 0 {
		base.MaxImageKB = override.MaxImageKB
	}
	if override.QuotaMB > 0 {
		base.QuotaMB = override.QuotaMB
	}
	if override.LogMaxMB > 0 {
		base.LogMaxMB = override.LogMaxMB
	}
	return base
}

func normalize(cfg *Config) error {
	def := Default()

	presets := make([]PresetConfig, 0, len(cfg.Timer.Presets))
	for _, p := range cfg.Timer.Presets {
		if p.Minutes <= 0 {
			continue
		}
		p.Label = strings.TrimSpace(p.Label)
		if p.Label == "" {
			p.Label = "Focus"
		}
		presets = append(presets, p)
	}
	if len(presets) == 0 {
		presets = def.Timer.Presets
	}
	cfg.Timer.Presets = presets
	if cfg.Timer.DefaultPreset < 0 || cfg.Timer.DefaultPreset >= len(presets) {
		cfg.Timer.DefaultPreset = 0
	}

	switch {
	case cfg.Audio.Volume < 0:
		cfg.Audio.Volume = 0
	case cfg.Audio.Volume > 1:
		cfg.Audio.Volume = 1
	}
	cfg.Audio.Noise = strings.ToLower(strings.TrimSpace(cfg.Audio.Noise))
	if cfg.Audio.Noise != "white" && cfg.Audio.Noise != "brown" {
		cfg.Audio.Noise = def.Audio.Noise
	}

	if cfg.Quotes.IntervalSeconds <= 0 {
		cfg.Quotes.IntervalSeconds = def.Quotes.IntervalSeconds
	}
	if cfg.Quotes.Remote.TimeoutMS <= 0 {
		cfg.Quotes.Remote.TimeoutMS = def.Quotes.Remote.TimeoutMS
	}
	cfg.Quotes.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Quotes.Remote.BaseURL), "/")

	if strings.TrimSpace(cfg.Storage.BaseDir) == "" {
		cfg.Storage.BaseDir = def.Storage.BaseDir
	}
	baseDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return err
	}
	cfg.Storage.BaseDir = baseDir
	if cfg.Storage.MaxImageKB <= 0 {
		cfg.Storage.MaxImageKB = def.Storage.MaxImageKB
	}
	if cfg.Storage.QuotaMB <= 0 {
		cfg.Storage.QuotaMB = def.Storage.QuotaMB
	}
	if cfg.Storage.LogMaxMB <= 0 {
		cfg.Storage.LogMaxMB = def.Storage.LogMaxMB
	}

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if strings.TrimSpace(cfg.Serve.Addr) == "" {
		cfg.Serve.Addr = def.Serve.Addr
	}
	cfg.UI.Locale = strings.TrimSpace(cfg.UI.Locale)
	return nil
}

// DBPath 数据库文件位置 / Location of the SQLite database
func (c Config) DBPath() string {
	return filepath.Join(c.Storage.BaseDir, "focusdesk.db")
}

// LogDir 日志目录 / Location of the log directory
func (c Config) LogDir() string {
	return filepath.Join(c.Storage.BaseDir, "logs")
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
