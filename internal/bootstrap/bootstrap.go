package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"focusdesk/internal/ambient"
	"focusdesk/internal/api"
	"focusdesk/internal/background"
	"focusdesk/internal/config"
	"focusdesk/internal/i18n"
	"focusdesk/internal/logging"
	"focusdesk/internal/quotes"
	"focusdesk/internal/storage"
	"focusdesk/internal/timer"
	"focusdesk/internal/todo"
	"focusdesk/internal/tui"
)

// Options 构建选项 / Build options
type Options struct {
	// Sink 覆盖音频输出（测试用）/ Overrides the audio output, for tests
	Sink ambient.Sink
	// Logger 覆盖日志（不写文件）/ Overrides the file logger
	Logger *logging.Logger
}

// BuildResult 与 UI 无关的构建结果，供 TUI/REPL/CLI/API 共用
// BuildResult is UI-agnostic; the TUI, REPL, CLI and API all drive it
type BuildResult struct {
	Config      config.Config
	Logger      *logging.Logger
	Locale      *i18n.I18n
	Store       *storage.SQLiteStore
	Timer       *timer.Timer
	Presets     []timer.Config
	Todos       *todo.List
	Player      *ambient.Player
	Quotes      *quotes.Rotator
	Remote      *quotes.RemoteSource
	Backgrounds *background.Picker

	// StartupErr 存储初始化或加载失败；界面需阻塞提示
	// StartupErr records a failed store open or load; UIs surface it as a blocking alert
	StartupErr error

	mu    sync.Mutex
	hooks []timer.CompleteFunc
}

// Build 按依赖顺序初始化；调用方负责 defer result.Close()
// Build initializes everything in dependency order; caller must defer result.Close()
func Build(ctx context.Context, cfg config.Config, opts Options) (*BuildResult, error) {
	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = logging.Open(logging.Options{
			Dir:   cfg.LogDir(),
			Level: cfg.Log.Level,
			MaxMB: cfg.Storage.LogMaxMB,
		})
		if err != nil {
			return nil, fmt.Errorf("init logging: %w", err)
		}
	}

	presets := buildPresets(cfg.Timer)
	tm, err := timer.New(startPreset(presets, cfg.Timer.DefaultPreset))
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("init timer: %w", err)
	}

	store := storage.NewSQLiteStore(storage.Options{
		Path:          cfg.DBPath(),
		MaxImageBytes: int64(cfg.Storage.MaxImageKB) << 10,
		QuotaBytes:    int64(cfg.Storage.QuotaMB) << 20,
	})

	player := ambient.NewPlayer(ambient.Options{
		Enabled: cfg.Audio.Enabled,
		Volume:  cfg.Audio.Volume,
		Kind:    ambient.ParseKind(cfg.Audio.Noise),
		Sink:    opts.Sink,
		Logger:  logger,
	})

	res := &BuildResult{
		Config:      cfg,
		Logger:      logger,
		Locale:      i18n.Init(cfg.UI.Locale),
		Store:       store,
		Timer:       tm,
		Presets:     presets,
		Todos:       todo.New(store, logger),
		Player:      player,
		Quotes:      quotes.NewRotator(buildQuotes(cfg.Quotes.Items), 0),
		Backgrounds: background.NewPicker(store),
	}
	if cfg.Quotes.Remote.Enabled {
		res.Remote = quotes.NewRemoteSource(quotes.RemoteConfig{
			BaseURL:   cfg.Quotes.Remote.BaseURL,
			APIKey:    cfg.Quotes.Remote.APIKey,
			Model:     cfg.Quotes.Remote.Model,
			TimeoutMS: cfg.Quotes.Remote.TimeoutMS,
		})
	}

	tm.OnComplete(func(c timer.Config) {
		logger.Info("session complete", "label", c.Label, "seconds", c.Seconds)
		player.Chime()
		res.mu.Lock()
		hooks := append([]timer.CompleteFunc(nil), res.hooks...)
		res.mu.Unlock()
		for _, fn := range hooks {
			fn(c)
		}
	})

	if err := store.Open(ctx); err != nil {
		logger.Error("store unavailable", "path", cfg.DBPath(), "error", err)
		res.StartupErr = err
	} else if err := res.Todos.Load(ctx); err != nil {
		logger.Error("load to-do list", "error", err)
		res.StartupErr = err
	}
	logger.Debug("built", "db", cfg.DBPath(), "presets", len(presets), "audio", cfg.Audio.Enabled)
	return res, nil
}

// OnComplete 追加倒计时结束监听 / Adds a listener for finished countdowns
func (r *BuildResult) OnComplete(fn timer.CompleteFunc) {
	r.mu.Lock()
	r.hooks = append(r.hooks, fn)
	r.mu.Unlock()
}

// FetchQuotes 拉取远端语录；未启用时返回 nil
// FetchQuotes asks the remote source for quotes; nil when remote quotes are off
func (r *BuildResult) FetchQuotes(ctx context.Context) ([]quotes.Quote, error) {
	if r.Remote == nil {
		return nil, nil
	}
	if ms := r.Config.Quotes.Remote.TimeoutMS; ms > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
		defer cancel()
	}
	return r.Remote.Fetch(ctx, remoteQuoteCount)
}

// TUIDeps TUI 依赖 / Dependencies for the TUI
func (r *BuildResult) TUIDeps() tui.Deps {
	deps := tui.Deps{
		Timer:         r.Timer,
		Presets:       r.Presets,
		Todos:         r.Todos,
		Backgrounds:   r.Backgrounds,
		Quotes:        r.Quotes,
		Sound:         r.Player,
		QuoteInterval: time.Duration(r.Config.Quotes.IntervalSeconds) * time.Second,
		Locale:        r.Locale,
		Logger:        r.Logger,
		StartupErr:    r.StartupErr,
	}
	if r.Remote != nil {
		deps.FetchQuotes = r.FetchQuotes
	}
	return deps
}

// APIDeps HTTP API 依赖 / Dependencies for the HTTP API
func (r *BuildResult) APIDeps() api.Deps {
	return api.Deps{
		Timer:          r.Timer,
		Todos:          r.Todos,
		Images:         r.Store,
		Backgrounds:    r.Backgrounds,
		Quotes:         r.Quotes,
		Logger:         r.Logger,
		MaxUploadBytes: int64(r.Config.Storage.MaxImageKB)<<10 + multipartOverhead,
	}
}

// Close 停止音频并关闭存储和日志 / Stops audio, closes the store and the log
func (r *BuildResult) Close() error {
	if r == nil {
		return nil
	}
	r.Player.Stop()
	var errs []error
	if err := r.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	if err := r.Logger.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close log: %w", err))
	}
	return errors.Join(errs...)
}
