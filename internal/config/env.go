package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides FOCUSDESK_* 环境变量
// envOverrides holds the FOCUSDESK_* environment variables
type envOverrides struct {
	ConfigPath   string  `env:"FOCUSDESK_CONFIG_PATH"`
	Home         string  `env:"FOCUSDESK_HOME"`
	Lang         string  `env:"FOCUSDESK_LANG"`
	Audio        *bool   `env:"FOCUSDESK_AUDIO"`
	Volume       float64 `env:"FOCUSDESK_VOLUME" envDefault:"-1"`
	Noise        string  `env:"FOCUSDESK_NOISE"`
	Addr         string  `env:"FOCUSDESK_ADDR"`
	LogLevel     string  `env:"FOCUSDESK_LOG_LEVEL"`
	QuotesAPIKey string  `env:"FOCUSDESK_QUOTES_API_KEY"`
}

func readEnv() (envOverrides, error) {
	o, err := env.ParseAs[envOverrides]()
	if err != nil {
		return envOverrides{}, fmt.Errorf("parse environment: %w", err)
	}
	return o, nil
}

func applyEnv(cfg *Config, o envOverrides) error {
	if v := strings.TrimSpace(o.Home); v != "" {
		cfg.Storage.BaseDir = v
	}
	if v := strings.TrimSpace(o.Lang); v != "" {
		cfg.UI.Locale = v
	}
	if o.Audio != nil {
		cfg.Audio.Enabled = *o.Audio
	}
	// -1 表示未设置 / -1 means unset
	if o.Volume != -1 {
		if o.Volume < 0 || o.Volume > 1 {
			return fmt.Errorf("invalid FOCUSDESK_VOLUME: %v", o.Volume)
		}
		cfg.Audio.Volume = o.Volume
	}
	if v := strings.TrimSpace(o.Noise); v != "" {
		cfg.Audio.Noise = v
	}
	if v := strings.TrimSpace(o.Addr); v != "" {
		cfg.Serve.Addr = v
	}
	if v := strings.TrimSpace(o.LogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(o.QuotesAPIKey); v != "" {
		cfg.Quotes.Remote.APIKey = v
	}
	return nil
}
