package bootstrap

import (
	"focusdesk/internal/config"
	"focusdesk/internal/quotes"
	"focusdesk/internal/timer"
)

const (
	remoteQuoteCount  = 8
	multipartOverhead = 64 << 10
)

// buildPresets 转换预设；无可用预设时回退默认配置
// buildPresets converts presets, skipping non-positive ones. With nothing
// usable left it falls back to the built-in defaults.
func buildPresets(cfg config.TimerConfig) []timer.Config {
	out := convertPresets(cfg.Presets)
	if len(out) == 0 {
		out = convertPresets(config.Default().Timer.Presets)
	}
	return out
}

func convertPresets(presets []config.PresetConfig) []timer.Config {
	out := make([]timer.Config, 0, len(presets))
	for _, p := range presets {
		if p.Minutes <= 0 {
			continue
		}
		out = append(out, timer.Config{Seconds: p.Minutes * 60, Label: p.Label})
	}
	return out
}

// startPreset 越界时取第一个 / Out-of-range indexes pick the first preset
func startPreset(presets []timer.Config, idx int) timer.Config {
	if idx < 0 || idx >= len(presets) {
		idx = 0
	}
	return presets[idx]
}

func buildQuotes(items []config.QuoteItem) []quotes.Quote {
	out := make([]quotes.Quote, 0, len(items))
	for _, it := range items {
		out = append(out, quotes.Quote{Text: it.Text, Author: it.Author})
	}
	return out
}
