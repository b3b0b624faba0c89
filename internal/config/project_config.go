package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InitProjectConfigScaffold 在 dir 下初始化项目级配置模板（dir/.focusdesk/config.json），返回路径
// InitProjectConfigScaffold writes a project config scaffold to dir/.focusdesk/config.json and returns its path
func InitProjectConfigScaffold(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get current working directory: %w", err)
		}
		dir = cwd
	}

	cfgDir := filepath.Join(dir, ".focusdesk")
	path := filepath.Join(cfgDir, "config.json")

	// 已存在则保留用户配置
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return "", fmt.Errorf("project config path is a directory: %s", path)
		}
		return path, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat project config: %w", err)
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir .focusdesk: %w", err)
	}

	cfg := Default()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write project config: %w", err)
	}
	return path, nil
}

// WriteUILocale 将 ui.locale 写入项目配置；目录不存在则创建
// WriteUILocale writes ui.locale to dir/.focusdesk/config.json; creates the dir if needed
func WriteUILocale(dir, locale string) error {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return errors.New("locale is empty")
	}
	cfgDir := filepath.Join(strings.TrimSpace(dir), ".focusdesk")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return fmt.Errorf("mkdir .focusdesk: %w", err)
	}
	path := filepath.Join(cfgDir, "config.json")
	var out map[string]any
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(stripJSONComments(data), &out); err != nil {
			out = nil
		}
	}
	if out == nil {
		out = make(map[string]any)
	}
	uiMap, _ := out["ui"].(map[string]any)
	if uiMap == nil {
		uiMap = make(map[string]any)
	}
	uiMap["locale"] = locale
	out["ui"] = uiMap
	data, err = json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
