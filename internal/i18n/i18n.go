package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// I18n 国际化支持
// I18n provides internationalization support
type I18n struct {
	locale   string
	messages map[string]string
	mu       sync.RWMutex
}

var (
	global   *I18n
	globalMu sync.RWMutex
)

// 支持的语言，顺序即匹配优先级 / Supported tags; the first is the fallback
var supported = []language.Tag{
	language.English,
	language.SimplifiedChinese,
}

var matcher = language.NewMatcher(supported)

// Global 返回全局 i18n 实例
// Global returns the global i18n instance
func Global() *I18n {
	globalMu.RLock()
	g := global
	globalMu.RUnlock()
	if g != nil {
		return g
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = New("")
	}
	return global
}

// Init 初始化全局 i18n 实例
// Init initializes the global i18n instance
func Init(locale string) *I18n {
	i := New(locale)
	globalMu.Lock()
	global = i
	globalMu.Unlock()
	return i
}

// T 全局翻译快捷函数
// T is a global translation shortcut
func T(key string, args ...any) string {
	return Global().T(key, args...)
}

// New 创建 i18n 实例
// New creates an i18n instance
func New(locale string) *I18n {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DetectLocale()
	}
	locale = normalizeLocale(locale)

	i := &I18n{
		locale:   locale,
		messages: make(map[string]string, len(EnMessages)),
	}

	// 先加载英文作为 fallback / Load English as fallback first
	for k, v := range EnMessages {
		i.messages[k] = v
	}
	if locale == "zh-CN" {
		for k, v := range ZhCNMessages {
			i.messages[k] = v
		}
	}
	return i
}

// T 翻译函数 / Translation function
func (i *I18n) T(key string, args ...any) string {
	i.mu.RLock()
	tmpl, ok := i.messages[key]
	i.mu.RUnlock()

	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Locale 返回当前 locale
// Locale returns current locale
func (i *I18n) Locale() string {
	return i.locale
}

// DetectLocale 从环境变量检测 locale
// DetectLocale auto-detects locale from environment
func DetectLocale() string {
	for _, env := range []string{"FOCUSDESK_LANG", "LC_ALL", "LC_MESSAGES", "LANG"} {
		v := strings.TrimSpace(os.Getenv(env))
		if v == "" {
			continue
		}
		return normalizeLocale(v)
	}
	return "en"
}

// normalizeLocale 将 POSIX/BCP47 写法匹配到支持的语言
// normalizeLocale maps POSIX or BCP 47 spellings onto a supported locale
func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	// 去掉 .UTF-8 和 @modifier 后缀 / Drop .UTF-8 and @modifier suffixes
	if idx := strings.IndexAny(s, ".@"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" || s == "C" || s == "POSIX" {
		return "en"
	}

	tag, err := language.Parse(s)
	if err != nil {
		return "en"
	}
	// 繁体也使用中文目录 / Any Chinese variant uses the Chinese catalog
	if base, _ := tag.Base(); base.String() == "zh" {
		return "zh-CN"
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "en"
	}
	if supported[idx] == language.SimplifiedChinese {
		return "zh-CN"
	}
	return "en"
}
