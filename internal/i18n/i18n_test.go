package i18n

import (
	"sync"
	"testing"
)

func TestNew_English(t *testing.T) {
	i := New("en")
	if i.Locale() != "en" {
		t.Fatalf("Locale()=%q, want en", i.Locale())
	}
	if got := i.T("panel.timer"); got != "Timer" {
		t.Fatalf("T(panel.timer)=%q, want Timer", got)
	}
}

func TestNew_Chinese(t *testing.T) {
	i := New("zh-CN")
	if i.Locale() != "zh-CN" {
		t.Fatalf("Locale()=%q, want zh-CN", i.Locale())
	}
	if got := i.T("panel.todo"); got != "待办" {
		t.Fatalf("T(panel.todo)=%q, want 待办", got)
	}
	// 缺失的中文条目回退英文 / Missing Chinese entries fall back to English
	if got := i.T("repl.help_doc"); got != EnMessages["repl.help_doc"] {
		t.Fatal("missing zh entry should fall back to English")
	}
}

func TestT_WithArgs(t *testing.T) {
	i := New("en")
	if got := i.T("todo.remaining", 3); got != "3 remaining" {
		t.Fatalf("T with args=%q", got)
	}
}

func TestT_MissingKey(t *testing.T) {
	i := New("en")
	if got := i.T("nonexistent.key"); got != "nonexistent.key" {
		t.Fatalf("T missing key=%q, want key itself", got)
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en_US.UTF-8", "en"},
		{"en-GB", "en"},
		{"zh_CN.UTF-8", "zh-CN"},
		{"zh-Hans", "zh-CN"},
		{"zh_TW", "zh-CN"},
		{"C", "en"},
		{"", "en"},
		{"fr_FR", "en"},
		{"not a locale!", "en"},
	}
	for _, tt := range tests {
		if got := normalizeLocale(tt.input); got != tt.expected {
			t.Errorf("normalizeLocale(%q)=%q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDetectLocale(t *testing.T) {
	t.Setenv("FOCUSDESK_LANG", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "zh_CN.UTF-8")
	if got := DetectLocale(); got != "zh-CN" {
		t.Fatalf("DetectLocale()=%q", got)
	}
	t.Setenv("FOCUSDESK_LANG", "en")
	if got := DetectLocale(); got != "en" {
		t.Fatalf("FOCUSDESK_LANG should win, got %q", got)
	}
}

func TestGlobal(t *testing.T) {
	g := Global()
	if g == nil {
		t.Fatal("Global() should not be nil")
	}
	if g2 := Global(); g != g2 {
		t.Fatal("Global() should return same instance")
	}
}

func TestInitAndGlobalConcurrently(t *testing.T) {
	t.Cleanup(func() { Init("en") })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		locale := "en"
		if i%2 == 1 {
			locale = "zh-CN"
		}
		go func() {
			defer wg.Done()
			Init(locale)
		}()
		go func() {
			defer wg.Done()
			if g := Global(); g == nil || g.T("panel.timer") == "" {
				t.Error("Global() returned an unusable instance")
			}
		}()
	}
	wg.Wait()

	want := Init("zh-CN")
	if got := Global(); got != want {
		t.Fatal("Global() should return the last Init instance")
	}
	if got := T("panel.todo"); got != "待办" {
		t.Fatalf("T(panel.todo)=%q after Init(zh-CN)", got)
	}
}
