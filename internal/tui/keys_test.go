package tui

import (
	"strings"
	"testing"

	"focusdesk/internal/i18n"

	"github.com/charmbracelet/bubbles/key"
)

// helpDocKeys 帮助文档表格第一列的按键 / Keys listed in the help table's first column
func helpDocKeys(doc string) map[string]bool {
	keys := map[string]bool{}
	for _, line := range strings.Split(doc, "\n") {
		if !strings.HasPrefix(line, "| ") {
			continue
		}
		cells := strings.Split(line, "|")
		for _, k := range strings.Split(strings.TrimSpace(cells[1]), " / ") {
			keys[k] = true
		}
	}
	return keys
}

func TestHelpDocCoversBindings(t *testing.T) {
	for _, locale := range []string{"en", "zh-CN"} {
		loc := i18n.New(locale)
		km := DefaultKeyMap(loc)
		documented := helpDocKeys(loc.T("repl.help_doc"))

		bindings := []key.Binding{
			km.Preset, km.Toggle, km.Reset, km.VolumeUp, km.VolumeDown,
			km.Noise, km.NoiseKind, km.NextBg, km.PrevBg, km.Upload,
			km.SwitchPanel, km.Add, km.Done, km.Delete, km.Filter,
			km.Clear, km.Quote, km.Help, km.Quit,
		}
		for _, b := range bindings {
			h := b.Help()
			if h.Key == "" || h.Desc == "" {
				t.Errorf("%s: binding %v has no help", locale, b.Keys())
				continue
			}
			if !documented[h.Key] {
				t.Errorf("%s: help doc is missing %q (%s)", locale, h.Key, h.Desc)
			}
		}
	}
}

func TestPresetBindingMatchesHelp(t *testing.T) {
	km := DefaultKeyMap(i18n.New("en"))
	keys := km.Preset.Keys()
	if len(keys) != 9 || keys[0] != "1" || keys[8] != "9" {
		t.Fatalf("preset keys=%v", keys)
	}
	if got := km.Preset.Help().Key; got != "1-9" {
		t.Fatalf("preset help=%q, want 1-9", got)
	}
}
