package tui

import (
	"focusdesk/internal/i18n"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap 定义全局快捷键绑定
// KeyMap defines global keybindings
type KeyMap struct {
	Preset      key.Binding
	Toggle      key.Binding
	Reset       key.Binding
	VolumeUp    key.Binding
	VolumeDown  key.Binding
	Noise       key.Binding
	NoiseKind   key.Binding
	NextBg      key.Binding
	PrevBg      key.Binding
	Upload      key.Binding
	SwitchPanel key.Binding
	PrevPanel   key.Binding
	Add         key.Binding
	Done        key.Binding
	Delete      key.Binding
	Filter      key.Binding
	Clear       key.Binding
	Quote       key.Binding
	Up          key.Binding
	Down        key.Binding
	Select      key.Binding
	Cancel      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap 默认快捷键
// DefaultKeyMap returns default keybindings
func DefaultKeyMap(locale *i18n.I18n) KeyMap {
	t := locale.T
	return KeyMap{
		Preset: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", t("keys.preset")),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", t("keys.toggle")),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", t("keys.reset")),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", t("keys.volume_up")),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", t("keys.volume_dn")),
		),
		Noise: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", t("keys.noise")),
		),
		NoiseKind: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", t("keys.noise_kind")),
		),
		NextBg: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", t("keys.bg_next")),
		),
		PrevBg: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", t("keys.bg_prev")),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", t("keys.upload")),
		),
		SwitchPanel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", t("keys.tab")),
		),
		PrevPanel: key.NewBinding(
			key.WithKeys("shift+tab"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", t("keys.add")),
		),
		Done: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", t("keys.done")),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", t("keys.delete")),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", t("keys.filter")),
		),
		Clear: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", t("keys.clear")),
		),
		Quote: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", t("keys.quote")),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", t("keys.help")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", t("keys.quit")),
		),
	}
}

// ShortHelp 状态栏显示的快捷键 / Bindings shown in the short help line
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Preset, k.Noise, k.SwitchPanel, k.Help, k.Quit}
}

// FullHelp 帮助面板中的快捷键 / Bindings shown on the help panel
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Preset, k.Toggle, k.Reset, k.Quote},
		{k.VolumeUp, k.VolumeDown, k.Noise, k.NoiseKind},
		{k.NextBg, k.PrevBg, k.Upload, k.Select},
		{k.Add, k.Done, k.Delete, k.Filter, k.Clear},
		{k.SwitchPanel, k.Help, k.Quit},
	}
}
