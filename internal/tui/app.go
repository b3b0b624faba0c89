package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"focusdesk/internal/ambient"
	"focusdesk/internal/background"
	"focusdesk/internal/i18n"
	"focusdesk/internal/quotes"
	"focusdesk/internal/timer"
	"focusdesk/internal/todo"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-hclog"
)

// PanelID 面板标识
// PanelID identifies a panel
type PanelID int

const (
	PanelTimer PanelID = iota
	PanelTodo
	PanelBackgrounds
	PanelHelp
	panelCount
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeAddTodo
	modeUpload
)

const volumeStep = 0.1

// --- Tea Messages ---

// TickMsg 计时器一秒 tick，携带代数
// TickMsg is a one second timer tick carrying the generation that scheduled it
type TickMsg struct{ Gen uint64 }

// QuoteTickMsg 语录轮换
// QuoteTickMsg rotates the quote
type QuoteTickMsg struct{}

// QuotesFetchedMsg 远端语录结果
// QuotesFetchedMsg carries the result of a remote quote fetch
type QuotesFetchedMsg struct {
	Quotes []quotes.Quote
	Err    error
}

// NoticeMsg 状态栏提示
// NoticeMsg shows a transient line in the status bar
type NoticeMsg struct{ Text string }

// Sound 环境声控制 / Ambient sound controls used by the UI
type Sound interface {
	Toggle() (bool, error)
	SetVolume(v float64) float64
	Volume() float64
	Playing() bool
	Kind() ambient.Kind
	SetKind(kind ambient.Kind) error
}

// Deps TUI 依赖
// Deps are the objects the UI drives
type Deps struct {
	Timer         *timer.Timer
	Presets       []timer.Config
	Todos         *todo.List
	Backgrounds   *background.Picker
	Quotes        *quotes.Rotator
	Sound         Sound
	QuoteInterval time.Duration
	// FetchQuotes 可选，启动时异步拉取 / Optional, run once at startup
	FetchQuotes func(ctx context.Context) ([]quotes.Quote, error)
	Locale      *i18n.I18n
	Logger      hclog.Logger
	// StartupErr 启动时即显示的存储错误 / Storage failure shown as soon as the UI opens
	StartupErr error
}

// App Bubble Tea 主 Model
// App is the main Bubble Tea model
type App struct {
	// 布局 / Layout
	width  int
	height int

	// 面板 / Panels
	activePanel PanelID
	helpView    viewport.Model

	// 输入 / Input
	input textinput.Model
	mode  inputMode

	// 领域对象 / Domain objects
	ctx      context.Context
	timer    *timer.Timer
	presets  []timer.Config
	todos    *todo.List
	picker   *background.Picker
	rotator  *quotes.Rotator
	sound    Sound
	fetch    func(ctx context.Context) ([]quotes.Quote, error)
	interval time.Duration

	// 视图状态 / View state
	filter    todo.Filter
	todoIdx   int
	bgIdx     int
	bgs       []background.Background
	bg        background.Background
	quote     quotes.Quote
	notice    string
	alert     string
	alertHead string

	// 配置 / Config
	theme  Theme
	keys   KeyMap
	help   help.Model
	locale *i18n.I18n
	logger hclog.Logger
}

// NewApp 创建 TUI 应用
// NewApp creates a new TUI application
func NewApp(ctx context.Context, deps Deps) App {
	if ctx == nil {
		ctx = context.Background()
	}
	if deps.Locale == nil {
		deps.Locale = i18n.Global()
	}
	if deps.Logger == nil {
		deps.Logger = hclog.NewNullLogger()
	}
	if deps.Quotes == nil {
		deps.Quotes = quotes.NewRotator(nil, 0)
	}

	ti := textinput.New()
	ti.CharLimit = 512

	a := App{
		activePanel: PanelTimer,
		input:       ti,
		ctx:         ctx,
		timer:       deps.Timer,
		presets:     deps.Presets,
		todos:       deps.Todos,
		picker:      deps.Backgrounds,
		rotator:     deps.Quotes,
		sound:       deps.Sound,
		fetch:       deps.FetchQuotes,
		interval:    deps.QuoteInterval,
		theme:       DarkTheme(),
		keys:        DefaultKeyMap(deps.Locale),
		help:        help.New(),
		locale:      deps.Locale,
		logger:      deps.Logger.Named("tui"),
	}
	a.quote = a.rotator.Current()
	if deps.StartupErr != nil {
		a.fail(deps.StartupErr)
	}
	a.refreshBackgrounds()
	return a
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.quoteTick()}
	if a.fetch != nil {
		fetch, ctx := a.fetch, a.ctx
		cmds = append(cmds, func() tea.Msg {
			q, err := fetch(ctx)
			return QuotesFetchedMsg{Quotes: q, Err: err}
		})
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		// 阻塞提示必须先关闭 / A pending alert swallows keys until dismissed
		if a.alert != "" {
			if key.Matches(msg, a.keys.Select, a.keys.Cancel) {
				a.alert, a.alertHead = "", ""
			}
			return a, nil
		}
		if a.mode != modeNormal {
			return a.updateInput(msg)
		}
		return a.updateKeys(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case TickMsg:
		res := a.timer.Tick(msg.Gen)
		if !res.Applied {
			return a, nil
		}
		if res.Completed {
			snap := a.timer.Snapshot()
			a.showAlert(a.locale.T("panel.timer"), a.locale.T("timer.complete", snap.Config.Label))
			return a, nil
		}
		return a, tick(msg.Gen)

	case QuoteTickMsg:
		a.quote = a.rotator.Next()
		return a, a.quoteTick()

	case QuotesFetchedMsg:
		if msg.Err != nil {
			a.logger.Warn("remote quotes unavailable, keeping built-in list", "error", msg.Err)
			return a, nil
		}
		if len(msg.Quotes) > 0 {
			a.rotator.Replace(msg.Quotes)
			a.quote = a.rotator.Current()
			a.notice = a.locale.T("quote.fetched", len(msg.Quotes))
		}
		return a, nil

	case NoticeMsg:
		a.notice = msg.Text
		return a, nil
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Preset):
		a.choosePreset(int(msg.String()[0] - '1'))

	case key.Matches(msg, a.keys.Toggle):
		if gen, started := a.timer.Toggle(); started {
			return a, tick(gen)
		}

	case key.Matches(msg, a.keys.Reset):
		a.timer.Reset()

	case key.Matches(msg, a.keys.VolumeUp):
		a.changeVolume(volumeStep)

	case key.Matches(msg, a.keys.VolumeDown):
		a.changeVolume(-volumeStep)

	case key.Matches(msg, a.keys.Noise):
		a.toggleNoise()

	case key.Matches(msg, a.keys.NoiseKind):
		a.switchNoiseKind()

	case key.Matches(msg, a.keys.NextBg):
		a.cycleBackground(1)

	case key.Matches(msg, a.keys.PrevBg):
		a.cycleBackground(-1)

	case key.Matches(msg, a.keys.Upload):
		a.activePanel = PanelBackgrounds
		return a, a.beginInput(modeUpload, a.locale.T("bg.upload_placeholder"))

	case key.Matches(msg, a.keys.SwitchPanel):
		a.activePanel = (a.activePanel + 1) % panelCount

	case key.Matches(msg, a.keys.PrevPanel):
		a.activePanel = (a.activePanel + panelCount - 1) % panelCount

	case key.Matches(msg, a.keys.Help):
		a.activePanel = PanelHelp

	case key.Matches(msg, a.keys.Add):
		a.activePanel = PanelTodo
		return a, a.beginInput(modeAddTodo, a.locale.T("todo.placeholder"))

	case key.Matches(msg, a.keys.Filter):
		a.filter = a.filter.Next()
		a.todoIdx = 0
		a.notice = a.locale.T("todo.filter", a.filter)

	case key.Matches(msg, a.keys.Quote):
		a.quote = a.rotator.Next()

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)

	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)

	default:
		return a.updatePanelKeys(msg)
	}
	return a, nil
}

// updatePanelKeys 仅在特定面板生效的按键
// updatePanelKeys handles keys that act on the active panel
func (a App) updatePanelKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.activePanel {
	case PanelTodo:
		switch {
		case key.Matches(msg, a.keys.Done):
			if item, ok := a.selectedTodo(); ok {
				if got, err := a.todos.Toggle(a.ctx, item.ID); err != nil {
					a.fail(err)
				} else {
					a.notice = a.locale.T("todo.toggled", got.Text)
				}
			}
		case key.Matches(msg, a.keys.Delete):
			if item, ok := a.selectedTodo(); ok {
				if err := a.todos.Delete(a.ctx, item.ID); err != nil {
					a.fail(err)
				} else {
					a.notice = a.locale.T("todo.deleted", item.ID)
					a.clampTodoCursor()
				}
			}
		case key.Matches(msg, a.keys.Clear):
			n, err := a.todos.ClearCompleted(a.ctx)
			if err != nil {
				a.fail(err)
			} else {
				a.notice = a.locale.T("todo.cleared", n)
				a.clampTodoCursor()
			}
		}
	case PanelBackgrounds:
		switch {
		case key.Matches(msg, a.keys.Select):
			if a.bgIdx < len(a.bgs) {
				a.selectBackground(a.bgs[a.bgIdx].ID)
			}
		case key.Matches(msg, a.keys.Delete):
			if a.bgIdx < len(a.bgs) && a.bgs[a.bgIdx].Kind == background.KindUpload {
				target := a.bgs[a.bgIdx]
				if err := a.picker.Remove(a.ctx, target.ID); err != nil {
					a.fail(err)
				} else {
					a.notice = a.locale.T("bg.removed", target.Name)
				}
				a.refreshBackgrounds()
			}
		}
	}
	return a, nil
}

func (a App) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.endInput()
		return a, nil
	case key.Matches(msg, a.keys.Select):
		value := strings.TrimSpace(a.input.Value())
		mode := a.mode
		a.endInput()
		if value == "" {
			return a, nil
		}
		switch mode {
		case modeAddTodo:
			if item, err := a.todos.Add(a.ctx, value); err != nil {
				a.fail(err)
			} else {
				a.notice = a.locale.T("todo.added", item.Text)
				a.todoIdx = 0
			}
		case modeUpload:
			if bg, err := a.picker.Upload(a.ctx, value); err != nil {
				a.fail(err)
			} else {
				a.notice = a.locale.T("bg.uploaded", bg.Name)
				a.refreshBackgrounds()
			}
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	statusHeight := 1
	tabHeight := 1
	inputHeight := 0
	if a.mode != modeNormal {
		inputHeight = 2
	}
	panelHeight := a.height - statusHeight - tabHeight - inputHeight
	if panelHeight < 3 {
		panelHeight = 3
	}

	parts := []string{a.renderTabs()}
	if a.alert != "" {
		parts = append(parts, a.renderAlert(a.width, panelHeight))
	} else {
		parts = append(parts, a.renderActivePanel(a.width, panelHeight))
	}
	if a.mode != modeNormal {
		parts = append(parts, a.theme.InputStyle.Width(a.width).Render(a.input.View()))
	}
	parts = append(parts, a.renderStatusBar(a.width))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// --- 内部方法 / Internal methods ---

func tick(gen uint64) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TickMsg{Gen: gen}
	})
}

func (a App) quoteTick() tea.Cmd {
	if a.interval <= 0 {
		return nil
	}
	return tea.Tick(a.interval, func(time.Time) tea.Msg {
		return QuoteTickMsg{}
	})
}

func (a *App) relayout() {
	a.helpView = viewport.New(a.width, a.height-3)
	a.helpView.SetContent(RenderMarkdown(a.locale.T("repl.help_doc"), a.width-4))
	a.help.Width = a.width
	a.input.Width = a.width - 4
}

func (a *App) beginInput(mode inputMode, placeholder string) tea.Cmd {
	a.mode = mode
	a.input.Placeholder = placeholder
	a.input.SetValue("")
	return a.input.Focus()
}

func (a *App) endInput() {
	a.mode = modeNormal
	a.input.Blur()
	a.input.SetValue("")
}

func (a *App) choosePreset(idx int) {
	if idx < 0 || idx >= len(a.presets) {
		return
	}
	p := a.presets[idx]
	if err := a.timer.SetDuration(p.Seconds, p.Label); err != nil {
		a.fail(err)
		return
	}
	a.notice = a.locale.T("timer.set", timer.Format(p.Seconds), p.Label)
}

func (a *App) changeVolume(delta float64) {
	if a.sound == nil {
		return
	}
	v := a.sound.SetVolume(a.sound.Volume() + delta)
	a.notice = a.locale.T("audio.volume", int(v*100+0.5))
}

func (a *App) toggleNoise() {
	if a.sound == nil {
		a.notice = a.locale.T("audio.disabled")
		return
	}
	playing, err := a.sound.Toggle()
	switch {
	case errors.Is(err, ambient.ErrDisabled):
		a.notice = a.locale.T("audio.disabled")
	case err != nil:
		a.notice = a.locale.T("error.generic", err)
	case playing:
		a.notice = a.locale.T("audio.on")
	default:
		a.notice = a.locale.T("audio.off")
	}
}

func (a *App) switchNoiseKind() {
	if a.sound == nil {
		return
	}
	next := ambient.KindBrown
	if a.sound.Kind() == ambient.KindBrown {
		next = ambient.KindWhite
	}
	if err := a.sound.SetKind(next); err != nil && !errors.Is(err, ambient.ErrDisabled) {
		a.notice = a.locale.T("error.generic", err)
		return
	}
	a.notice = a.locale.T("audio.kind", next)
}

func (a *App) cycleBackground(step int) {
	if a.picker == nil {
		return
	}
	bg, err := a.picker.Cycle(a.ctx, step)
	if err != nil {
		a.fail(err)
		return
	}
	a.bg = bg
	a.notice = a.locale.T("bg.current", bg.Name)
	a.syncBgCursor()
}

func (a *App) selectBackground(id string) {
	bg, err := a.picker.Select(a.ctx, id)
	if err != nil {
		a.fail(err)
		return
	}
	a.bg = bg
	a.notice = a.locale.T("bg.current", bg.Name)
}

func (a *App) refreshBackgrounds() {
	if a.picker == nil {
		a.bg = background.Presets[0]
		return
	}
	all, err := a.picker.List(a.ctx)
	a.bgs = all
	if err != nil {
		a.fail(err)
	}
	bg, err := a.picker.Selected(a.ctx)
	a.bg = bg
	if err != nil {
		a.fail(err)
	}
	a.syncBgCursor()
}

func (a *App) syncBgCursor() {
	for i, bg := range a.bgs {
		if bg.ID == a.bg.ID {
			a.bgIdx = i
			return
		}
	}
	if a.bgIdx >= len(a.bgs) {
		a.bgIdx = 0
	}
}

func (a *App) moveCursor(delta int) {
	switch a.activePanel {
	case PanelTodo:
		a.todoIdx += delta
		a.clampTodoCursor()
	case PanelBackgrounds:
		a.bgIdx += delta
		if a.bgIdx < 0 {
			a.bgIdx = 0
		}
		if a.bgIdx >= len(a.bgs) {
			a.bgIdx = len(a.bgs) - 1
		}
	case PanelHelp:
		if delta < 0 {
			a.helpView.LineUp(1)
		} else {
			a.helpView.LineDown(1)
		}
	}
}

func (a *App) clampTodoCursor() {
	n := len(a.todos.Items(a.filter))
	if a.todoIdx >= n {
		a.todoIdx = n - 1
	}
	if a.todoIdx < 0 {
		a.todoIdx = 0
	}
}

func (a App) selectedTodo() (todo.Item, bool) {
	items := a.todos.Items(a.filter)
	if a.todoIdx < 0 || a.todoIdx >= len(items) {
		return todo.Item{}, false
	}
	return items[a.todoIdx], true
}

// fail 输入错误走状态栏，存储错误弹出阻塞提示
// fail puts input mistakes in the status bar and raises storage failures as a blocking alert
func (a *App) fail(err error) {
	switch {
	case errors.Is(err, todo.ErrEmptyText),
		errors.Is(err, todo.ErrNotFound),
		errors.Is(err, background.ErrNotImage),
		errors.Is(err, background.ErrUnknown),
		errors.Is(err, timer.ErrInvalidDuration),
		errors.Is(err, os.ErrNotExist):
		a.notice = a.locale.T("error.generic", err)
	default:
		a.logger.Error("operation failed", "error", err)
		a.showAlert(a.locale.T("alert.title"), a.locale.T("error.storage", err))
	}
}

func (a *App) showAlert(head, body string) {
	a.alertHead = head
	a.alert = body
}

// --- 渲染方法 / Render methods ---

func (a App) renderTabs() string {
	tabs := []struct {
		id   PanelID
		name string
	}{
		{PanelTimer, a.locale.T("panel.timer")},
		{PanelTodo, a.locale.T("panel.todo")},
		{PanelBackgrounds, a.locale.T("panel.backgrounds")},
		{PanelHelp, a.locale.T("panel.help")},
	}

	var parts []string
	for _, tab := range tabs {
		style := a.theme.InactiveTabStyle
		if tab.id == a.activePanel {
			style = a.theme.ActiveTabStyle
		}
		parts = append(parts, style.Render(tab.name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a App) renderActivePanel(width, height int) string {
	var content string
	switch a.activePanel {
	case PanelTimer:
		content = a.renderTimer(width - 2)
	case PanelTodo:
		content = a.renderTodos()
	case PanelBackgrounds:
		content = a.renderBackgrounds()
	case PanelHelp:
		content = a.helpView.View() + "\n" + a.help.FullHelpView(a.keys.FullHelp())
	}
	return a.theme.Canvas(a.bg.Color, width, height).Render(content)
}

func (a App) renderTimer(width int) string {
	snap := a.timer.Snapshot()
	state := a.locale.T("timer.paused")
	if snap.Running {
		state = a.locale.T("timer.running")
	}

	var presets []string
	for i, p := range a.presets {
		label := fmt.Sprintf("%d) %s", i+1, a.locale.T("timer.preset", p.Seconds/60, p.Label))
		if p == snap.Config {
			label = a.theme.SelectedStyle.Render(label)
		}
		presets = append(presets, label)
	}

	barWidth := width - 8
	if barWidth > 40 {
		barWidth = 40
	}
	lines := []string{
		a.theme.TitleStyle.Render(snap.Config.Label) + "  " + a.theme.MutedStyle.Render(state),
		a.theme.ClockStyle.Render(snap.Display),
		renderBar(progress(snap.Remaining, snap.Config.Seconds), barWidth),
		"",
		strings.Join(presets, "   "),
		"",
		a.renderSoundLine(barWidth),
		"",
		a.theme.QuoteStyle.Render("“" + a.quote.String() + "”"),
	}
	return strings.Join(lines, "\n")
}

func (a App) renderSoundLine(width int) string {
	if a.sound == nil {
		return a.theme.MutedStyle.Render(a.locale.T("audio.disabled"))
	}
	state := a.locale.T("audio.off")
	if a.sound.Playing() {
		state = a.locale.T("audio.on")
	}
	vol := a.sound.Volume()
	return fmt.Sprintf("%s (%s)  %s %s",
		state, a.sound.Kind(), renderBar(vol, width/2), a.locale.T("audio.volume", int(vol*100+0.5)))
}

func (a App) renderTodos() string {
	items := a.todos.Items(a.filter)
	lines := []string{
		a.theme.TitleStyle.Render(a.locale.T("todo.filter", a.filter)) + "  " +
			a.theme.MutedStyle.Render(a.locale.T("todo.remaining", a.todos.Remaining())),
		"",
	}
	if len(items) == 0 {
		lines = append(lines, a.theme.MutedStyle.Render("  "+a.locale.T("todo.empty")))
	}
	for i, item := range items {
		text := item.Text
		if item.Completed {
			text = a.theme.DoneStyle.Render(text)
		}
		line := fmt.Sprintf("%s %s", item.Marker(), text)
		if i == a.todoIdx {
			line = a.theme.SelectedStyle.Render("› ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (a App) renderBackgrounds() string {
	lines := []string{a.theme.TitleStyle.Render(a.locale.T("bg.current", a.bg.Name)), ""}
	for i, bg := range a.bgs {
		kind := a.locale.T("bg.preset")
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(bg.Color)).Render("  ")
		if bg.Kind == background.KindUpload {
			kind = a.locale.T("bg.upload")
			swatch = "🖼"
		}
		line := fmt.Sprintf("%s %s %s", swatch, bg.Name, a.theme.MutedStyle.Render(kind))
		if bg.ID == a.bg.ID {
			line += a.theme.SuccessStyle.Render(" ✓")
		}
		if i == a.bgIdx {
			line = a.theme.SelectedStyle.Render("› ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (a App) renderAlert(width, height int) string {
	body := a.alertHead + "\n\n" + a.alert + "\n\n" + a.locale.T("alert.dismiss")
	box := a.theme.AlertStyle.Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (a App) renderStatusBar(width int) string {
	left := " " + a.notice
	if a.notice == "" {
		left = " " + a.help.ShortHelpView(a.keys.ShortHelp())
	}
	right := a.locale.T("bg.current", a.bg.Name) + "  "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	bar := left + strings.Repeat(" ", gap) + right
	return a.theme.StatusBarStyle.Width(width).Render(bar)
}

// Run 启动 Bubble Tea TUI
// Run starts the Bubble Tea TUI application
func Run(ctx context.Context, deps Deps) error {
	app := NewApp(ctx, deps)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
