package repl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"focusdesk/internal/ambient"
	"focusdesk/internal/background"
	"focusdesk/internal/timer"
	"focusdesk/internal/todo"
)

const todoTextWidth = 60

type command struct {
	name  string
	usage string
	help  string
}

var commands = []command{
	{"/start", "/start", "start the countdown"},
	{"/pause", "/pause", "pause the countdown"},
	{"/toggle", "/toggle", "start or pause"},
	{"/reset", "/reset", "restore the full duration"},
	{"/preset", "/preset <n>", "switch to preset n"},
	{"/set", "/set <minutes> [label]", "custom duration"},
	{"/status", "/status", "show timer, noise and background"},
	{"/todo", "/todo [list|add|toggle|rm|clear|filter] ...", "manage the to-do list"},
	{"/quote", "/quote [next|random]", "show a quote"},
	{"/noise", "/noise [on|off|white|brown]", "ambient noise"},
	{"/vol", "/vol <0-100>", "noise volume"},
	{"/bg", "/bg [list|next|prev|add <path>|rm <id>|<id>]", "backgrounds"},
	{"/help", "/help", "show this list"},
	{"/quit", "/quit", "leave"},
}

// Execute 执行一行输入；返回 true 表示退出
// Execute runs one input line and reports whether the loop should exit.
// A line without a leading slash is added as a to-do.
func (l *Loop) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		l.addTodo(ctx, line)
		return false
	}
	parts := strings.Fields(line)
	args := parts[1:]
	switch parts[0] {
	case "/quit", "/exit", "/q":
		return true
	case "/help":
		l.printHelp()
	case "/start":
		l.Timer.Start()
		l.printTimer()
	case "/pause":
		l.Timer.Pause()
		l.printTimer()
	case "/toggle":
		l.Timer.Toggle()
		l.printTimer()
	case "/reset":
		l.Timer.Reset()
		l.printTimer()
	case "/preset":
		l.preset(args)
	case "/set":
		l.setDuration(args)
	case "/status":
		l.printStatus(ctx)
	case "/todo", "/todos":
		l.todo(ctx, args)
	case "/quote":
		l.quote(args)
	case "/noise":
		l.noise(args)
	case "/vol", "/volume":
		l.volume(args)
	case "/bg":
		l.background(ctx, args)
	default:
		fmt.Fprintln(l.out, l.locale.T("repl.unknown", parts[0]))
	}
	return false
}

func (l *Loop) printHelp() {
	for _, c := range commands {
		fmt.Fprintf(l.out, "  %-48s %s\n", c.usage, c.help)
	}
}

func (l *Loop) usage(name string) {
	for _, c := range commands {
		if c.name == name {
			fmt.Fprintln(l.out, l.locale.T("repl.usage", c.usage))
			return
		}
	}
}

func (l *Loop) fail(err error) {
	switch {
	case errors.Is(err, todo.ErrEmptyText),
		errors.Is(err, todo.ErrNotFound),
		errors.Is(err, background.ErrNotImage),
		errors.Is(err, background.ErrUnknown),
		errors.Is(err, timer.ErrInvalidDuration),
		errors.Is(err, ambient.ErrDisabled):
		l.printColored(ansiYellow, l.locale.T("error.generic", err))
	default:
		l.Logger.Error("repl command failed", "error", err)
		l.printColored(ansiRed, l.locale.T("error.storage", err))
	}
}

// --- timer ---

func (l *Loop) printTimer() {
	snap := l.Timer.Snapshot()
	state := l.locale.T("timer.paused")
	if snap.Running {
		state = l.locale.T("timer.running")
	}
	fmt.Fprintf(l.out, "%s  %s  %s\n", snap.Display, snap.Config.Label, state)
}

func (l *Loop) preset(args []string) {
	if len(args) != 1 {
		l.usage("/preset")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(l.Presets) {
		l.usage("/preset")
		for i, p := range l.Presets {
			fmt.Fprintf(l.out, "  %d  %s\n", i+1, l.locale.T("timer.preset", p.Seconds/60, p.Label))
		}
		return
	}
	p := l.Presets[n-1]
	if err := l.Timer.SetDuration(p.Seconds, p.Label); err != nil {
		l.fail(err)
		return
	}
	fmt.Fprintln(l.out, l.locale.T("timer.set", timer.Format(p.Seconds), p.Label))
}

func (l *Loop) setDuration(args []string) {
	if len(args) == 0 {
		l.usage("/set")
		return
	}
	minutes, err := strconv.ParseFloat(args[0], 64)
	if err != nil || minutes <= 0 {
		fmt.Fprintln(l.out, l.locale.T("timer.invalid"))
		return
	}
	label := strings.TrimSpace(strings.Join(args[1:], " "))
	if label == "" {
		label = "Focus"
	}
	seconds := int(minutes * 60)
	if err := l.Timer.SetDuration(seconds, label); err != nil {
		l.fail(err)
		return
	}
	fmt.Fprintln(l.out, l.locale.T("timer.set", timer.Format(seconds), label))
}

func (l *Loop) printStatus(ctx context.Context) {
	l.printTimer()
	noise := l.locale.T("audio.off")
	if l.Player.Playing() {
		noise = l.locale.T("audio.on")
	}
	fmt.Fprintf(l.out, "%s  %s  %s\n", noise, l.locale.T("audio.kind", l.Player.Kind()),
		l.locale.T("audio.volume", int(l.Player.Volume()*100+0.5)))
	if bg, err := l.Backgrounds.Selected(ctx); err == nil {
		fmt.Fprintln(l.out, l.locale.T("bg.current", bg.Name))
	} else {
		l.fail(err)
	}
	fmt.Fprintln(l.out, l.locale.T("todo.remaining", l.Todos.Remaining()))
}

// --- todos ---

func (l *Loop) addTodo(ctx context.Context, text string) {
	item, err := l.Todos.Add(ctx, text)
	if err != nil {
		l.fail(err)
		return
	}
	fmt.Fprintln(l.out, l.locale.T("todo.added", item.Text))
}

func (l *Loop) todo(ctx context.Context, args []string) {
	if len(args) == 0 {
		l.listTodos()
		return
	}
	rest := strings.TrimSpace(strings.Join(args[1:], " "))
	switch args[0] {
	case "list", "ls":
		l.listTodos()
	case "add":
		l.addTodo(ctx, rest)
	case "toggle", "done", "x":
		id, ok := l.todoID(rest)
		if !ok {
			return
		}
		item, err := l.Todos.Toggle(ctx, id)
		if err != nil {
			l.fail(err)
			return
		}
		fmt.Fprintln(l.out, l.locale.T("todo.toggled", item.Text))
	case "rm", "delete", "del":
		id, ok := l.todoID(rest)
		if !ok {
			return
		}
		if err := l.Todos.Delete(ctx, id); err != nil {
			l.fail(err)
			return
		}
		fmt.Fprintln(l.out, l.locale.T("todo.deleted", id))
	case "clear":
		n, err := l.Todos.ClearCompleted(ctx)
		if err != nil {
			l.fail(err)
			return
		}
		fmt.Fprintln(l.out, l.locale.T("todo.cleared", n))
	case "filter":
		l.filter = l.filter.Next()
		fmt.Fprintln(l.out, l.locale.T("todo.filter", l.filter))
		l.listTodos()
	default:
		l.usage("/todo")
	}
}

func (l *Loop) todoID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil {
		l.usage("/todo")
		return 0, false
	}
	return id, true
}

func (l *Loop) listTodos() {
	items := l.Todos.Items(l.filter)
	if len(items) == 0 {
		fmt.Fprintln(l.out, l.locale.T("todo.empty"))
		return
	}
	for _, it := range items {
		fmt.Fprintf(l.out, "  %s #%-3d %s\n", it.Marker(), it.ID, runewidth.Truncate(it.Text, todoTextWidth, "…"))
	}
	fmt.Fprintln(l.out, l.locale.T("todo.remaining", l.Todos.Remaining()))
}

// --- quote / audio / background ---

func (l *Loop) quote(args []string) {
	q := l.Quotes.Current()
	if len(args) > 0 {
		switch args[0] {
		case "next":
			q = l.Quotes.Next()
		case "random":
			q = l.Quotes.Random()
		default:
			l.usage("/quote")
			return
		}
	}
	fmt.Fprintln(l.out, q.String())
}

func (l *Loop) noise(args []string) {
	if len(args) == 0 {
		playing, err := l.Player.Toggle()
		if err != nil {
			l.fail(err)
			return
		}
		l.printNoise(playing)
		return
	}
	switch args[0] {
	case "on":
		if err := l.Player.Start(); err != nil {
			l.fail(err)
			return
		}
		l.printNoise(true)
	case "off":
		l.Player.Stop()
		l.printNoise(false)
	case string(ambient.KindWhite), string(ambient.KindBrown):
		if err := l.Player.SetKind(ambient.Kind(args[0])); err != nil {
			l.fail(err)
			return
		}
		fmt.Fprintln(l.out, l.locale.T("audio.kind", args[0]))
	default:
		l.usage("/noise")
	}
}

func (l *Loop) printNoise(playing bool) {
	if playing {
		fmt.Fprintln(l.out, l.locale.T("audio.on"))
		return
	}
	fmt.Fprintln(l.out, l.locale.T("audio.off"))
}

func (l *Loop) volume(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(l.out, l.locale.T("audio.volume", int(l.Player.Volume()*100+0.5)))
		return
	}
	pct, err := strconv.Atoi(strings.TrimSuffix(args[0], "%"))
	if err != nil {
		l.usage("/vol")
		return
	}
	v := l.Player.SetVolume(float64(pct) / 100)
	fmt.Fprintln(l.out, l.locale.T("audio.volume", int(v*100+0.5)))
}

func (l *Loop) background(ctx context.Context, args []string) {
	if len(args) == 0 {
		bg, err := l.Backgrounds.Selected(ctx)
		if err != nil {
			l.fail(err)
			return
		}
		fmt.Fprintln(l.out, l.locale.T("bg.current", bg.Name))
		return
	}
	var (
		bg  background.Background
		err error
	)
	switch args[0] {
	case "list", "ls":
		l.listBackgrounds(ctx)
		return
	case "next":
		bg, err = l.Backgrounds.Cycle(ctx, 1)
	case "prev":
		bg, err = l.Backgrounds.Cycle(ctx, -1)
	case "add", "upload":
		if len(args) < 2 {
			l.usage("/bg")
			return
		}
		bg, err = l.Backgrounds.Upload(ctx, strings.Join(args[1:], " "))
		if err == nil {
			fmt.Fprintln(l.out, l.locale.T("bg.uploaded", bg.Name))
			return
		}
	case "rm", "remove":
		if len(args) < 2 {
			l.usage("/bg")
			return
		}
		id := args[1]
		if !strings.HasPrefix(id, "upload:") {
			id = background.UploadID(id)
		}
		if err = l.Backgrounds.Remove(ctx, id); err == nil {
			fmt.Fprintln(l.out, l.locale.T("bg.removed", args[1]))
			return
		}
	default:
		bg, err = l.Backgrounds.Select(ctx, args[0])
	}
	if err != nil {
		l.fail(err)
		return
	}
	fmt.Fprintln(l.out, l.locale.T("bg.current", bg.Name))
}

func (l *Loop) listBackgrounds(ctx context.Context) {
	all, err := l.Backgrounds.List(ctx)
	if err != nil {
		l.fail(err)
	}
	current, _ := l.Backgrounds.Selected(ctx)
	for _, bg := range all {
		mark := " "
		if bg.ID == current.ID {
			mark = "*"
		}
		kind := l.locale.T("bg.preset")
		if bg.Kind == background.KindUpload {
			kind = l.locale.T("bg.upload")
		}
		fmt.Fprintf(l.out, " %s %-44s %-20s %s\n", mark, bg.ID, runewidth.Truncate(bg.Name, 20, "…"), kind)
	}
}
