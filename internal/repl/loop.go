package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"focusdesk/internal/bootstrap"
	"focusdesk/internal/i18n"
	"focusdesk/internal/timer"
	"focusdesk/internal/todo"
)

const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[90m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBold   = "\x1b[1m"
)

// Loop 持有 REPL 状态 / Loop holds REPL state
type Loop struct {
	*bootstrap.BuildResult
	Version string

	in     LineInput
	out    io.Writer
	locale *i18n.I18n
	color  bool
	filter todo.Filter
	// after 驱动计时器的时间源；测试可替换 / Wait source for the timer, replaceable in tests
	after timer.AfterFunc
}

// NewLoop 基于构建结果创建 REPL / NewLoop builds a REPL loop from a BuildResult
func NewLoop(res *bootstrap.BuildResult, in LineInput) *Loop {
	_, isReadline := in.(*readlineInput)
	locale := res.Locale
	if locale == nil {
		locale = i18n.Global()
	}
	return &Loop{
		BuildResult: res,
		Version:     "dev",
		in:          in,
		out:         in.Stdout(),
		locale:      locale,
		color:       isReadline && useColor(),
		after:       time.After,
	}
}

// Run 读取并执行命令直到 /quit、EOF 或 ctx 结束
// Run reads and executes commands until /quit, EOF or ctx is done. The timer
// ticks in the background while the prompt waits for input.
func (l *Loop) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() { _ = l.Timer.Run(runCtx, l.after) }()

	l.OnComplete(func(c timer.Config) {
		if runCtx.Err() != nil {
			return
		}
		l.printColored(ansiYellow+ansiBold, "\n"+l.locale.T("timer.complete", c.Label))
	})

	fmt.Fprintln(l.out, l.locale.T("repl.welcome", l.Version))
	if l.StartupErr != nil {
		l.printColored(ansiRed, l.locale.T("error.storage", l.StartupErr))
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := l.in.ReadLine(l.prompt())
		if errors.Is(err, readline.ErrInterrupt) {
			if strings.TrimSpace(line) == "" {
				fmt.Fprintln(l.out, l.locale.T("repl.bye"))
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(l.out, l.locale.T("repl.bye"))
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if l.Execute(ctx, line) {
			fmt.Fprintln(l.out, l.locale.T("repl.bye"))
			return nil
		}
	}
}

// prompt 形如 "[29:59 ▶ Focus · 2 todo]> " / Renders the status prompt
func (l *Loop) prompt() string {
	snap := l.Timer.Snapshot()
	state := "⏸"
	if snap.Running {
		state = "▶"
	}
	text := fmt.Sprintf("[%s %s %s · %s]> ", snap.Display, state, snap.Config.Label,
		l.locale.T("todo.remaining", l.Todos.Remaining()))
	if !l.color {
		return text
	}
	if snap.Running {
		return ansiGreen + text + ansiReset
	}
	return ansiDim + text + ansiReset
}

func (l *Loop) printColored(code, msg string) {
	if l.color {
		fmt.Fprintf(l.out, "%s%s%s\n", code, msg, ansiReset)
		return
	}
	fmt.Fprintln(l.out, msg)
}

func useColor() bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("FOCUSDESK_NO_COLOR")) != "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) != "dumb"
}
