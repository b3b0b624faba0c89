package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Options 日志选项 / Logger options
type Options struct {
	Dir   string
	Level string
	MaxMB int
}

// Logger 带关闭函数的日志器
// Logger is an hclog.Logger bound to its log file
type Logger struct {
	hclog.Logger
	file *os.File
}

// Open 在 Dir/focusdesk.log 打开日志；超过 MaxMB 时截断
// Open writes to Dir/focusdesk.log, truncating it once it grows past MaxMB.
// The TUI owns stdout, so logs never go to the terminal.
func Open(opts Options) (*Logger, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return Discard(), nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, "focusdesk.log")

	flags := os.O_APPEND | os.O_CREATE | os.O_WRONLY
	if info, err := os.Stat(path); err == nil && opts.MaxMB > 0 && info.Size() > int64(opts.MaxMB)<<20 {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &Logger{Logger: newLogger(f, opts.Level), file: f}, nil
}

// Discard 丢弃所有输出 / Discard drops everything
func Discard() *Logger {
	return &Logger{Logger: hclog.NewNullLogger()}
}

// Close 关闭日志文件 / Close the log file
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

func newLogger(w io.Writer, level string) hclog.Logger {
	lvl := hclog.LevelFromString(strings.TrimSpace(level))
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "focusdesk",
		Level:  lvl,
		Output: w,
	})
}
