package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// LineInput 行输入接口 / Reads one line per prompt
type LineInput interface {
	ReadLine(prompt string) (string, error)
	// Stdout 异步输出应写到这里，避免打乱提示符
	// Stdout is where asynchronous output goes so it does not garble the prompt
	Stdout() io.Writer
	Close() error
}

type basicLineInput struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewBasicLineInput 非终端输入（管道、测试）/ Plain input for pipes and tests
func NewBasicLineInput(in io.Reader, out io.Writer) LineInput {
	return &basicLineInput{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (b *basicLineInput) ReadLine(prompt string) (string, error) {
	if b.out != nil {
		fmt.Fprint(b.out, prompt)
	}
	line, err := b.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (b *basicLineInput) Stdout() io.Writer { return b.out }

func (b *basicLineInput) Close() error { return nil }

type readlineInput struct {
	instance *readline.Instance
}

func newReadlineInput(historyPath string) (*readlineInput, error) {
	if historyPath != "" {
		if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	instance, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyPath,
		HistorySearchFold: true,
		AutoComplete:      completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "/quit",
	})
	if err != nil {
		return nil, err
	}
	return &readlineInput{instance: instance}, nil
}

func (r *readlineInput) ReadLine(prompt string) (string, error) {
	r.instance.SetPrompt(prompt)
	return r.instance.Readline()
}

func (r *readlineInput) Stdout() io.Writer { return r.instance.Stdout() }

func (r *readlineInput) Close() error {
	if r == nil || r.instance == nil {
		return nil
	}
	return r.instance.Close()
}

// NewLineInput 终端下使用 readline，否则回退到普通输入
// NewLineInput uses readline on a terminal and falls back to plain input otherwise
func NewLineInput(historyPath string) (LineInput, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return NewBasicLineInput(os.Stdin, os.Stdout), nil
	}
	readlineReader, err := newReadlineInput(historyPath)
	if err == nil {
		return readlineReader, nil
	}
	return NewBasicLineInput(os.Stdin, os.Stdout), err
}

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(commands))
	for _, c := range commands {
		switch c.name {
		case "/todo":
			items = append(items, readline.PcItem(c.name,
				readline.PcItem("add"),
				readline.PcItem("toggle"),
				readline.PcItem("rm"),
				readline.PcItem("clear"),
				readline.PcItem("list"),
			))
		case "/noise":
			items = append(items, readline.PcItem(c.name,
				readline.PcItem("white"),
				readline.PcItem("brown"),
			))
		default:
			items = append(items, readline.PcItem(c.name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}
