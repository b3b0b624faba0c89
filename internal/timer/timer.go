package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidDuration 时长必须为正
// ErrInvalidDuration is returned for non-positive durations
var ErrInvalidDuration = errors.New("timer duration must be positive")

// State 计时器运行状态
// State is the run state of a Timer
type State int

const (
	StatePaused State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	default:
		return "paused"
	}
}

// Config 一次倒计时的配置
// Config describes one countdown: its length and label
type Config struct {
	Seconds int    `json:"seconds"`
	Label   string `json:"label"`
}

// Snapshot 计时器状态快照
// Snapshot is a copy of the timer state safe to render
type Snapshot struct {
	Config    Config `json:"config"`
	Remaining int    `json:"remaining"`
	State     State  `json:"-"`
	Running   bool   `json:"running"`
	Display   string `json:"display"`
}

// TickResult 单次 tick 的处理结果
// TickResult reports what a Tick did
type TickResult struct {
	Applied   bool
	Completed bool
	Remaining int
}

// CompleteFunc 倒计时结束回调
// CompleteFunc is called once per finished countdown
type CompleteFunc func(Config)

// Timer 倒计时状态机
// Timer is the countdown state machine. Every Start hands out a tick
// generation; Pause, Reset and SetDuration retire it so late ticks are dropped.
type Timer struct {
	mu         sync.Mutex
	cfg        Config
	remaining  int
	running    bool
	gen        uint64
	onComplete CompleteFunc
	// started 新一代开始的通知 / Signals Run that a new generation began
	started chan struct{}
}

// New 创建处于暂停状态的计时器
// New creates a paused timer holding cfg
func New(cfg Config) (*Timer, error) {
	if cfg.Seconds <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDuration, cfg.Seconds)
	}
	return &Timer{cfg: cfg, remaining: cfg.Seconds, started: make(chan struct{}, 1)}, nil
}

// OnComplete 设置完成回调
// OnComplete sets the completion callback
func (t *Timer) OnComplete(fn CompleteFunc) {
	t.mu.Lock()
	t.onComplete = fn
	t.mu.Unlock()
}

// SetDuration 替换当前配置并暂停
// SetDuration replaces the config, cancels any tick and leaves the timer paused
func (t *Timer) SetDuration(seconds int, label string) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, seconds)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.cfg = Config{Seconds: seconds, Label: label}
	t.remaining = seconds
	return nil
}

// Start 开始计时；已在运行时为空操作
// Start begins ticking. started is false when the timer was already running.
func (t *Timer) Start() (gen uint64, started bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return t.gen, false
	}
	t.startLocked()
	return t.gen, true
}

// Pause 暂停并保留剩余时间
// Pause cancels the tick and keeps the remaining time
func (t *Timer) Pause() {
	t.mu.Lock()
	t.stopLocked()
	t.mu.Unlock()
}

// Toggle 在开始与暂停之间切换
// Toggle starts a paused timer or pauses a running one
func (t *Timer) Toggle() (gen uint64, started bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.stopLocked()
		return t.gen, false
	}
	t.startLocked()
	return t.gen, true
}

// Reset 暂停并恢复完整时长
// Reset pauses and restores the full duration
func (t *Timer) Reset() {
	t.mu.Lock()
	t.stopLocked()
	t.remaining = t.cfg.Seconds
	t.mu.Unlock()
}

// Tick 处理一次一秒 tick
// Tick applies one tick of generation gen. Ticks from a retired generation
// or arriving while paused are ignored.
func (t *Timer) Tick(gen uint64) TickResult {
	t.mu.Lock()
	if !t.running || gen != t.gen {
		res := TickResult{Remaining: t.remaining}
		t.mu.Unlock()
		return res
	}
	t.remaining--
	if t.remaining > 0 {
		res := TickResult{Applied: true, Remaining: t.remaining}
		t.mu.Unlock()
		return res
	}

	// expired: stop, notify, fold back to a full paused timer
	t.stopLocked()
	t.remaining = t.cfg.Seconds
	cfg := t.cfg
	fn := t.onComplete
	remaining := t.remaining
	t.mu.Unlock()

	if fn != nil {
		fn(cfg)
	}
	return TickResult{Applied: true, Completed: true, Remaining: remaining}
}

// Generation 当前 tick 代数
// Generation returns the live tick generation
func (t *Timer) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// Snapshot 返回状态副本
// Snapshot returns a copy of the current state
func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	state := StatePaused
	if t.running {
		state = StateRunning
	}
	return Snapshot{
		Config:    t.cfg,
		Remaining: t.remaining,
		State:     state,
		Running:   t.running,
		Display:   Format(t.remaining),
	}
}

// AfterFunc 等待一段时间的时间源，签名同 time.After
// AfterFunc is a one-shot wait source with the signature of time.After
type AfterFunc func(time.Duration) <-chan time.Time

// Run 在后台按每代一秒驱动计时器直到 ctx 结束
// Run drives the timer until ctx is done. Each Start arms a fresh one-second
// wait, so the first tick of a run lands a full second after it began.
// A nil after means time.After.
func (t *Timer) Run(ctx context.Context, after AfterFunc) error {
	if after == nil {
		after = time.After
	}
	for {
		gen, running := t.live()
		if !running {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.started:
			}
			continue
		}
		if err := t.waitTick(ctx, gen, after(time.Second)); err != nil {
			return err
		}
	}
}

// waitTick 等待 gen 的下一秒；gen 被新一代取代时提前返回
// waitTick applies one tick of gen when wait fires. It returns early, without
// ticking, once a newer generation has started.
func (t *Timer) waitTick(ctx context.Context, gen uint64, wait <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.started:
			if live, _ := t.live(); live != gen {
				return nil
			}
		case <-wait:
			t.Tick(gen)
			return nil
		}
	}
}

func (t *Timer) live() (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen, t.running
}

func (t *Timer) startLocked() {
	t.gen++
	t.running = true
	select {
	case t.started <- struct{}{}:
	default:
	}
}

func (t *Timer) stopLocked() {
	if t.running {
		t.running = false
		t.gen++
	}
}

// Format 以 M:SS 格式化剩余秒数
// Format renders seconds as M:SS
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
