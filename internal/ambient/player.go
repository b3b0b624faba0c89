package ambient

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/hashicorp/go-hclog"
)

// ErrDisabled 音频已关闭或不可用
// ErrDisabled is returned when audio is off or the output device failed
var ErrDisabled = errors.New("audio disabled")

// DefaultSampleRate 默认采样率 / Default output sample rate
const DefaultSampleRate = beep.SampleRate(44100)

// Sink 音频输出 / Audio output
type Sink interface {
	Init(sr beep.SampleRate) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

type speakerSink struct{}

func (speakerSink) Init(sr beep.SampleRate) error {
	return speaker.Init(sr, sr.N(time.Second/10))
}

func (speakerSink) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerSink) Lock()                { speaker.Lock() }
func (speakerSink) Unlock()              { speaker.Unlock() }

// Options 播放器选项 / Player options
type Options struct {
	Enabled    bool
	Volume     float64
	Kind       Kind
	SampleRate beep.SampleRate
	Sink       Sink
	Logger     hclog.Logger
	Seed       int64
}

// Player 环境噪声播放器
// Player plays ambient noise with an adjustable volume. The output device is
// initialized on first use; if that fails audio stays off for the session.
type Player struct {
	mu       sync.Mutex
	sink     Sink
	sr       beep.SampleRate
	logger   hclog.Logger
	enabled  bool
	initDone bool
	kind     Kind
	volume   float64
	seed     int64

	ctrl *beep.Ctrl
	vol  *effects.Volume
}

func NewPlayer(opts Options) *Player {
	if opts.Sink == nil {
		opts.Sink = speakerSink{}
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &Player{
		sink:    opts.Sink,
		sr:      opts.SampleRate,
		logger:  opts.Logger.Named("ambient"),
		enabled: opts.Enabled,
		kind:    ParseKind(string(opts.Kind)),
		volume:  clamp(opts.Volume),
		seed:    opts.Seed,
	}
}

func (p *Player) ensureInitLocked() error {
	if !p.enabled {
		return ErrDisabled
	}
	if p.initDone {
		return nil
	}
	if err := p.sink.Init(p.sr); err != nil {
		p.enabled = false
		p.logger.Warn("audio output unavailable, disabling sound", "error", err)
		return fmt.Errorf("%w: %w", ErrDisabled, err)
	}
	p.initDone = true
	return nil
}

// Start 开始播放噪声 / Start playing noise
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureInitLocked(); err != nil {
		return err
	}
	if p.ctrl != nil {
		return nil
	}
	p.ctrl = &beep.Ctrl{Streamer: NewNoise(p.kind, p.seed)}
	p.vol = &effects.Volume{Streamer: p.ctrl, Base: 2}
	applyVolume(p.vol, p.volume)
	p.sink.Play(p.vol)
	p.logger.Debug("noise started", "kind", p.kind, "volume", p.volume)
	return nil
}

// Stop 停止播放 / Stop playing
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	// a nil streamer drains the control and the mixer drops it
	p.sink.Lock()
	p.ctrl.Streamer = nil
	p.sink.Unlock()
	p.ctrl = nil
	p.vol = nil
}

// Toggle 切换播放状态，返回切换后是否在播放
// Toggle flips playback and reports whether noise is now playing
func (p *Player) Toggle() (bool, error) {
	if p.Playing() {
		p.Stop()
		return false, nil
	}
	if err := p.Start(); err != nil {
		return false, err
	}
	return true, nil
}

// SetVolume 设置音量 [0,1]，返回生效值
// SetVolume sets the volume, clamped to [0,1], and returns the applied value
func (p *Player) SetVolume(v float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clamp(v)
	if p.vol != nil {
		p.sink.Lock()
		applyVolume(p.vol, p.volume)
		p.sink.Unlock()
	}
	return p.volume
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl != nil
}

func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

func (p *Player) Kind() Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kind
}

// SetKind 切换噪声类型，正在播放时立即生效
// SetKind switches the noise colour, restarting playback if needed
func (p *Player) SetKind(kind Kind) error {
	p.mu.Lock()
	p.kind = ParseKind(string(kind))
	playing := p.ctrl != nil
	p.mu.Unlock()
	if !playing {
		return nil
	}
	p.Stop()
	return p.Start()
}

// Chime 播放完成提示音 / Chime plays the completion tone
func (p *Player) Chime() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureInitLocked(); err != nil {
		return
	}
	vol := &effects.Volume{Streamer: chime(p.sr), Base: 2}
	applyVolume(vol, math.Max(p.volume, 0.5))
	p.sink.Play(vol)
}

func applyVolume(v *effects.Volume, level float64) {
	if level <= 0 {
		v.Silent = true
		v.Volume = 0
		return
	}
	v.Silent = false
	v.Volume = math.Log2(level)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
