package ambient

import (
	"math"
	"math/rand"
	"time"

	"github.com/faiface/beep"
)

// Kind 噪声类型 / Noise colour
type Kind string

const (
	KindWhite Kind = "white"
	KindBrown Kind = "brown"
)

// ParseKind 未知值回退为白噪声 / Unknown values fall back to white
func ParseKind(s string) Kind {
	if Kind(s) == KindBrown {
		return KindBrown
	}
	return KindWhite
}

const noiseAmplitude = 0.25

// Noise 无限长的立体声噪声流
// Noise is an endless mono-in-stereo noise stream
type Noise struct {
	kind  Kind
	rng   *rand.Rand
	brown float64
}

func NewNoise(kind Kind, seed int64) *Noise {
	return &Noise{kind: kind, rng: rand.New(rand.NewSource(seed))}
}

func (n *Noise) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		white := n.rng.Float64()*2 - 1
		v := white
		if n.kind == KindBrown {
			// leaky integrator over white noise
			n.brown = (n.brown + 0.02*white) / 1.02
			v = n.brown * 3.5
		}
		v *= noiseAmplitude
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (n *Noise) Err() error { return nil }

// chime 完成提示音：880Hz 线性衰减
// chime is a short decaying 880Hz tone
func chime(sr beep.SampleRate) beep.Streamer {
	total := sr.N(600 * time.Millisecond)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			t := float64(pos) / float64(sr)
			env := 1 - float64(pos)/float64(total)
			v := 0.3 * env * math.Sin(2*math.Pi*880*t)
			samples[i][0] = v
			samples[i][1] = v
			pos++
			n++
		}
		return n, true
	})
}
