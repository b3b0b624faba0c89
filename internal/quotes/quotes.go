package quotes

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Quote 一条激励语录 / A motivation quote
type Quote struct {
	Text   string `json:"text" yaml:"text"`
	Author string `json:"author" yaml:"author"`
}

func (q Quote) String() string {
	if strings.TrimSpace(q.Author) == "" {
		return q.Text
	}
	return q.Text + " — " + q.Author
}

// Defaults 内置语录 / Built-in quotes
var Defaults = []Quote{
	{Text: "The secret of getting ahead is getting started.", Author: "Mark Twain"},
	{Text: "It always seems impossible until it's done.", Author: "Nelson Mandela"},
	{Text: "Focus on being productive instead of busy.", Author: "Tim Ferriss"},
	{Text: "Small steps every day.", Author: ""},
	{Text: "Well begun is half done.", Author: "Aristotle"},
	{Text: "Do the hard thing first.", Author: ""},
}

// Rotator 语录轮换器
// Rotator cycles through a non-empty list of quotes
type Rotator struct {
	mu    sync.Mutex
	items []Quote
	idx   int
	rng   *rand.Rand
}

// NewRotator 空列表时使用内置语录
// NewRotator falls back to Defaults when items is empty
func NewRotator(items []Quote, seed int64) *Rotator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := &Rotator{rng: rand.New(rand.NewSource(seed))}
	r.Replace(items)
	return r
}

// Replace 替换语录列表并回到第一条
// Replace swaps the list and rewinds to the first quote
func (r *Rotator) Replace(items []Quote) {
	cleaned := make([]Quote, 0, len(items))
	for _, q := range items {
		q.Text = strings.TrimSpace(q.Text)
		q.Author = strings.TrimSpace(q.Author)
		if q.Text == "" {
			continue
		}
		cleaned = append(cleaned, q)
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, Defaults...)
	}
	r.mu.Lock()
	r.items = cleaned
	r.idx = 0
	r.mu.Unlock()
}

func (r *Rotator) Current() Quote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[r.idx]
}

// Next 前进到下一条，末尾回到开头
// Next advances and wraps around
func (r *Rotator) Next() Quote {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idx = (r.idx + 1) % len(r.items)
	return r.items[r.idx]
}

// Random 随机跳到另一条 / Random jumps to a different quote when possible
func (r *Rotator) Random() Quote {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) > 1 {
		next := r.rng.Intn(len(r.items) - 1)
		if next >= r.idx {
			next++
		}
		r.idx = next
	}
	return r.items[r.idx]
}

func (r *Rotator) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
