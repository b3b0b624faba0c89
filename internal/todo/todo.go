package todo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// StorageKey 待办列表的固定存储键
// StorageKey is the fixed key the whole list is saved under
const StorageKey = "todos"

// NextIDKey 已分配 id 的高水位，删除后 id 不复用
// NextIDKey holds the id high-water mark so deleted ids are never handed out again
const NextIDKey = "todos.next_id"

var (
	ErrEmptyText = errors.New("todo text is empty")
	ErrNotFound  = errors.New("todo not found")
)

// Item 待办条目
// Item is a single todo entry
type Item struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Marker 渲染勾选框 / Marker renders the checkbox
func (i Item) Marker() string {
	if i.Completed {
		return "[x]"
	}
	return "[ ]"
}

// Filter 列表过滤条件
// Filter selects which items Items returns
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// Next 循环到下一个过滤条件 / Next cycles all -> active -> completed
func (f Filter) Next() Filter {
	return (f + 1) % 3
}

// Store 键值持久化 / Key/value persistence
type Store interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string) error
}

// List 与持久化同步的待办列表，最新在前
// List is the todo list, newest first, kept in sync with Store.
// A failed save leaves the in-memory list unchanged.
type List struct {
	mu     sync.Mutex
	store  Store
	logger hclog.Logger
	items  []Item
	nextID int64
}

func New(store Store, logger hclog.Logger) *List {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &List{store: store, logger: logger}
}

// Load 读取持久化列表；缺失或损坏时为空
// Load reads the saved list. Missing or malformed data yields an empty list.
func (l *List) Load(ctx context.Context) error {
	raw, ok, err := l.store.GetValue(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("load todos: %w", err)
	}
	var items []Item
	if ok && strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			l.logger.Warn("ignoring malformed todo list", "error", err)
			items = nil
		}
	}
	next, err := l.loadNextID(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.items = items
	l.nextID = next
	l.mu.Unlock()
	return nil
}

func (l *List) loadNextID(ctx context.Context) (int64, error) {
	raw, ok, err := l.store.GetValue(ctx, NextIDKey)
	if err != nil {
		return 0, fmt.Errorf("load todo id mark: %w", err)
	}
	if !ok {
		return 0, nil
	}
	next, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		l.logger.Warn("ignoring malformed todo id mark", "value", raw)
		return 0, nil
	}
	return next, nil
}

// Add 在列表顶部新增一项
// Add prepends a new active item
func (l *List) Add(ctx context.Context, text string) (Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Item{}, ErrEmptyText
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	item := Item{ID: l.nextIDLocked(), Text: text}
	next := make([]Item, 0, len(l.items)+1)
	next = append(next, item)
	next = append(next, l.items...)
	if err := l.saveLocked(ctx, next); err != nil {
		return Item{}, err
	}
	l.nextID = item.ID + 1
	// 列表已保存；标记写失败时重载仍按 max+1 兜底
	// The list is saved; a lost mark falls back to max+1 on reload
	if err := l.store.SetValue(ctx, NextIDKey, strconv.FormatInt(l.nextID, 10)); err != nil {
		l.logger.Warn("save todo id mark", "error", err)
	}
	return item, nil
}

// Toggle 切换完成状态 / Toggle flips Completed
func (l *List) Toggle(ctx context.Context, id int64) (Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexLocked(id)
	if idx < 0 {
		return Item{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	next := append([]Item(nil), l.items...)
	next[idx].Completed = !next[idx].Completed
	if err := l.saveLocked(ctx, next); err != nil {
		return Item{}, err
	}
	return next[idx], nil
}

// Delete 删除一项；不存在时为空操作
// Delete removes an item; an unknown id is a no-op
func (l *List) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexLocked(id)
	if idx < 0 {
		return nil
	}
	next := make([]Item, 0, len(l.items)-1)
	next = append(next, l.items[:idx]...)
	next = append(next, l.items[idx+1:]...)
	return l.saveLocked(ctx, next)
}

// ClearCompleted 删除所有已完成项 / Removes every completed item
func (l *List) ClearCompleted(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]Item, 0, len(l.items))
	for _, item := range l.items {
		if !item.Completed {
			next = append(next, item)
		}
	}
	removed := len(l.items) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := l.saveLocked(ctx, next); err != nil {
		return 0, err
	}
	return removed, nil
}

// Items 按过滤条件返回副本 / Items returns a filtered copy
func (l *List) Items(filter Filter) []Item {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Item, 0, len(l.items))
	for _, item := range l.items {
		switch {
		case filter == FilterActive && item.Completed:
			continue
		case filter == FilterCompleted && !item.Completed:
			continue
		}
		out = append(out, item)
	}
	return out
}

// Remaining 未完成数量 / Number of active items
func (l *List) Remaining() int {
	return len(l.Items(FilterActive))
}

func (l *List) saveLocked(ctx context.Context, next []Item) error {
	if next == nil {
		next = []Item{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode todos: %w", err)
	}
	if err := l.store.SetValue(ctx, StorageKey, string(data)); err != nil {
		return fmt.Errorf("save todos: %w", err)
	}
	l.items = next
	return nil
}

func (l *List) indexLocked(id int64) int {
	for i, item := range l.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (l *List) nextIDLocked() int64 {
	next := l.nextID
	for _, item := range l.items {
		if item.ID >= next {
			next = item.ID + 1
		}
	}
	if next < 1 {
		next = 1
	}
	return next
}
