package background

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"focusdesk/internal/storage"
)

// StorageKey 选中背景的持久化键 / KV key of the selected background
const StorageKey = "background"

const uploadPrefix = "upload:"

var (
	// ErrUnknown 未知背景 id / Unknown background id
	ErrUnknown = errors.New("unknown background")
	// ErrNotImage 上传内容不是图片 / Uploaded payload is not an image
	ErrNotImage = errors.New("not an image")
)

// Kind 背景来源 / Where a background comes from
type Kind string

const (
	KindPreset Kind = "preset"
	KindUpload Kind = "upload"
)

// Background 可选背景 / A selectable background
type Background struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Color   string `json:"color,omitempty"`
	ImageID string `json:"image_id,omitempty"`
}

// Presets 内置背景，第一项为默认
// Presets are the built-in backgrounds; the first is the default
var Presets = []Background{
	{ID: "midnight", Name: "Midnight", Kind: KindPreset, Color: "#1E1E2E"},
	{ID: "forest", Name: "Forest", Kind: KindPreset, Color: "#1F3A2E"},
	{ID: "ocean", Name: "Ocean", Kind: KindPreset, Color: "#14324A"},
	{ID: "sunset", Name: "Sunset", Kind: KindPreset, Color: "#4A2330"},
	{ID: "paper", Name: "Paper", Kind: KindPreset, Color: "#EDE6D6"},
}

// Store 背景选择器依赖的存储
// Store is the storage the picker needs
type Store interface {
	storage.BlobStore
	storage.KVStore
}

// Picker 背景选择器 / Background picker
type Picker struct {
	mu    sync.Mutex
	store Store
}

func NewPicker(store Store) *Picker {
	return &Picker{store: store}
}

// UploadID 上传图片对应的背景 id
// UploadID maps an image record id to its background id
func UploadID(imageID string) string {
	return uploadPrefix + imageID
}

// List 返回预设和全部上传 / List returns presets followed by uploads
func (p *Picker) List(ctx context.Context) ([]Background, error) {
	out := append([]Background(nil), Presets...)
	records, err := p.store.ListAll(ctx)
	if err != nil {
		return out, fmt.Errorf("list uploads: %w", err)
	}
	for _, rec := range records {
		out = append(out, fromRecord(rec))
	}
	return out, nil
}

// Select 选中并持久化 / Select persists the chosen background
func (p *Picker) Select(ctx context.Context, id string) (Background, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	bg, err := p.resolve(ctx, id)
	if err != nil {
		return Background{}, err
	}
	if err := p.store.SetValue(ctx, StorageKey, bg.ID); err != nil {
		return Background{}, fmt.Errorf("save background: %w", err)
	}
	return bg, nil
}

// Selected 当前背景，缺失或失效时回退到第一个预设
// Selected returns the saved background, falling back to the first preset
func (p *Picker) Selected(ctx context.Context) (Background, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok, err := p.store.GetValue(ctx, StorageKey)
	if err != nil {
		return Presets[0], fmt.Errorf("load background: %w", err)
	}
	if !ok {
		return Presets[0], nil
	}
	bg, err := p.resolve(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUnknown) {
			return Presets[0], nil
		}
		return Presets[0], err
	}
	return bg, nil
}

// Cycle 按列表顺序前后切换 / Cycle moves by step through List
func (p *Picker) Cycle(ctx context.Context, step int) (Background, error) {
	all, err := p.List(ctx)
	if err != nil {
		return Background{}, err
	}
	cur, err := p.Selected(ctx)
	if err != nil {
		return Background{}, err
	}
	idx := 0
	for i, bg := range all {
		if bg.ID == cur.ID {
			idx = i
			break
		}
	}
	n := len(all)
	next := ((idx+step)%n + n) % n
	return p.Select(ctx, all[next].ID)
}

// Upload 读取图片文件并存入 BlobStore
// Upload reads an image file and stores it as an upload
func (p *Picker) Upload(ctx context.Context, path string) (Background, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Background{}, fmt.Errorf("read %s: %w", path, err)
	}
	return p.UploadBytes(ctx, filepath.Base(path), data)
}

func (p *Picker) UploadBytes(ctx context.Context, name string, data []byte) (Background, error) {
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return Background{}, fmt.Errorf("%w: %s", ErrNotImage, name)
	}
	rec, err := p.store.Put(ctx, name, data)
	if err != nil {
		return Background{}, err
	}
	return fromRecord(rec), nil
}

// Remove 删除上传；若正被选中则恢复默认
// Remove deletes an upload and resets the selection if it was selected
func (p *Picker) Remove(ctx context.Context, id string) error {
	imageID, ok := strings.CutPrefix(id, uploadPrefix)
	if !ok {
		return fmt.Errorf("%w: %s is not an upload", ErrUnknown, id)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.DeleteByID(ctx, imageID); err != nil {
		return err
	}
	cur, ok, err := p.store.GetValue(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("load background: %w", err)
	}
	if ok && cur == id {
		if err := p.store.SetValue(ctx, StorageKey, Presets[0].ID); err != nil {
			return fmt.Errorf("save background: %w", err)
		}
	}
	return nil
}

func (p *Picker) resolve(ctx context.Context, id string) (Background, error) {
	for _, bg := range Presets {
		if bg.ID == id {
			return bg, nil
		}
	}
	imageID, ok := strings.CutPrefix(id, uploadPrefix)
	if !ok {
		return Background{}, fmt.Errorf("%w: %s", ErrUnknown, id)
	}
	rec, err := p.store.Get(ctx, imageID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Background{}, fmt.Errorf("%w: %s", ErrUnknown, id)
		}
		return Background{}, err
	}
	return fromRecord(rec), nil
}

func fromRecord(rec storage.ImageRecord) Background {
	return Background{
		ID:      UploadID(rec.ID),
		Name:    rec.Name,
		Kind:    KindUpload,
		ImageID: rec.ID,
	}
}
