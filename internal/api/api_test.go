package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"focusdesk/internal/background"
	"focusdesk/internal/quotes"
	"focusdesk/internal/storage"
	"focusdesk/internal/timer"
	"focusdesk/internal/todo"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fixture struct {
	srv   *httptest.Server
	timer *timer.Timer
	todos *todo.List
}

func newFixture(t *testing.T, opts storage.Options) *fixture {
	t.Helper()
	if opts.Path == "" {
		opts.Path = filepath.Join(t.TempDir(), "api.db")
	}
	store := storage.NewSQLiteStore(opts)
	t.Cleanup(func() { _ = store.Close() })

	tm, err := timer.New(timer.Config{Seconds: 1800, Label: "Focus"})
	if err != nil {
		t.Fatal(err)
	}
	todos := todo.New(store, nil)
	router := NewRouter(Deps{
		Timer:       tm,
		Todos:       todos,
		Images:      store,
		Backgrounds: background.NewPicker(store),
		Quotes:      quotes.NewRotator([]quotes.Quote{{Text: "a"}, {Text: "b"}}, 1),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, timer: tm, todos: todos}
}

func (f *fixture) do(t *testing.T, method, path, contentType string, body []byte, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	f := newFixture(t, storage.Options{})
	resp, err := http.Get(f.srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestTimerEndpoints(t *testing.T) {
	f := newFixture(t, storage.Options{})
	var snap timer.Snapshot

	if code := f.do(t, "POST", "/api/timer/start", "", nil, &snap); code != 200 || !snap.Running {
		t.Fatalf("start: %d %+v", code, snap)
	}
	if code := f.do(t, "POST", "/api/timer/pause", "", nil, &snap); code != 200 || snap.Running {
		t.Fatalf("pause: %d %+v", code, snap)
	}
	body := []byte(`{"minutes": 15, "label": "Break"}`)
	if code := f.do(t, "POST", "/api/timer/duration", "application/json", body, &snap); code != 200 {
		t.Fatalf("duration: %d", code)
	}
	if snap.Config.Seconds != 900 || snap.Display != "15:00" || snap.Config.Label != "Break" {
		t.Fatalf("snapshot=%+v", snap)
	}
	if code := f.do(t, "POST", "/api/timer/duration", "application/json", []byte(`{"seconds": -1}`), nil); code != http.StatusBadRequest {
		t.Fatalf("negative duration: %d", code)
	}
	if code := f.do(t, "GET", "/api/timer/start", "", nil, nil); code != http.StatusMethodNotAllowed {
		t.Fatalf("GET start: %d", code)
	}
}

func TestTodoEndpoints(t *testing.T) {
	f := newFixture(t, storage.Options{})
	var item todo.Item
	if code := f.do(t, "POST", "/api/todos", "application/json", []byte(`{"text":"ship it"}`), &item); code != http.StatusCreated {
		t.Fatalf("add: %d", code)
	}
	if code := f.do(t, "POST", "/api/todos", "application/json", []byte(`{"text":"  "}`), nil); code != http.StatusBadRequest {
		t.Fatalf("empty add: %d", code)
	}

	path := "/api/todos/" + itoa(item.ID) + "/toggle"
	if code := f.do(t, "POST", path, "", nil, &item); code != 200 || !item.Completed {
		t.Fatalf("toggle: %d %+v", code, item)
	}
	if code := f.do(t, "POST", "/api/todos/999/toggle", "", nil, nil); code != http.StatusNotFound {
		t.Fatalf("toggle missing: %d", code)
	}

	var list todosResponse
	f.do(t, "GET", "/api/todos?filter=completed", "", nil, &list)
	if len(list.Items) != 1 || list.Remaining != 0 {
		t.Fatalf("list=%+v", list)
	}
	if code := f.do(t, "DELETE", "/api/todos/"+itoa(item.ID), "", nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete: %d", code)
	}
	if code := f.do(t, "DELETE", "/api/todos/"+itoa(item.ID), "", nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete twice: %d", code)
	}
}

func TestImageEndpoints(t *testing.T) {
	f := newFixture(t, storage.Options{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "sky.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(pngHeader)
	_ = mw.Close()

	var bg background.Background
	if code := f.do(t, "POST", "/api/images", mw.FormDataContentType(), buf.Bytes(), &bg); code != http.StatusCreated {
		t.Fatalf("upload: %d", code)
	}
	if bg.Name != "sky.png" || bg.ImageID == "" {
		t.Fatalf("bg=%+v", bg)
	}

	var list []imageSummary
	f.do(t, "GET", "/api/images", "", nil, &list)
	if len(list) != 1 || list[0].ID != bg.ImageID {
		t.Fatalf("list=%+v", list)
	}

	resp, err := http.Get(f.srv.URL + "/api/images/" + bg.ImageID)
	if err != nil {
		t.Fatal(err)
	}
	raw := new(bytes.Buffer)
	_, _ = raw.ReadFrom(resp.Body)
	resp.Body.Close()
	if resp.Header.Get("Content-Type") != "image/png" || !bytes.Equal(raw.Bytes(), pngHeader) {
		t.Fatalf("get image: %s %q", resp.Header.Get("Content-Type"), raw.Bytes())
	}

	if code := f.do(t, "POST", "/api/images?name=notes.txt", "text/plain", []byte("hello"), nil); code != http.StatusUnsupportedMediaType {
		t.Fatalf("text upload: %d", code)
	}
	if code := f.do(t, "DELETE", "/api/images/"+bg.ImageID, "", nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete: %d", code)
	}
	if code := f.do(t, "GET", "/api/images/"+bg.ImageID, "", nil, nil); code != http.StatusNotFound {
		t.Fatalf("get deleted: %d", code)
	}
}

func TestImageQuota(t *testing.T) {
	f := newFixture(t, storage.Options{MaxImageBytes: 8})
	if code := f.do(t, "POST", "/api/images?name=big.png", "image/png", pngHeader, nil); code != http.StatusRequestEntityTooLarge {
		t.Fatalf("quota: %d", code)
	}
}

func TestBackgroundAndQuote(t *testing.T) {
	f := newFixture(t, storage.Options{})
	var bg background.Background
	if code := f.do(t, "PUT", "/api/background", "application/json", []byte(`{"id":"forest"}`), &bg); code != 200 || bg.ID != "forest" {
		t.Fatalf("select: %d %+v", code, bg)
	}
	f.do(t, "GET", "/api/background", "", nil, &bg)
	if bg.ID != "forest" {
		t.Fatalf("selected=%+v", bg)
	}
	if code := f.do(t, "PUT", "/api/background", "application/json", []byte(`{"id":"nope"}`), nil); code != http.StatusNotFound {
		t.Fatalf("unknown: %d", code)
	}

	var q quotes.Quote
	f.do(t, "GET", "/api/quote", "", nil, &q)
	if q.Text != "a" {
		t.Fatalf("quote=%+v", q)
	}
	f.do(t, "GET", "/api/quote?mode=next", "", nil, &q)
	if q.Text != "b" {
		t.Fatalf("next quote=%+v", q)
	}
}

func TestServerShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(ln.Addr().String(), http.NotFoundHandler(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStatusFor(t *testing.T) {
	if statusFor(storage.ErrUnavailable) != http.StatusServiceUnavailable {
		t.Fatal("unavailable")
	}
	if !strings.Contains(http.StatusText(statusFor(storage.ErrQuotaExceeded)), "Too Large") {
		t.Fatal("quota")
	}
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
