package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"focusdesk/internal/background"
	"focusdesk/internal/storage"
	"focusdesk/internal/timer"
	"focusdesk/internal/todo"

	"github.com/gorilla/mux"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor 将领域错误映射为 HTTP 状态码
// statusFor maps package sentinels onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, todo.ErrNotFound),
		errors.Is(err, background.ErrUnknown):
		return http.StatusNotFound
	case errors.Is(err, todo.ErrEmptyText),
		errors.Is(err, timer.ErrInvalidDuration):
		return http.StatusBadRequest
	case errors.Is(err, background.ErrNotImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, storage.ErrQuotaExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		h.Logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		return err
	}
	return nil
}

// --- timer ---

func (h *handlers) getTimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Timer.Snapshot())
}

func (h *handlers) startTimer(w http.ResponseWriter, r *http.Request) {
	h.Timer.Start()
	writeJSON(w, http.StatusOK, h.Timer.Snapshot())
}

func (h *handlers) pauseTimer(w http.ResponseWriter, r *http.Request) {
	h.Timer.Pause()
	writeJSON(w, http.StatusOK, h.Timer.Snapshot())
}

func (h *handlers) toggleTimer(w http.ResponseWriter, r *http.Request) {
	h.Timer.Toggle()
	writeJSON(w, http.StatusOK, h.Timer.Snapshot())
}

func (h *handlers) resetTimer(w http.ResponseWriter, r *http.Request) {
	h.Timer.Reset()
	writeJSON(w, http.StatusOK, h.Timer.Snapshot())
}

type durationRequest struct {
	Seconds int    `json:"seconds"`
	Minutes int    `json:"minutes"`
	Label   string `json:"label"`
}

func (h *handlers) setDuration(w http.ResponseWriter, r *http.Request) {
	var req durationRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json: " + err.Error()})
		return
	}
	seconds := req.Seconds
	if seconds == 0 {
		seconds = req.Minutes * 60
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = "Focus"
	}
	if err := h.Timer.SetDuration(seconds, label); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Timer.Snapshot())
}

// --- todos ---

type todosResponse struct {
	Items     []todo.Item `json:"items"`
	Remaining int         `json:"remaining"`
}

func parseFilter(s string) todo.Filter {
	switch strings.ToLower(s) {
	case "active":
		return todo.FilterActive
	case "completed", "done":
		return todo.FilterCompleted
	default:
		return todo.FilterAll
	}
}

func (h *handlers) listTodos(w http.ResponseWriter, r *http.Request) {
	items := h.Todos.Items(parseFilter(r.URL.Query().Get("filter")))
	writeJSON(w, http.StatusOK, todosResponse{Items: items, Remaining: h.Todos.Remaining()})
}

func (h *handlers) addTodo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json: " + err.Error()})
		return
	}
	item, err := h.Todos.Add(r.Context(), req.Text)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func todoID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (h *handlers) toggleTodo(w http.ResponseWriter, r *http.Request) {
	item, err := h.Todos.Toggle(r.Context(), todoID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *handlers) deleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := h.Todos.Delete(r.Context(), todoID(r)); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- images ---

type imageSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *handlers) listImages(w http.ResponseWriter, r *http.Request) {
	records, err := h.Images.ListAll(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	out := make([]imageSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, imageSummary{ID: rec.ID, Name: rec.Name, Size: len(rec.Data), CreatedAt: rec.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

// uploadImage 接受 multipart 字段 file，或原始请求体加 ?name=
// uploadImage accepts a multipart "file" field or a raw body with ?name=
func (h *handlers) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	var (
		name string
		data []byte
		err  error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, header, ferr := r.FormFile("file")
		if ferr != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: ferr.Error()})
			return
		}
		defer file.Close()
		name = header.Filename
		data, err = io.ReadAll(file)
	} else {
		name = r.URL.Query().Get("name")
		data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if strings.TrimSpace(name) == "" {
		name = "upload"
	}

	bg, err := h.Backgrounds.UploadBytes(r.Context(), name, data)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bg)
}

func (h *handlers) getImage(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Images.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err)
		return
	}
	mime, payload, err := storage.DecodeDataURI(rec.Data)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	_, _ = w.Write(payload)
}

func (h *handlers) deleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.Backgrounds.Remove(r.Context(), background.UploadID(mux.Vars(r)["id"])); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- background & quote ---

func (h *handlers) getBackground(w http.ResponseWriter, r *http.Request) {
	bg, err := h.Backgrounds.Selected(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bg)
}

func (h *handlers) selectBackground(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json: " + err.Error()})
		return
	}
	bg, err := h.Backgrounds.Select(r.Context(), req.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bg)
}

func (h *handlers) getQuote(w http.ResponseWriter, r *http.Request) {
	q := h.Quotes.Current()
	switch r.URL.Query().Get("mode") {
	case "next":
		q = h.Quotes.Next()
	case "random":
		q = h.Quotes.Random()
	}
	writeJSON(w, http.StatusOK, q)
}
