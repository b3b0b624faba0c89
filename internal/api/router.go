package api

import (
	"fmt"
	"net/http"
	"time"

	"focusdesk/internal/background"
	"focusdesk/internal/quotes"
	"focusdesk/internal/storage"
	"focusdesk/internal/timer"
	"focusdesk/internal/todo"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
)

// Deps API 依赖 / Objects the handlers act on
type Deps struct {
	Timer       *timer.Timer
	Todos       *todo.List
	Images      storage.BlobStore
	Backgrounds *background.Picker
	Quotes      *quotes.Rotator
	Logger      hclog.Logger
	// MaxUploadBytes 上传请求体上限 / Request body cap for uploads
	MaxUploadBytes int64
}

type handlers struct {
	Deps
}

// NewRouter 注册全部路由 / NewRouter wires every route
func NewRouter(deps Deps) *mux.Router {
	if deps.Logger == nil {
		deps.Logger = hclog.NewNullLogger()
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 8 << 20
	}
	h := &handlers{Deps: deps}

	r := mux.NewRouter()
	r.Use(logRequests(deps.Logger.Named("api")))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/timer", h.getTimer).Methods("GET")
	api.HandleFunc("/timer/start", h.startTimer).Methods("POST")
	api.HandleFunc("/timer/pause", h.pauseTimer).Methods("POST")
	api.HandleFunc("/timer/toggle", h.toggleTimer).Methods("POST")
	api.HandleFunc("/timer/reset", h.resetTimer).Methods("POST")
	api.HandleFunc("/timer/duration", h.setDuration).Methods("POST")

	api.HandleFunc("/todos", h.listTodos).Methods("GET")
	api.HandleFunc("/todos", h.addTodo).Methods("POST")
	api.HandleFunc("/todos/{id:[0-9]+}/toggle", h.toggleTodo).Methods("POST")
	api.HandleFunc("/todos/{id:[0-9]+}", h.deleteTodo).Methods("DELETE")

	api.HandleFunc("/images", h.listImages).Methods("GET")
	api.HandleFunc("/images", h.uploadImage).Methods("POST")
	api.HandleFunc("/images/{id}", h.getImage).Methods("GET")
	api.HandleFunc("/images/{id}", h.deleteImage).Methods("DELETE")

	api.HandleFunc("/background", h.getBackground).Methods("GET")
	api.HandleFunc("/background", h.selectBackground).Methods("PUT", "POST")

	api.HandleFunc("/quote", h.getQuote).Methods("GET")

	return r
}

func logRequests(logger hclog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
