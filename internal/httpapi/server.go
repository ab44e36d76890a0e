// Package httpapi 提供调度预览和任务查看的 HTTP 接口
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/darkit/schedule"
)

const (
	defaultCount = 5
	maxCount     = 100
)

// Server HTTP 接口
type Server struct {
	agenda   *schedule.Agenda
	gatherer prometheus.Gatherer
	logger   schedule.Logger
	clock    clockwork.Clock
	validate *validator.Validate
}

// Option Server 配置选项
type Option func(*Server)

// WithGatherer 设置 /metrics 使用的指标来源
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger 设置请求日志
func WithLogger(l schedule.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock 设置预览使用的当前时间来源
func WithClock(c clockwork.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// New 创建 Server，agenda 可以为 nil，此时任务相关接口返回 404
func New(agenda *schedule.Agenda, opts ...Option) *Server {
	s := &Server{
		agenda:   agenda,
		gatherer: prometheus.DefaultGatherer,
		logger:   &schedule.NoOpLogger{},
		clock:    clockwork.NewRealClock(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes 返回路由
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/next", s.next)

		r.Route("/jobs", func(r chi.Router) {
			r.Use(s.requireAgenda)
			r.Get("/", s.listJobs)
			r.Get("/{name}", s.getJob)
			r.Post("/{name}/pause", s.pauseJob)
			r.Post("/{name}/resume", s.resumeJob)
			r.Put("/{name}/schedule", s.rescheduleJob)
		})
	})

	return r
}

// requestLog 记录每个请求的方法、路径、状态码和耗时
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debugf("request id=%s method=%s path=%s status=%d duration=%s size=%d",
			middleware.GetReqID(r.Context()), r.Method, r.URL.Path, ww.Status(), time.Since(start), ww.BytesWritten())
	})
}

func (s *Server) requireAgenda(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.agenda == nil {
			JSONError(w, "no agenda configured", http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
