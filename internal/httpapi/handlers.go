package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/darkit/schedule"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSONError 以 JSON 格式返回错误
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// NextResponse /v1/next 的响应
type NextResponse struct {
	Expr        string      `json:"expr"`
	Kind        string      `json:"kind"`
	After       time.Time   `json:"after"`
	Occurrences []time.Time `json:"occurrences"`
}

// next 预览表达式接下来的触发时间
//
//	GET /v1/next?expr=0+30+9+*+*+1-5&count=3&after=2026-01-01T00:00:00Z
func (s *Server) next(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	expr := q.Get("expr")
	if expr == "" {
		JSONError(w, "expr is required", http.StatusBadRequest)
		return
	}

	count := defaultCount
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxCount {
			JSONError(w, "count must be between 1 and "+strconv.Itoa(maxCount), http.StatusBadRequest)
			return
		}
		count = n
	}

	now := s.clock.Now()
	after := now
	if v := q.Get("after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			JSONError(w, "after must be an RFC3339 timestamp", http.StatusBadRequest)
			return
		}
		after = t
	}

	sched, err := schedule.Parse(expr)
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	occurrences := sched.UpcomingAt(after, now, count)
	if occurrences == nil {
		occurrences = []time.Time{}
	}
	writeJSON(w, NextResponse{
		Expr:        sched.String(),
		Kind:        sched.Kind().String(),
		After:       after.UTC(),
		Occurrences: occurrences,
	})
}

// JobResponse 任务信息
type JobResponse struct {
	Name     string          `json:"name"`
	Schedule string          `json:"schedule"`
	Kind     string          `json:"kind"`
	NextRun  *time.Time      `json:"next_run,omitempty"`
	Paused   bool            `json:"paused"`
	Running  bool            `json:"running"`
	Stats    *schedule.Stats `json:"stats,omitempty"`
}

func (s *Server) jobResponse(info schedule.JobInfo) JobResponse {
	resp := JobResponse{
		Name:     info.Name,
		Schedule: info.Schedule,
		Kind:     info.Kind,
		Paused:   info.Paused,
		Running:  info.Running,
	}
	if !info.NextRun.IsZero() && !info.Paused {
		next := info.NextRun
		resp.NextRun = &next
	}
	if stats, ok := s.agenda.Monitor().GetStats(info.Name); ok {
		resp.Stats = stats
	}
	return resp
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	infos := s.agenda.List()
	jobs := make([]JobResponse, 0, len(infos))
	for _, info := range infos {
		jobs = append(jobs, s.jobResponse(info))
	}
	writeJSON(w, jobs)
}

// lookup 按 URL 中的名称查找任务，找不到时写入 404
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (schedule.Handle, bool) {
	name := chi.URLParam(r, "name")
	h, ok := s.agenda.Get(name)
	if !ok {
		JSONError(w, "job not found", http.StatusNotFound)
		return schedule.Handle{}, false
	}
	return h, true
}

func (s *Server) writeJob(w http.ResponseWriter, h schedule.Handle) {
	info, err := s.agenda.Info(h)
	if err != nil {
		JSONError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, s.jobResponse(info))
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJob(w, h)
}

func (s *Server) pauseJob(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := s.agenda.Pause(h); err != nil {
		JSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	s.writeJob(w, h)
}

func (s *Server) resumeJob(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := s.agenda.Resume(h); err != nil {
		JSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	s.writeJob(w, h)
}

// rescheduleJob 替换任务的调度表达式，表达式无效时保留原调度
//
//	PUT /v1/jobs/{name}/schedule {"expr": "@every 5m"}
func (s *Server) rescheduleJob(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var input struct {
		Expr string `json:"expr" validate:"required,max=256"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.agenda.RescheduleExpr(h, input.Expr); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, schedule.ErrJobNotFound) {
			status = http.StatusNotFound
		}
		JSONError(w, err.Error(), status)
		return
	}
	s.writeJob(w, h)
}
