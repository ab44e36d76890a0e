package schedule

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats 任务统计信息
type Stats struct {
	Name         string        `json:"name"`          // 任务名称
	Schedule     string        `json:"schedule"`      // 调度表达式
	RunCount     int64         `json:"run_count"`     // 运行次数
	SuccessCount int64         `json:"success_count"` // 成功次数
	FailureCount int64         `json:"failure_count"` // 失败次数
	LastRun      time.Time     `json:"last_run"`      // 最后运行时间
	LastDuration time.Duration `json:"last_duration"` // 最后一次耗时
	NextRun      time.Time     `json:"next_run"`      // 下次运行时间
	IsRunning    bool          `json:"is_running"`    // 是否正在运行
	CreatedAt    time.Time     `json:"created_at"`    // 创建时间
}

// Monitor 任务监控器，可选地导出 Prometheus 指标
type Monitor struct {
	stats map[string]*Stats
	mu    sync.RWMutex

	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	jobs     prometheus.Gauge
}

// newMonitor 创建新的任务监控器
func newMonitor() *Monitor {
	return &Monitor{
		stats: make(map[string]*Stats),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedule_job_runs_total",
				Help: "Total number of job runs by job and status",
			},
			[]string{"job", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "schedule_job_duration_seconds",
				Help:    "Job run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job"},
		),
		jobs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "schedule_jobs",
				Help: "Number of jobs in the agenda",
			},
		),
	}
}

// register 将指标注册到 reg，已注册的同名指标视为成功
func (m *Monitor) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.runs, m.duration, m.jobs} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// addJob 添加任务到监控
func (m *Monitor) addJob(name, schedule string, createdAt, nextRun time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats[name] = &Stats{
		Name:      name,
		Schedule:  schedule,
		CreatedAt: createdAt,
		NextRun:   nextRun,
	}
	m.jobs.Set(float64(len(m.stats)))
}

// removeJob 从监控中移除任务
func (m *Monitor) removeJob(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.stats, name)
	m.runs.DeletePartialMatch(prometheus.Labels{"job": name})
	m.duration.DeleteLabelValues(name)
	m.jobs.Set(float64(len(m.stats)))
}

// updateSchedule 记录重新调度后的表达式和下次运行时间
func (m *Monitor) updateSchedule(name, schedule string, nextRun time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stats, exists := m.stats[name]; exists {
		stats.Schedule = schedule
		stats.NextRun = nextRun
	}
}

// recordExecution 记录任务执行，已移除的任务不再记录
func (m *Monitor) recordExecution(name string, startedAt time.Time, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats, exists := m.stats[name]
	if !exists {
		return
	}

	stats.RunCount++
	status := "success"
	if success {
		stats.SuccessCount++
	} else {
		stats.FailureCount++
		status = "failure"
	}
	stats.LastRun = startedAt
	stats.LastDuration = duration

	m.runs.WithLabelValues(name, status).Inc()
	m.duration.WithLabelValues(name).Observe(duration.Seconds())
}

// setRunning 设置任务运行状态
func (m *Monitor) setRunning(name string, running bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stats, exists := m.stats[name]; exists {
		stats.IsRunning = running
	}
}

// setNextRun 更新下次运行时间
func (m *Monitor) setNextRun(name string, next time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if stats, exists := m.stats[name]; exists {
		stats.NextRun = next
	}
}

// GetStats 获取指定任务的统计信息
func (m *Monitor) GetStats(name string) (*Stats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats, exists := m.stats[name]
	if !exists {
		return nil, false
	}

	statsCopy := *stats
	return &statsCopy, true
}

// GetAllStats 获取所有任务的统计信息
func (m *Monitor) GetAllStats() map[string]*Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]*Stats, len(m.stats))
	for name, stats := range m.stats {
		statsCopy := *stats
		result[name] = &statsCopy
	}

	return result
}
