// Package config 加载 schedule 守护进程的 YAML 配置
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/darkit/schedule"
)

// 环境变量
const (
	EnvConfig    = "SCHEDULE_CONFIG"     // 配置文件路径
	EnvListen    = "SCHEDULE_LISTEN"     // 覆盖 listen
	EnvLogFormat = "SCHEDULE_LOG_FORMAT" // 覆盖 log_format
)

// ErrNoConfig 未指定配置文件
var ErrNoConfig = errors.New(EnvConfig + " environment variable not set")

var validate = validator.New()

// Config 守护进程配置
type Config struct {
	// Listen HTTP API 监听地址，为空时不启动 HTTP 服务
	Listen string `yaml:"listen" validate:"omitempty,hostname_port"`

	// LogFormat 日志格式：text、json 或 zap
	LogFormat string `yaml:"log_format" validate:"oneof=text json zap"`

	// PollInterval 检查到期任务的周期
	PollInterval time.Duration `yaml:"poll_interval" validate:"gte=0"`

	Jobs []Job `yaml:"jobs" validate:"unique=Name,dive"`
}

// Job 单个任务配置
type Job struct {
	Name     string        `yaml:"name" validate:"required,max=128"`
	Schedule string        `yaml:"schedule" validate:"required"`
	Command  []string      `yaml:"command" validate:"omitempty,dive,required"`
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
	Paused   bool          `yaml:"paused"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Listen:       ":8080",
		LogFormat:    "text",
		PollInterval: schedule.DefaultPollInterval,
	}
}

// Load 从 SCHEDULE_CONFIG 指定的文件加载配置
func Load() (*Config, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		return nil, ErrNoConfig
	}
	return LoadFile(path)
}

// LoadFile 从指定文件加载配置，文件中未设置的字段使用默认值，
// 随后应用环境变量覆盖并校验。
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 配置内容
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}
}

// Validate 校验字段取值以及每个任务的调度表达式
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q validation", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	for _, job := range c.Jobs {
		if _, err := job.ParseSchedule(); err != nil {
			return fmt.Errorf("job %s: %w", job.Name, err)
		}
	}
	return nil
}

// ParseSchedule 解析任务的调度表达式
func (j Job) ParseSchedule() (schedule.Schedule, error) {
	return schedule.Parse(j.Schedule)
}
