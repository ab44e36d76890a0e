package schedule

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/darkit/schedule/internal/parser"
)

// DescriptorRegistry 描述符注册表，描述符是以 @ 开头的表达式别名
type DescriptorRegistry struct {
	descriptors map[string]string
	mu          sync.RWMutex
}

var (
	globalRegistry = &DescriptorRegistry{
		descriptors: map[string]string{
			"@yearly":   "0 0 0 1 1 *",
			"@annually": "0 0 0 1 1 *",
			"@monthly":  "0 0 0 1 * *",
			"@weekly":   "0 0 0 * * 0",
			"@daily":    "0 0 0 * * *",
			"@midnight": "0 0 0 * * *",
			"@hourly":   "0 0 * * * *",
		},
	}

	// 全局logger实例，用于registry日志记录
	registryLogger Logger = NewDefaultLogger()
)

const everyPrefix = "@every "

// RegisterDescriptor 注册一个描述符，expr 必须是合法的 cron 表达式
//
//	schedule.RegisterDescriptor("@workdays", "0 0 9 * * 1-5")
func RegisterDescriptor(name, expr string) error {
	if !strings.HasPrefix(name, "@") || len(name) < 2 || strings.ContainsAny(name, " \t") || name == "@every" {
		return fmt.Errorf("%w: %q", ErrInvalidDescName, name)
	}

	// 只接受 cron 字段，避免描述符互相引用
	if _, err := parser.ParseSchedule(expr); err != nil {
		return fmt.Errorf("descriptor %s: %w", name, err)
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.descriptors[name]; exists {
		return fmt.Errorf("%w: %s", ErrDescriptorTaken, name)
	}
	globalRegistry.descriptors[name] = strings.Join(strings.Fields(expr), " ")
	return nil
}

// SetRegistryLogger 设置registry的logger
func SetRegistryLogger(logger Logger) {
	registryLogger = logger
}

// SafeRegisterDescriptor 安全注册描述符，永远不会panic
// 适合在init()函数中使用，失败时只记录错误
func SafeRegisterDescriptor(name, expr string) {
	if err := RegisterDescriptor(name, expr); err != nil {
		if registryLogger != nil {
			registryLogger.Warnf("Failed to register descriptor %s: %v", name, err)
		}
	}
}

// Descriptors 返回所有描述符及其展开后的表达式
func Descriptors() map[string]string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	result := make(map[string]string, len(globalRegistry.descriptors))
	for name, expr := range globalRegistry.descriptors {
		result[name] = expr
	}
	return result
}

func lookupDescriptor(name string) (string, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	expr, ok := globalRegistry.descriptors[name]
	return expr, ok
}

// parseDescriptor 解析描述符语法，如 @every, @daily, @weekly, @monthly 等
func parseDescriptor(spec string) (Schedule, error) {
	if strings.HasPrefix(spec, everyPrefix) {
		raw := strings.TrimSpace(spec[len(everyPrefix):])
		d, err := parseDuration(raw)
		if err != nil {
			return Schedule{}, &Error{Kind: KindDuration, Input: spec}
		}
		return Every(d)
	}

	expr, ok := lookupDescriptor(spec)
	if !ok {
		return Schedule{}, &Error{Kind: KindParse, Input: spec}
	}
	cs, err := parser.ParseSchedule(expr)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{kind: Periodic, expr: spec, cron: cs}, nil
}

var durationPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// parseDuration 解析持续时间，除标准格式外还支持以 d 表示天
func parseDuration(spec string) (time.Duration, error) {
	// 首先尝试标准的时间格式
	if duration, err := time.ParseDuration(spec); err == nil {
		return duration, nil
	}

	// 支持数字+单位的格式，如 "5s", "30m", "1h", "2d"
	matches := durationPattern.FindStringSubmatch(spec)
	if len(matches) == 3 {
		val, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return 0, err
		}

		var unit time.Duration
		switch matches[2] {
		case "s":
			unit = time.Second
		case "m":
			unit = time.Minute
		case "h":
			unit = time.Hour
		case "d":
			unit = 24 * time.Hour
		}
		if val > math.MaxInt64/int64(unit) {
			return 0, fmt.Errorf("duration out of range: %s", spec)
		}
		return time.Duration(val) * unit, nil
	}

	return 0, fmt.Errorf("invalid duration format: %s", spec)
}
