package parser

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// 缓存大小限制，避免内存无限增长
const maxCacheSize = 1000

// parseCache 表达式解析结果的 LRU 缓存，键为规范化后的表达式
var parseCache = newParseCache(maxCacheSize)

func newParseCache(size int) *lru.Cache[string, *CronSchedule] {
	c, err := lru.New[string, *CronSchedule](size)
	if err != nil {
		// 只在 size <= 0 时出现
		panic(err)
	}
	return c
}

// ParseSchedule 解析并展开 cron 表达式，结果按规范化后的表达式缓存。
// 返回的 *CronSchedule 为只读共享值，调用方不得修改。
func ParseSchedule(spec string) (*CronSchedule, error) {
	key := strings.Join(strings.Fields(spec), " ")
	if schedule, ok := parseCache.Get(key); ok {
		return schedule, nil
	}

	// 缓存未命中，解析表达式，失败的结果不缓存
	fields, err := Parse(spec)
	if err != nil {
		return nil, err
	}
	schedule, err := resolve(fields, spec)
	if err != nil {
		return nil, err
	}

	// 其他协程可能已经写入，保留先写入的值
	if existing, found, _ := parseCache.PeekOrAdd(key, schedule); found {
		return existing, nil
	}
	return schedule, nil
}
