package pricing

import (
	"time"

	"go.uber.org/zap"
)

// Source 外部行情源。返回 0 表示当前不可用。
type Source interface {
	Quote(base, quote string) float64
}

// Cache 按资产对缓存报价，超过刷新间隔才回源，屏蔽行情源的延迟和抖动。
// 刷新失败保留旧值（stale-but-available）；只有启动期检查把 0 当作致命。
// 只在 tick 单线程内使用，不加锁。
type Cache struct {
	src      Source
	interval time.Duration
	prices   map[string]float64
	updated  map[string]time.Time
	log      *zap.Logger
	now      func() time.Time
}

// NewCache 创建报价缓存；interval 是同一资产对两次回源的最小间隔。
func NewCache(src Source, interval time.Duration, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		src:      src,
		interval: interval,
		prices:   make(map[string]float64),
		updated:  make(map[string]time.Time),
		log:      log,
		now:      time.Now,
	}
}

// SetInterval 调整刷新间隔（配置加载后生效）。
func (c *Cache) SetInterval(interval time.Duration) { c.interval = interval }

func pairKey(from, to string) string { return from + "__" + to }

// Price 返回 from 以 to 计价的价格。from == to 恒为 1，不回源。
// 缓存缺失或过期时回源；新报价必须严格为正才会写入缓存，
// 否则返回旧值（没有旧值则为 0）。
func (c *Cache) Price(from, to string) float64 {
	if from == to {
		return 1
	}
	key := pairKey(from, to)
	prev, ok := c.prices[key]
	if ok && c.now().Sub(c.updated[key]) <= c.interval {
		return prev
	}

	fresh := c.src.Quote(from, to)
	c.log.Info("pricing_update",
		zap.String("maker", from),
		zap.String("taker", to),
		zap.Float64("previous", prev),
		zap.Float64("actual", fresh),
	)
	if fresh > 0 {
		c.prices[key] = fresh
		c.updated[key] = c.now()
		return fresh
	}
	return prev
}
