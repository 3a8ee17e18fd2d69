package order

import (
	"errors"
	"time"
)

// ErrInvariant 表示 reopen 计数器越界，属于内部记账 bug，必须终止进程
// 而不是带着损坏的状态继续跑。
var ErrInvariant = errors.New("reopen counters out of valid range")

// Counters 为 reopen-after-finish 特性维护的计数：当前处于 open flow 的
// 槽位数、已 finished 数、最后一次 finished 时间。
type Counters struct {
	Opened     int
	Finished   int
	FinishedAt time.Time
}

// Reset 清零 finished 相关数据；reopen 阈值达成或 session 重置时调用。
func (c *Counters) Reset() {
	c.Finished = 0
	c.FinishedAt = time.Time{}
}
