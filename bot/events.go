package bot

import (
	"context"

	"go.uber.org/zap"
)

// Outcome 标记一个 tick 的收束方式。
type Outcome string

const (
	OutcomePlace     Outcome = "place"     // 没有事件触发，进入挂单阶段
	OutcomeExit      Outcome = "exit"      // 越界退出，进程以 0 退出交给监管者
	OutcomeReset     Outcome = "reset"     // 丢弃 session，重新定心
	OutcomeSelfTrade Outcome = "selftrade" // takerbot 吃单成功，本 tick 结束
	OutcomeWait      Outcome = "wait"      // 条件不满足，跳过挂单
)

// Event 是 tick 级联中的一级。Fired 按声明顺序判定，先触发者决定
// 本 tick 的 Outcome，后续事件不再评估。
type Event struct {
	Name    string
	Fired   func(ctx context.Context) (bool, error)
	Outcome Outcome
}

// events 返回严格优先级排列的事件级联。
func (b *Bot) events() []Event {
	return []Event{
		{Name: "boundary_exit", Fired: b.exitFired, Outcome: OutcomeExit},
		{Name: "session_reset", Fired: b.resetFired, Outcome: OutcomeReset},
		{Name: "self_trade", Fired: b.takerbotFired, Outcome: OutcomeSelfTrade},
		{Name: "wait", Fired: b.waitFired, Outcome: OutcomeWait},
	}
}

// exitFired 判定越界退出。max 与 min 都要评估，退出前按各自的
// nocancel 开关决定是否清场。
func (b *Bot) exitFired(ctx context.Context) (bool, error) {
	price := b.sess.PriceMaker
	fired := false
	if b.boundary.HitMax(price) && !b.cfg.BoundaryMaxNoExit {
		if !b.cfg.BoundaryMaxNoCancel {
			if err := b.clearAll(ctx); err != nil {
				return false, err
			}
		}
		fired = true
	}
	if b.boundary.HitMin(price) && !b.cfg.BoundaryMinNoExit {
		if !b.cfg.BoundaryMinNoCancel {
			if err := b.clearAll(ctx); err != nil {
				return false, err
			}
		}
		fired = true
	}
	return fired, nil
}

// resetFired 判定 session 重置：价格位移、session 存活时间、
// 完结订单数、最后一笔完结后的静默时间，任一达标即触发。
func (b *Bot) resetFired(context.Context) (bool, error) {
	now := b.now()
	price := b.sess.PriceMaker
	start := b.sess.ResetStartPrice

	if t := b.cfg.ResetOnPriceChangePositive; t > 0 && price >= start*(1+t) {
		return true, nil
	}
	if t := b.cfg.ResetOnPriceChangeNegative; t > 0 && price <= start*(1-t) {
		return true, nil
	}
	if d := b.cfg.ResetSessionAge(); d > 0 && now.Sub(b.sess.StartedAt) > d {
		return true, nil
	}
	if n := b.cfg.ResetAfterOrderFinishNumber; n > 0 && b.book.OrdersFinished >= n {
		return true, nil
	}
	if d := b.cfg.ResetFinishDelay(); d > 0 && !b.book.OrdersFinishedAt.IsZero() &&
		now.Sub(b.book.OrdersFinishedAt) > d {
		return true, nil
	}
	return false, nil
}

// takerbotFired 触发一轮自成交扫描；吃到单就收束本 tick。
func (b *Bot) takerbotFired(ctx context.Context) (bool, error) {
	if b.cfg.TakerbotInterval <= 0 {
		return false, nil
	}
	return b.takerbotPass(ctx)
}

// waitFired 判定本 tick 是否跳过挂单：没有可卖余额、完结订单重开
// 节流未到期、或价格越界但配置了 noexit。所有分支都要评估，
// noexit 分支带清场副作用。
func (b *Bot) waitFired(ctx context.Context) (bool, error) {
	fired := false

	sell := b.sellable(0, 0)
	if sell == 0 {
		b.log.Info("wait_no_balance",
			zap.Float64("available", b.sess.BalanceMaker.Available))
		fired = true
	}

	if b.cfg.ReopenFinished() && b.reopenThrottled() {
		b.log.Info("wait_reopen_throttle",
			zap.Int("finished", b.book.Counters.Finished),
			zap.Int("opened", b.book.Counters.Opened))
		fired = true
	}

	price := b.sess.PriceMaker
	if b.boundary.HitMax(price) && b.cfg.BoundaryMaxNoExit {
		if !b.cfg.BoundaryMaxNoCancel {
			if err := b.clearAll(ctx); err != nil {
				return false, err
			}
		}
		fired = true
	}
	if b.boundary.HitMin(price) && b.cfg.BoundaryMinNoExit {
		if !b.cfg.BoundaryMinNoCancel {
			if err := b.clearAll(ctx); err != nil {
				return false, err
			}
		}
		fired = true
	}
	return fired, nil
}

// gateState 是重开节流两个条件（数量、延迟）各自的判定结果。
type gateState int

const (
	gateDisabled gateState = iota // 条件未配置
	gateNotReady                  // 还没有完结订单可言
	gateWait                      // 有完结订单但阈值未到，压住重开
	gateReached                   // 阈值达成，计数应当清零放行
)

// checkFinishNum 判定数量条件：完结 + 在途 达到配置数即到期，
// 但完结数不足配置数时仍然要等。
func (b *Bot) checkFinishNum() gateState {
	num := b.cfg.ReopenFinishedNum
	if num == 0 {
		return gateDisabled
	}
	c := b.book.Counters
	if c.Finished > 0 && c.Finished+c.Opened >= num {
		if c.Finished < num {
			return gateWait
		}
		return gateReached
	}
	return gateNotReady
}

// checkFinishDelay 判定延迟条件：最后一笔完结后必须静默满配置时长。
func (b *Bot) checkFinishDelay() gateState {
	d := b.cfg.ReopenDelay()
	if d == 0 {
		return gateDisabled
	}
	at := b.book.Counters.FinishedAt
	if at.IsZero() {
		return gateNotReady
	}
	if b.now().Sub(at) < d {
		return gateWait
	}
	return gateReached
}

// reopenThrottled 合成两个条件：任一处于 wait 且另一个不反对时压住重开。
func (b *Bot) reopenThrottled() bool {
	num := b.checkFinishNum()
	delay := b.checkFinishDelay()
	return (delay == gateWait && num == gateWait) ||
		(delay == gateDisabled && num == gateWait) ||
		(num == gateDisabled && delay == gateWait)
}

// detectReopenReset 在 prepare 阶段调用：任一条件到期就清零完结计数，
// 本 tick 即可重开对应数量的槽位。
func (b *Bot) detectReopenReset() {
	if !b.cfg.ReopenFinished() {
		return
	}
	if b.checkFinishNum() == gateReached || b.checkFinishDelay() == gateReached {
		b.log.Info("reopen_counters_reset",
			zap.Int("finished", b.book.Counters.Finished),
			zap.Int("opened", b.book.Counters.Opened))
		b.book.ResetPending()
	}
}
