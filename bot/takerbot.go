package bot

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"dxmaker-go/order"
)

// takerbotPass 扫描公共订单簿，寻找出价不低于自己挂单价的买单并
// 自成交：先撤掉被覆盖的自有订单，再去吃对方的单。任何一步失败都
// 放弃整轮（绝不能在撤单不完整时吃单，否则同一份余额会被占用两次），
// 计时器只在完整跑完后推进。返回 true 表示本轮吃到了单。
func (b *Bot) takerbotPass(ctx context.Context) (bool, error) {
	now := b.now()
	if b.takerbotAt.IsZero() {
		b.takerbotAt = now
		return false, nil
	}
	if now.Sub(b.takerbotAt) <= b.cfg.TakerbotScanInterval() {
		return false, nil
	}

	bookSnap, err := b.gw.GetOrderBook(ctx, b.cfg.Maker, b.cfg.Taker)
	if err != nil {
		b.log.Warn("takerbot_book_error", zap.Error(err))
		return false, nil
	}

	bids := bookSnap.Bids
	sort.Slice(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })

	own := b.takeableSlots()
	if len(own) == 0 {
		b.takerbotAt = now
		return false, nil
	}

	took := false
	for _, bid := range bids {
		candidates := make([]*order.Slot, 0, len(own))
		sum := 0.0
		for _, s := range own {
			if s.SelfFilled {
				continue
			}
			// own 按挂单价升序，越过买价后不会再有命中
			if s.OrderPrice > bid.Price {
				break
			}
			if !(s.MakerSizeMin != 0 && bid.Size >= s.MakerSizeMin) && bid.Size < s.MakerSize {
				continue
			}
			candidates = append(candidates, s)
			sum += s.MakerSize
			if sum >= bid.Size {
				break
			}
		}
		if sum < bid.Size || len(candidates) == 0 {
			continue
		}

		aborted := false
		for _, s := range candidates {
			if err := b.gw.CancelOrder(ctx, s.ID); err != nil {
				b.log.Warn("takerbot_cancel_error",
					zap.String("id", s.ID), zap.Error(err))
				aborted = true
				break
			}
			if b.m != nil {
				b.m.OrdersCanceled.Inc()
			}
		}
		if aborted {
			return took, nil
		}

		if err := b.gw.TakeOrder(ctx, bid.ID, b.cfg.TakerAddress, b.cfg.MakerAddress); err != nil {
			b.log.Warn("takerbot_take_error",
				zap.String("id", bid.ID), zap.Error(err))
			return took, nil
		}
		for _, s := range candidates {
			s.SelfFilled = true
		}
		b.log.Info("takerbot_self_trade",
			zap.String("bid", bid.ID),
			zap.Float64("bidPrice", bid.Price),
			zap.Float64("bidSize", bid.Size),
			zap.Int("orders", len(candidates)))
		if b.m != nil {
			b.m.OrdersTaken.Inc()
		}
		took = true
	}

	b.takerbotAt = now
	return took, nil
}

// takeableSlots 返回仍可撤销的自有槽位，按挂单价升序。
func (b *Bot) takeableSlots() []*order.Slot {
	out := make([]*order.Slot, 0, len(b.book.Slots()))
	for _, s := range b.book.Slots() {
		if s.ID != "" && s.Status.Takeable() && !s.SelfFilled {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderPrice < out[j].OrderPrice })
	return out
}
