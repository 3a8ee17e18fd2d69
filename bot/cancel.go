package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dxmaker-go/gateway"
)

// clearAll 撤掉本实例跟踪的全部挂单。撤单在 venue 上是异步的，
// 循环列单直到没有可撤的为止。
func (b *Bot) clearAll(ctx context.Context) error {
	b.book.MarkAllClear()

	tracked := make(map[string]bool)
	for _, s := range b.book.Slots() {
		if s.ID != "" {
			tracked[s.ID] = true
		}
	}

	for {
		remote, err := b.listOrdersRetry(ctx)
		if err != nil {
			return err
		}
		canceled := 0
		for _, r := range remote {
			if !tracked[r.ID] || !r.Status.Takeable() {
				continue
			}
			if err := b.gw.CancelOrder(ctx, r.ID); err != nil {
				b.log.Warn("order_cancel_error", zap.String("id", r.ID), zap.Error(err))
				continue
			}
			b.log.Info("order_canceled", zap.String("id", r.ID))
			if b.m != nil {
				b.m.OrdersCanceled.Inc()
			}
			canceled++
		}
		if canceled == 0 {
			return nil
		}
		if err := b.sleepCtx(ctx, b.cfg.InternalDelay()); err != nil {
			return err
		}
	}
}

// CancelMarket 撤掉指定交易对上的全部挂单。无状态，给外部监管脚本
// 在机器人实例之外清场用。
func CancelMarket(ctx context.Context, gw gateway.Client, maker, taker string, delay time.Duration, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	for {
		remote, err := gw.ListOrders(ctx, maker, taker)
		if err != nil {
			return err
		}
		canceled := 0
		for _, r := range remote {
			if !r.Status.Takeable() {
				continue
			}
			if err := gw.CancelOrder(ctx, r.ID); err != nil {
				log.Warn("order_cancel_error", zap.String("id", r.ID), zap.Error(err))
				continue
			}
			log.Info("order_canceled", zap.String("id", r.ID))
			canceled++
		}
		if canceled == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// CancelAll 撤掉所有市场上的全部挂单，一次性工具。
func CancelAll(ctx context.Context, gw gateway.Client, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	remote, err := gw.ListAllOrders(ctx)
	if err != nil {
		return err
	}
	for _, r := range remote {
		if !r.Status.Takeable() {
			continue
		}
		if err := gw.CancelOrder(ctx, r.ID); err != nil {
			log.Warn("order_cancel_error", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		log.Info("order_canceled", zap.String("id", r.ID))
	}
	return nil
}
