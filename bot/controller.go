package bot

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"dxmaker-go/config"
	"dxmaker-go/gateway"
	"dxmaker-go/metrics"
	"dxmaker-go/order"
	"dxmaker-go/pricing"
	"dxmaker-go/strategy"
)

// Bot 是做市主控制器：单 goroutine 的 tick 循环，每轮先对账再按
// 事件级联收束。venue 状态是权威，本地只缓存意图，因此任何一轮
// 失败都可以在下一轮自愈，只有计数器越界是致命的。
type Bot struct {
	cfg      config.Config
	gw       gateway.Client
	prices   *pricing.Cache
	book     *order.Book
	boundary *strategy.Boundary
	slide    *strategy.DynamicSlide // nil 表示未启用
	log      *zap.Logger
	m        *metrics.Collector // 可为 nil

	sess Session

	// takerbot 扫描计时，完整跑完一轮才推进
	takerbotAt time.Time

	uniform func() float64
	now     func() time.Time
}

// New 组装控制器。metrics 可传 nil。
func New(cfg config.Config, gw gateway.Client, prices *pricing.Cache, log *zap.Logger, m *metrics.Collector) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	var slide *strategy.DynamicSlide
	if cfg.DynamicSlideEnabled() {
		slide = &strategy.DynamicSlide{
			Mode:       strategy.SlideMode(cfg.SlideDynType),
			Zero:       cfg.SlideDynZero,
			Positive:   cfg.SlideDynPositive,
			Negative:   cfg.SlideDynNegative,
			ZoneIgnore: cfg.SlideDynZoneIgnore,
			ZoneMax:    cfg.SlideDynZoneMax,
		}
	}
	return &Bot{
		cfg:    cfg,
		gw:     gw,
		prices: prices,
		book:   order.New(cfg.MaxOpenOrders, cfg.PumpEnabled(), cfg.ReopenFinished(), log),
		boundary: &strategy.Boundary{
			MaxRelative: cfg.BoundaryMaxRelative,
			MinRelative: cfg.BoundaryMinRelative,
			MaxStatic:   cfg.BoundaryMaxStatic,
			MinStatic:   cfg.BoundaryMinStatic,
			AssetTrack:  cfg.BoundaryAssetTrack,
		},
		slide:   slide,
		log:     log,
		m:       m,
		uniform: rand.Float64,
		now:     time.Now,
	}
}

// Run 执行主循环：清场、开 session、tick 直到退出或重置。
// 返回 nil 表示越界退出（监管者据此停机），错误表示致命故障。
func (b *Bot) Run(ctx context.Context) error {
	if err := b.bootstrap(); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.clearAll(ctx); err != nil {
			return err
		}
		if err := b.prepareSession(ctx); err != nil {
			return err
		}

	session:
		for {
			outcome, err := b.Tick(ctx)
			if err != nil {
				return err
			}
			if b.m != nil {
				b.m.Ticks.Inc()
			}
			switch outcome {
			case OutcomeExit:
				b.log.Info("bot_exit_boundary", zap.Float64("priceMaker", b.sess.PriceMaker))
				return nil
			case OutcomeReset:
				b.log.Info("session_reset", zap.Float64("priceMaker", b.sess.PriceMaker),
					zap.Float64("resetStartPrice", b.sess.ResetStartPrice))
				if b.m != nil {
					b.m.SessionResets.Inc()
				}
				break session
			}
			if err := b.sleepCtx(ctx, b.cfg.CycleDelay()); err != nil {
				return err
			}
		}
	}
}

// Tick 跑一轮：准备阶段刷新所有外部状态，然后按级联收束。
func (b *Bot) Tick(ctx context.Context) (Outcome, error) {
	if err := b.prepare(ctx); err != nil {
		return "", err
	}
	for _, ev := range b.events() {
		fired, err := ev.Fired(ctx)
		if err != nil {
			return "", err
		}
		if fired {
			b.log.Debug("tick_event", zap.String("event", ev.Name))
			if b.m != nil && ev.Outcome == OutcomeWait {
				b.m.Waits.Inc()
			}
			return ev.Outcome, nil
		}
	}
	if err := b.placeOrders(ctx); err != nil {
		return "", err
	}
	return OutcomePlace, nil
}

// bootstrap 一次性验证所有需要的行情可用，任何一个取不到直接失败，
// 避免带着 0 价格进入循环。
func (b *Bot) bootstrap() error {
	check := func(from, to string) error {
		if p := b.prices.Price(from, to); p <= 0 {
			return fmt.Errorf("no price available for %s/%s", from, to)
		}
		return nil
	}
	if err := check(b.cfg.Maker, b.cfg.Taker); err != nil {
		return err
	}
	if err := check(b.cfg.SellSizeAsset, b.cfg.Maker); err != nil {
		return err
	}
	if b.cfg.BalanceSaveNumber != 0 {
		if err := check(b.cfg.BalanceSaveAsset, b.cfg.Maker); err != nil {
			return err
		}
	}
	if b.slide != nil && b.slide.Mode == strategy.SlideModeStatic {
		if err := check(b.cfg.SlideDynZeroAsset, b.cfg.Maker); err != nil {
			return err
		}
	}
	if b.boundaryConfigured() {
		if b.cfg.BoundaryReversedPricing {
			return check(b.cfg.BoundaryAsset, b.cfg.Maker)
		}
		return check(b.cfg.BoundaryAsset, b.cfg.Taker)
	}
	return nil
}

func (b *Bot) boundaryConfigured() bool {
	return b.cfg.BoundaryMaxRelative != 0 || b.cfg.BoundaryMinRelative != 0 ||
		b.cfg.BoundaryMaxStatic != 0 || b.cfg.BoundaryMinStatic != 0 ||
		b.cfg.BoundaryStartPrice > 0
}

// prepareSession 以当前行情开启新的定价周期。
func (b *Bot) prepareSession(ctx context.Context) error {
	if err := b.refreshBalances(ctx); err != nil {
		return err
	}
	price, err := b.priceRetry(ctx, b.cfg.Maker, b.cfg.Taker)
	if err != nil {
		return err
	}
	b.sess.PriceMaker = price
	b.sess.ResetStartPrice = price
	b.sess.StartedAt = b.now()
	b.book.ResetSession()

	if b.boundaryConfigured() {
		rel, err := b.boundaryRelativePrice(ctx)
		if err != nil {
			return err
		}
		b.boundary.Init(b.cfg.BoundaryStartPrice, price, rel)
	}

	if b.slide != nil {
		if err := b.slide.AutoDerive(b.sess.BalanceMaker.Total, b.sess.BalanceTaker.Total, price); err != nil {
			return err
		}
	}
	b.log.Info("session_start",
		zap.Float64("priceMaker", price),
		zap.Float64("balanceMaker", b.sess.BalanceMaker.Total),
		zap.Float64("balanceTaker", b.sess.BalanceTaker.Total),
	)
	return nil
}

// prepare 刷新余额、行情、换算价和边界，检测重开计数到期，
// 最后对账虚拟订单簿。
func (b *Bot) prepare(ctx context.Context) error {
	if err := b.refreshBalances(ctx); err != nil {
		return err
	}

	price, err := b.priceRetry(ctx, b.cfg.Maker, b.cfg.Taker)
	if err != nil {
		return err
	}
	b.sess.PriceMaker = price
	if b.m != nil {
		b.m.PriceMaker.Set(price)
	}

	if b.slide != nil {
		if b.slide.Mode == strategy.SlideModeStatic {
			if p := b.prices.Price(b.cfg.SlideDynZeroAsset, b.cfg.Maker); p > 0 {
				b.sess.ZeroAssetPrice = p
			}
		} else {
			b.sess.ZeroAssetPrice = 1
		}
		slide, intensity := b.slide.Slide(
			b.sess.BalanceMaker.Total, b.sess.BalanceTaker.Total, price, b.sess.ZeroAssetPrice)
		b.sess.DynamicSlideValue = slide
		b.log.Debug("dynamic_slide",
			zap.Float64("slide", slide),
			zap.Float64("intensity", intensity))
		if b.m != nil {
			b.m.DynamicSlide.Set(slide)
		}
	}

	if b.cfg.BalanceSaveNumber != 0 {
		if p := b.prices.Price(b.cfg.BalanceSaveAsset, b.cfg.Maker); p > 0 {
			b.sess.SaveAssetPrice = p
		}
	}
	if p := b.prices.Price(b.cfg.SellSizeAsset, b.cfg.Maker); p > 0 {
		b.sess.SizeAssetPrice = p
	}

	if b.boundaryConfigured() {
		if b.cfg.BoundaryReversedPricing {
			if p := b.prices.Price(b.cfg.BoundaryAsset, b.cfg.Maker); p > 0 {
				b.boundary.UpdateRelative(1 / p)
			}
		} else {
			b.boundary.UpdateRelative(b.prices.Price(b.cfg.BoundaryAsset, b.cfg.Taker))
		}
	}

	b.detectReopenReset()

	remote, err := b.listOrdersRetry(ctx)
	if err != nil {
		return err
	}
	finishedBefore := b.book.OrdersFinished
	if err := b.book.Reconcile(remote, b.now()); err != nil {
		return err
	}
	if b.m != nil {
		if d := b.book.OrdersFinished - finishedBefore; d > 0 {
			b.m.OrdersFinished.Add(float64(d))
		}
		b.m.OpenOrders.Set(float64(b.book.Counters.Opened))
	}
	return nil
}

// boundaryRelativePrice 取 boundary 资产的换算价。reversed 模式下边界值
// 以「boundary 资产每 maker」表达，取倒数回到 maker/taker 价格空间。
func (b *Bot) boundaryRelativePrice(ctx context.Context) (float64, error) {
	if b.cfg.BoundaryReversedPricing {
		p, err := b.priceRetry(ctx, b.cfg.BoundaryAsset, b.cfg.Maker)
		if err != nil {
			return 0, err
		}
		return 1 / p, nil
	}
	return b.priceRetry(ctx, b.cfg.BoundaryAsset, b.cfg.Taker)
}

// placeOrders 为所有可重开槽位下单：先阶梯槽位再 pump 槽位。
// 余额不够只中断阶梯（pump 量更小，可能仍然挂得上）；
// 提交失败不是致命错误，放弃本轮等下个 tick 重试。
func (b *Bot) placeOrders(ctx context.Context) error {
	n := b.book.StaggeredCount()
staggered:
	for i, slot := range b.book.Slots() {
		if slot.Role == order.RolePump {
			continue
		}
		if !b.book.ReopenEligible(slot) {
			continue
		}
		// 每次下单都会动余额，挂前重新拉快照
		if err := b.refreshBalances(ctx); err != nil {
			return err
		}

		maxAmt := b.staggeredMax(n, i) * b.sess.SizeAssetPrice
		minAmt := strategy.StaggeredAmount(b.cfg.SellStartMin, b.cfg.SellEndMin, n, i, b.cfg.SellType) * b.sess.SizeAssetPrice

		res, err := b.placeSlot(ctx, slot, maxAmt, minAmt, b.slideAt(n, i))
		if err != nil {
			return err
		}
		switch res {
		case placeFailed:
			// 提交失败说明 venue 异常，放弃本轮剩余槽位
			return nil
		case placeSkipped:
			if b.cfg.MakeNextOnHit {
				continue
			}
			break staggered
		}
	}

	if pump := b.book.PumpSlot(); pump != nil && b.book.ReopenEligible(pump) {
		if err := b.refreshBalances(ctx); err != nil {
			return err
		}
		maxAmt := b.cfg.PumpAmount * b.sess.SizeAssetPrice
		minAmt := b.cfg.PumpAmountMin * b.sess.SizeAssetPrice
		slide := b.cfg.SlideMax() + b.cfg.SlidePump + b.sess.DynamicSlideValue
		if _, err := b.placeSlot(ctx, pump, maxAmt, minAmt, slide); err != nil {
			return err
		}
	}
	return nil
}

type placeResult int

const (
	placePlaced placeResult = iota
	placeSkipped
	placeFailed
)

// placeSlot 为单个槽位算量、算价并提交。
func (b *Bot) placeSlot(ctx context.Context, slot *order.Slot, maxAmt, minAmt, slide float64) (placeResult, error) {
	minArg := 0.0
	if b.cfg.PartialOrders {
		minArg = minAmt
	}
	sell := b.sellable(maxAmt, minArg)
	if sell == 0 {
		b.log.Info("slot_skip_no_balance",
			zap.Int("slot", slot.Index),
			zap.Float64("maxAmount", maxAmt),
			zap.Float64("available", b.sess.BalanceMaker.Available))
		return placeSkipped, nil
	}

	basis := b.boundary.ClampPrice(b.sess.PriceMaker)
	finalPrice := basis * slide
	sellAmount := strategy.Round6(sell)
	buyAmount := strategy.Round6(sell * finalPrice)
	minSize := 0.0
	if b.cfg.PartialOrders {
		minSize = strategy.Round6(minArg)
	}

	slot.Release()
	r, err := b.gw.SubmitOrder(ctx,
		b.cfg.Maker, sellAmount, b.cfg.MakerAddress,
		b.cfg.Taker, buyAmount, b.cfg.TakerAddress,
		minSize,
	)
	if err != nil {
		b.log.Error("order_submit_error",
			zap.Int("slot", slot.Index),
			zap.Float64("makerSize", sellAmount),
			zap.Float64("takerSize", buyAmount),
			zap.Error(err))
		return placeFailed, nil
	}
	slot.Assign(r, b.sess.PriceMaker, finalPrice, minSize)
	b.log.Info("order_placed",
		zap.Int("slot", slot.Index),
		zap.String("role", string(slot.Role)),
		zap.String("id", r.ID),
		zap.Float64("makerSize", sellAmount),
		zap.Float64("takerSize", buyAmount),
		zap.Float64("orderPrice", finalPrice))
	if b.m != nil {
		b.m.OrdersPlaced.Inc()
	}
	if err := b.sleepCtx(ctx, b.cfg.InternalDelay()); err != nil {
		return placePlaced, err
	}
	return placePlaced, nil
}

// staggeredMax 返回槽位 i 的目标卖量（规模资产计价）。
func (b *Bot) staggeredMax(n, i int) float64 {
	if b.cfg.SellRandom {
		return strategy.RandomAmount(b.cfg.SellStart, b.cfg.SellEnd, b.uniform)
	}
	return strategy.StaggeredAmount(b.cfg.SellStart, b.cfg.SellEnd, n, i, b.cfg.SellType)
}

// slideAt 返回槽位 i 的静态滑移加动态附加。
func (b *Bot) slideAt(n, i int) float64 {
	step := 0.0
	if n > 1 {
		step = float64(i) * (b.cfg.SlideEnd - b.cfg.SlideStart) / float64(n-1)
	}
	return b.cfg.SlideStart + step + b.sess.DynamicSlideValue
}

// sellable 把当前余额快照和保留规则交给纯函数算出可卖量。
func (b *Bot) sellable(maxAmt, minAmt float64) float64 {
	bal := strategy.Balance{
		Total:     b.sess.BalanceMaker.Total,
		Available: b.sess.BalanceMaker.Available,
		Reserved:  b.sess.BalanceMaker.Reserved,
	}
	res := strategy.Reserves{
		Number:     b.cfg.BalanceSaveNumber,
		AssetPrice: b.sess.SaveAssetPrice,
		Percent:    b.cfg.BalanceSavePercent,
	}
	return strategy.SellableAmount(bal, res, maxAmt, minAmt)
}

// refreshBalances 拉最新余额快照，失败时按错误间隔重试到成功。
func (b *Bot) refreshBalances(ctx context.Context) error {
	maker, err := b.balanceRetry(ctx, b.cfg.Maker, b.cfg.MakerAddress)
	if err != nil {
		return err
	}
	taker, err := b.balanceRetry(ctx, b.cfg.Taker, b.cfg.TakerAddress)
	if err != nil {
		return err
	}
	b.sess.BalanceMaker = maker
	b.sess.BalanceTaker = taker
	if b.m != nil {
		b.m.BalanceMaker.Set(maker.Total)
		b.m.BalanceTaker.Set(taker.Total)
	}
	return nil
}

func (b *Bot) balanceRetry(ctx context.Context, asset, addr string) (gateway.Balance, error) {
	if !b.cfg.AddressOnly {
		addr = ""
	}
	for {
		bal, err := b.gw.Balances(ctx, asset, addr)
		if err == nil {
			return bal, nil
		}
		b.log.Warn("balance_error", zap.String("asset", asset), zap.Error(err))
		if serr := b.sleepCtx(ctx, b.cfg.InternalErrorDelay()); serr != nil {
			return gateway.Balance{}, serr
		}
	}
}

// priceRetry 循环取价直到拿到正数，只能被 ctx 打断。
func (b *Bot) priceRetry(ctx context.Context, from, to string) (float64, error) {
	for {
		if p := b.prices.Price(from, to); p > 0 && !math.IsNaN(p) {
			return p, nil
		}
		b.log.Warn("pricing_unavailable", zap.String("maker", from), zap.String("taker", to))
		if err := b.sleepCtx(ctx, b.cfg.InternalErrorDelay()); err != nil {
			return 0, err
		}
	}
}

func (b *Bot) listOrdersRetry(ctx context.Context) ([]order.RemoteOrder, error) {
	for {
		remote, err := b.gw.ListOrders(ctx, b.cfg.Maker, b.cfg.Taker)
		if err == nil {
			return remote, nil
		}
		b.log.Warn("order_list_error", zap.Error(err))
		if serr := b.sleepCtx(ctx, b.cfg.InternalErrorDelay()); serr != nil {
			return nil, serr
		}
	}
}

// sleepCtx 可被取消的 sleep。
func (b *Bot) sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
