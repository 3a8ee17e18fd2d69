package order

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Book 是虚拟订单簿：固定数量的槽位，session 内不扩缩容。
// 槽位是本地意图的缓存，venue 的订单状态才是唯一权威，
// 每个 tick 通过 Reconcile 对账。
type Book struct {
	maxOpen        int
	pumpEnabled    bool
	reopenFinished bool

	slots []*Slot

	// session 级 finished 统计，供 reset 事件使用
	OrdersFinished   int
	OrdersFinishedAt time.Time

	// reopen-after-finish 特性计数
	Counters Counters

	log *zap.Logger
}

// New 创建虚拟订单簿。槽位数 = maxOpen（+1 个 pump 槽位，若启用）。
func New(maxOpen int, pumpEnabled, reopenFinished bool, log *zap.Logger) *Book {
	if log == nil {
		log = zap.NewNop()
	}
	n := maxOpen
	if pumpEnabled {
		n++
	}
	slots := make([]*Slot, n)
	for i := range slots {
		role := RoleMiddle
		switch {
		case pumpEnabled && i == n-1:
			role = RolePump
		case i == 0:
			role = RoleFirst
		case i == maxOpen-1:
			role = RoleLast
		}
		slots[i] = &Slot{Index: i, Status: StatusCanceled, Role: role}
	}
	return &Book{
		maxOpen:        maxOpen,
		pumpEnabled:    pumpEnabled,
		reopenFinished: reopenFinished,
		slots:          slots,
		log:            log,
	}
}

// Slots 返回全部槽位（含 pump 槽位，若有）。
func (b *Book) Slots() []*Slot { return b.slots }

// StaggeredCount 返回阶梯槽位数（不含 pump）。
func (b *Book) StaggeredCount() int { return b.maxOpen }

// PumpSlot 返回 pump 槽位，未启用时为 nil。
func (b *Book) PumpSlot() *Slot {
	if !b.pumpEnabled {
		return nil
	}
	return b.slots[len(b.slots)-1]
}

// ReopenEligible 判断槽位当前是否允许重新下单。
func (b *Book) ReopenEligible(s *Slot) bool {
	return s.Status.ReopenEligible(b.reopenFinished)
}

// MarkAllClear 将所有槽位标记为 clear；session 切换的第一步。
func (b *Book) MarkAllClear() {
	for _, s := range b.slots {
		if s.Status != StatusClear {
			s.Status = StatusClear
		}
	}
}

// ResetSession 清零 session 级计数，槽位形状保持不变。opened 也要归零：
// 清场后槽位都是 clear，对账循环跳过 clear 槽位，不会再把它减下来。
func (b *Book) ResetSession() {
	b.OrdersFinished = 0
	b.OrdersFinishedAt = time.Time{}
	b.Counters.Opened = 0
	b.Counters.Reset()
}

// ResetPending 清零 reopen-after-finish 的 finished 数据（阈值达成后）。
func (b *Book) ResetPending() {
	b.Counters.Reset()
}

// Reconcile 用 venue 返回的订单列表对账所有槽位：更新 finished 与 opened
// 计数，推进槽位状态。remote 中找不到对应 id 的槽位被视为订单消失并置 clear。
// 计数越界返回 ErrInvariant，调用方必须视为不可恢复。
func (b *Book) Reconcile(remote []RemoteOrder, now time.Time) error {
	byID := make(map[string]RemoteOrder, len(remote))
	for _, r := range remote {
		byID[r.ID] = r
	}

	for _, s := range b.slots {
		if s.ID == "" {
			continue
		}
		r, found := byID[s.ID]

		remoteStatus := Status("")
		if found {
			remoteStatus = r.Status
		}
		b.log.Debug("order_reconcile",
			zap.Int("slot", s.Index),
			zap.String("role", string(s.Role)),
			zap.String("id", s.ID),
			zap.String("status", string(s.Status)),
			zap.String("remoteStatus", string(remoteStatus)),
			zap.Float64("makerSize", s.MakerSize),
			zap.Float64("basisPrice", s.BasisPrice),
			zap.Float64("orderPrice", s.OrderPrice),
		)

		// clear 槽位可能还有在途远端订单，不当作 finished 处理
		if s.Status == StatusClear {
			continue
		}

		finishedNow := (found && r.Status.Finished()) || s.SelfFilled

		// session 级 finished 只在首次转换时计 1
		if s.Status != StatusFinished && finishedNow {
			b.OrdersFinished++
			b.OrdersFinishedAt = now
		}

		if err := b.updatePending(s, found, r, finishedNow, now); err != nil {
			return err
		}

		// 最终推进槽位状态
		switch {
		case s.SelfFilled:
			s.Status = StatusClear
			s.SelfFilled = false
		case !found:
			s.Status = StatusClear
		default:
			s.Status = r.Status
		}
	}
	return nil
}

// updatePending 维护 reopen-after-finish 计数。pump 槽位不计入 opened，
// 否则满载时合法状态也会越过 maxOpen。
func (b *Book) updatePending(s *Slot, found bool, r RemoteOrder, finishedNow bool, now time.Time) error {
	if s.Role != RolePump {
		wasOpen := s.Status.InOpenFlow()
		isOpen := found && r.Status.InOpenFlow()

		if !wasOpen && isOpen {
			b.Counters.Opened++
			if b.Counters.Opened > b.maxOpen {
				return fmt.Errorf("opened %d finished %d finishedAt %v: %w",
					b.Counters.Opened, b.Counters.Finished, b.Counters.FinishedAt, ErrInvariant)
			}
		}
		if wasOpen && !isOpen {
			b.Counters.Opened--
			if b.Counters.Opened < 0 {
				return fmt.Errorf("opened %d finished %d finishedAt %v: %w",
					b.Counters.Opened, b.Counters.Finished, b.Counters.FinishedAt, ErrInvariant)
			}
		}
	}

	if s.Status != StatusFinished && finishedNow {
		b.Counters.Finished++
		b.Counters.FinishedAt = now
	}
	return nil
}
