package bot

import (
	"time"

	"dxmaker-go/gateway"
)

// Session 保存一个定价周期内的运行快照。重置意味着丢弃这里的
// 一切并以当前行情重新定心。
type Session struct {
	StartedAt time.Time

	// PriceMaker 最近一次取到的 maker 行情价（taker 计价）。
	PriceMaker float64
	// ResetStartPrice 开盘行情价，价格位移类重置与它比较。
	ResetStartPrice float64

	BalanceMaker gateway.Balance
	BalanceTaker gateway.Balance

	// 换算价缓存，每个 tick 刷新
	SaveAssetPrice float64 // 保留资产 → maker
	SizeAssetPrice float64 // 规模资产 → maker
	ZeroAssetPrice float64 // 动态滑移零点资产 → maker

	// DynamicSlideValue 本 tick 的动态滑移附加值
	DynamicSlideValue float64
}
