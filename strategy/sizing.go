package strategy

import "math"

// DefaultFeeRate 是从可卖余额预扣的交易费估算比例。
const DefaultFeeRate = 0.007

// Balance 是某资产在一个 tick 内的余额快照，available+reserved == total。
type Balance struct {
	Total     float64
	Available float64
	Reserved  float64
}

// Reserves 描述不能用于挂单的保留余额。Number 以 Asset 计价，
// 通过 AssetPrice 换算成 maker；Percent 按 maker 总余额的比例保留。
type Reserves struct {
	FeeRate    float64
	Number     float64
	AssetPrice float64 // 保留资产 → maker 的价格
	Percent    float64
}

// SellableAmount 从 maker 余额推出本槽位实际可卖数量：
// 依次扣费、套用两种保留、再做 max 上限裁剪；之后按部分成交策略收口：
// 配置了 minAmount 时低于下限直接归零（宁可不挂也不挂小单），
// 否则 maxAmount 非零时必须足额挂出，被任何裁剪压低过就归零。
// 纯函数：相同快照输入恒等输出。
func SellableAmount(bal Balance, res Reserves, maxAmount, minAmount float64) float64 {
	feeRate := res.FeeRate
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}
	fee := bal.Available * feeRate
	sell := math.Max(bal.Available-fee, 0)

	if res.Number != 0 {
		save := res.AssetPrice * res.Number
		sell = math.Min(sell, bal.Available-fee-save)
		sell = math.Max(sell, 0)
	}
	if res.Percent != 0 {
		sell = math.Min(sell, bal.Available-fee-res.Percent*bal.Total)
		sell = math.Max(sell, 0)
	}
	if maxAmount != 0 {
		sell = math.Min(maxAmount, sell)
	}

	if minAmount != 0 {
		if sell < minAmount {
			sell = 0
		}
	} else if maxAmount != 0 && sell != maxAmount {
		sell = 0
	}
	return sell
}

// StaggeredAmount 把订单大小在 0..total-1 槽位间按曲线分布：
// shape == 0 线性；shape > 0 指数（往阶梯尾部增长加速）；
// shape < 0 对数（头部即接近尾值）。shape 域为 (-1,1)，由配置校验保证。
// 首末槽位恰好等于 start/end（6 位小数舍入内）。
func StaggeredAmount(start, end float64, total, index int, shape float64) float64 {
	ratio := 0.0
	if total > 1 {
		ratio = float64(index) / float64(total-1)
	}
	var factor float64
	switch {
	case shape == 0:
		factor = ratio
	case shape > 0:
		factor = math.Pow(ratio, 1-shape)
	default:
		factor = math.Pow(ratio, math.Pow(100, -shape)+shape*4.4)
	}
	return Round6(start + (end-start)*factor)
}

// RandomAmount 在 [min(start,end), max(start,end)] 均匀取值（sellrandom 模式）。
// uniform 是 [0,1) 随机数发生器，注入以便测试。
func RandomAmount(start, end float64, uniform func() float64) float64 {
	lo := math.Min(start, end)
	hi := math.Max(start, end)
	return Round6(lo + uniform()*(hi-lo))
}

// Round6 舍入到 6 位小数，venue 的数量精度上限。
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
