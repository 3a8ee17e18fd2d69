package strategy

import (
	"errors"
	"math"
)

// SlideMode 决定动态滑移零点的定义方式。
type SlideMode string

const (
	// SlideModeRatio 零点是 maker 占（maker+taker 折算）总余额的比例。
	SlideModeRatio SlideMode = "ratio"
	// SlideModeStatic 零点是一个静态 maker 数量（可用其他资产计价）。
	SlideModeStatic SlideMode = "static"
)

// AutoZero 表示 Zero 需要在 session 启动时用开盘余额自动推导。
const AutoZero = -1

// DynamicSlide 根据 maker/taker 余额偏斜计算附加价格滑移。
// 偏斜强度 intensity 始终被压到 [-1,1]；落在忽略区内滑移为 0，
// 正强度（maker 低于零点，卖得比对手快）放大 Positive 上限，
// 负强度放大 Negative 上限。每个 tick 用新鲜余额重算。
type DynamicSlide struct {
	Mode       SlideMode
	Zero       float64
	Positive   float64
	Negative   float64
	ZoneIgnore float64
	ZoneMax    float64
}

// AutoDerive 在 Zero == AutoZero 时用开盘余额推导零点，session 内只调一次。
func (d *DynamicSlide) AutoDerive(makerTotal, takerTotal, price float64) error {
	if d.Zero != AutoZero {
		return nil
	}
	switch d.Mode {
	case SlideModeRatio:
		total := makerTotal + takerTotal/price
		if total == 0 {
			d.Zero = 0.5
		} else {
			d.Zero = makerTotal / total
		}
	case SlideModeStatic:
		if makerTotal == 0 {
			return errors.New("dynamic slide static zero cannot auto-derive from zero maker balance")
		}
		d.Zero = makerTotal
	default:
		return errors.New("unknown dynamic slide mode " + string(d.Mode))
	}
	return nil
}

// Intensity 计算余额偏斜强度，结果已压到 [-1,1]。
// zeroAssetPrice 仅在 static 模式下参与（零点资产 → maker 换算）。
func (d *DynamicSlide) Intensity(makerTotal, takerTotal, price, zeroAssetPrice float64) float64 {
	var intensity float64
	switch d.Mode {
	case SlideModeStatic:
		zero := zeroAssetPrice * d.Zero
		intensity = (zero - makerTotal) / (zero * d.ZoneMax)
	default:
		total := makerTotal + takerTotal/price
		if total == 0 {
			return 0
		}
		zero := d.Zero * total
		intensity = (zero - makerTotal) / (zero * d.ZoneMax)
	}
	// 余额极端（某侧为 0、零点为 0）时公式会发散，钳位兜底
	if math.IsNaN(intensity) {
		return 0
	}
	return math.Max(-1, math.Min(1, intensity))
}

// Slide 返回动态滑移值：强度落在忽略区 → 0，否则 |intensity| 乘以对应上限。
// 结果与静态逐槽滑移相加后再作用于行情价。
func (d *DynamicSlide) Slide(makerTotal, takerTotal, price, zeroAssetPrice float64) (slide, intensity float64) {
	intensity = d.Intensity(makerTotal, takerTotal, price, zeroAssetPrice)
	switch {
	case math.Abs(intensity) < d.ZoneIgnore:
		return 0, intensity
	case intensity > 0:
		return math.Abs(intensity) * d.Positive, intensity
	case intensity < 0:
		return math.Abs(intensity) * d.Negative, intensity
	}
	return 0, intensity
}
