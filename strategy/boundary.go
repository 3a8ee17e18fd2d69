package strategy

import "math"

// Boundary 计算并执行价格天花板/地板。
// relative 边界以 session 初始中心价为基准乘以配置比率，
// static 边界是以 boundary 资产计价的绝对值；二者互斥（配置校验保证）。
// AssetTrack 开启时边界跟随 boundary 资产现价，否则用初始价。
type Boundary struct {
	MaxRelative float64
	MinRelative float64
	MaxStatic   float64
	MinStatic   float64
	AssetTrack  bool

	// session 启动时捕获
	InitialCenter         float64 // maker/taker 初始中心价
	InitialCenterRelative float64 // 中心价换算到 boundary 资产
	RelativeInitial       float64 // boundary 资产初始价
	RelativeActual        float64 // boundary 资产现价（track 时更新）
}

// Init 捕获 session 初始定价。startPrice 非零表示操作员手动指定中心价
// （以 boundary 资产计价），否则用当前行情价自动定心。
func (b *Boundary) Init(startPrice, priceMaker, relative float64) {
	b.RelativeInitial = relative
	b.RelativeActual = relative
	if startPrice > 0 {
		b.InitialCenter = startPrice * relative
		b.InitialCenterRelative = startPrice
	} else {
		b.InitialCenter = priceMaker
		if relative != 0 {
			b.InitialCenterRelative = priceMaker / relative
		}
	}
}

// UpdateRelative 记录 boundary 资产最新价；0 表示本轮取价失败，保持旧值。
func (b *Boundary) UpdateRelative(relative float64) {
	if relative != 0 {
		b.RelativeActual = relative
	}
}

func (b *Boundary) maxRelative() float64 {
	if b.MaxRelative == 0 {
		return 0
	}
	if !b.AssetTrack {
		return b.InitialCenter * b.MaxRelative
	}
	return b.InitialCenterRelative * b.RelativeActual * b.MaxRelative
}

func (b *Boundary) maxStatic() float64 {
	if b.MaxStatic == 0 {
		return 0
	}
	if !b.AssetTrack {
		return b.MaxStatic * b.RelativeInitial
	}
	return b.MaxStatic * b.RelativeActual
}

func (b *Boundary) minRelative() float64 {
	if b.MinRelative == 0 {
		return 0
	}
	if !b.AssetTrack {
		return b.InitialCenter * b.MinRelative
	}
	return b.InitialCenterRelative * b.RelativeActual * b.MinRelative
}

func (b *Boundary) minStatic() float64 {
	if b.MinStatic == 0 {
		return 0
	}
	if !b.AssetTrack {
		return b.MinStatic * b.RelativeInitial
	}
	return b.MinStatic * b.RelativeActual
}

// EffectiveMax 返回当前生效上界；0 = 未配置。
func (b *Boundary) EffectiveMax() float64 {
	if m := b.maxRelative(); m != 0 {
		return m
	}
	return b.maxStatic()
}

// EffectiveMin 返回当前生效下界；0 = 未配置。
func (b *Boundary) EffectiveMin() float64 {
	if m := b.minRelative(); m != 0 {
		return m
	}
	return b.minStatic()
}

// ClampPrice 把行情价钳入 [min,max]，再由调用方叠加滑移。0 界 = 不钳位。
func (b *Boundary) ClampPrice(price float64) float64 {
	if m := b.EffectiveMax(); m != 0 {
		price = math.Min(price, m)
	}
	if m := b.EffectiveMin(); m != 0 {
		price = math.Max(price, m)
	}
	return price
}

// HitMax 判断未钳位行情价是否越过上界（relative 与 static 独立判断）。
func (b *Boundary) HitMax(price float64) bool {
	if b.MaxRelative != 0 && b.maxRelative() < price {
		return true
	}
	if b.MaxStatic != 0 && b.maxStatic() < price {
		return true
	}
	return false
}

// HitMin 判断未钳位行情价是否越过下界。
func (b *Boundary) HitMin(price float64) bool {
	if b.MinRelative != 0 && b.minRelative() > price {
		return true
	}
	if b.MinStatic != 0 && b.minStatic() > price {
		return true
	}
	return false
}
