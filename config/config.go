package config

import (
	"math"
	"time"

	"dxmaker-go/infrastructure/logger"
)

// 价格来源
const (
	PriceSourceCoinGecko = "coingecko"
	PriceSourceBinanceWS = "binance-ws"
)

// GatewayConfig 撮合守护进程的 JSON-RPC 连接配置。
type GatewayConfig struct {
	URL       string  `yaml:"url"`
	User      string  `yaml:"user"`
	Password  string  `yaml:"password"`
	RateLimit float64 `yaml:"rateLimit"` // 每秒请求数，0 表示不限速
	RateBurst int     `yaml:"rateBurst"`
}

// Config 做市机器人的完整运行配置。数量一律以 maker 资产计价，
// 时间类字段以秒为单位的浮点数表达。
type Config struct {
	// 交易对与资金地址
	Maker        string `yaml:"maker"`
	Taker        string `yaml:"taker"`
	MakerAddress string `yaml:"makeraddress"`
	TakerAddress string `yaml:"takeraddress"`
	AddressOnly  bool   `yaml:"addressonly"` // 余额只统计指定地址

	// 阶梯订单规模
	SellType      float64 `yaml:"selltype"` // 曲线形状，-1..1，0 为线性
	SellSizeAsset string  `yaml:"sellsizeasset"`
	SellStart     float64 `yaml:"sellstart"`
	SellEnd       float64 `yaml:"sellend"`
	SellStartMin  float64 `yaml:"sellstartmin"`
	SellEndMin    float64 `yaml:"sellendmin"`
	SellRandom    bool    `yaml:"sellrandom"`

	// 报价滑点阶梯
	SlideStart float64 `yaml:"slidestart"`
	SlideEnd   float64 `yaml:"slideend"`

	MaxOpenOrders int  `yaml:"maxopen"`
	MakeNextOnHit bool `yaml:"makenextonhit"` // 某档余额不足时继续尝试后续档位
	PartialOrders bool `yaml:"partialorders"`

	// 完结订单重开节流
	ReopenFinishedDelay float64 `yaml:"reopenfinisheddelay"`
	ReopenFinishedNum   int     `yaml:"reopenfinishednum"`

	// takerbot 自成交扫描间隔，0 禁用
	TakerbotInterval float64 `yaml:"takerbot"`

	// 价格边界
	BoundaryAsset           string  `yaml:"boundary_asset"`
	BoundaryAssetTrack      bool    `yaml:"boundary_asset_track"`
	BoundaryReversedPricing bool    `yaml:"boundary_reversed_pricing"`
	BoundaryStartPrice      float64 `yaml:"boundary_start_price"`
	BoundaryMaxRelative     float64 `yaml:"boundary_max_relative"`
	BoundaryMinRelative     float64 `yaml:"boundary_min_relative"`
	BoundaryMaxStatic       float64 `yaml:"boundary_max_static"`
	BoundaryMinStatic       float64 `yaml:"boundary_min_static"`
	BoundaryMaxNoCancel     bool    `yaml:"boundary_max_nocancel"`
	BoundaryMaxNoExit       bool    `yaml:"boundary_max_noexit"`
	BoundaryMinNoCancel     bool    `yaml:"boundary_min_nocancel"`
	BoundaryMinNoExit       bool    `yaml:"boundary_min_noexit"`

	// 保留余额
	BalanceSaveAsset   string  `yaml:"balance_save_asset"`
	BalanceSaveNumber  float64 `yaml:"balance_save_number"`
	BalanceSavePercent float64 `yaml:"balance_save_percent"`

	// 动态滑点
	SlideDynType       string  `yaml:"slide_dyn_type"` // "", ratio, static
	SlideDynZero       float64 `yaml:"slide_dyn_zero"` // -1 表示开机自动推导
	SlideDynZeroAsset  string  `yaml:"slide_dyn_zero_asset"`
	SlideDynPositive   float64 `yaml:"slide_dyn_positive"`
	SlideDynNegative   float64 `yaml:"slide_dyn_negative"`
	SlideDynZoneIgnore float64 `yaml:"slide_dyn_zone_ignore"`
	SlideDynZoneMax    float64 `yaml:"slide_dyn_zone_max"`

	// 拉升档
	SlidePump     float64 `yaml:"slidepump"`
	PumpAmount    float64 `yaml:"pumpamount"`
	PumpAmountMin float64 `yaml:"pumpamountmin"`

	// 会话重置
	ResetOnPriceChangePositive  float64 `yaml:"resetonpricechangepositive"`
	ResetOnPriceChangeNegative  float64 `yaml:"resetonpricechangenegative"`
	ResetAfterDelay             float64 `yaml:"resetafterdelay"`
	ResetAfterOrderFinishNumber int     `yaml:"resetafterorderfinishnumber"`
	ResetAfterOrderFinishDelay  float64 `yaml:"resetafterorderfinishdelay"`

	// 循环节奏
	DelayInternal      float64 `yaml:"delayinternal"`
	DelayInternalError float64 `yaml:"delayinternalerror"`
	DelayInternalCycle float64 `yaml:"delayinternalcycle"`
	DelayCheckPrice    float64 `yaml:"delaycheckprice"`

	PriceSource  string            `yaml:"price_source"`
	CoinGeckoIDs map[string]string `yaml:"coingecko_ids"`

	Gateway     GatewayConfig `yaml:"gateway"`
	Logging     logger.Config `yaml:"logging"`
	MetricsAddr string        `yaml:"metrics_addr"`

	// 越过滑点安全检查的确认开关
	IUnderstandRisks bool `yaml:"imreallysurewhatimdoing"`
}

// Default 返回各参数的默认值，Load 在其上叠加文件内容。
func Default() Config {
	return Config{
		SellStart:          0.001,
		SellEnd:            0.001,
		SlideStart:         1.01,
		SlideEnd:           1.021,
		MaxOpenOrders:      5,
		BalanceSavePercent: 0.05,
		SlideDynZero:       0.5,
		SlideDynZoneIgnore: 0.05,
		SlideDynZoneMax:    0.9,
		DelayInternal:      2.3,
		DelayInternalError: 10,
		DelayInternalCycle: 8,
		DelayCheckPrice:    180,
		PriceSource:        PriceSourceCoinGecko,
		Logging:            logger.DefaultConfig(),
	}
}

// applyDerived 填补依赖其他字段的默认值。
func (c *Config) applyDerived() {
	if c.SellSizeAsset == "" {
		c.SellSizeAsset = c.Maker
	}
	if c.BalanceSaveAsset == "" {
		c.BalanceSaveAsset = c.Maker
	}
	if c.BoundaryAsset == "" {
		c.BoundaryAsset = c.Taker
	}
	if c.SlideDynZeroAsset == "" {
		c.SlideDynZeroAsset = c.Maker
	}
	if c.SlidePump > 0 {
		if c.PumpAmount == 0 {
			c.PumpAmount = c.SellEnd
		}
		if c.PumpAmountMin == 0 {
			c.PumpAmountMin = c.SellEndMin
		}
	}
}

// SlideMin 阶梯滑点下界。
func (c Config) SlideMin() float64 { return math.Min(c.SlideStart, c.SlideEnd) }

// SlideMax 阶梯滑点上界。
func (c Config) SlideMax() float64 { return math.Max(c.SlideStart, c.SlideEnd) }

// ReopenFinished 完结订单是否参与重开（任一节流参数非零即启用）。
func (c Config) ReopenFinished() bool {
	return c.ReopenFinishedDelay != 0 || c.ReopenFinishedNum != 0
}

// PumpEnabled 是否启用拉升档。
func (c Config) PumpEnabled() bool { return c.SlidePump > 0 }

// DynamicSlideEnabled 是否启用动态滑点。
func (c Config) DynamicSlideEnabled() bool { return c.SlideDynType != "" }

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// InternalDelay 同一轮挂单之间的间隔。
func (c Config) InternalDelay() time.Duration { return seconds(c.DelayInternal) }

// InternalErrorDelay 外部调用失败后的重试间隔。
func (c Config) InternalErrorDelay() time.Duration { return seconds(c.DelayInternalError) }

// CycleDelay 两轮主循环之间的间隔。
func (c Config) CycleDelay() time.Duration { return seconds(c.DelayInternalCycle) }

// PriceCacheTTL 缓存报价的有效期。
func (c Config) PriceCacheTTL() time.Duration { return seconds(c.DelayCheckPrice) }

// TakerbotScanInterval takerbot 两次扫描之间的最小间隔。
func (c Config) TakerbotScanInterval() time.Duration { return seconds(c.TakerbotInterval) }

// ResetSessionAge 会话最大存活时间，0 表示不限。
func (c Config) ResetSessionAge() time.Duration { return seconds(c.ResetAfterDelay) }

// ResetFinishDelay 最后一笔完结后触发重置的延迟。
func (c Config) ResetFinishDelay() time.Duration { return seconds(c.ResetAfterOrderFinishDelay) }

// ReopenDelay 完结订单重开前的最小等待。
func (c Config) ReopenDelay() time.Duration { return seconds(c.ReopenFinishedDelay) }
