package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is coherent before the bot starts.
func Validate(cfg Config) error {
	if cfg.Maker == "" || cfg.Taker == "" {
		return errors.New("maker and taker are required")
	}
	if cfg.Maker == cfg.Taker {
		return errors.New("maker and taker must differ")
	}
	if cfg.MakerAddress == "" || cfg.TakerAddress == "" {
		return errors.New("makeraddress and takeraddress are required")
	}
	if cfg.SellType < -1 || cfg.SellType > 1 {
		return fmt.Errorf("selltype must be in [-1, 1], got %v", cfg.SellType)
	}
	if cfg.SellStart <= 0 || cfg.SellEnd <= 0 {
		return errors.New("sellstart and sellend must be > 0")
	}
	if cfg.SellStartMin < 0 || cfg.SellEndMin < 0 {
		return errors.New("sellstartmin and sellendmin must be >= 0")
	}
	if cfg.SellStartMin > cfg.SellStart {
		return errors.New("sellstartmin must not exceed sellstart")
	}
	if cfg.SellEndMin > cfg.SellEnd {
		return errors.New("sellendmin must not exceed sellend")
	}
	if cfg.MaxOpenOrders < 1 {
		return errors.New("maxopen must be >= 1")
	}
	if cfg.ReopenFinishedNum < 0 || cfg.ReopenFinishedNum > cfg.MaxOpenOrders {
		return fmt.Errorf("reopenfinishednum must be in [0, maxopen], got %d", cfg.ReopenFinishedNum)
	}
	if cfg.ReopenFinishedDelay < 0 {
		return errors.New("reopenfinisheddelay must be >= 0")
	}
	if cfg.TakerbotInterval < 0 {
		return errors.New("takerbot interval must be >= 0")
	}

	// 低于 1 的滑点意味着折价卖出，必须显式确认
	if (cfg.SlideStart < 1 || cfg.SlideEnd < 1) && !cfg.IUnderstandRisks {
		return errors.New("slidestart/slideend below 1 sells at a discount, set imreallysurewhatimdoing to confirm")
	}
	if cfg.SlidePump < 0 {
		return errors.New("slidepump must be >= 0")
	}
	if cfg.SlidePump > 0 && cfg.PumpAmount <= 0 {
		return errors.New("pumpamount must be > 0 when slidepump is set")
	}
	if cfg.PumpAmountMin > cfg.PumpAmount {
		return errors.New("pumpamountmin must not exceed pumpamount")
	}

	if err := validateBoundary(cfg); err != nil {
		return err
	}
	if err := validateDynamicSlide(cfg); err != nil {
		return err
	}

	if cfg.BalanceSaveNumber < 0 {
		return errors.New("balance_save_number must be >= 0")
	}
	if cfg.BalanceSavePercent < 0 || cfg.BalanceSavePercent > 1 {
		return errors.New("balance_save_percent must be in [0, 1]")
	}

	if cfg.ResetOnPriceChangePositive < 0 || cfg.ResetOnPriceChangeNegative < 0 {
		return errors.New("resetonpricechange thresholds must be >= 0")
	}
	if cfg.ResetAfterDelay < 0 || cfg.ResetAfterOrderFinishNumber < 0 || cfg.ResetAfterOrderFinishDelay < 0 {
		return errors.New("reset parameters must be >= 0")
	}

	if cfg.DelayInternal < 1 || cfg.DelayInternalError < 1 || cfg.DelayInternalCycle < 1 {
		return errors.New("delayinternal, delayinternalerror and delayinternalcycle must be >= 1 second")
	}
	if cfg.DelayCheckPrice < 1 {
		return errors.New("delaycheckprice must be >= 1 second")
	}

	switch cfg.PriceSource {
	case PriceSourceCoinGecko, PriceSourceBinanceWS:
	default:
		return fmt.Errorf("price_source must be %q or %q", PriceSourceCoinGecko, PriceSourceBinanceWS)
	}
	if cfg.Gateway.URL == "" {
		return errors.New("gateway.url is required")
	}
	if cfg.Gateway.RateLimit < 0 || cfg.Gateway.RateBurst < 0 {
		return errors.New("gateway rate limit settings must be >= 0")
	}
	return nil
}

func validateBoundary(cfg Config) error {
	relative := cfg.BoundaryMaxRelative != 0 || cfg.BoundaryMinRelative != 0
	static := cfg.BoundaryMaxStatic != 0 || cfg.BoundaryMinStatic != 0
	if relative && static {
		return errors.New("relative and static boundaries are mutually exclusive")
	}
	if cfg.BoundaryMaxRelative < 0 || cfg.BoundaryMinRelative < 0 ||
		cfg.BoundaryMaxStatic < 0 || cfg.BoundaryMinStatic < 0 {
		return errors.New("boundary limits must be >= 0")
	}
	if cfg.BoundaryMaxRelative != 0 && cfg.BoundaryMinRelative != 0 &&
		cfg.BoundaryMaxRelative < cfg.BoundaryMinRelative {
		return errors.New("boundary_max_relative must be >= boundary_min_relative")
	}
	if cfg.BoundaryMaxStatic != 0 && cfg.BoundaryMinStatic != 0 &&
		cfg.BoundaryMaxStatic < cfg.BoundaryMinStatic {
		return errors.New("boundary_max_static must be >= boundary_min_static")
	}
	if cfg.BoundaryStartPrice < 0 {
		return errors.New("boundary_start_price must be >= 0")
	}
	return nil
}

func validateDynamicSlide(cfg Config) error {
	switch cfg.SlideDynType {
	case "":
		return nil
	case "ratio":
		if cfg.SlideDynZeroAsset != "" && cfg.SlideDynZeroAsset != cfg.Maker {
			return errors.New("slide_dyn_zero_asset has no effect in ratio mode")
		}
		if cfg.SlideDynZero != -1 && (cfg.SlideDynZero <= 0 || cfg.SlideDynZero >= 1) {
			return errors.New("slide_dyn_zero must be in (0, 1) or -1 for auto in ratio mode")
		}
	case "static":
		if cfg.SlideDynZero != -1 && cfg.SlideDynZero <= 0 {
			return errors.New("slide_dyn_zero must be > 0 or -1 for auto in static mode")
		}
		if cfg.SlideDynZero == -1 && cfg.SlideDynZeroAsset != cfg.Maker {
			return errors.New("slide_dyn_zero_asset cannot combine with automatic zero")
		}
	default:
		return fmt.Errorf("slide_dyn_type must be empty, ratio or static, got %q", cfg.SlideDynType)
	}
	if cfg.SlideDynPositive < 0 || cfg.SlideDynNegative < 0 {
		return errors.New("slide_dyn_positive and slide_dyn_negative must be >= 0")
	}
	if cfg.SlideDynZoneIgnore < 0 || cfg.SlideDynZoneIgnore >= 1 {
		return errors.New("slide_dyn_zone_ignore must be in [0, 1)")
	}
	if cfg.SlideDynZoneMax <= 0 || cfg.SlideDynZoneMax > 1 {
		return errors.New("slide_dyn_zone_max must be in (0, 1]")
	}
	return nil
}
