package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Default()
	cfg.Maker = "BLOCK"
	cfg.Taker = "LTC"
	cfg.MakerAddress = "maddr"
	cfg.TakerAddress = "taddr"
	cfg.SellStart = 100
	cfg.SellEnd = 200
	cfg.Gateway = GatewayConfig{URL: "http://127.0.0.1:41414"}
	cfg.applyDerived()
	return cfg
}

func TestValidateAccepts(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"same pair", func(c *Config) { c.Taker = "BLOCK" }, "must differ"},
		{"missing address", func(c *Config) { c.MakerAddress = "" }, "address"},
		{"selltype out of range", func(c *Config) { c.SellType = 1.5 }, "selltype"},
		{"zero sell size", func(c *Config) { c.SellStart = 0 }, "sellstart"},
		{"min above start", func(c *Config) { c.SellStartMin = 150 }, "sellstartmin"},
		{"maxopen zero", func(c *Config) { c.MaxOpenOrders = 0 }, "maxopen"},
		{"reopen num above maxopen", func(c *Config) { c.ReopenFinishedNum = 6 }, "reopenfinishednum"},
		{"discount slide unconfirmed", func(c *Config) { c.SlideStart = 0.99 }, "imreallysurewhatimdoing"},
		{"pump without amount", func(c *Config) { c.SlidePump = 0.1 }, "pumpamount"},
		{"mixed boundaries", func(c *Config) {
			c.BoundaryMaxRelative = 1.2
			c.BoundaryMinStatic = 10
		}, "mutually exclusive"},
		{"boundary max below min", func(c *Config) {
			c.BoundaryMaxRelative = 0.8
			c.BoundaryMinRelative = 1.2
		}, "boundary_max_relative"},
		{"save percent above one", func(c *Config) { c.BalanceSavePercent = 1.5 }, "balance_save_percent"},
		{"unknown slide dyn type", func(c *Config) { c.SlideDynType = "bogus" }, "slide_dyn_type"},
		{"ratio zero out of range", func(c *Config) {
			c.SlideDynType = "ratio"
			c.SlideDynZero = 1.5
		}, "slide_dyn_zero"},
		{"auto zero with custom asset", func(c *Config) {
			c.SlideDynType = "static"
			c.SlideDynZero = -1
			c.SlideDynZeroAsset = "BTC"
		}, "slide_dyn_zero_asset"},
		{"zone max zero", func(c *Config) {
			c.SlideDynType = "ratio"
			c.SlideDynZoneMax = 0
		}, "slide_dyn_zone_max"},
		{"delay too small", func(c *Config) { c.DelayInternal = 0.5 }, "delayinternal"},
		{"bad price source", func(c *Config) { c.PriceSource = "oracle" }, "price_source"},
		{"missing gateway url", func(c *Config) { c.Gateway.URL = "" }, "gateway.url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("err %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestValidateDiscountSlideConfirmed(t *testing.T) {
	cfg := validConfig()
	cfg.SlideStart = 0.99
	cfg.IUnderstandRisks = true
	if err := Validate(cfg); err != nil {
		t.Fatalf("confirmed discount slide rejected: %v", err)
	}
}

func TestValidateAutoZeroAccepted(t *testing.T) {
	cfg := validConfig()
	cfg.SlideDynType = "ratio"
	cfg.SlideDynZero = -1
	if err := Validate(cfg); err != nil {
		t.Fatalf("auto zero rejected: %v", err)
	}
}
