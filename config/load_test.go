package config

import (
	"os"
	"path/filepath"
	"testing"
)

const minimalYAML = `
maker: BLOCK
taker: LTC
makeraddress: maddr
takeraddress: taddr
sellstart: 100
sellend: 200
gateway:
  url: http://127.0.0.1:41414
  user: u
  password: p
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxOpenOrders != 5 {
		t.Fatalf("maxopen = %d, want default 5", cfg.MaxOpenOrders)
	}
	if cfg.SlideStart != 1.01 || cfg.SlideEnd != 1.021 {
		t.Fatalf("slide defaults = %v/%v", cfg.SlideStart, cfg.SlideEnd)
	}
	if cfg.BalanceSavePercent != 0.05 {
		t.Fatalf("balance_save_percent = %v", cfg.BalanceSavePercent)
	}
	if cfg.DelayInternal != 2.3 || cfg.DelayInternalError != 10 || cfg.DelayInternalCycle != 8 {
		t.Fatalf("delay defaults = %v/%v/%v", cfg.DelayInternal, cfg.DelayInternalError, cfg.DelayInternalCycle)
	}
	if cfg.PriceSource != PriceSourceCoinGecko {
		t.Fatalf("price_source = %q", cfg.PriceSource)
	}
}

func TestLoadDerivedDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SellSizeAsset != "BLOCK" {
		t.Fatalf("sellsizeasset = %q, want maker", cfg.SellSizeAsset)
	}
	if cfg.BalanceSaveAsset != "BLOCK" {
		t.Fatalf("balance_save_asset = %q, want maker", cfg.BalanceSaveAsset)
	}
	if cfg.BoundaryAsset != "LTC" {
		t.Fatalf("boundary_asset = %q, want taker", cfg.BoundaryAsset)
	}
	if cfg.SlideDynZeroAsset != "BLOCK" {
		t.Fatalf("slide_dyn_zero_asset = %q, want maker", cfg.SlideDynZeroAsset)
	}
}

func TestLoadPumpDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML+"slidepump: 0.05\nsellendmin: 50\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PumpAmount != cfg.SellEnd {
		t.Fatalf("pumpamount = %v, want sellend %v", cfg.PumpAmount, cfg.SellEnd)
	}
	if cfg.PumpAmountMin != cfg.SellEndMin {
		t.Fatalf("pumpamountmin = %v, want sellendmin %v", cfg.PumpAmountMin, cfg.SellEndMin)
	}
	if !cfg.PumpEnabled() {
		t.Fatal("pump should be enabled")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DX_RPC_USER", "envuser")
	t.Setenv("DX_RPC_PASSWORD", "envpass")

	cfg, err := LoadWithEnvOverrides(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadWithEnvOverrides: %v", err)
	}
	if cfg.Gateway.User != "envuser" || cfg.Gateway.Password != "envpass" {
		t.Fatalf("env overrides not applied: %+v", cfg.Gateway)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := Default()
	cfg.SlideStart = 1.03
	cfg.SlideEnd = 1.01
	if cfg.SlideMin() != 1.01 || cfg.SlideMax() != 1.03 {
		t.Fatalf("slide min/max = %v/%v", cfg.SlideMin(), cfg.SlideMax())
	}

	if cfg.ReopenFinished() {
		t.Fatal("reopen finished should be off by default")
	}
	cfg.ReopenFinishedNum = 2
	if !cfg.ReopenFinished() {
		t.Fatal("reopen finished should be on with num set")
	}

	if got := cfg.InternalDelay().Seconds(); got < 2.29 || got > 2.31 {
		t.Fatalf("internal delay = %v, want about 2.3s", got)
	}
}
