package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"dxmaker-go/bot"
	"dxmaker-go/config"
	"dxmaker-go/gateway"
	"dxmaker-go/infrastructure/logger"
	"dxmaker-go/metrics"
	"dxmaker-go/pricing"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	cancelMarket := flag.Bool("cancelMarket", false, "撤掉配置交易对上的全部挂单后退出")
	cancelAll := flag.Bool("cancelAll", false, "撤掉所有市场的全部挂单后退出")
	metricsAddr := flag.String("metricsAddr", "", "Prometheus metrics 监听地址，覆盖配置")
	flag.Parse()

	os.Exit(run(*cfgPath, *cancelMarket, *cancelAll, *metricsAddr))
}

func run(cfgPath string, cancelMarket, cancelAll bool, metricsAddr string) int {
	cfg, err := config.LoadWithEnvOverrides(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		return 1
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		return 1
	}
	defer log.Close()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw := newGateway(cfg)

	// 工具模式：清场后直接退出，不进主循环
	if cancelAll {
		if err := bot.CancelAll(rootCtx, gw, log.Logger); err != nil {
			log.Error("cancel_all_failed", zap.Error(err))
			return 1
		}
		return 0
	}
	if cancelMarket {
		if err := bot.CancelMarket(rootCtx, gw, cfg.Maker, cfg.Taker, cfg.InternalDelay(), log.Logger); err != nil {
			log.Error("cancel_market_failed", zap.Error(err))
			return 1
		}
		return 0
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	addr := cfg.MetricsAddr
	if metricsAddr != "" {
		addr = metricsAddr
	}
	if addr != "" {
		metrics.Serve(addr, registry)
	}

	// 配置变更不热应用，挂单参数改了必须清场重开；这里只发重启信号
	restart := make(chan struct{}, 1)
	watcher, err := config.NewWatcher(cfgPath, 5*time.Second,
		func(config.Config) {
			log.Info("config_changed_restart_pending")
			select {
			case restart <- struct{}{}:
			default:
			}
		},
		func(err error) {
			log.Warn("config_watch_error", zap.Error(err))
		})
	if err != nil {
		log.Warn("config_watch_unavailable", zap.Error(err))
	} else {
		if err := watcher.Start(rootCtx); err != nil {
			log.Warn("config_watch_unavailable", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	for {
		runCtx, cancel := context.WithCancel(rootCtx)
		src := newPriceSource(runCtx, cfg, log.Logger)
		prices := pricing.NewCache(src, cfg.PriceCacheTTL(), log.Logger)
		b := bot.New(cfg, gw, prices, log.Logger, collector)

		done := make(chan error, 1)
		go func() { done <- b.Run(runCtx) }()

		select {
		case err := <-done:
			cancel()
			if err == nil {
				log.Info("bot_stopped_clean")
				return 0
			}
			if rootCtx.Err() != nil {
				log.Info("bot_stopped_signal")
				return 0
			}
			log.Error("bot_failed", zap.Error(err))
			return 1
		case <-restart:
			cancel()
			<-done
		}

		cfg, err = config.LoadWithEnvOverrides(cfgPath)
		if err != nil {
			log.Error("config_reload_failed", zap.Error(err))
			return 1
		}
		gw = newGateway(cfg)
		log.Info("bot_restarting_with_new_config")
	}
}

func newGateway(cfg config.Config) gateway.Client {
	var limiter gateway.RateLimiter
	if cfg.Gateway.RateLimit > 0 {
		burst := cfg.Gateway.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = gateway.NewTokenBucketLimiter(cfg.Gateway.RateLimit, burst)
	}
	return &gateway.XBridgeClient{
		URL:        cfg.Gateway.URL,
		User:       cfg.Gateway.User,
		Password:   cfg.Gateway.Password,
		HTTPClient: gateway.NewDefaultHTTPClient(),
		Limiter:    limiter,
	}
}

// newPriceSource 按配置选择行情源。websocket 源需要预订阅所有会用到的
// 资产对，再起后台重连循环。
func newPriceSource(ctx context.Context, cfg config.Config, log *zap.Logger) pricing.Source {
	if cfg.PriceSource == config.PriceSourceBinanceWS {
		ws := pricing.NewBinanceWS(log)
		for _, pair := range pricePairs(cfg) {
			ws.Subscribe(pair[0], pair[1])
		}
		go ws.Run(ctx)
		return ws
	}
	return pricing.NewCoinGecko(cfg.CoinGeckoIDs, log)
}

// pricePairs 列出运行期间会查询的全部资产对。
func pricePairs(cfg config.Config) [][2]string {
	var out [][2]string
	add := func(base, quote string) {
		if base == quote || base == "" || quote == "" {
			return
		}
		for _, p := range out {
			if p[0] == base && p[1] == quote {
				return
			}
		}
		out = append(out, [2]string{base, quote})
	}
	add(cfg.Maker, cfg.Taker)
	add(cfg.SellSizeAsset, cfg.Maker)
	if cfg.BalanceSaveNumber != 0 {
		add(cfg.BalanceSaveAsset, cfg.Maker)
	}
	if cfg.SlideDynType == "static" {
		add(cfg.SlideDynZeroAsset, cfg.Maker)
	}
	if cfg.BoundaryReversedPricing {
		add(cfg.BoundaryAsset, cfg.Maker)
	} else {
		add(cfg.BoundaryAsset, cfg.Taker)
	}
	return out
}
