// Package metrics provides Prometheus metrics for the maker bot
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector 汇总机器人的运行指标。注册表由调用方注入，测试里
// 可以用独立 registry 避免重复注册冲突。
type Collector struct {
	Ticks          prometheus.Counter
	OrdersPlaced   prometheus.Counter
	OrdersCanceled prometheus.Counter
	OrdersTaken    prometheus.Counter
	OrdersFinished prometheus.Counter
	SessionResets  prometheus.Counter
	Waits          prometheus.Counter

	PriceMaker   prometheus.Gauge
	DynamicSlide prometheus.Gauge
	OpenOrders   prometheus.Gauge
	BalanceMaker prometheus.Gauge
	BalanceTaker prometheus.Gauge
}

// NewCollector 创建并注册全部指标。
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "makerbot_ticks_total",
			Help: "Completed control loop iterations",
		}),
		OrdersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "makerbot_orders_placed_total",
			Help: "Orders submitted to the venue",
		}),
		OrdersCanceled: factory.NewCounter(prometheus.CounterOpts{
			Name: "makerbot_orders_canceled_total",
			Help: "Orders canceled on the venue",
		}),
		OrdersTaken: factory.NewCounter(prometheus.CounterOpts{
			Name: "makerbot_orders_taken_total",
			Help: "Counterparty orders taken by the self trading scan",
		}),
		OrdersFinished: factory.NewCounter(prometheus.CounterOpts{
			Name: "makerbot_orders_finished_total",
			Help: "Own orders that completed the swap",
		}),
		SessionResets: factory.NewCounter(prometheus.CounterOpts{
			Name: "makerbot_session_resets_total",
			Help: "Pricing sessions restarted",
		}),
		Waits: factory.NewCounter(prometheus.CounterOpts{
			Name: "makerbot_waits_total",
			Help: "Iterations that ended in a wait outcome",
		}),
		PriceMaker: factory.NewGauge(prometheus.GaugeOpts{
			Name: "makerbot_price_maker",
			Help: "Latest maker price in taker units",
		}),
		DynamicSlide: factory.NewGauge(prometheus.GaugeOpts{
			Name: "makerbot_dynamic_slide",
			Help: "Current dynamic slide adjustment",
		}),
		OpenOrders: factory.NewGauge(prometheus.GaugeOpts{
			Name: "makerbot_open_orders",
			Help: "Tracked orders currently open on the venue",
		}),
		BalanceMaker: factory.NewGauge(prometheus.GaugeOpts{
			Name: "makerbot_balance_maker_total",
			Help: "Total maker asset balance",
		}),
		BalanceTaker: factory.NewGauge(prometheus.GaugeOpts{
			Name: "makerbot_balance_taker_total",
			Help: "Total taker asset balance",
		}),
	}
}

// Serve 在 addr 上暴露 /metrics。
func Serve(addr string, g prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
