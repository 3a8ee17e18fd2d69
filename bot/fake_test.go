package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dxmaker-go/config"
	"dxmaker-go/gateway"
	"dxmaker-go/order"
	"dxmaker-go/pricing"
)

var errTest = errors.New("venue unavailable")

// fakeGateway 内存版 venue：订单列表就是权威状态。
type fakeGateway struct {
	orders   []order.RemoteOrder
	balances map[string]gateway.Balance
	book     gateway.OrderBook

	canceled  []string
	taken     []string
	submitted []order.RemoteOrder

	cancelErr map[string]error
	takeErr   error
	submitErr error
	nextID    int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		balances:  map[string]gateway.Balance{},
		cancelErr: map[string]error{},
	}
}

func (f *fakeGateway) ListOrders(_ context.Context, maker, taker string) ([]order.RemoteOrder, error) {
	out := []order.RemoteOrder{}
	for _, o := range f.orders {
		if o.Maker == maker && o.Taker == taker {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeGateway) ListAllOrders(context.Context) ([]order.RemoteOrder, error) {
	return append([]order.RemoteOrder{}, f.orders...), nil
}

func (f *fakeGateway) SubmitOrder(_ context.Context, maker string, makerSize float64, makerAddr, taker string, takerSize float64, takerAddr string, minSize float64) (order.RemoteOrder, error) {
	if f.submitErr != nil {
		return order.RemoteOrder{}, f.submitErr
	}
	f.nextID++
	// 撮合进度简化：提交即视为已广播 resting
	r := order.RemoteOrder{
		ID:        fmt.Sprintf("ord-%d", f.nextID),
		Maker:     maker,
		Taker:     taker,
		MakerSize: makerSize,
		TakerSize: takerSize,
		Status:    order.StatusOpen,
	}
	f.orders = append(f.orders, r)
	f.submitted = append(f.submitted, r)
	return r, nil
}

func (f *fakeGateway) CancelOrder(_ context.Context, id string) error {
	if err := f.cancelErr[id]; err != nil {
		return err
	}
	f.canceled = append(f.canceled, id)
	for i, o := range f.orders {
		if o.ID == id {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeGateway) TakeOrder(_ context.Context, id, takerAddr, makerAddr string) error {
	if f.takeErr != nil {
		return f.takeErr
	}
	f.taken = append(f.taken, id)
	return nil
}

func (f *fakeGateway) GetOrderBook(context.Context, string, string) (gateway.OrderBook, error) {
	return f.book, nil
}

func (f *fakeGateway) Balances(_ context.Context, asset, addressOnly string) (gateway.Balance, error) {
	return f.balances[asset], nil
}

// mapSource 固定报价表。
type mapSource map[string]float64

func (m mapSource) Quote(base, quote string) float64 { return m[base+"/"+quote] }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Maker = "BLOCK"
	cfg.Taker = "LTC"
	cfg.MakerAddress = "maddr"
	cfg.TakerAddress = "taddr"
	cfg.SellStart = 100
	cfg.SellEnd = 200
	cfg.MaxOpenOrders = 3
	cfg.BalanceSavePercent = 0
	cfg.DelayInternal = 0.001
	cfg.DelayInternalError = 0.001
	cfg.DelayInternalCycle = 0.001
	cfg.Gateway = config.GatewayConfig{URL: "http://fake"}
	return cfg
}

func newTestBot(cfg config.Config, gw gateway.Client, quotes mapSource) *Bot {
	cfg2 := cfg
	// applyDerived 在 Load 里跑，直接构造的配置要手动补
	if cfg2.SellSizeAsset == "" {
		cfg2.SellSizeAsset = cfg2.Maker
	}
	if cfg2.BalanceSaveAsset == "" {
		cfg2.BalanceSaveAsset = cfg2.Maker
	}
	if cfg2.BoundaryAsset == "" {
		cfg2.BoundaryAsset = cfg2.Taker
	}
	if cfg2.SlideDynZeroAsset == "" {
		cfg2.SlideDynZeroAsset = cfg2.Maker
	}
	prices := pricing.NewCache(quotes, 0, nil)
	return New(cfg2, gw, prices, zap.NewNop(), nil)
}

func richBalances(gw *fakeGateway) {
	gw.balances["BLOCK"] = gateway.Balance{Total: 10000, Available: 10000}
	gw.balances["LTC"] = gateway.Balance{Total: 500, Available: 500}
}

func at(b *Bot, t time.Time) {
	b.now = func() time.Time { return t }
}
