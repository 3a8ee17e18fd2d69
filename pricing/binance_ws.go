package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// BinanceWSEndpoint 现货 bookTicker 流入口。
const BinanceWSEndpoint = "wss://stream.binance.com:9443"

// BinanceWS 订阅 bookTicker combined stream，把 (bid+ask)/2 作为报价。
// 实现 Source 接口：Quote 查询最近一次流内 mid，流还没热起来时返回 0，
// 调用侧会回落到缓存旧值或重试。
type BinanceWS struct {
	Endpoint string
	Dialer   *websocket.Dialer

	mu      sync.RWMutex
	mids    map[string]float64 // SYMBOL → mid
	symbols []string

	log *zap.Logger
}

// NewBinanceWS 创建流式行情源；symbols 通过 Subscribe 追加后再 Run。
func NewBinanceWS(log *zap.Logger) *BinanceWS {
	if log == nil {
		log = zap.NewNop()
	}
	return &BinanceWS{
		Endpoint: BinanceWSEndpoint,
		Dialer:   websocket.DefaultDialer,
		mids:     make(map[string]float64),
		log:      log,
	}
}

// Subscribe 登记一个资产对（base+quote 拼成交易所 symbol）。
func (b *BinanceWS) Subscribe(base, quote string) {
	sym := strings.ToUpper(base + quote)
	for _, s := range b.symbols {
		if s == sym {
			return
		}
	}
	b.symbols = append(b.symbols, sym)
}

// Quote 实现 Source：symbol 尚无数据时返回 0。
func (b *BinanceWS) Quote(base, quote string) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mids[strings.ToUpper(base+quote)]
}

type bookTickerEvent struct {
	Data struct {
		Symbol string `json:"s"`
		Bid    string `json:"b"`
		Ask    string `json:"a"`
	} `json:"data"`
}

// Run 维持连接并持续读流，断线后退避重连，直到 ctx 取消。
func (b *BinanceWS) Run(ctx context.Context) error {
	if len(b.symbols) == 0 {
		return fmt.Errorf("no symbols subscribed")
	}
	for {
		if err := b.runOnce(ctx); err != nil {
			b.log.Warn("binance_ws_disconnect", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
}

func (b *BinanceWS) runOnce(ctx context.Context) error {
	streams := make([]string, 0, len(b.symbols))
	for _, s := range b.symbols {
		streams = append(streams, strings.ToLower(s)+"@bookTicker")
	}
	u := url.URL{
		Scheme: "wss",
		Host:   strings.TrimPrefix(b.Endpoint, "wss://"),
		Path:   "/stream",
	}
	q := u.Query()
	q.Set("streams", strings.Join(streams, "/"))
	u.RawQuery = q.Encode()

	conn, _, err := b.Dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	b.log.Info("binance_ws_connect", zap.Strings("streams", streams))

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		b.handle(message)
	}
}

func (b *BinanceWS) handle(message []byte) {
	var ev bookTickerEvent
	if err := json.Unmarshal(message, &ev); err != nil || ev.Data.Symbol == "" {
		return
	}
	bid, err1 := strconv.ParseFloat(ev.Data.Bid, 64)
	ask, err2 := strconv.ParseFloat(ev.Data.Ask, 64)
	if err1 != nil || err2 != nil || bid <= 0 || ask <= 0 {
		return
	}
	b.mu.Lock()
	b.mids[ev.Data.Symbol] = (bid + ask) / 2
	b.mu.Unlock()
}
