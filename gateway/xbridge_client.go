package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dxmaker-go/order"
)

// ErrRPC venue 返回了 error 字段；与网络失败区分开，便于调用方判断。
var ErrRPC = errors.New("xbridge rpc error")

// XBridgeClient 对接 venue 守护进程的 JSON-RPC 面。默认不发起真实网络
// 调用，HTTPClient 可注入 httptest。所有数量按 venue 的 6 位小数字符串格式
// 序列化。
type XBridgeClient struct {
	URL        string
	User       string
	Password   string
	HTTPClient *http.Client
	Limiter    RateLimiter
}

// NewDefaultHTTPClient 提供一个带超时的 http.Client。
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
	ID     int    `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *XBridgeClient) call(ctx context.Context, method string, params []any, out any) error {
	if c == nil || c.HTTPClient == nil {
		return fmt.Errorf("http client not set")
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	body, err := json.Marshal(rpcRequest{Method: method, Params: params, ID: 1})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.User != "" {
		req.SetBasicAuth(c.User, c.Password)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("%s decode: %w", method, err)
	}
	if rr.Error != nil {
		return fmt.Errorf("%s code %d %s: %w", method, rr.Error.Code, rr.Error.Message, ErrRPC)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s status %d: %w", method, resp.StatusCode, ErrRPC)
	}
	if out != nil {
		if err := json.Unmarshal(rr.Result, out); err != nil {
			return fmt.Errorf("%s result: %w", method, err)
		}
	}
	return nil
}

type remoteOrderRecord struct {
	ID        string `json:"id"`
	Maker     string `json:"maker"`
	MakerSize string `json:"maker_size"`
	Taker     string `json:"taker"`
	TakerSize string `json:"taker_size"`
	Status    string `json:"status"`
}

func (r remoteOrderRecord) toOrder() order.RemoteOrder {
	ms, _ := strconv.ParseFloat(r.MakerSize, 64)
	ts, _ := strconv.ParseFloat(r.TakerSize, 64)
	return order.RemoteOrder{
		ID:        r.ID,
		Maker:     r.Maker,
		Taker:     r.Taker,
		MakerSize: ms,
		TakerSize: ts,
		Status:    order.Status(r.Status),
	}
}

// ListAllOrders 返回所有市场上自己的订单。
func (c *XBridgeClient) ListAllOrders(ctx context.Context) ([]order.RemoteOrder, error) {
	var records []remoteOrderRecord
	if err := c.call(ctx, "dxGetMyOrders", []any{}, &records); err != nil {
		return nil, err
	}
	out := make([]order.RemoteOrder, 0, len(records))
	for _, r := range records {
		out = append(out, r.toOrder())
	}
	return out, nil
}

// ListOrders 返回指定交易对上自己的订单。RPC 按账号返回全量，这里过滤。
func (c *XBridgeClient) ListOrders(ctx context.Context, maker, taker string) ([]order.RemoteOrder, error) {
	all, err := c.ListAllOrders(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, o := range all {
		if o.Maker == maker && o.Taker == taker {
			out = append(out, o)
		}
	}
	return out, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// SubmitOrder 挂单。minSize > 0 时走 dxMakePartialOrder（允许部分成交），
// 否则 dxMakeOrder 精确单。
func (c *XBridgeClient) SubmitOrder(ctx context.Context, maker string, makerSize float64, makerAddr, taker string, takerSize float64, takerAddr string, minSize float64) (order.RemoteOrder, error) {
	var rec remoteOrderRecord
	var err error
	if minSize > 0 {
		err = c.call(ctx, "dxMakePartialOrder", []any{
			maker, formatAmount(makerSize), makerAddr,
			taker, formatAmount(takerSize), takerAddr,
			formatAmount(minSize), false,
		}, &rec)
	} else {
		err = c.call(ctx, "dxMakeOrder", []any{
			maker, formatAmount(makerSize), makerAddr,
			taker, formatAmount(takerSize), takerAddr,
			"exact",
		}, &rec)
	}
	if err != nil {
		return order.RemoteOrder{}, err
	}
	return rec.toOrder(), nil
}

// CancelOrder 取消指定订单。
func (c *XBridgeClient) CancelOrder(ctx context.Context, id string) error {
	return c.call(ctx, "dxCancelOrder", []any{id}, nil)
}

// TakeOrder 吃单：用 takerAddr 付出、makerAddr 接收。
func (c *XBridgeClient) TakeOrder(ctx context.Context, id, takerAddr, makerAddr string) error {
	return c.call(ctx, "dxTakeOrder", []any{id, takerAddr, makerAddr}, nil)
}

type orderBookRecord struct {
	Bids [][3]string `json:"bids"`
	Asks [][3]string `json:"asks"`
}

func toEntries(rows [][3]string) []BookEntry {
	out := make([]BookEntry, 0, len(rows))
	for _, row := range rows {
		price, _ := strconv.ParseFloat(row[0], 64)
		size, _ := strconv.ParseFloat(row[1], 64)
		out = append(out, BookEntry{Price: price, Size: size, ID: row[2]})
	}
	return out
}

// GetOrderBook 拉取公共订单簿（detail 级别 3：price/size/order id）。
func (c *XBridgeClient) GetOrderBook(ctx context.Context, maker, taker string) (OrderBook, error) {
	var rec orderBookRecord
	if err := c.call(ctx, "dxGetOrderBook", []any{3, maker, taker}, &rec); err != nil {
		return OrderBook{}, err
	}
	return OrderBook{Bids: toEntries(rec.Bids), Asks: toEntries(rec.Asks)}, nil
}

type utxoRecord struct {
	Address string  `json:"address"`
	Amount  float64 `json:"amount"`
	OrderID string  `json:"orderid"`
}

// Balances 用 utxo 列表汇总余额：挂在订单上的 utxo 计 reserved，
// 其余计 available。addressOnly 非空时只统计该地址。
func (c *XBridgeClient) Balances(ctx context.Context, asset, addressOnly string) (Balance, error) {
	var utxos []utxoRecord
	if err := c.call(ctx, "dxGetUtxos", []any{asset, true}, &utxos); err != nil {
		return Balance{}, err
	}
	var b Balance
	for _, u := range utxos {
		if addressOnly != "" && u.Address != addressOnly {
			continue
		}
		if u.OrderID == "" {
			b.Available += u.Amount
		} else {
			b.Reserved += u.Amount
		}
		b.Total += u.Amount
	}
	return b, nil
}
