package gateway

import (
	"context"

	"dxmaker-go/order"
)

// Balance 是某资产的 utxo 余额汇总；reserved+available == total。
type Balance struct {
	Total     float64
	Available float64
	Reserved  float64
}

// BookEntry 公共订单簿的一行。
type BookEntry struct {
	Price float64
	Size  float64
	ID    string
}

// OrderBook 公共订单簿快照。
type OrderBook struct {
	Bids []BookEntry
	Asks []BookEntry
}

// Client 是 venue RPC 面的最小抽象，引擎唯一的网络出入口。
// venue 的订单/余额状态是唯一权威，本地槽位只是意图缓存。
type Client interface {
	// ListOrders 返回指定交易对上自己的全部订单。
	ListOrders(ctx context.Context, maker, taker string) ([]order.RemoteOrder, error)
	// ListAllOrders 返回所有市场上自己的全部订单（cancel-all 工具用）。
	ListAllOrders(ctx context.Context) ([]order.RemoteOrder, error)
	// SubmitOrder 挂单；minSize > 0 时创建允许部分成交的订单。
	SubmitOrder(ctx context.Context, maker string, makerSize float64, makerAddr, taker string, takerSize float64, takerAddr string, minSize float64) (order.RemoteOrder, error)
	// CancelOrder 取消指定 id 的订单。
	CancelOrder(ctx context.Context, id string) error
	// TakeOrder 吃下公共订单簿上的一个订单。
	TakeOrder(ctx context.Context, id, takerAddr, makerAddr string) error
	// GetOrderBook 拉取交易对的公共订单簿。
	GetOrderBook(ctx context.Context, maker, taker string) (OrderBook, error)
	// Balances 汇总某资产余额；addressOnly 非空时只计该地址的 utxo。
	Balances(ctx context.Context, asset, addressOnly string) (Balance, error)
}
