package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dxmaker-go/order"
)

// rpcStub 按 method 分发的 JSON-RPC 假服务端。
type rpcStub struct {
	t        *testing.T
	handlers map[string]func(params []any) (any, *rpcError)
	lastAuth string
}

func newRPCStub(t *testing.T) (*rpcStub, *httptest.Server) {
	stub := &rpcStub{t: t, handlers: map[string]func([]any) (any, *rpcError){}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, _ := r.BasicAuth()
		stub.lastAuth = user
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		h, ok := stub.handlers[req.Method]
		if !ok {
			t.Fatalf("unexpected method %q", req.Method)
		}
		result, rpcErr := h(req.Params)
		resp := map[string]any{"result": result, "error": rpcErr, "id": req.ID}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return stub, srv
}

func newTestClient(srv *httptest.Server) *XBridgeClient {
	return &XBridgeClient{
		URL:        srv.URL,
		User:       "rpcuser",
		Password:   "rpcpass",
		HTTPClient: srv.Client(),
	}
}

func TestListOrdersFiltersPair(t *testing.T) {
	stub, srv := newRPCStub(t)
	stub.handlers["dxGetMyOrders"] = func([]any) (any, *rpcError) {
		return []map[string]string{
			{"id": "1", "maker": "BLOCK", "taker": "LTC", "maker_size": "100.000000", "taker_size": "5.000000", "status": "open"},
			{"id": "2", "maker": "LTC", "taker": "BLOCK", "maker_size": "5.000000", "taker_size": "100.000000", "status": "open"},
		}, nil
	}
	c := newTestClient(srv)

	got, err := c.ListOrders(context.Background(), "BLOCK", "LTC")
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("got %+v, want only order 1", got)
	}
	if got[0].MakerSize != 100 || got[0].TakerSize != 5 {
		t.Fatalf("sizes not parsed: %+v", got[0])
	}
	if got[0].Status != order.StatusOpen {
		t.Fatalf("status = %q", got[0].Status)
	}
	if stub.lastAuth != "rpcuser" {
		t.Fatalf("basic auth user = %q", stub.lastAuth)
	}
}

func TestSubmitOrderExact(t *testing.T) {
	stub, srv := newRPCStub(t)
	stub.handlers["dxMakeOrder"] = func(params []any) (any, *rpcError) {
		want := []any{"BLOCK", "100.123457", "maddr", "LTC", "5.000000", "taddr", "exact"}
		if len(params) != len(want) {
			t.Fatalf("params = %v", params)
		}
		for i := range want {
			if params[i] != want[i] {
				t.Fatalf("param %d = %v, want %v", i, params[i], want[i])
			}
		}
		return map[string]string{"id": "abc", "maker": "BLOCK", "taker": "LTC",
			"maker_size": "100.123457", "taker_size": "5.000000", "status": "new"}, nil
	}
	c := newTestClient(srv)

	r, err := c.SubmitOrder(context.Background(), "BLOCK", 100.1234567, "maddr", "LTC", 5, "taddr", 0)
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if r.ID != "abc" || r.Status != order.StatusNew {
		t.Fatalf("got %+v", r)
	}
}

func TestSubmitOrderPartial(t *testing.T) {
	stub, srv := newRPCStub(t)
	stub.handlers["dxMakePartialOrder"] = func(params []any) (any, *rpcError) {
		if params[6] != "10.000000" {
			t.Fatalf("minimum size param = %v", params[6])
		}
		if params[7] != false {
			t.Fatalf("repost param = %v", params[7])
		}
		return map[string]string{"id": "p1", "status": "new"}, nil
	}
	c := newTestClient(srv)

	if _, err := c.SubmitOrder(context.Background(), "BLOCK", 100, "m", "LTC", 5, "t", 10); err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
}

func TestRPCErrorWrapped(t *testing.T) {
	stub, srv := newRPCStub(t)
	stub.handlers["dxCancelOrder"] = func([]any) (any, *rpcError) {
		return nil, &rpcError{Code: 1019, Message: "order not found"}
	}
	c := newTestClient(srv)

	err := c.CancelOrder(context.Background(), "missing")
	if !errors.Is(err, ErrRPC) {
		t.Fatalf("err = %v, want ErrRPC", err)
	}
}

func TestGetOrderBook(t *testing.T) {
	stub, srv := newRPCStub(t)
	stub.handlers["dxGetOrderBook"] = func(params []any) (any, *rpcError) {
		if params[0] != float64(3) {
			t.Fatalf("detail level = %v, want 3", params[0])
		}
		return map[string]any{
			"bids": [][]string{{"0.035", "3.0", "bid1"}},
			"asks": [][]string{{"0.036", "1.5", "ask1"}},
		}, nil
	}
	c := newTestClient(srv)

	book, err := c.GetOrderBook(context.Background(), "BLOCK", "LTC")
	if err != nil {
		t.Fatalf("GetOrderBook: %v", err)
	}
	if len(book.Bids) != 1 || book.Bids[0].Price != 0.035 || book.Bids[0].Size != 3 || book.Bids[0].ID != "bid1" {
		t.Fatalf("bids = %+v", book.Bids)
	}
	if len(book.Asks) != 1 || book.Asks[0].ID != "ask1" {
		t.Fatalf("asks = %+v", book.Asks)
	}
}

func TestBalancesFromUtxos(t *testing.T) {
	stub, srv := newRPCStub(t)
	stub.handlers["dxGetUtxos"] = func(params []any) (any, *rpcError) {
		if params[0] != "BLOCK" || params[1] != true {
			t.Fatalf("params = %v", params)
		}
		return []map[string]any{
			{"address": "a1", "amount": 10.0, "orderid": ""},
			{"address": "a1", "amount": 5.0, "orderid": "abc"},
			{"address": "a2", "amount": 7.0, "orderid": ""},
		}, nil
	}
	c := newTestClient(srv)

	b, err := c.Balances(context.Background(), "BLOCK", "")
	if err != nil {
		t.Fatalf("Balances: %v", err)
	}
	if b.Total != 22 || b.Available != 17 || b.Reserved != 5 {
		t.Fatalf("balance = %+v", b)
	}

	// addressOnly 只统计指定地址
	b, err = c.Balances(context.Background(), "BLOCK", "a1")
	if err != nil {
		t.Fatalf("Balances: %v", err)
	}
	if b.Total != 15 || b.Available != 10 || b.Reserved != 5 {
		t.Fatalf("filtered balance = %+v", b)
	}
}
