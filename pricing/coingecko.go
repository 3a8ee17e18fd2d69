package pricing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultCoinGeckoURL 公共 API 入口。
const DefaultCoinGeckoURL = "https://api.coingecko.com"

// CoinGecko 通过 simple/price 接口取价。任意交易对经 BTC 交叉换算：
// price(base/quote) = price(base/btc) / price(quote/btc)。
// HTTPClient 可注入 httptest，错误一律折算为 0（不可用语义）。
type CoinGecko struct {
	BaseURL    string
	HTTPClient *http.Client
	IDs        map[string]string // ticker → coingecko coin id，如 BLOCK → blocknet
	Log        *zap.Logger
}

// NewCoinGecko 创建取价客户端；ids 把交易代码映射到 coingecko 的 coin id。
func NewCoinGecko(ids map[string]string, log *zap.Logger) *CoinGecko {
	if log == nil {
		log = zap.NewNop()
	}
	norm := make(map[string]string, len(ids))
	for k, v := range ids {
		norm[strings.ToUpper(k)] = v
	}
	return &CoinGecko{
		BaseURL:    DefaultCoinGeckoURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		IDs:        norm,
		Log:        log,
	}
}

func (g *CoinGecko) coinID(ticker string) string {
	if id, ok := g.IDs[strings.ToUpper(ticker)]; ok {
		return id
	}
	// 未配置映射时按惯例退化为小写 ticker
	return strings.ToLower(ticker)
}

// Quote 返回 base 以 quote 计价的价格，失败为 0。
func (g *CoinGecko) Quote(base, quote string) float64 {
	baseID := g.coinID(base)
	quoteID := g.coinID(quote)

	q := url.Values{}
	q.Set("ids", baseID+","+quoteID)
	q.Set("vs_currencies", "btc")
	endpoint := fmt.Sprintf("%s/api/v3/simple/price?%s", g.BaseURL, q.Encode())

	resp, err := g.HTTPClient.Get(endpoint)
	if err != nil {
		g.Log.Warn("coingecko_error", zap.String("base", base), zap.String("quote", quote), zap.Error(err))
		return 0
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		g.Log.Warn("coingecko_status", zap.String("base", base), zap.String("quote", quote), zap.Int("status", resp.StatusCode))
		return 0
	}

	var body map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		g.Log.Warn("coingecko_decode_error", zap.Error(err))
		return 0
	}
	baseBTC := body[baseID]["btc"]
	quoteBTC := body[quoteID]["btc"]
	if baseBTC <= 0 || quoteBTC <= 0 {
		return 0
	}
	return baseBTC / quoteBTC
}
