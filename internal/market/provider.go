package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// HistoryProvider fetches historical candles for a symbol.
type HistoryProvider interface {
	History(ctx context.Context, symbol, interval string, limit int) (Series, error)
}

// BinanceProvider fetches candles from the Binance public klines endpoint.
// Requests are rate limited to stay under the exchange request weight.
type BinanceProvider struct {
	BaseURL    string
	HTTPClient *http.Client
	limiter    *rate.Limiter
}

// NewBinanceProvider builds a provider; use testnet to switch base URLs and
// baseURL to override both (for tests or proxies).
func NewBinanceProvider(baseURL string, testnet bool) *BinanceProvider {
	if baseURL == "" {
		baseURL = "https://api.binance.com"
		if testnet {
			baseURL = "https://testnet.binance.vision"
		}
	}
	return &BinanceProvider{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
	}
}

// History fetches up to limit klines and converts them to a validated
// candle series, oldest first.
func (p *BinanceProvider) History(ctx context.Context, symbol, interval string, limit int) (Series, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	u := fmt.Sprintf("%s/api/v3/klines?%s", p.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("binance klines status %d", res.StatusCode)
	}

	var raw [][]any
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, err
	}

	series := make(Series, 0, len(raw))
	for _, item := range raw {
		// Binance returns 12 fields per kline
		if len(item) < 6 {
			continue
		}
		series = append(series, PricePoint{
			Date:   time.UnixMilli(toInt64(item[0])).UTC(),
			Open:   toFloat(item[1]),
			High:   toFloat(item[2]),
			Low:    toFloat(item[3]),
			Close:  toFloat(item[4]),
			Volume: toFloat(item[5]),
		})
	}

	if err := Validate(series); err != nil {
		return nil, fmt.Errorf("klines for %s: %w", symbol, err)
	}
	return series, nil
}

// SeriesCache is the subset of the series cache the cached provider needs.
type SeriesCache interface {
	Get(key string) (Series, bool)
	Set(key string, series Series)
}

// CachedProvider serves history from a TTL cache, falling through to the
// inner provider on a miss.
type CachedProvider struct {
	inner HistoryProvider
	cache SeriesCache
}

// NewCachedProvider wraps a provider with a cache.
func NewCachedProvider(inner HistoryProvider, cache SeriesCache) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache}
}

// History returns the cached series when fresh, otherwise fetches and
// caches it. The limit is part of the key so partial fetches do not shadow
// full ones.
func (p *CachedProvider) History(ctx context.Context, symbol, interval string, limit int) (Series, error) {
	key := fmt.Sprintf("%s|%s|%d", symbol, interval, limit)
	if series, ok := p.cache.Get(key); ok {
		return series, nil
	}

	series, err := p.inner.History(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, series)
	return series, nil
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	case json.Number:
		f, _ := t.Float64()
		return f
	case float64:
		return t
	default:
		return 0
	}
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int64:
		return t
	case json.Number:
		i, _ := t.Int64()
		return i
	default:
		return 0
	}
}
