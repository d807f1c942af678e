package bitfinex

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/lukehollenback/bfxrest/exchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicEndpointPaths(t *testing.T) {
	f := newFakeExchange(t, http.StatusOK, `[]`)
	c := f.client("", "", Options{})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (*Response, error)
		uri  string
	}{
		{
			name: "ticker default",
			call: func() (*Response, error) { return c.Ticker(ctx, "") },
			uri:  "/v2/ticker/tBTCUSD",
		},
		{
			name: "ticker symbol",
			call: func() (*Response, error) { return c.Ticker(ctx, "tETHUSD") },
			uri:  "/v2/ticker/tETHUSD",
		},
		{
			name: "tickers",
			call: func() (*Response, error) { return c.Tickers(ctx, "tBTCUSD", "fUSD") },
			uri:  "/v2/tickers?symbols=tBTCUSD,fUSD",
		},
		{
			name: "tickers default",
			call: func() (*Response, error) { return c.Tickers(ctx) },
			uri:  "/v2/tickers?symbols=",
		},
		{
			name: "order book defaults",
			call: func() (*Response, error) { return c.OrderBook(ctx, OrderBookParams{Symbol: "tETHUSD"}) },
			uri:  "/v2/book/tETHUSD/P0?len=25",
		},
		{
			name: "order book explicit",
			call: func() (*Response, error) {
				return c.OrderBook(ctx, OrderBookParams{Symbol: "tETHUSD", Precision: "R0", Limit: 100})
			},
			uri: "/v2/book/tETHUSD/R0?len=100",
		},
		{
			name: "trades defaults",
			call: func() (*Response, error) { return c.Trades(ctx, TradesParams{}) },
			uri:  "/v2/trades/tBTCUSD/hist?limit=120",
		},
		{
			name: "stats defaults",
			call: func() (*Response, error) { return c.Stats(ctx, StatsParams{}) },
			uri:  "/v2/stats1/pos.size:1m:tBTCUSD:long/hist",
		},
		{
			name: "candles defaults",
			call: func() (*Response, error) { return c.Candles(ctx, CandlesParams{}) },
			uri:  "/v2/stats1/trade:1m:tBTCUSD/hist",
		},
		{
			name: "candles explicit",
			call: func() (*Response, error) {
				return c.Candles(ctx, CandlesParams{Timeframe: exchange.FiveMinute, Symbol: "tETHUSD", Section: "last"})
			},
			uri: "/v2/stats1/trade:5m:tETHUSD/last",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.call()
			require.NoError(t, err)

			req := f.last(t)
			assert.Equal(t, http.MethodGet, req.method)
			assert.Equal(t, test.uri, req.uri)
		})
	}
}

func TestAuthenticatedEndpointPathsAndPayloads(t *testing.T) {
	f := newFakeExchange(t, http.StatusOK, `[]`)
	c := f.client("key", "secret", Options{})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (*Response, error)
		uri  string
		body string
	}{
		{
			name: "alert list default",
			call: func() (*Response, error) { return c.AlertList(ctx, "") },
			uri:  "/v2/auth/r/alerts?type=price",
			body: "{}",
		},
		{
			name: "alert set",
			call: func() (*Response, error) {
				return c.AlertSet(ctx, AlertParams{Type: "price", Symbol: "tBTCUSD", Price: decimal.NewFromInt(100)})
			},
			uri:  "/v2/auth/w/alert/set",
			body: `{"type":"price","symbol":"tBTCUSD","price":100}`,
		},
		{
			name: "alert set defaults",
			call: func() (*Response, error) { return c.AlertSet(ctx, AlertParams{}) },
			uri:  "/v2/auth/w/alert/set",
			body: `{"type":"price","symbol":"tBTCUSD","price":0}`,
		},
		{
			name: "alert delete keeps the set path and has no type",
			call: func() (*Response, error) { return c.AlertDelete(ctx, "tBTCUSD", decimal.NewFromInt(100)) },
			uri:  "/v2/auth/w/alert/set",
			body: `{"symbol":"tBTCUSD","price":100}`,
		},
		{
			name: "alert delete fractional price",
			call: func() (*Response, error) { return c.AlertDelete(ctx, "", decimal.RequireFromString("9500.5")) },
			uri:  "/v2/auth/w/alert/set",
			body: `{"symbol":"tBTCUSD","price":9500.5}`,
		},
		{
			name: "orders",
			call: func() (*Response, error) { return c.Orders(ctx) },
			uri:  "/v2/auth/r/orders",
			body: "{}",
		},
		{
			name: "wallets",
			call: func() (*Response, error) { return c.Wallets(ctx) },
			uri:  "/v2/auth/r/wallets",
			body: "{}",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.call()
			require.NoError(t, err)

			req := f.last(t)
			assert.Equal(t, http.MethodPost, req.method)
			assert.Equal(t, test.uri, req.uri)
			assert.Equal(t, test.body, req.body)
			assert.Equal(t,
				Sign("secret", f.baseURL()+test.uri[1:], req.header.Get(NonceHeader), []byte(req.body)),
				req.header.Get(SignatureHeader),
			)
		})
	}
}

func TestInvalidParametersFailBeforeIO(t *testing.T) {
	f := newFakeExchange(t, http.StatusOK, `[]`)
	c := f.client("", "", Options{})
	ctx := context.Background()

	calls := map[string]func() (*Response, error){
		"unknown precision": func() (*Response, error) {
			return c.OrderBook(ctx, OrderBookParams{Symbol: "tBTCUSD", Precision: "P9"})
		},
		"negative book length": func() (*Response, error) {
			return c.OrderBook(ctx, OrderBookParams{Symbol: "tBTCUSD", Limit: -1})
		},
		"negative trade limit": func() (*Response, error) {
			return c.Trades(ctx, TradesParams{Limit: -5})
		},
		"unknown timeframe": func() (*Response, error) {
			return c.Candles(ctx, CandlesParams{Timeframe: exchange.Interval(42)})
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			_, err := call()

			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}

	assert.Zero(t, f.count())
}

func TestRetrieveTicker(t *testing.T) {
	f := newFakeExchange(t, http.StatusOK, `[9000.1,10.5,9000.2,8.25,-120,-0.0131,9000.15,1234.5,9300,8900]`)
	c := f.client("", "", Options{})

	resp, err := c.RetrieveTicker(context.Background(), "")
	require.NoError(t, err)

	ticker := resp.Ticker()
	require.NotNil(t, ticker)

	assert.Equal(t, "tBTCUSD", ticker.Symbol())
	assert.True(t, ticker.Bid().Equal(decimal.RequireFromString("9000.1")))
	assert.True(t, ticker.Ask().Equal(decimal.RequireFromString("9000.2")))
	assert.True(t, ticker.LastPrice().Equal(decimal.RequireFromString("9000.15")))
	assert.True(t, ticker.Volume().Equal(decimal.RequireFromString("1234.5")))
	assert.True(t, ticker.High().Equal(decimal.NewFromInt(9300)))
	assert.True(t, ticker.Low().Equal(decimal.NewFromInt(8900)))
}

func TestRetrieveTickerError(t *testing.T) {
	f := newFakeExchange(t, http.StatusOK, `["error",10020,"symbol: invalid"]`)
	c := f.client("", "", Options{})

	resp, err := c.RetrieveTicker(context.Background(), "tNOPE")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Nil(t, resp.Ticker())
}

func TestRetrieveCandlesHistory(t *testing.T) {
	f := newFakeExchange(t, http.StatusOK, `[[1600000060000,10,11,12,9,1.5],[1600000000000,9,10,10.5,8.5,2]]`)
	c := f.client("", "", Options{})

	resp, err := c.RetrieveCandles(context.Background(), "tBTCUSD", exchange.OneMinute, "hist")
	require.NoError(t, err)

	candles := resp.Candles()
	require.Len(t, candles, 2)

	first := candles[0]
	start := time.Unix(1600000060, 0).UTC()

	assert.True(t, first.StartTime().Equal(start))
	assert.True(t, first.EndTime().Equal(start.Add(time.Minute-time.Nanosecond)))
	assert.True(t, first.Open().Equal(decimal.NewFromInt(10)))
	assert.True(t, first.Close().Equal(decimal.NewFromInt(11)))
	assert.True(t, first.High().Equal(decimal.NewFromInt(12)))
	assert.True(t, first.Low().Equal(decimal.NewFromInt(9)))
	assert.True(t, first.Volume().Equal(decimal.RequireFromString("1.5")))
	assert.Nil(t, first.Count())

	assert.Equal(t, "/v2/stats1/trade:1m:tBTCUSD/hist", f.last(t).uri)
}

func TestRetrieveCandlesLast(t *testing.T) {
	f := newFakeExchange(t, http.StatusOK, `[1600000000000,9,10,10.5,8.5,2]`)
	c := f.client("", "", Options{})

	resp, err := c.RetrieveCandles(context.Background(), "tETHUSD", exchange.OneDay, "last")
	require.NoError(t, err)

	candles := resp.Candles()
	require.Len(t, candles, 1)

	start := time.Unix(1600000000, 0).UTC()
	assert.True(t, candles[0].EndTime().Equal(start.AddDate(0, 0, 1).Add(-time.Nanosecond)))
	assert.Equal(t, "/v2/stats1/trade:1D:tETHUSD/last", f.last(t).uri)
}

func TestDecodeWallets(t *testing.T) {
	f := newFakeExchange(t, http.StatusOK, `[["exchange","USD",1000.5,0,900,"Trading fees",null],["margin","BTC",0.5,0,null]]`)
	c := f.client("key", "secret", Options{})

	resp, err := c.Wallets(context.Background())
	require.NoError(t, err)

	wallets, err := DecodeWallets(resp)
	require.NoError(t, err)
	require.Len(t, wallets, 2)

	assert.Equal(t, "exchange", wallets[0].Type)
	assert.Equal(t, "USD", wallets[0].Currency)
	assert.True(t, wallets[0].Balance.Equal(decimal.RequireFromString("1000.5")))
	assert.True(t, wallets[0].AvailableBalance.Equal(decimal.NewFromInt(900)))

	assert.Equal(t, "margin", wallets[1].Type)
	assert.True(t, wallets[1].AvailableBalance.IsZero())
}
