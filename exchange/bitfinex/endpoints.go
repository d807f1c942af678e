package bitfinex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lukehollenback/bfxrest/exchange"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// OrderBookParams selects an order book. Zero values take the defaults noted per field.
type OrderBookParams struct {
	Symbol    string // No default; an empty symbol is sent as-is.
	Precision string // Defaults to "P0". One of P0-P4 or R0.
	Limit     int    // Defaults to 25.
}

// TradesParams selects recent public trades.
type TradesParams struct {
	Symbol string // Defaults to "tBTCUSD".
	Limit  int    // Defaults to 120.
}

// StatsParams selects a statistics series.
type StatsParams struct {
	Key     string // Defaults to "pos.size:1m:tBTCUSD:long".
	Context string // Defaults to "hist".
}

// CandlesParams selects candles. The zero Timeframe is exchange.OneMinute.
type CandlesParams struct {
	Timeframe exchange.Interval // Defaults to "1m".
	Symbol    string            // Defaults to "tBTCUSD".
	Section   string            // Defaults to "hist". Either "last" or "hist".
}

// AlertParams describes a price alert.
type AlertParams struct {
	Type   string          // Defaults to "price".
	Symbol string          // Defaults to "tBTCUSD".
	Price  decimal.Decimal // Defaults to 0.
}

type alertSetPayload struct {
	Type   string      `json:"type"`
	Symbol string      `json:"symbol"`
	Price  json.Number `json:"price"`
}

type alertDeletePayload struct {
	Symbol string      `json:"symbol"`
	Price  json.Number `json:"price"`
}

func orDefault(v string, def string) string {
	if v == "" {
		return def
	}

	return v
}

func limitOrDefault(name string, v int, def int) (int, error) {
	if v < 0 {
		return 0, &ConfigError{Reason: fmt.Sprintf("%s must not be negative (got %d)", name, v)}
	} else if v == 0 {
		return def, nil
	}

	return v, nil
}

// Ticker retrieves the ticker of the provided symbol (default "tBTCUSD").
func (o *Client) Ticker(ctx context.Context, symbol string) (*Response, error) {
	return o.sendPublic(ctx, "ticker/"+orDefault(symbol, DefaultSymbol))
}

// Tickers retrieves the tickers of all provided symbols in one request.
func (o *Client) Tickers(ctx context.Context, symbols ...string) (*Response, error) {
	return o.sendPublic(ctx, "tickers?symbols="+strings.Join(symbols, ","))
}

// OrderBook retrieves an order book.
func (o *Client) OrderBook(ctx context.Context, params OrderBookParams) (*Response, error) {
	precision := orDefault(params.Precision, DefaultPrecision)
	if !precisions[precision] {
		return o.deliver(nil, &ConfigError{Reason: fmt.Sprintf("unknown book precision %q", precision)})
	}

	limit, err := limitOrDefault("book length", params.Limit, DefaultBookLimit)
	if err != nil {
		return o.deliver(nil, err)
	}

	return o.sendPublic(ctx, fmt.Sprintf("book/%s/%s?len=%d", params.Symbol, precision, limit))
}

// Trades retrieves the most recent public trades of a symbol.
func (o *Client) Trades(ctx context.Context, params TradesParams) (*Response, error) {
	limit, err := limitOrDefault("trade limit", params.Limit, DefaultTrades)
	if err != nil {
		return o.deliver(nil, err)
	}

	return o.sendPublic(ctx, fmt.Sprintf("trades/%s/hist?limit=%d", orDefault(params.Symbol, DefaultSymbol), limit))
}

// Stats retrieves a statistics series such as position sizes.
func (o *Client) Stats(ctx context.Context, params StatsParams) (*Response, error) {
	return o.sendPublic(ctx, fmt.Sprintf(
		"stats1/%s/%s",
		orDefault(params.Key, DefaultStatsKey),
		orDefault(params.Context, DefaultContext),
	))
}

// Candles retrieves candles. Query parameters are not supported by this call.
func (o *Client) Candles(ctx context.Context, params CandlesParams) (*Response, error) {
	if _, ok := exchange.ParseInterval(params.Timeframe.String()); !ok {
		return o.deliver(nil, &ConfigError{Reason: fmt.Sprintf("unknown candle timeframe %d", params.Timeframe)})
	}

	return o.sendPublic(ctx, fmt.Sprintf(
		"stats1/trade:%s:%s/%s",
		params.Timeframe,
		orDefault(params.Symbol, DefaultSymbol),
		orDefault(params.Section, DefaultSection),
	))
}

// AlertList retrieves the alerts of the provided type (default "price").
func (o *Client) AlertList(ctx context.Context, alertType string) (*Response, error) {
	return o.sendAuthenticated(ctx, "auth/r/alerts?type="+orDefault(alertType, DefaultAlertType), nil)
}

// AlertSet creates a price alert.
func (o *Client) AlertSet(ctx context.Context, params AlertParams) (*Response, error) {
	return o.sendAuthenticated(ctx, "auth/w/alert/set", &alertSetPayload{
		Type:   orDefault(params.Type, DefaultAlertType),
		Symbol: orDefault(params.Symbol, DefaultSymbol),
		Price:  json.Number(params.Price.String()),
	})
}

// AlertDelete posts to the same path as AlertSet, without a type.
//
// TODO ~> Confirm against the exchange whether deletion should use auth/w/alert/del. It stays on
// the set path until then because existing callers depend on it.
func (o *Client) AlertDelete(ctx context.Context, symbol string, price decimal.Decimal) (*Response, error) {
	return o.sendAuthenticated(ctx, "auth/w/alert/set", &alertDeletePayload{
		Symbol: orDefault(symbol, DefaultSymbol),
		Price:  json.Number(price.String()),
	})
}

// Orders retrieves the account's active orders.
func (o *Client) Orders(ctx context.Context) (*Response, error) {
	return o.sendAuthenticated(ctx, "auth/r/orders", nil)
}

// Wallets retrieves the account's wallets. See DecodeWallets.
func (o *Client) Wallets(ctx context.Context) (*Response, error) {
	return o.sendAuthenticated(ctx, "auth/r/wallets", nil)
}

// DecodeWallets decodes the body of a Wallets response.
func DecodeWallets(resp *Response) ([]*Wallet, error) {
	raw, ok := resp.Data().([]interface{})
	if !ok {
		return nil, fmt.Errorf("failed to assert type of wallets (%+v)", resp.Data())
	}

	return decodeRows(raw, decodeWallet)
}

// RetrieveTicker implements the exchange.Client interface. The ticker is decoded from the raw body,
// regardless of the configured transformer.
func (o *Client) RetrieveTicker(ctx context.Context, symbol string) (exchange.Response, error) {
	symbol = orDefault(symbol, DefaultSymbol)

	resp, err := o.Ticker(ctx, symbol)
	if err != nil {
		return resp.generic(), err
	}

	raw, err := decodeRaw(resp)
	if err != nil {
		return resp, err
	}

	resp.ticker, err = decodeTicker(symbol, raw)
	if err != nil {
		return resp, err
	}

	return resp, nil
}

// RetrieveCandles implements the exchange.Client interface. The candles are decoded from the raw
// body, regardless of the configured transformer, and carry end times derived from the interval.
func (o *Client) RetrieveCandles(
	ctx context.Context,
	symbol string,
	interval exchange.Interval,
	section string,
) (exchange.Response, error) {
	resp, err := o.Candles(ctx, CandlesParams{Timeframe: interval, Symbol: symbol, Section: section})
	if err != nil {
		return resp.generic(), err
	}

	raw, err := decodeRaw(resp)
	if err != nil {
		return resp, err
	}

	//
	// A "last" section is a single candle while "hist" is a list of them.
	//
	if len(raw) > 0 {
		if _, nested := raw[0].([]interface{}); !nested {
			raw = []interface{}{raw}
		}
	}

	resp.candles, err = decodeRows(raw, decodeCandle)
	if err != nil {
		return resp, err
	}

	for _, v := range resp.candles {
		v.setInterval(interval)
	}

	return resp, nil
}

func decodeRaw(resp *Response) ([]interface{}, error) {
	var raw []interface{}

	decoder := json.NewDecoder(bytes.NewReader(resp.body))
	decoder.UseNumber()

	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode response body as an array")
	}

	return raw, nil
}
