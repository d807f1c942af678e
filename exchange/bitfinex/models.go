package bitfinex

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lukehollenback/bfxrest/exchange"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// NOTE ~> Bitfinex v2 responses are positional arrays. The layouts decoded here are:
//
//  ticker  [BID, BID_SIZE, ASK, ASK_SIZE, DAILY_CHANGE, DAILY_CHANGE_RELATIVE, LAST_PRICE, VOLUME,
//           HIGH, LOW]
//  trade   [ID, MTS, AMOUNT, PRICE]
//  book    [PRICE, COUNT, AMOUNT]
//  rawbook [ORDER_ID, PRICE, AMOUNT]
//  candle  [MTS, OPEN, CLOSE, HIGH, LOW, VOLUME]
//  wallet  [TYPE, CURRENCY, BALANCE, UNSETTLED_INTEREST, AVAILABLE_BALANCE, ...]

const (
	tickerBidIndex       = 0
	tickerBidSizeIndex   = 1
	tickerAskIndex       = 2
	tickerAskSizeIndex   = 3
	tickerChangeIndex    = 4
	tickerChangeRelIndex = 5
	tickerLastPriceIndex = 6
	tickerVolumeIndex    = 7
	tickerHighIndex      = 8
	tickerLowIndex       = 9
	tickerLen            = 10

	candleTimeIndex   = 0
	candleOpenIndex   = 1
	candleCloseIndex  = 2
	candleHighIndex   = 3
	candleLowIndex    = 4
	candleVolumeIndex = 5
	candleLen         = 6
)

// Ticker implements the exchange.Ticker interface for trading pair tickers.
type Ticker struct {
	symbol              string
	Bid                 decimal.Decimal
	BidSize             decimal.Decimal
	Ask                 decimal.Decimal
	AskSize             decimal.Decimal
	DailyChange         decimal.Decimal
	DailyChangeRelative decimal.Decimal
	LastPrice           decimal.Decimal
	Volume              decimal.Decimal
	High                decimal.Decimal
	Low                 decimal.Decimal
}

// tickerView adapts Ticker's exported fields to the method set exchange.Ticker expects.
type tickerView struct{ *Ticker }

func (o tickerView) Symbol() string             { return o.symbol }
func (o tickerView) Bid() decimal.Decimal       { return o.Ticker.Bid }
func (o tickerView) Ask() decimal.Decimal       { return o.Ticker.Ask }
func (o tickerView) LastPrice() decimal.Decimal { return o.Ticker.LastPrice }
func (o tickerView) Volume() decimal.Decimal    { return o.Ticker.Volume }
func (o tickerView) High() decimal.Decimal      { return o.Ticker.High }
func (o tickerView) Low() decimal.Decimal       { return o.Ticker.Low }

// Symbol returns the trading pair the ticker describes.
func (o *Ticker) Symbol() string {
	return o.symbol
}

// Generic returns the ticker as an exchange.Ticker.
func (o *Ticker) Generic() exchange.Ticker {
	return tickerView{o}
}

// Trade is one public trade of a trading pair. Negative amounts are sells.
type Trade struct {
	ID     int64
	Time   time.Time
	Amount decimal.Decimal
	Price  decimal.Decimal
}

// BookEntry is one price level (or, for raw books, one order) of an order book. Positive amounts
// are bids and negative amounts are asks.
type BookEntry struct {
	OrderID int64
	Price   decimal.Decimal
	Count   int
	Amount  decimal.Decimal
}

// Candle implements the exchange.Candle interface for Bitfinex candles.
type Candle struct {
	start  time.Time
	end    *time.Time
	open   decimal.Decimal
	close  decimal.Decimal
	high   decimal.Decimal
	low    decimal.Decimal
	volume decimal.Decimal
}

func (o *Candle) StartTime() *time.Time    { return &o.start }
func (o *Candle) EndTime() *time.Time      { return o.end }
func (o *Candle) Open() *decimal.Decimal   { return &o.open }
func (o *Candle) High() *decimal.Decimal   { return &o.high }
func (o *Candle) Low() *decimal.Decimal    { return &o.low }
func (o *Candle) Close() *decimal.Decimal  { return &o.close }
func (o *Candle) Volume() *decimal.Decimal { return &o.volume }

// Count always returns nil because Bitfinex candles do not carry a trade count.
func (o *Candle) Count() *int {
	return nil
}

// setInterval fixes the end time of the candle. Candles decoded without knowing their timeframe
// report a nil end time.
func (o *Candle) setInterval(interval exchange.Interval) {
	end := interval.End(o.start)
	o.end = &end
}

// Wallet is one balance entry returned by the authenticated wallets endpoint.
type Wallet struct {
	Type              string
	Currency          string
	Balance           decimal.Decimal
	UnsettledInterest decimal.Decimal
	AvailableBalance  decimal.Decimal
}

func decodeTicker(symbol string, raw []interface{}) (*Ticker, error) {
	if len(raw) < tickerLen {
		return nil, fmt.Errorf("ticker has %d fields, expected %d", len(raw), tickerLen)
	}

	o := &Ticker{symbol: symbol}

	fields := []struct {
		dst   *decimal.Decimal
		index int
	}{
		{&o.Bid, tickerBidIndex},
		{&o.BidSize, tickerBidSizeIndex},
		{&o.Ask, tickerAskIndex},
		{&o.AskSize, tickerAskSizeIndex},
		{&o.DailyChange, tickerChangeIndex},
		{&o.DailyChangeRelative, tickerChangeRelIndex},
		{&o.LastPrice, tickerLastPriceIndex},
		{&o.Volume, tickerVolumeIndex},
		{&o.High, tickerHighIndex},
		{&o.Low, tickerLowIndex},
	}

	for _, f := range fields {
		v, err := decimalAt(raw, f.index)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode ticker")
		}

		*f.dst = v
	}

	return o, nil
}

func decodeTrade(raw []interface{}) (*Trade, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("trade has %d fields, expected 4", len(raw))
	}

	id, err := int64At(raw, 0)
	if err != nil {
		return nil, err
	}

	mts, err := int64At(raw, 1)
	if err != nil {
		return nil, err
	}

	amount, err := decimalAt(raw, 2)
	if err != nil {
		return nil, err
	}

	price, err := decimalAt(raw, 3)
	if err != nil {
		return nil, err
	}

	return &Trade{ID: id, Time: millisToTime(mts), Amount: amount, Price: price}, nil
}

func decodeBookEntry(raw []interface{}) (*BookEntry, error) {
	if len(raw) < 3 {
		return nil, fmt.Errorf("book entry has %d fields, expected 3", len(raw))
	}

	price, err := decimalAt(raw, 0)
	if err != nil {
		return nil, err
	}

	count, err := int64At(raw, 1)
	if err != nil {
		return nil, err
	}

	amount, err := decimalAt(raw, 2)
	if err != nil {
		return nil, err
	}

	return &BookEntry{Price: price, Count: int(count), Amount: amount}, nil
}

func decodeRawBookEntry(raw []interface{}) (*BookEntry, error) {
	if len(raw) < 3 {
		return nil, fmt.Errorf("raw book entry has %d fields, expected 3", len(raw))
	}

	id, err := int64At(raw, 0)
	if err != nil {
		return nil, err
	}

	price, err := decimalAt(raw, 1)
	if err != nil {
		return nil, err
	}

	amount, err := decimalAt(raw, 2)
	if err != nil {
		return nil, err
	}

	return &BookEntry{OrderID: id, Price: price, Count: 1, Amount: amount}, nil
}

func decodeCandle(raw []interface{}) (*Candle, error) {
	if len(raw) < candleLen {
		return nil, fmt.Errorf("candle has %d fields, expected %d", len(raw), candleLen)
	}

	mts, err := int64At(raw, candleTimeIndex)
	if err != nil {
		return nil, err
	}

	o := &Candle{start: millisToTime(mts)}

	fields := []struct {
		dst   *decimal.Decimal
		index int
	}{
		{&o.open, candleOpenIndex},
		{&o.close, candleCloseIndex},
		{&o.high, candleHighIndex},
		{&o.low, candleLowIndex},
		{&o.volume, candleVolumeIndex},
	}

	for _, f := range fields {
		v, err := decimalAt(raw, f.index)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode candle")
		}

		*f.dst = v
	}

	return o, nil
}

func decodeWallet(raw []interface{}) (*Wallet, error) {
	if len(raw) < 5 {
		return nil, fmt.Errorf("wallet has %d fields, expected at least 5", len(raw))
	}

	o := &Wallet{}
	o.Type, _ = raw[0].(string)
	o.Currency, _ = raw[1].(string)

	var err error

	if o.Balance, err = decimalAt(raw, 2); err != nil {
		return nil, err
	}

	if o.UnsettledInterest, err = decimalAt(raw, 3); err != nil {
		return nil, err
	}

	if o.AvailableBalance, err = decimalAt(raw, 4); err != nil {
		return nil, err
	}

	return o, nil
}

// decodeRows applies the provided row decoder to every nested array of a response.
func decodeRows[T any](raw []interface{}, decode func([]interface{}) (T, error)) ([]T, error) {
	out := make([]T, 0, len(raw))

	for i, v := range raw {
		row, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("failed to assert type of row %d (%+v)", i, v)
		}

		decoded, err := decode(row)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}

		out = append(out, decoded)
	}

	return out, nil
}

// decimalAt reads a numeric field. Null fields (which Bitfinex uses for "not available") decode as
// zero.
func decimalAt(raw []interface{}, index int) (decimal.Decimal, error) {
	switch v := raw[index].(type) {
	case nil:
		return decimal.Zero, nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return decimal.NewFromString(v)
	}

	return decimal.Zero, fmt.Errorf("failed to assert type of field %d (%+v)", index, raw[index])
}

func int64At(raw []interface{}, index int) (int64, error) {
	switch v := raw[index].(type) {
	case json.Number:
		return v.Int64()
	case float64:
		return int64(v), nil
	}

	return 0, fmt.Errorf("failed to assert type of field %d (%+v)", index, raw[index])
}

func millisToTime(mts int64) time.Time {
	return time.Unix(0, mts*int64(time.Millisecond)).UTC()
}
