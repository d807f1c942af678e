package bitfinex

import (
	"net/http"

	"github.com/lukehollenback/bfxrest/exchange"
)

// Response implements the exchange.Response interface for wrapped responses from the Bitfinex API.
type Response struct {
	response *http.Response
	body     []byte
	data     interface{}
	candles  []*Candle
	ticker   *Ticker
}

func (o *Response) Raw() *http.Response {
	return o.response
}

func (o *Response) Body() []byte {
	return o.body
}

// Data returns the decoded body. For public endpoints this is the output of the client's
// transformer. Numbers are decoded as json.Number.
func (o *Response) Data() interface{} {
	return o.data
}

func (o *Response) Candles() []exchange.Candle {
	ret := make([]exchange.Candle, len(o.candles))

	for i, v := range o.candles {
		ret[i] = v
	}

	return ret
}

func (o *Response) Ticker() exchange.Ticker {
	if o.ticker == nil {
		return nil
	}

	return o.ticker.Generic()
}

// generic converts the response to the exchange.Response interface without turning a nil pointer
// into a non-nil interface value.
func (o *Response) generic() exchange.Response {
	if o == nil {
		return nil
	}

	return o
}
