package exchange

import (
	"context"
)

// Client is the exchange-agnostic slice of a REST client that the watcher depends on.
//
// A failed call returns a non-nil error. When the exchange did answer (an HTTP error or an API
// error in the body), the response that was received is returned alongside it.
type Client interface {

	//
	// Auth provides the relevant exchange's API key and secret to the client. Implementations that
	// sign each request simply store the credentials for later use.
	//
	Auth(key string, secret string)

	//
	// RetrieveTicker retrieves the current ticker of the specified symbol.
	//
	RetrieveTicker(ctx context.Context, symbol string) (Response, error)

	//
	// RetrieveCandles retrieves candles of the specified interval for the specified ticker symbol.
	// The section selects between only the most recent candle ("last") or history ("hist").
	//
	RetrieveCandles(ctx context.Context, symbol string, interval Interval, section string) (Response, error)
}
