package exchange

import "github.com/shopspring/decimal"

// Ticker generically provides an interface to objects that represent a high level snapshot of a
// market as provided by an exchange's ticker endpoint.
type Ticker interface {
	Symbol() string
	Bid() decimal.Decimal
	Ask() decimal.Decimal
	LastPrice() decimal.Decimal
	Volume() decimal.Decimal
	High() decimal.Decimal
	Low() decimal.Decimal
}
