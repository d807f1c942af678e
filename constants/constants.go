package constants

import (
	"github.com/shopspring/decimal"
)

const (
	LogPrefixFmt = "%-19s "
)

var (
	zero = decimal.Zero
)

func Zero() decimal.Decimal {
	return zero
}
