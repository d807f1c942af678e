package bitfinex

import "time"

const (
	BaseURL = "https://api.bitfinex.com/"
	Version = "v2"

	NonceHeader     = "bfx-nonce"
	APIKeyHeader    = "bfx-apikey"
	SignatureHeader = "bfx-signature"

	// PublicTimeout bounds every unauthenticated request. Authenticated requests are only bounded
	// by the caller's context.
	PublicTimeout = 15000 * time.Millisecond

	// ErrorSentinel is the first element of a response body that signals a failed call, even when
	// the HTTP status is 200.
	ErrorSentinel = "error"

	// SignaturePrefix is prepended to the full request URL when building the signed message.
	SignaturePrefix = "/api/"
)

// Endpoint defaults.
const (
	DefaultSymbol    = "tBTCUSD"
	DefaultPrecision = "P0"
	DefaultBookLimit = 25
	DefaultTrades    = 120
	DefaultStatsKey  = "pos.size:1m:tBTCUSD:long"
	DefaultContext   = "hist"
	DefaultSection   = "hist"
	DefaultAlertType = "price"
)

var precisions = map[string]bool{"P0": true, "P1": true, "P2": true, "P3": true, "P4": true, "R0": true}
