package bitfinex

import (
	"strings"
)

// Hint carries metadata derived from an endpoint name. Empty fields mean the hint is absent.
type Hint struct {
	Type   string
	Symbol string
}

// TransformFunc reshapes a decoded public response.
type TransformFunc func(data interface{}, hint Hint) (interface{}, error)

// NormalizeFunc derives a hint from the endpoint name (path plus query) of a public request.
type NormalizeFunc func(endpoint string) Hint

// Transformer is the response transform hook applied to public responses. Whether it derives
// hints is fixed when it is constructed: see NewTransformer and NewNormalizingTransformer.
type Transformer struct {
	transform TransformFunc
	normalize NormalizeFunc
}

// PassThrough returns the default transformer, which hands every response back unchanged.
func PassThrough() Transformer {
	return NewTransformer(func(data interface{}, _ Hint) (interface{}, error) {
		return data, nil
	})
}

// NewTransformer wraps a transform function that receives no hints.
func NewTransformer(fn TransformFunc) Transformer {
	return Transformer{transform: fn}
}

// NewNormalizingTransformer wraps a transform function whose hints are derived from the endpoint
// name by the provided normalize function.
func NewNormalizingTransformer(fn TransformFunc, normalize NormalizeFunc) Transformer {
	return Transformer{transform: fn, normalize: normalize}
}

// Normalizes reports whether the transformer derives hints from endpoint names.
func (o Transformer) Normalizes() bool {
	return o.normalize != nil
}

// Apply runs the transformer against the decoded response of the named endpoint.
func (o Transformer) Apply(data interface{}, endpoint string) (interface{}, error) {
	if o.transform == nil {
		return data, nil
	}

	var hint Hint

	if o.normalize != nil {
		hint = o.normalize(endpoint)
	}

	return o.transform(data, hint)
}

// NormalizeEndpoint derives a hint from a public endpoint name. The type is the first path segment
// (with "stats1/trade:..." reported as "candles" and raw books as "rawbook") and the symbol is taken from wherever that
// endpoint carries it. Query strings are ignored.
func NormalizeEndpoint(endpoint string) Hint {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}

	segments := strings.Split(endpoint, "/")

	hint := Hint{Type: segments[0]}

	switch hint.Type {
	case "ticker", "book", "trades":
		if len(segments) > 1 {
			hint.Symbol = segments[1]
		}

		if hint.Type == "book" && len(segments) > 2 && segments[2] == "R0" {
			hint.Type = "rawbook"
		}

	case "stats1":
		if len(segments) < 2 {
			break
		}

		key := strings.Split(segments[1], ":")

		if key[0] == "trade" && len(key) == 3 {
			hint.Type = "candles"
			hint.Symbol = key[2]
		} else if len(key) >= 3 {
			hint.Type = "stats"
			hint.Symbol = key[2]
		}
	}

	return hint
}

// TypedTransformer returns a normalizing transformer that decodes trading pair tickers, trades,
// order books, and candles into their typed representations. Anything it does not recognize is
// handed back unchanged.
func TypedTransformer() Transformer {
	return NewNormalizingTransformer(decodeTyped, NormalizeEndpoint)
}

func decodeTyped(data interface{}, hint Hint) (interface{}, error) {
	raw, ok := data.([]interface{})
	if !ok || !strings.HasPrefix(hint.Symbol, "t") {
		return data, nil
	}

	switch hint.Type {
	case "ticker":
		return decodeTicker(hint.Symbol, raw)

	case "trades":
		return decodeRows(raw, decodeTrade)

	case "book":
		return decodeRows(raw, decodeBookEntry)

	case "rawbook":
		return decodeRows(raw, decodeRawBookEntry)

	case "candles":
		if len(raw) > 0 {
			if _, nested := raw[0].([]interface{}); !nested {
				return decodeCandle(raw)
			}
		}

		return decodeRows(raw, decodeCandle)
	}

	return data, nil
}
