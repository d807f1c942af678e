package bitfinex

import (
	"encoding/json"
	"fmt"
	"strconv"
)

var errMissingCredentials = &ConfigError{Reason: "missing api key or secret"}

// ConfigError is returned before any network activity when a call cannot be issued with the
// client's configuration or the provided parameters.
type ConfigError struct {
	Reason string
}

func (o *ConfigError) Error() string {
	return o.Reason
}

// APIError implements the exchange.APIError interface for sentinel-shaped bodies returned from the
// Bitfinex API, e.g. ["error", 10020, "limit: invalid"]. The full decoded body is retained.
type APIError struct {
	body []interface{}
}

func newAPIError(body []interface{}) *APIError {
	return &APIError{body: body}
}

// Body returns the full decoded response body that carried the error sentinel.
func (o *APIError) Body() []interface{} {
	return o.body
}

func (o *APIError) Code() int {
	if len(o.body) < 2 {
		return 0
	}

	switch v := o.body[1].(type) {
	case json.Number:
		code, _ := strconv.Atoi(v.String())
		return code
	case float64:
		return int(v)
	}

	return 0
}

func (o *APIError) Message() string {
	if len(o.body) < 3 {
		return ""
	}

	msg, _ := o.body[2].(string)

	return msg
}

func (o *APIError) Error() string {
	raw, err := json.Marshal(o.body)
	if err != nil {
		return fmt.Sprintf("the Bitfinex endpoint returned an API error (%v)", o.body)
	}

	return string(raw)
}

// TransportError wraps a failure of the underlying HTTP exchange (dial errors, timeouts, truncated
// reads). The original error is reachable through errors.Is and errors.As.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (o *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %s", o.Method, o.URL, o.Err)
}

func (o *TransportError) Unwrap() error {
	return o.Err
}
