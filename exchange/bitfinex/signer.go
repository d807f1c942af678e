package bitfinex

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// NonceGenerator produces the serialized nonce token for one authenticated request. The exchange
// rejects nonces that are not greater than the last one it accepted for the same API key.
type NonceGenerator func() string

// TimestampNonce is the default nonce generator. It returns the current Unix time in milliseconds,
// so two authenticated requests issued within the same millisecond will collide.
func TimestampNonce() string {
	return strconv.FormatInt(time.Now().UnixNano()/int64(time.Millisecond), 10)
}

// NewIncrementingNonce returns a nonce generator backed by an atomic counter that starts just above
// the provided seed. It is safe for concurrent use and never repeats a value.
func NewIncrementingNonce(seed int64) NonceGenerator {
	counter := seed

	return func() string {
		return strconv.FormatInt(atomic.AddInt64(&counter, 1), 10)
	}
}

// SignedHeaders holds the authentication headers of exactly one request.
type SignedHeaders struct {
	Nonce     string
	APIKey    string
	Signature string
}

// Apply sets the authentication headers on the provided header set.
func (o *SignedHeaders) Apply(h http.Header) {
	h.Set(NonceHeader, o.Nonce)
	h.Set(APIKeyHeader, o.APIKey)
	h.Set(SignatureHeader, o.Signature)
}

// Sign computes the hex encoded HMAC-SHA384 of "/api/" + url + nonce + rawBody keyed with the
// secret. The order of the concatenation is fixed by the exchange.
func Sign(secret string, url string, nonce string, rawBody []byte) string {
	mac := hmac.New(sha512.New384, []byte(secret))

	mac.Write([]byte(SignaturePrefix))
	mac.Write([]byte(url))
	mac.Write([]byte(nonce))
	mac.Write(rawBody)

	return hex.EncodeToString(mac.Sum(nil))
}

// encodePayload serializes the payload exactly once. The returned bytes are both signed and sent.
func encodePayload(payload interface{}) ([]byte, error) {
	if payload == nil {
		return []byte("{}"), nil
	}

	rawBody, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request payload")
	}

	return rawBody, nil
}

// credentials is one immutable key and secret pair. Auth swaps the whole pair at once.
type credentials struct {
	key    string
	secret string
}

// sign produces the headers for one authenticated request against the provided full URL.
func (o *Client) sign(creds *credentials, url string, rawBody []byte) *SignedHeaders {
	nonce := o.nonce()

	return &SignedHeaders{
		Nonce:     nonce,
		APIKey:    creds.key,
		Signature: Sign(creds.secret, url, nonce, rawBody),
	}
}
