package bitfinex

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "secret"
	testURL    = "https://api.bitfinex.com/v2/auth/r/orders"
	testNonce  = "1500000000000"
)

func TestSignKnownVector(t *testing.T) {
	sig := Sign(testSecret, testURL, testNonce, []byte("{}"))

	assert.Equal(t,
		"8e94fc659fa9f0470fb76aef60e5c02c1e3a82fbfabf14af88920a6cea6704dfd79dcaaa4e36552b8eb562e85400e0f6",
		sig,
	)
}

func TestSignIsDeterministic(t *testing.T) {
	body := []byte(`{"type":"price","symbol":"tBTCUSD","price":100}`)

	assert.Equal(t, Sign(testSecret, testURL, testNonce, body), Sign(testSecret, testURL, testNonce, body))
}

func TestSignChangesWithEveryInput(t *testing.T) {
	base := Sign(testSecret, testURL, testNonce, []byte("{}"))

	tests := []struct {
		name string
		sig  string
	}{
		{"secret", Sign("other", testURL, testNonce, []byte("{}"))},
		{"url", Sign(testSecret, testURL+"x", testNonce, []byte("{}"))},
		{"nonce", Sign(testSecret, testURL, "1500000000001", []byte("{}"))},
		{"body", Sign(testSecret, testURL, testNonce, []byte(`{"a":1}`))},
		{"body formatting", Sign(testSecret, testURL, testNonce, []byte(`{ }`))},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.NotEqual(t, base, test.sig)
		})
	}
}

func TestEncodePayload(t *testing.T) {
	raw, err := encodePayload(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))

	raw, err = encodePayload(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(raw))

	_, err = encodePayload(make(chan int))
	assert.Error(t, err)
}

func TestTimestampNonce(t *testing.T) {
	n, err := strconv.ParseInt(TimestampNonce(), 10, 64)
	require.NoError(t, err)

	// Millisecond resolution puts the value in the trillions for any present-day clock.
	assert.Greater(t, n, int64(1_000_000_000_000))
	assert.Less(t, n, int64(10_000_000_000_000))
}

func TestIncrementingNonceIsStrictlyIncreasing(t *testing.T) {
	next := NewIncrementingNonce(41)

	assert.Equal(t, "42", next())
	assert.Equal(t, "43", next())
	assert.Equal(t, "44", next())
}

func TestIncrementingNonceIsUniqueUnderConcurrency(t *testing.T) {
	next := NewIncrementingNonce(0)

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[string]bool)
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 20; j++ {
				n := next()

				mu.Lock()
				seen[n] = true
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Len(t, seen, 1000)
}
