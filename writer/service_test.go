package writer

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBeforeStartFails(t *testing.T) {
	o := New(t.TempDir())

	assert.Error(t, o.Write(time.Now(), ClosingPrice, decimal.NewFromInt(1)))
}

func TestWritesRowsAndFlushesOnStop(t *testing.T) {
	o := New(t.TempDir())

	chStarted, err := o.Start()
	require.NoError(t, err)
	<-chStarted

	ts := time.Date(2020, 8, 25, 0, 0, 0, 0, time.UTC)

	require.NoError(t, o.Write(ts, ClosingPrice, decimal.RequireFromString("9000.5")))
	require.NoError(t, o.Write(ts, MovingAverage, decimal.NewFromInt(9001)))

	chStopped, err := o.Stop()
	require.NoError(t, err)
	<-chStopped

	file, err := os.Open(o.Path())
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{TimestampKey, CategoryKey, ValueKey},
		{"2020-08-25T00:00:00Z", "ClosingPrice", "9000.5"},
		{"2020-08-25T00:00:00Z", "MovingAverage", "9001"},
	}, rows)

	assert.Error(t, o.Write(ts, ClosingPrice, decimal.NewFromInt(1)), "writes after stop should fail")
}

func TestStartFailsForMissingDirectory(t *testing.T) {
	o := New("/nonexistent/definitely/not/here")

	_, err := o.Start()
	assert.Error(t, err)
}

func TestStopBeforeStartFails(t *testing.T) {
	o := New(t.TempDir())

	_, err := o.Stop()
	assert.Error(t, err)

	assert.Error(t, o.Write(time.Now(), ClosingPrice, decimal.NewFromInt(1)), "the service should not be wedged")
}

func TestStopAfterFailedStartFails(t *testing.T) {
	o := New("/nonexistent/definitely/not/here")

	_, err := o.Start()
	require.Error(t, err)

	_, err = o.Stop()
	assert.Error(t, err)
}

func TestStartTwiceFails(t *testing.T) {
	o := New(t.TempDir())

	chStarted, err := o.Start()
	require.NoError(t, err)
	<-chStarted

	_, err = o.Start()
	assert.Error(t, err)

	chStopped, err := o.Stop()
	require.NoError(t, err)
	<-chStopped

	_, err = o.Stop()
	assert.Error(t, err, "a stopped service cannot be stopped again")
}

func TestRestartAfterStop(t *testing.T) {
	o := New(t.TempDir())
	ts := time.Date(2020, 8, 25, 0, 0, 0, 0, time.UTC)

	for i := int64(1); i <= 2; i++ {
		chStarted, err := o.Start()
		require.NoError(t, err)
		<-chStarted

		require.NoError(t, o.Write(ts, ClosingPrice, decimal.NewFromInt(i)))

		chStopped, err := o.Stop()
		require.NoError(t, err)
		<-chStopped
	}

	file, err := os.Open(o.Path())
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{TimestampKey, CategoryKey, ValueKey},
		{"2020-08-25T00:00:00Z", "ClosingPrice", "2"},
	}, rows)
}
