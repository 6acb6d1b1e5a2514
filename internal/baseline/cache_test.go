package baseline

import (
	"testing"
	"time"

	"spikewatch/internal/measurement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFormats(t *testing.T) {
	assert.Equal(t, "ticker:baseline:KRW-BTC", Key(measurement.StreamTicker, "KRW-BTC"))
	assert.Equal(t, "orderbook:baseline:KRW-ETH", Key(measurement.StreamOrderbook, "KRW-ETH"))
	assert.Equal(t, "spike:confirmed:KRW-BTC:UP", ConfirmedKey("KRW-BTC", measurement.DirectionUp))
	assert.Equal(t, "spike:confirmed:KRW-XRP:DOWN", ConfirmedKey("KRW-XRP", measurement.DirectionDown))
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemory()

	_, ok := c.Get("missing")
	require.False(t, ok)
	require.False(t, c.Exists("missing"))

	c.Set("k", "v", time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
	assert.True(t, c.Exists("k"))
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemory()

	c.Set("short", "v", 10*time.Millisecond)
	c.Set("forever", "v", 0)

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("short")
	assert.False(t, ok, "expired entry reads as a miss")

	_, ok = c.Get("forever")
	assert.True(t, ok, "zero TTL never expires")
}

func TestObjectRoundTrip(t *testing.T) {
	c := NewMemory()

	in := measurement.Ticker{
		Code:        "KRW-BTC",
		TradePrice:  95000000,
		TradeVolume: 0.5,
		Time:        time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
	SetObject(c, "ticker:baseline:KRW-BTC", in, time.Minute)

	var out measurement.Ticker
	require.True(t, GetObject(c, "ticker:baseline:KRW-BTC", &out))
	assert.Equal(t, in, out)
}

func TestObjectDecodeFailureIsMiss(t *testing.T) {
	c := NewMemory()
	c.Set("corrupt", "{not valid json", time.Minute)

	var out measurement.Ticker
	assert.False(t, GetObject(c, "corrupt", &out), "corrupted value re-seeds instead of erroring")
}

func TestObjectMissingKeyIsMiss(t *testing.T) {
	c := NewMemory()

	var out measurement.TradeStats
	assert.False(t, GetObject(c, "absent", &out))
}
