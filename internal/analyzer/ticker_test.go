package analyzer

import (
	"testing"
	"time"

	"spikewatch/internal/baseline"
	"spikewatch/internal/measurement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tickerAt(code string, price, volume float64, at time.Time) measurement.Ticker {
	return measurement.Ticker{Code: code, TradePrice: price, TradeVolume: volume, Time: at}
}

func TestTickerColdStartSeedsBaseline(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionUp}
	a := NewTickerAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	results := a.Detect([]measurement.Ticker{tickerAt("KRW-BTC", 50000, 100, now)})

	require.Empty(t, results, "first cycle only seeds the baseline")
	require.Empty(t, oracle.prompts)

	var seeded measurement.Ticker
	require.True(t, baseline.GetObject(cache, baseline.Key(measurement.StreamTicker, "KRW-BTC"), &seeded))
	assert.Equal(t, 50000.0, seeded.TradePrice)
}

func TestTickerPriceAndVolumeJumpTriggersOracle(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionUp}
	a := NewTickerAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	a.Detect([]measurement.Ticker{tickerAt("KRW-BTC", 50000, 100, now)})

	results := a.Detect([]measurement.Ticker{tickerAt("KRW-BTC", 55000, 200, now.Add(time.Minute))})

	require.Len(t, results, 1)
	assert.Equal(t, "KRW-BTC", results[0].Code)
	assert.Equal(t, measurement.DirectionUp, results[0].Direction)

	require.Len(t, oracle.prompts, 1)
	assert.Contains(t, oracle.prompts[0], "Price Change: 10.00%")
	assert.Contains(t, oracle.prompts[0], "Volume Change: 100.00%")
	assert.Contains(t, oracle.prompts[0], "Strong Drop Signal: false")
}

func TestTickerStrongDropFlagged(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionDown}
	a := NewTickerAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	a.Detect([]measurement.Ticker{tickerAt("KRW-BTC", 50000, 100, now)})

	results := a.Detect([]measurement.Ticker{tickerAt("KRW-BTC", 45000, 100, now.Add(time.Minute))})

	require.Len(t, results, 1)
	assert.Equal(t, measurement.DirectionDown, results[0].Direction)
	require.Len(t, oracle.prompts, 1)
	assert.Contains(t, oracle.prompts[0], "Strong Drop Signal: true")
}

func TestTickerQuietMarketSkipsOracle(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionUp}
	a := NewTickerAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	a.Detect([]measurement.Ticker{tickerAt("KRW-BTC", 50000, 100, now)})

	// 0.2% price move and 5% volume move: below every threshold.
	results := a.Detect([]measurement.Ticker{tickerAt("KRW-BTC", 50100, 105, now.Add(time.Minute))})

	require.Empty(t, results)
	require.Empty(t, oracle.prompts)
}

func TestTickerUnchangedVerdictIsDropped(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionUnchanged}
	a := NewTickerAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	a.Detect([]measurement.Ticker{tickerAt("KRW-BTC", 50000, 100, now)})

	results := a.Detect([]measurement.Ticker{tickerAt("KRW-BTC", 55000, 100, now.Add(time.Minute))})

	require.Empty(t, results, "UNCHANGED never leaves the analyzer")
	require.Len(t, oracle.prompts, 1, "the oracle was still consulted")
}

func TestTickerUsesLatestSampleInBatch(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionUp}
	a := NewTickerAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	a.Detect([]measurement.Ticker{tickerAt("KRW-BTC", 50000, 100, now)})

	// Out of order on purpose: the newest sample carries the jump.
	results := a.Detect([]measurement.Ticker{
		tickerAt("KRW-BTC", 55000, 100, now.Add(2*time.Minute)),
		tickerAt("KRW-BTC", 50050, 100, now.Add(time.Minute)),
	})

	require.Len(t, results, 1)
	require.Len(t, oracle.prompts, 1)
	assert.Contains(t, oracle.prompts[0], "Price Change: 10.00%")
}
