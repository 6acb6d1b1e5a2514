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

func candleAt(code string, open, high, low, close, volume float64, at time.Time) measurement.Candle {
	return measurement.Candle{
		Code:       code,
		OpenPrice:  open,
		HighPrice:  high,
		LowPrice:   low,
		ClosePrice: close,
		Volume:     volume,
		Time:       at,
	}
}

func TestCandleColdStartSeedsBaseline(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionUp}
	a := NewCandleAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	results := a.Detect([]measurement.Candle{candleAt("KRW-ETH", 100, 101, 99, 100, 10, now)})

	require.Empty(t, results)
	require.Empty(t, oracle.prompts)
	require.True(t, cache.Exists(baseline.Key(measurement.StreamCandle, "KRW-ETH")))
}

func TestCandleVolumeSurgeTriggersBullishPrompt(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionUp}
	a := NewCandleAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	a.Detect([]measurement.Candle{candleAt("KRW-ETH", 100, 101, 99, 100, 10, now)})

	// Volume doubles, close above open, no dominant wick.
	results := a.Detect([]measurement.Candle{candleAt("KRW-ETH", 100, 100.6, 99.9, 100.5, 20, now.Add(time.Minute))})

	require.Len(t, results, 1)
	assert.Equal(t, measurement.DirectionUp, results[0].Direction)
	require.Len(t, oracle.prompts, 1)
	assert.Contains(t, oracle.prompts[0], "Volume Change: 100.00%")
	assert.Contains(t, oracle.prompts[0], "Candle Type: Bullish")
	assert.Contains(t, oracle.prompts[0], "Wick Pressure: None")
}

func TestCandleUpperWickReportsSellPressure(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionDown}
	a := NewCandleAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	a.Detect([]measurement.Candle{candleAt("KRW-ETH", 100, 101, 99, 100, 10, now)})

	// High 110 vs body topping at 101: upper wick is 9 of a 11-point range.
	results := a.Detect([]measurement.Candle{candleAt("KRW-ETH", 100, 110, 99, 101, 10, now.Add(time.Minute))})

	require.Len(t, results, 1)
	require.Len(t, oracle.prompts, 1)
	assert.Contains(t, oracle.prompts[0], "Wick Pressure: Sell (Upper)")
}

func TestCandleLowerWickReportsBuyPressure(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionUp}
	a := NewCandleAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	a.Detect([]measurement.Candle{candleAt("KRW-ETH", 100, 101, 99, 100, 10, now)})

	results := a.Detect([]measurement.Candle{candleAt("KRW-ETH", 100, 101, 90, 99.8, 10, now.Add(time.Minute))})

	require.Len(t, results, 1)
	require.Len(t, oracle.prompts, 1)
	assert.Contains(t, oracle.prompts[0], "Candle Type: Bearish")
	assert.Contains(t, oracle.prompts[0], "Wick Pressure: Buy (Lower)")
}

func TestCandleQuietMarketSkipsOracle(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionUp}
	a := NewCandleAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	a.Detect([]measurement.Candle{candleAt("KRW-ETH", 100, 101, 99, 100, 10, now)})

	// +0.5% close, +10% volume, balanced wicks.
	results := a.Detect([]measurement.Candle{candleAt("KRW-ETH", 100.2, 100.6, 100.1, 100.5, 11, now.Add(time.Minute))})

	require.Empty(t, results)
	require.Empty(t, oracle.prompts)
}
