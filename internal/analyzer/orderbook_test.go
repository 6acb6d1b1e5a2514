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

func bookAt(code string, askSize, bidSize, imbalance float64, at time.Time) measurement.Orderbook {
	return measurement.Orderbook{
		Code:           code,
		TotalAskSize:   askSize,
		TotalBidSize:   bidSize,
		ImbalanceRatio: imbalance,
		Time:           at,
	}
}

func TestOrderbookColdStartSeedsBaseline(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionUp}
	a := NewOrderbookAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	results := a.Detect([]measurement.Orderbook{bookAt("KRW-XRP", 500, 500, 0, now)})

	require.Empty(t, results)
	require.Empty(t, oracle.prompts)
	require.True(t, cache.Exists(baseline.Key(measurement.StreamOrderbook, "KRW-XRP")))
}

func TestOrderbookAskDominanceTriggersOracle(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionDown}
	a := NewOrderbookAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	a.Detect([]measurement.Orderbook{bookAt("KRW-XRP", 500, 500, 0, now)})

	// Ask side swells to ~91% of resting size.
	results := a.Detect([]measurement.Orderbook{bookAt("KRW-XRP", 1000, 100, -0.9, now.Add(time.Minute))})

	require.Len(t, results, 1)
	assert.Equal(t, measurement.DirectionDown, results[0].Direction)
	require.Len(t, oracle.prompts, 1)
	assert.Contains(t, oracle.prompts[0], "Ask Ratio: 0.91")
	assert.Contains(t, oracle.prompts[0], "Bid Ratio: 0.09")
	assert.Contains(t, oracle.prompts[0], "Surge: Ask")
}

func TestOrderbookBidSurgeLabelled(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionUp}
	a := NewOrderbookAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	a.Detect([]measurement.Orderbook{bookAt("KRW-XRP", 500, 500, 0, now)})

	// Bid side grows 60% against the baseline while the ask side holds.
	results := a.Detect([]measurement.Orderbook{bookAt("KRW-XRP", 500, 800, 0.2, now.Add(time.Minute))})

	require.Len(t, results, 1)
	require.Len(t, oracle.prompts, 1)
	assert.Contains(t, oracle.prompts[0], "Surge: Bid")
}

func TestOrderbookEmptyBookIsSkipped(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionUp}
	a := NewOrderbookAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	a.Detect([]measurement.Orderbook{bookAt("KRW-XRP", 500, 500, 0, now)})

	results := a.Detect([]measurement.Orderbook{bookAt("KRW-XRP", 0, 0, 0, now.Add(time.Minute))})

	require.Empty(t, results)
	require.Empty(t, oracle.prompts)
}

func TestOrderbookBalancedBookSkipsOracle(t *testing.T) {
	cache := baseline.NewMemory()
	oracle := &stubOracle{direction: measurement.DirectionUp}
	a := NewOrderbookAnalyzer(oracle, cache, zap.NewNop())

	now := time.Now()
	a.Detect([]measurement.Orderbook{bookAt("KRW-XRP", 500, 500, 0, now)})

	// Ratios drift by 4 points, sizes by under 20%, imbalance stays small.
	results := a.Detect([]measurement.Orderbook{bookAt("KRW-XRP", 540, 500, 0.05, now.Add(time.Minute))})

	require.Empty(t, results)
	require.Empty(t, oracle.prompts)
}
