package analyzer

import (
	"fmt"
	"math"

	"spikewatch/internal/baseline"
	"spikewatch/internal/measurement"

	"go.uber.org/zap"
)

// TickerAnalyzer compares the latest quote tick per instrument against the
// ten-minutes-ago baseline. Price and volume deltas gate the oracle call;
// strong drops and volume collapses are flagged explicitly so panic-sell
// setups trigger even when the plain thresholds would not.
type TickerAnalyzer struct {
	oracle DirectionOracle
	cache  baseline.Cache
	logger *zap.Logger
}

func NewTickerAnalyzer(oracle DirectionOracle, cache baseline.Cache, logger *zap.Logger) *TickerAnalyzer {
	return &TickerAnalyzer{oracle: oracle, cache: cache, logger: logger}
}

func (a *TickerAnalyzer) Detect(batch []measurement.Ticker) []measurement.AnalyzerResult {
	if len(batch) == 0 {
		return nil
	}

	var results []measurement.AnalyzerResult
	for code, samples := range groupByCode(batch) {
		latest := samples[len(samples)-1]

		key := baseline.Key(measurement.StreamTicker, code)
		var base measurement.Ticker
		if !baseline.GetObject(a.cache, key, &base) {
			// Cold start: seed the baseline and wait for the next cycle.
			baseline.SetObject(a.cache, key, latest, baselineTTL)
			continue
		}

		priceChange := (latest.TradePrice - base.TradePrice) / base.TradePrice * 100
		volumeChange := (latest.TradeVolume - base.TradeVolume) / base.TradeVolume * 100

		normalChange := math.Abs(priceChange) > 0.5 || math.Abs(volumeChange) > 10.0

		// dropStrong overlaps normalChange but is kept explicit: the prompt
		// carries the signal so the oracle sees it.
		dropStrong := priceChange < -1.0
		volumeCollapse := volumeChange < -30.0
		strongDrop := dropStrong || volumeCollapse

		if !normalChange && !strongDrop {
			continue
		}

		prompt := fmt.Sprintf(
			"Determine trend (spike/drop/none).\n\nCoin: %s\nPrice Change: %.2f%%\nVolume Change: %.2f%%\nStrong Drop Signal: %t",
			code, priceChange, volumeChange, strongDrop,
		)

		direction := a.oracle.AskDirection(prompt)
		if direction == measurement.DirectionUnchanged {
			continue
		}

		results = append(results, measurement.AnalyzerResult{Code: code, Direction: direction})
		a.logger.Info("ticker spike detected",
			zap.String("code", code),
			zap.String("direction", string(direction)),
			zap.Float64("price", latest.TradePrice),
			zap.Float64("price_change_pct", priceChange))
	}

	return results
}
