package analyzer

import (
	"fmt"
	"math"

	"spikewatch/internal/baseline"
	"spikewatch/internal/measurement"

	"go.uber.org/zap"
)

// OrderbookAnalyzer measures bid/ask imbalance in the depth snapshot. It
// layers absolute dominance (either side above 65% of resting size), relative
// shift versus the baseline ratio, the feed's own imbalance figure, and
// one-sided size growth above 20%.
type OrderbookAnalyzer struct {
	oracle DirectionOracle
	cache  baseline.Cache
	logger *zap.Logger
}

func NewOrderbookAnalyzer(oracle DirectionOracle, cache baseline.Cache, logger *zap.Logger) *OrderbookAnalyzer {
	return &OrderbookAnalyzer{oracle: oracle, cache: cache, logger: logger}
}

func (a *OrderbookAnalyzer) Detect(batch []measurement.Orderbook) []measurement.AnalyzerResult {
	if len(batch) == 0 {
		return nil
	}

	var results []measurement.AnalyzerResult
	for code, samples := range groupByCode(batch) {
		latest := samples[len(samples)-1]

		key := baseline.Key(measurement.StreamOrderbook, code)
		var base measurement.Orderbook
		if !baseline.GetObject(a.cache, key, &base) {
			baseline.SetObject(a.cache, key, latest, baselineTTL)
			continue
		}

		totalSize := latest.TotalAskSize + latest.TotalBidSize
		if totalSize == 0 {
			continue
		}
		askRatio := latest.TotalAskSize / totalSize
		bidRatio := latest.TotalBidSize / totalSize

		baselineTotal := base.TotalAskSize + base.TotalBidSize
		baselineAskRatio := 0.5
		if baselineTotal > 0 {
			baselineAskRatio = base.TotalAskSize / baselineTotal
		}
		baselineBidRatio := 1 - baselineAskRatio

		askIncrease := latest.TotalAskSize > base.TotalAskSize*1.2
		bidIncrease := latest.TotalBidSize > base.TotalBidSize*1.2

		trigger := askRatio > 0.65 ||
			bidRatio > 0.65 ||
			math.Abs(askRatio-baselineAskRatio) > 0.12 ||
			math.Abs(bidRatio-baselineBidRatio) > 0.12 ||
			math.Abs(latest.ImbalanceRatio) > 0.25 ||
			askIncrease ||
			bidIncrease

		if !trigger {
			continue
		}

		surge := "None"
		if bidIncrease {
			surge = "Bid"
		} else if askIncrease {
			surge = "Ask"
		}

		prompt := fmt.Sprintf(
			"Determine market pressure (spike/drop/none).\n\nCoin: %s\nBid Ratio: %.2f (vs 10m ago: %.2f)\nAsk Ratio: %.2f\nImbalance: %.2f\nSurge: %s",
			code, bidRatio, baselineBidRatio, askRatio, latest.ImbalanceRatio, surge,
		)

		direction := a.oracle.AskDirection(prompt)
		if direction == measurement.DirectionUnchanged {
			continue
		}

		results = append(results, measurement.AnalyzerResult{Code: code, Direction: direction})
		a.logger.Info("orderbook pressure detected",
			zap.String("code", code),
			zap.String("direction", string(direction)),
			zap.Float64("ask_ratio", askRatio),
			zap.Float64("bid_ratio", bidRatio))
	}

	return results
}
