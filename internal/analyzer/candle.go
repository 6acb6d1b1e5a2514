package analyzer

import (
	"fmt"
	"math"

	"spikewatch/internal/baseline"
	"spikewatch/internal/measurement"

	"go.uber.org/zap"
)

// CandleAnalyzer works off OHLCV deltas plus wick structure. A wick covering
// more than 30% of the high-low range marks strong one-sided pressure: a long
// upper wick means sellers knocked a rally back, a long lower wick means
// buyers absorbed a dip.
type CandleAnalyzer struct {
	oracle DirectionOracle
	cache  baseline.Cache
	logger *zap.Logger
}

func NewCandleAnalyzer(oracle DirectionOracle, cache baseline.Cache, logger *zap.Logger) *CandleAnalyzer {
	return &CandleAnalyzer{oracle: oracle, cache: cache, logger: logger}
}

func (a *CandleAnalyzer) Detect(batch []measurement.Candle) []measurement.AnalyzerResult {
	if len(batch) == 0 {
		return nil
	}

	var results []measurement.AnalyzerResult
	for code, samples := range groupByCode(batch) {
		latest := samples[len(samples)-1]

		key := baseline.Key(measurement.StreamCandle, code)
		var base measurement.Candle
		if !baseline.GetObject(a.cache, key, &base) {
			baseline.SetObject(a.cache, key, latest, baselineTTL)
			continue
		}

		volumeChange := (latest.Volume - base.Volume) / base.Volume * 100
		priceChange := (latest.ClosePrice - base.ClosePrice) / base.ClosePrice * 100

		candleType := "Doji"
		if latest.ClosePrice > latest.OpenPrice {
			candleType = "Bullish"
		} else if latest.ClosePrice < latest.OpenPrice {
			candleType = "Bearish"
		}

		upperWick := latest.HighPrice - math.Max(latest.OpenPrice, latest.ClosePrice)
		lowerWick := math.Min(latest.OpenPrice, latest.ClosePrice) - latest.LowPrice
		totalRange := latest.HighPrice - latest.LowPrice

		strongUpperWick := totalRange > 0 && upperWick > totalRange*0.3
		strongLowerWick := totalRange > 0 && lowerWick > totalRange*0.3

		trigger := math.Abs(priceChange) > 1.0 ||
			volumeChange > 50.0 ||
			volumeChange < -30.0 ||
			strongUpperWick ||
			strongLowerWick

		if !trigger {
			continue
		}

		wickPressure := "None"
		if strongUpperWick {
			wickPressure = "Sell (Upper)"
		} else if strongLowerWick {
			wickPressure = "Buy (Lower)"
		}

		prompt := fmt.Sprintf(
			"Determine trend (spike/drop/none).\n\nCoin: %s\nPrice Change: %.2f%%\nVolume Change: %.2f%%\nCandle Type: %s\nWick Pressure: %s",
			code, priceChange, volumeChange, candleType, wickPressure,
		)

		direction := a.oracle.AskDirection(prompt)
		if direction == measurement.DirectionUnchanged {
			continue
		}

		results = append(results, measurement.AnalyzerResult{Code: code, Direction: direction})
		a.logger.Info("candle pattern detected",
			zap.String("code", code),
			zap.String("direction", string(direction)),
			zap.String("candle_type", candleType),
			zap.String("wick_pressure", wickPressure))
	}

	return results
}
