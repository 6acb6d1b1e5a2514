package analyzer

import (
	"fmt"
	"sort"

	"spikewatch/internal/baseline"
	"spikewatch/internal/measurement"

	"go.uber.org/zap"
)

// tradeWindow bounds the per-instrument analysis cost: only the most recent
// prints are considered.
const tradeWindow = 50

// TradeAnalyzer looks for whale activity in recent prints: single fills far
// above the running average, overall volume doubling against the baseline,
// and strong buy/sell asymmetry. The baseline for this stream is a derived
// statistic tuple rather than a raw sample.
type TradeAnalyzer struct {
	oracle DirectionOracle
	cache  baseline.Cache
	logger *zap.Logger
}

func NewTradeAnalyzer(oracle DirectionOracle, cache baseline.Cache, logger *zap.Logger) *TradeAnalyzer {
	return &TradeAnalyzer{oracle: oracle, cache: cache, logger: logger}
}

func (a *TradeAnalyzer) Detect(batch []measurement.Trade) []measurement.AnalyzerResult {
	if len(batch) == 0 {
		return nil
	}

	var results []measurement.AnalyzerResult
	for code, prints := range groupByCode(batch) {
		sort.SliceStable(prints, func(i, j int) bool {
			return prints[i].Time.After(prints[j].Time)
		})
		if len(prints) > tradeWindow {
			prints = prints[:tradeWindow]
		}

		var totalVolume, maxVolume, buyVolume, sellVolume float64
		for _, p := range prints {
			totalVolume += p.TradeVolume
			if p.TradeVolume > maxVolume {
				maxVolume = p.TradeVolume
			}
			switch p.Side {
			case measurement.SideBid:
				buyVolume += p.TradeVolume
			case measurement.SideAsk:
				sellVolume += p.TradeVolume
			}
		}
		avgVolume := totalVolume / float64(len(prints))

		current := measurement.TradeStats{
			AvgVolume:  avgVolume,
			MaxVolume:  maxVolume,
			BuyVolume:  buyVolume,
			SellVolume: sellVolume,
		}

		key := baseline.Key(measurement.StreamTrade, code)
		var base measurement.TradeStats
		if !baseline.GetObject(a.cache, key, &base) {
			baseline.SetObject(a.cache, key, current, baselineTTL)
			continue
		}

		volumeIncrease := 0.0
		if base.AvgVolume > 0 {
			volumeIncrease = (avgVolume - base.AvgVolume) / base.AvgVolume * 100
		}

		whaleBuy := buyVolume > sellVolume*2 || (buyVolume-base.BuyVolume) >= base.BuyVolume
		whaleSell := sellVolume > buyVolume*2 || (sellVolume-base.SellVolume) >= base.SellVolume

		trigger := maxVolume > avgVolume*5 ||
			volumeIncrease > 100.0 ||
			whaleBuy ||
			whaleSell

		if !trigger {
			continue
		}

		maxRatio := 0.0
		if avgVolume > 0 {
			maxRatio = maxVolume / avgVolume
		}

		prompt := fmt.Sprintf(
			"Determine whale activity (spike/drop/none).\n\nCoin: %s\nVolume Increase: %.2f%%\nWhale Buy: %t\nWhale Sell: %t\nMax Volume Ratio: %.1fx (vs Avg)",
			code, volumeIncrease, whaleBuy, whaleSell, maxRatio,
		)

		direction := a.oracle.AskDirection(prompt)
		if direction == measurement.DirectionUnchanged {
			continue
		}

		results = append(results, measurement.AnalyzerResult{Code: code, Direction: direction})
		a.logger.Info("whale trade detected",
			zap.String("code", code),
			zap.String("direction", string(direction)),
			zap.Bool("whale_buy", whaleBuy),
			zap.Bool("whale_sell", whaleSell))
	}

	return results
}
