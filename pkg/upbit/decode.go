package upbit

import (
	"encoding/json"
	"fmt"
	"time"

	"spikewatch/internal/measurement"
)

// SocketURL is the Upbit push feed endpoint.
const SocketURL = "wss://api.upbit.com/websocket/v1"

// Wire-level stream type codes used in subscribe requests. Candles are
// subscribed at one-second resolution.
const (
	TypeTicker    = "ticker"
	TypeTrade     = "trade"
	TypeOrderbook = "orderbook"
	TypeCandle1s  = "candle.1s"
)

// WireCode maps a stream type to its subscription code.
func WireCode(stream measurement.StreamType) string {
	switch stream {
	case measurement.StreamTicker:
		return TypeTicker
	case measurement.StreamTrade:
		return TypeTrade
	case measurement.StreamOrderbook:
		return TypeOrderbook
	case measurement.StreamCandle:
		return TypeCandle1s
	}
	return ""
}

// DecodeTicker converts a ticker frame into a measurement.
func DecodeTicker(frame []byte) (measurement.Ticker, error) {
	var resp TickerResponse
	if err := json.Unmarshal(frame, &resp); err != nil {
		return measurement.Ticker{}, fmt.Errorf("decode ticker frame: %w", err)
	}
	if resp.Code == "" {
		// Status acks and other non-data frames unmarshal cleanly but carry
		// no instrument code.
		return measurement.Ticker{}, fmt.Errorf("ticker frame missing instrument code")
	}

	return measurement.Ticker{
		Code:           resp.Code,
		TradePrice:     resp.TradePrice,
		TradeVolume:    resp.TradeVolume,
		TradeVolume24h: resp.AccTradeVolume24h,
		Time:           time.UnixMilli(resp.TradeTimestamp),
	}, nil
}

// DecodeCandle converts a candle frame into a measurement.
func DecodeCandle(frame []byte) (measurement.Candle, error) {
	var resp CandleResponse
	if err := json.Unmarshal(frame, &resp); err != nil {
		return measurement.Candle{}, fmt.Errorf("decode candle frame: %w", err)
	}
	if resp.Code == "" {
		return measurement.Candle{}, fmt.Errorf("candle frame missing instrument code")
	}

	return measurement.Candle{
		Code:        resp.Code,
		OpenPrice:   resp.OpeningPrice,
		HighPrice:   resp.HighPrice,
		LowPrice:    resp.LowPrice,
		ClosePrice:  resp.TradePrice,
		Volume:      resp.CandleAccTradeVol,
		TradeAmount: resp.CandleAccTradePrice,
		Time:        time.UnixMilli(resp.Timestamp),
	}, nil
}

// DecodeOrderbook converts a depth snapshot frame into a measurement,
// deriving top-of-book and top-5 aggregates plus the bid/ask imbalance.
func DecodeOrderbook(frame []byte) (measurement.Orderbook, error) {
	var resp OrderbookResponse
	if err := json.Unmarshal(frame, &resp); err != nil {
		return measurement.Orderbook{}, fmt.Errorf("decode orderbook frame: %w", err)
	}
	if resp.Code == "" {
		return measurement.Orderbook{}, fmt.Errorf("orderbook frame missing instrument code")
	}

	units := resp.Units
	if len(units) > 5 {
		units = units[:5]
	}

	var sumAskPrice, sumBidPrice, sumAskSize, sumBidSize float64
	for _, u := range units {
		sumAskPrice += u.AskPrice
		sumBidPrice += u.BidPrice
		sumAskSize += u.AskSize
		sumBidSize += u.BidSize
	}

	m := measurement.Orderbook{
		Code:         resp.Code,
		TotalAskSize: resp.TotalAskSize,
		TotalBidSize: resp.TotalBidSize,
		SumAskSize5:  sumAskSize,
		SumBidSize5:  sumBidSize,
		Time:         time.UnixMilli(resp.Timestamp),
	}

	if n := float64(len(units)); n > 0 {
		m.AvgAskPrice5 = sumAskPrice / n
		m.AvgBidPrice5 = sumBidPrice / n
		m.TopAskPrice = units[0].AskPrice
		m.TopBidPrice = units[0].BidPrice
		m.TopAskSize = units[0].AskSize
		m.TopBidSize = units[0].BidSize
	}
	if resp.TotalAskSize != 0 {
		m.ImbalanceRatio = resp.TotalBidSize / resp.TotalAskSize
	}

	return m, nil
}

// DecodeTrade converts a print frame into a measurement.
func DecodeTrade(frame []byte) (measurement.Trade, error) {
	var resp TradeResponse
	if err := json.Unmarshal(frame, &resp); err != nil {
		return measurement.Trade{}, fmt.Errorf("decode trade frame: %w", err)
	}
	if resp.Code == "" {
		return measurement.Trade{}, fmt.Errorf("trade frame missing instrument code")
	}

	return measurement.Trade{
		Code:        resp.Code,
		TradePrice:  resp.TradePrice,
		TradeVolume: resp.TradeVolume,
		Side:        measurement.OrderSide(resp.AskBid),
		Time:        time.UnixMilli(resp.TradeTimestamp),
	}, nil
}
