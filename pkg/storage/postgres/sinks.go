package postgres

import (
	"context"

	"spikewatch/internal/measurement"
)

// The sinks are append-only: overlapping batches insert duplicate rows
// rather than conflicting, and no dedup is attempted here.

type TickerSink struct {
	client *PostgresClient
}

func (p *PostgresClient) Tickers() *TickerSink {
	return &TickerSink{client: p}
}

func (s *TickerSink) InsertAll(ctx context.Context, batch []measurement.Ticker) error {
	records := make([]TickerRecord, 0, len(batch))
	for _, m := range batch {
		records = append(records, TickerRecord{
			Code:           m.Code,
			TradePrice:     m.TradePrice,
			TradeVolume:    m.TradeVolume,
			TradeVolume24h: m.TradeVolume24h,
			Time:           m.Time,
		})
	}
	return s.client.DB.WithContext(ctx).Create(&records).Error
}

type CandleSink struct {
	client *PostgresClient
}

func (p *PostgresClient) Candles() *CandleSink {
	return &CandleSink{client: p}
}

func (s *CandleSink) InsertAll(ctx context.Context, batch []measurement.Candle) error {
	records := make([]CandleRecord, 0, len(batch))
	for _, m := range batch {
		records = append(records, CandleRecord{
			Code:        m.Code,
			OpenPrice:   m.OpenPrice,
			HighPrice:   m.HighPrice,
			LowPrice:    m.LowPrice,
			ClosePrice:  m.ClosePrice,
			Volume:      m.Volume,
			TradeAmount: m.TradeAmount,
			Time:        m.Time,
		})
	}
	return s.client.DB.WithContext(ctx).Create(&records).Error
}

type OrderbookSink struct {
	client *PostgresClient
}

func (p *PostgresClient) Orderbooks() *OrderbookSink {
	return &OrderbookSink{client: p}
}

func (s *OrderbookSink) InsertAll(ctx context.Context, batch []measurement.Orderbook) error {
	records := make([]OrderbookRecord, 0, len(batch))
	for _, m := range batch {
		records = append(records, OrderbookRecord{
			Code:           m.Code,
			TotalAskSize:   m.TotalAskSize,
			TotalBidSize:   m.TotalBidSize,
			TopAskPrice:    m.TopAskPrice,
			TopBidPrice:    m.TopBidPrice,
			TopAskSize:     m.TopAskSize,
			TopBidSize:     m.TopBidSize,
			AvgAskPrice5:   m.AvgAskPrice5,
			AvgBidPrice5:   m.AvgBidPrice5,
			SumAskSize5:    m.SumAskSize5,
			SumBidSize5:    m.SumBidSize5,
			ImbalanceRatio: m.ImbalanceRatio,
			Time:           m.Time,
		})
	}
	return s.client.DB.WithContext(ctx).Create(&records).Error
}

type TradeSink struct {
	client *PostgresClient
}

func (p *PostgresClient) Trades() *TradeSink {
	return &TradeSink{client: p}
}

func (s *TradeSink) InsertAll(ctx context.Context, batch []measurement.Trade) error {
	records := make([]TradeRecord, 0, len(batch))
	for _, m := range batch {
		records = append(records, TradeRecord{
			Code:        m.Code,
			TradePrice:  m.TradePrice,
			TradeVolume: m.TradeVolume,
			Side:        string(m.Side),
			Time:        m.Time,
		})
	}
	return s.client.DB.WithContext(ctx).Create(&records).Error
}
