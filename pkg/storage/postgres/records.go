package postgres

import "time"

// TickerRecord is one persisted quote tick.
type TickerRecord struct {
	ID uint `gorm:"primaryKey"`

	Code           string    `gorm:"type:text;not null;index:idx_ticker_code"`
	TradePrice     float64   `gorm:"type:numeric;not null"`
	TradeVolume    float64   `gorm:"type:numeric;not null"`
	TradeVolume24h float64   `gorm:"type:numeric;not null"`
	Time           time.Time `gorm:"not null;index:idx_ticker_time"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

func (TickerRecord) TableName() string {
	return "ticker_measurement"
}

// CandleRecord is one persisted candlestick.
type CandleRecord struct {
	ID uint `gorm:"primaryKey"`

	Code        string    `gorm:"type:text;not null;index:idx_candle_code"`
	OpenPrice   float64   `gorm:"type:numeric;not null"`
	HighPrice   float64   `gorm:"type:numeric;not null"`
	LowPrice    float64   `gorm:"type:numeric;not null"`
	ClosePrice  float64   `gorm:"type:numeric;not null"`
	Volume      float64   `gorm:"type:numeric;not null"`
	TradeAmount float64   `gorm:"type:numeric;not null"`
	Time        time.Time `gorm:"not null;index:idx_candle_time"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

func (CandleRecord) TableName() string {
	return "candle_measurement"
}

// OrderbookRecord is one persisted depth snapshot.
type OrderbookRecord struct {
	ID uint `gorm:"primaryKey"`

	Code           string    `gorm:"type:text;not null;index:idx_orderbook_code"`
	TotalAskSize   float64   `gorm:"type:numeric;not null"`
	TotalBidSize   float64   `gorm:"type:numeric;not null"`
	TopAskPrice    float64   `gorm:"type:numeric;not null"`
	TopBidPrice    float64   `gorm:"type:numeric;not null"`
	TopAskSize     float64   `gorm:"type:numeric;not null"`
	TopBidSize     float64   `gorm:"type:numeric;not null"`
	AvgAskPrice5   float64   `gorm:"type:numeric;not null"`
	AvgBidPrice5   float64   `gorm:"type:numeric;not null"`
	SumAskSize5    float64   `gorm:"type:numeric;not null"`
	SumBidSize5    float64   `gorm:"type:numeric;not null"`
	ImbalanceRatio float64   `gorm:"type:numeric;not null"`
	Time           time.Time `gorm:"not null;index:idx_orderbook_time"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

func (OrderbookRecord) TableName() string {
	return "orderbook_measurement"
}

// TradeRecord is one persisted print.
type TradeRecord struct {
	ID uint `gorm:"primaryKey"`

	Code        string    `gorm:"type:text;not null;index:idx_trade_code"`
	TradePrice  float64   `gorm:"type:numeric;not null"`
	TradeVolume float64   `gorm:"type:numeric;not null"`
	Side        string    `gorm:"type:varchar(3);not null"`
	Time        time.Time `gorm:"not null;index:idx_trade_time"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

func (TradeRecord) TableName() string {
	return "trade_measurement"
}
