package upbit

// Wire-level response shapes for the Upbit websocket feed. Numeric fields
// arrive as JSON numbers; timestamps are epoch milliseconds.

// TickerResponse is a quote tick frame (type "ticker").
type TickerResponse struct {
	Type              string  `json:"type"`
	Code              string  `json:"code"`
	OpeningPrice      float64 `json:"opening_price"`
	HighPrice         float64 `json:"high_price"`
	LowPrice          float64 `json:"low_price"`
	TradePrice        float64 `json:"trade_price"`
	PrevClosingPrice  float64 `json:"prev_closing_price"`
	Change            string  `json:"change"`
	ChangePrice       float64 `json:"change_price"`
	SignedChangePrice float64 `json:"signed_change_price"`
	ChangeRate        float64 `json:"change_rate"`
	SignedChangeRate  float64 `json:"signed_change_rate"`
	TradeVolume       float64 `json:"trade_volume"`
	AccTradeVolume    float64 `json:"acc_trade_volume"`
	AccTradeVolume24h float64 `json:"acc_trade_volume_24h"`
	AccTradePrice     float64 `json:"acc_trade_price"`
	AccTradePrice24h  float64 `json:"acc_trade_price_24h"`
	TradeTimestamp    int64   `json:"trade_timestamp"`
	AskBid            string  `json:"ask_bid"`
	AccAskVolume      float64 `json:"acc_ask_volume"`
	AccBidVolume      float64 `json:"acc_bid_volume"`
	MarketState       string  `json:"market_state"`
	MarketWarning     string  `json:"market_warning"`
	Timestamp         int64   `json:"timestamp"`
	StreamType        string  `json:"stream_type"`
}

// CandleResponse is a candle frame (type "candle.1s").
type CandleResponse struct {
	Type                string  `json:"type"`
	Code                string  `json:"code"`
	CandleDateTimeUTC   string  `json:"candle_date_time_utc"`
	CandleDateTimeKST   string  `json:"candle_date_time_kst"`
	OpeningPrice        float64 `json:"opening_price"`
	HighPrice           float64 `json:"high_price"`
	LowPrice            float64 `json:"low_price"`
	TradePrice          float64 `json:"trade_price"`
	CandleAccTradeVol   float64 `json:"candle_acc_trade_volume"`
	CandleAccTradePrice float64 `json:"candle_acc_trade_price"`
	Timestamp           int64   `json:"timestamp"`
	StreamType          string  `json:"stream_type"`
}

// OrderbookResponse is a depth snapshot frame (type "orderbook").
type OrderbookResponse struct {
	Type         string          `json:"type"`
	Code         string          `json:"code"`
	Timestamp    int64           `json:"timestamp"`
	TotalAskSize float64         `json:"total_ask_size"`
	TotalBidSize float64         `json:"total_bid_size"`
	Units        []OrderbookUnit `json:"orderbook_units"`
	StreamType   string          `json:"stream_type"`
	Level        int             `json:"level"`
}

// OrderbookUnit is one price level, ask and bid side by side.
type OrderbookUnit struct {
	AskPrice float64 `json:"ask_price"`
	BidPrice float64 `json:"bid_price"`
	AskSize  float64 `json:"ask_size"`
	BidSize  float64 `json:"bid_size"`
}

// TradeResponse is an executed print frame (type "trade").
type TradeResponse struct {
	Type             string  `json:"type"`
	Code             string  `json:"code"`
	TradePrice       float64 `json:"trade_price"`
	TradeVolume      float64 `json:"trade_volume"`
	AskBid           string  `json:"ask_bid"`
	PrevClosingPrice float64 `json:"prev_closing_price"`
	Change           string  `json:"change"`
	ChangePrice      float64 `json:"change_price"`
	TradeTimestamp   int64   `json:"trade_timestamp"`
	Timestamp        int64   `json:"timestamp"`
	SequentialID     int64   `json:"sequential_id"`
	BestAskPrice     float64 `json:"best_ask_price"`
	BestAskSize      float64 `json:"best_ask_size"`
	BestBidPrice     float64 `json:"best_bid_price"`
	BestBidSize      float64 `json:"best_bid_size"`
	StreamType       string  `json:"stream_type"`
}

// Market is one entry from the REST market listing.
type Market struct {
	Market      string `json:"market"`
	KoreanName  string `json:"korean_name"`
	EnglishName string `json:"english_name"`
}
