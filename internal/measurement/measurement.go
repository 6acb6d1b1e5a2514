package measurement

import "time"

// StreamType identifies one of the four market-data streams.
type StreamType string

const (
	StreamTicker    StreamType = "TICKER"
	StreamCandle    StreamType = "CANDLE"
	StreamOrderbook StreamType = "ORDERBOOK"
	StreamTrade     StreamType = "TRADE"
)

// StreamTypes lists every stream type in subscription order.
var StreamTypes = []StreamType{StreamTicker, StreamCandle, StreamOrderbook, StreamTrade}

// Direction is the three-valued outcome of a detection.
type Direction string

const (
	DirectionUp        Direction = "UP"
	DirectionDown      Direction = "DOWN"
	DirectionUnchanged Direction = "UNCHANGED"
)

// OrderSide distinguishes sell (ASK) from buy (BID) prints.
type OrderSide string

const (
	SideAsk OrderSide = "ASK"
	SideBid OrderSide = "BID"
)

// Measurement is the common surface of every typed market-data record.
type Measurement interface {
	MeasurementCode() string
	MeasurementTime() time.Time
}

// Ticker is a single quote tick.
type Ticker struct {
	Code           string    `json:"code"`
	TradePrice     float64   `json:"trade_price"`
	TradeVolume    float64   `json:"trade_volume"`
	TradeVolume24h float64   `json:"trade_volume_24h"`
	Time           time.Time `json:"time"`
}

func (t Ticker) MeasurementCode() string    { return t.Code }
func (t Ticker) MeasurementTime() time.Time { return t.Time }

// Candle is a single candlestick sample.
type Candle struct {
	Code        string    `json:"code"`
	OpenPrice   float64   `json:"open_price"`
	HighPrice   float64   `json:"high_price"`
	LowPrice    float64   `json:"low_price"`
	ClosePrice  float64   `json:"close_price"`
	Volume      float64   `json:"volume"`
	TradeAmount float64   `json:"trade_amount"`
	Time        time.Time `json:"time"`
}

func (c Candle) MeasurementCode() string    { return c.Code }
func (c Candle) MeasurementTime() time.Time { return c.Time }

// Orderbook is an aggregated depth snapshot.
type Orderbook struct {
	Code           string    `json:"code"`
	TotalAskSize   float64   `json:"total_ask_size"`
	TotalBidSize   float64   `json:"total_bid_size"`
	TopAskPrice    float64   `json:"top_ask_price"`
	TopBidPrice    float64   `json:"top_bid_price"`
	TopAskSize     float64   `json:"top_ask_size"`
	TopBidSize     float64   `json:"top_bid_size"`
	AvgAskPrice5   float64   `json:"avg_ask_price_top5"`
	AvgBidPrice5   float64   `json:"avg_bid_price_top5"`
	SumAskSize5    float64   `json:"sum_ask_size_top5"`
	SumBidSize5    float64   `json:"sum_bid_size_top5"`
	ImbalanceRatio float64   `json:"imbalance_ratio"`
	Time           time.Time `json:"time"`
}

func (o Orderbook) MeasurementCode() string    { return o.Code }
func (o Orderbook) MeasurementTime() time.Time { return o.Time }

// Trade is a single executed print.
type Trade struct {
	Code        string    `json:"code"`
	TradePrice  float64   `json:"trade_price"`
	TradeVolume float64   `json:"trade_volume"`
	Side        OrderSide `json:"ask_bid"`
	Time        time.Time `json:"time"`
}

func (t Trade) MeasurementCode() string    { return t.Code }
func (t Trade) MeasurementTime() time.Time { return t.Time }

// TradeStats is the derived baseline tuple stored for the trade stream.
type TradeStats struct {
	AvgVolume  float64 `json:"avg_volume"`
	MaxVolume  float64 `json:"max_volume"`
	BuyVolume  float64 `json:"buy_volume"`
	SellVolume float64 `json:"sell_volume"`
}

// AnalyzerResult is one per-instrument detector verdict. UNCHANGED results
// never leave a detector.
type AnalyzerResult struct {
	Code      string
	Direction Direction
}

// DetectionEvent carries one flush worth of detector verdicts to the correlator.
type DetectionEvent struct {
	Stream  StreamType
	Results []AnalyzerResult
	Time    time.Time
}

// Alert is a confirmed four-way consensus spike or drop.
type Alert struct {
	Code        string
	Direction   Direction
	ConfirmedAt time.Time
}
