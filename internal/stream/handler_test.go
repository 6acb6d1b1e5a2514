package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"spikewatch/internal/measurement"
	"spikewatch/internal/pipeline"
	"spikewatch/pkg/upbit"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChunkCodes(t *testing.T) {
	codes := []string{"KRW-BTC", "KRW-ETH", "KRW-XRP", "KRW-SOL", "KRW-STX"}

	chunks := chunkCodes(codes, 2)

	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"KRW-BTC", "KRW-ETH"}, chunks[0])
	assert.Equal(t, []string{"KRW-XRP", "KRW-SOL"}, chunks[1])
	assert.Equal(t, []string{"KRW-STX"}, chunks[2])

	assert.Empty(t, chunkCodes(nil, 2))
	assert.Equal(t, [][]string{{"KRW-BTC"}}, chunkCodes([]string{"KRW-BTC"}, 2))
}

type collectSink struct {
	mu      sync.Mutex
	tickers []measurement.Ticker
}

func (s *collectSink) InsertAll(_ context.Context, batch []measurement.Ticker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickers = append(s.tickers, batch...)
	return nil
}

func (s *collectSink) codes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, m := range s.tickers {
		out = append(out, m.Code)
	}
	return out
}

// echoFeed upgrades each connection, waits for the subscribe frame, pushes
// the canned frames, then holds the connection open until the client hangs up.
func echoFeed(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestHandlerDeliversDecodedFrames(t *testing.T) {
	srv := echoFeed(t, []string{
		`{"status":"UP"}`, // subscription ack: no code, decode rejects it
		`{"type":"ticker","code":"KRW-BTC","trade_price":100,"trade_volume":1,"trade_timestamp":1700000000000}`,
		`not a json frame`, // decode fails and is skipped, connection stays up
		`{"type":"ticker","code":"KRW-ETH","trade_price":200,"trade_volume":2,"trade_timestamp":1700000001000}`,
	})
	defer srv.Close()

	socketURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	sink := &collectSink{}
	writer := pipeline.NewWriter[measurement.Ticker](measurement.StreamTicker, sink, nil, nil, zap.NewNop())
	limiter := pipeline.NewRateLimiter(4, 10*time.Millisecond)

	h := NewHandler(measurement.StreamTicker, socketURL, "test",
		[]string{"KRW-BTC", "KRW-ETH"}, upbit.DecodeTicker, writer, limiter, zap.NewNop())

	h.Start()
	defer h.Close()

	// Both codes ride one connection; the batch lands on the flush interval.
	require.Eventually(t, func() bool {
		return len(sink.codes()) == 2
	}, 10*time.Second, 50*time.Millisecond)

	assert.ElementsMatch(t, []string{"KRW-BTC", "KRW-ETH"}, sink.codes())
}
