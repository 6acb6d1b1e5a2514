package stream

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"spikewatch/internal/measurement"
	"spikewatch/internal/pipeline"
	"spikewatch/pkg/upbit"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Each connection carries two instrument codes; the feed throttles
	// clients that pack too many subscriptions onto one socket.
	chunkSize = 2

	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// Handler owns the connections for one stream type. The four stream types
// share this orchestration (rate-limited dial, chunked subscribe, decode
// loop, ordered teardown) and differ only in the decode function and the
// wire request label.
type Handler[T any] struct {
	stream    measurement.StreamType
	wireType  string
	socketURL string
	ticket    string
	codes     []string
	decode    func([]byte) (T, error)

	writer  *pipeline.Writer[T]
	limiter *pipeline.RateLimiter
	logger  *zap.Logger

	mu     sync.Mutex
	conns  []*websocket.Conn
	closed atomic.Bool
	wg     sync.WaitGroup
}

// NewHandler builds the ingestion pipeline for one stream type.
func NewHandler[T any](
	stream measurement.StreamType,
	socketURL, ticket string,
	codes []string,
	decode func([]byte) (T, error),
	writer *pipeline.Writer[T],
	limiter *pipeline.RateLimiter,
	logger *zap.Logger,
) *Handler[T] {
	return &Handler[T]{
		stream:    stream,
		wireType:  upbit.WireCode(stream),
		socketURL: socketURL,
		ticket:    ticket,
		codes:     codes,
		decode:    decode,
		writer:    writer,
		limiter:   limiter,
		logger:    logger.With(zap.String("stream", string(stream))),
	}
}

// Start launches the drain worker and opens one rate-limited connection per
// chunk of instrument codes. A failed chunk is logged and skipped; it never
// blocks the remaining chunks.
func (h *Handler[T]) Start() {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.writer.Run()
	}()

	for _, chunk := range chunkCodes(h.codes, chunkSize) {
		h.limiter.Acquire()
		h.logger.Info("opening feed connection", zap.Strings("codes", chunk))

		conn, _, err := websocket.DefaultDialer.Dial(h.socketURL, nil)
		if err != nil {
			h.logger.Warn("feed connection failed, codes unmonitored",
				zap.Strings("codes", chunk), zap.Error(err))
			continue
		}

		h.mu.Lock()
		h.conns = append(h.conns, conn)
		h.mu.Unlock()

		go h.subscribe(conn, chunk)

		h.wg.Add(1)
		go func(conn *websocket.Conn, chunk []string) {
			defer h.wg.Done()
			h.readLoop(conn, chunk)
		}(conn, chunk)
	}
}

// subscribe sends the two-object subscription frame for one chunk.
func (h *Handler[T]) subscribe(conn *websocket.Conn, chunk []string) {
	req := upbit.SubscribeRequest{
		Ticket: h.ticket,
		Type:   h.wireType,
		Codes:  chunk,
	}
	if err := conn.WriteJSON(req.Payload()); err != nil {
		h.logger.Warn("subscribe request failed", zap.Strings("codes", chunk), zap.Error(err))
		return
	}
	h.logger.Info("subscribe request sent", zap.Strings("codes", chunk))
}

// readLoop decodes inbound frames into measurements until the handler shuts
// down. A dropped connection is redialed with capped backoff, passing
// through the rate limiter again so reconnect storms stay paced.
func (h *Handler[T]) readLoop(conn *websocket.Conn, chunk []string) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if h.closed.Load() {
				return
			}
			h.logger.Warn("feed read error, reconnecting", zap.Strings("codes", chunk), zap.Error(err))
			conn = h.reconnect(conn, chunk)
			if conn == nil {
				return
			}
			continue
		}

		m, err := h.decode(frame)
		if err != nil {
			// Subscription acks and malformed frames land here; the
			// connection stays up.
			h.logger.Warn("frame decode failed, skipping", zap.Error(err))
			continue
		}

		if err := h.writer.Write(m); err != nil {
			if errors.Is(err, pipeline.ErrChannelClosed) {
				return
			}
			h.logger.Warn("measurement dropped", zap.Error(err))
		}
	}
}

// reconnect redials and resubscribes one chunk's connection. Returns nil
// once the handler is closed.
func (h *Handler[T]) reconnect(old *websocket.Conn, chunk []string) *websocket.Conn {
	delay := reconnectBaseDelay

	for !h.closed.Load() {
		time.Sleep(delay)
		if delay *= 2; delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}

		h.limiter.Acquire()
		if h.closed.Load() {
			return nil
		}

		conn, _, err := websocket.DefaultDialer.Dial(h.socketURL, nil)
		if err != nil {
			h.logger.Warn("reconnect failed, retrying", zap.Strings("codes", chunk), zap.Error(err))
			continue
		}

		h.mu.Lock()
		for i, c := range h.conns {
			if c == old {
				h.conns[i] = conn
				break
			}
		}
		h.mu.Unlock()
		_ = old.Close()

		h.subscribe(conn, chunk)
		h.logger.Info("reconnected", zap.Strings("codes", chunk))
		return conn
	}
	return nil
}

// Close tears the handler down in strict order: stop intake and flush the
// buffered batch first, then close every connection, logging each outcome
// and continuing past failures.
func (h *Handler[T]) Close() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}

	h.writer.Close()

	h.mu.Lock()
	conns := h.conns
	h.conns = nil
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			h.logger.Warn("connection close failed", zap.Error(err))
			continue
		}
		h.logger.Info("connection closed")
	}

	h.wg.Wait()
}

func chunkCodes(codes []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(codes); start += size {
		end := start + size
		if end > len(codes) {
			end = len(codes)
		}
		chunks = append(chunks, codes[start:end])
	}
	return chunks
}
