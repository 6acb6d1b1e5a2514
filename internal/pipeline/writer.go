package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"spikewatch/internal/measurement"

	"go.uber.org/zap"
)

const (
	channelCapacity = 1000
	batchLimit      = 100
	flushInterval   = 5 * time.Second

	insertTimeout = 10 * time.Second
)

// Sink is the durable append-only write target for a batch of measurements.
type Sink[T any] interface {
	InsertAll(ctx context.Context, batch []T) error
}

// Analyzer inspects a flushed batch and returns zero or more per-instrument
// directional verdicts.
type Analyzer[T any] interface {
	Detect(batch []T) []measurement.AnalyzerResult
}

// ResultSink receives detection events produced by flush handlers.
type ResultSink interface {
	Publish(event measurement.DetectionEvent)
}

// Writer buffers one stream's measurements and drives the flush handler
// chain: durable write, then detection, then result publication. The storage
// write for a batch always completes before that batch reaches the analyzer.
type Writer[T any] struct {
	stream  measurement.StreamType
	channel *Channel[T]
	buffer  *AutoFlushBuffer[T]
	closed  atomic.Bool
	logger  *zap.Logger
}

// NewWriter wires a bounded channel and an auto-flush buffer for one stream.
// analyzer and results may be nil to run ingestion without detection.
func NewWriter[T any](
	stream measurement.StreamType,
	sink Sink[T],
	analyzer Analyzer[T],
	results ResultSink,
	logger *zap.Logger,
) *Writer[T] {
	return newWriter(stream, sink, analyzer, results, logger, channelCapacity, batchLimit, flushInterval)
}

func newWriter[T any](
	stream measurement.StreamType,
	sink Sink[T],
	analyzer Analyzer[T],
	results ResultSink,
	logger *zap.Logger,
	capacity, limit int,
	interval time.Duration,
) *Writer[T] {
	w := &Writer[T]{
		stream:  stream,
		channel: NewChannel[T](capacity),
		logger:  logger,
	}

	w.buffer = NewAutoFlushBuffer(limit, interval, func(batch []T) {
		ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
		err := sink.InsertAll(ctx, batch)
		cancel()
		if err != nil {
			// Detection must not run on data that was never recorded.
			logger.Warn("batch insert failed, skipping detection",
				zap.String("stream", string(stream)),
				zap.Int("batch", len(batch)),
				zap.Error(err))
			return
		}

		if analyzer == nil {
			return
		}
		found := analyzer.Detect(batch)
		if len(found) == 0 || results == nil {
			return
		}
		results.Publish(measurement.DetectionEvent{
			Stream:  stream,
			Results: found,
			Time:    time.Now(),
		})
	})

	return w
}

// Write enqueues one measurement, blocking under backpressure.
func (w *Writer[T]) Write(m T) error {
	return w.channel.Add(m)
}

// Run drains the channel into the buffer until the channel is closed and
// empty, then performs the final flush. It flushes once on entry to push out
// anything staged before the worker started.
func (w *Writer[T]) Run() {
	w.buffer.Flush()

	for {
		m, ok := w.channel.Poll()
		if !ok {
			break
		}
		w.buffer.Add(m)
	}

	w.buffer.Flush()
}

// Close stops intake, forces a final flush of anything still buffered, and
// cancels the flush timer. Idempotent.
func (w *Writer[T]) Close() {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	w.channel.Close()
	w.buffer.Flush()
	w.buffer.Stop()
}
