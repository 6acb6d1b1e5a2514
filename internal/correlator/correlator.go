package correlator

import (
	"sync"
	"time"

	"spikewatch/internal/baseline"
	"spikewatch/internal/measurement"

	"go.uber.org/zap"
)

const (
	// bufferExpiration bounds how far apart the four stream detections may
	// be: twice the baseline TTL.
	bufferExpiration = 20 * time.Minute

	// dedupTTL suppresses re-confirmation of the same (code, direction).
	dedupTTL = 10 * time.Minute

	sweepInterval = time.Minute

	streamCount = 4
)

// AlertSink receives confirmed four-way consensus alerts.
type AlertSink interface {
	Alert(alert measurement.Alert)
}

// AlertFunc adapts a function to the AlertSink interface.
type AlertFunc func(alert measurement.Alert)

func (f AlertFunc) Alert(alert measurement.Alert) { f(alert) }

type detection struct {
	direction measurement.Direction
	at        time.Time
}

// Correlator buffers per-instrument partial detections from the four stream
// analyzers and confirms a spike or drop only when all four agree on the
// same direction within the correlation window. The per-code buffer is
// guarded by a single mutex; upserts arrive from up to four publisher
// goroutines while the sweep removes stale entries concurrently.
type Correlator struct {
	cache  baseline.Cache
	alerts AlertSink
	logger *zap.Logger

	mu     sync.Mutex
	buffer map[string]map[measurement.StreamType]detection

	now  func() time.Time
	done chan struct{}
	once sync.Once
}

func New(cache baseline.Cache, alerts AlertSink, logger *zap.Logger) *Correlator {
	return &Correlator{
		cache:  cache,
		alerts: alerts,
		logger: logger,
		buffer: make(map[string]map[measurement.StreamType]detection),
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// Publish upserts the event's results into the per-code buffer and evaluates
// any code that has now collected all four stream types. It is the single
// consumer side of the detection-result channel.
func (c *Correlator) Publish(event measurement.DetectionEvent) {
	now := c.now()

	for _, result := range event.Results {
		c.mu.Lock()
		entry, ok := c.buffer[result.Code]
		if !ok {
			entry = make(map[measurement.StreamType]detection, streamCount)
			c.buffer[result.Code] = entry
		}
		// Repeat arrivals for the same stream replace the previous partial.
		entry[event.Stream] = detection{direction: result.Direction, at: now}

		var complete map[measurement.StreamType]detection
		if len(entry) == streamCount {
			complete = entry
			delete(c.buffer, result.Code)
		}
		c.mu.Unlock()

		c.logger.Debug("detection buffered",
			zap.String("code", result.Code),
			zap.String("stream", string(event.Stream)),
			zap.String("direction", string(result.Direction)))

		if complete != nil {
			c.evaluate(result.Code, complete)
		}
	}
}

// evaluate runs the recency, unanimity, and dedup checks on a complete
// four-entry set.
func (c *Correlator) evaluate(code string, results map[measurement.StreamType]detection) {
	now := c.now()

	for stream, d := range results {
		if now.Sub(d.at) >= bufferExpiration {
			c.logger.Warn("detection set discarded, entry outside correlation window",
				zap.String("code", code),
				zap.String("stale_stream", string(stream)))
			return
		}
	}

	first := results[measurement.StreamTicker].direction
	if first != measurement.DirectionUp && first != measurement.DirectionDown {
		// UNCHANGED never reaches here from the analyzers, but a defensive
		// mismatch is treated as disagreement.
		c.logDisagreement(code, results)
		return
	}
	for _, stream := range measurement.StreamTypes {
		if results[stream].direction != first {
			c.logDisagreement(code, results)
			return
		}
	}

	c.confirm(code, first)
}

func (c *Correlator) logDisagreement(code string, results map[measurement.StreamType]detection) {
	c.logger.Info("detection set discarded, directions disagree",
		zap.String("code", code),
		zap.String("ticker", string(results[measurement.StreamTicker].direction)),
		zap.String("candle", string(results[measurement.StreamCandle].direction)),
		zap.String("orderbook", string(results[measurement.StreamOrderbook].direction)),
		zap.String("trade", string(results[measurement.StreamTrade].direction)))
}

func (c *Correlator) confirm(code string, direction measurement.Direction) {
	key := baseline.ConfirmedKey(code, direction)

	if c.cache.Exists(key) {
		c.logger.Info("confirmation suppressed, already confirmed recently",
			zap.String("code", code),
			zap.String("direction", string(direction)))
		return
	}

	confirmedAt := c.now()
	c.cache.Set(key, confirmedAt.Format(time.RFC3339), dedupTTL)

	c.logger.Warn("confirmed spike",
		zap.String("code", code),
		zap.String("direction", string(direction)),
		zap.Time("confirmed_at", confirmedAt))

	if c.alerts != nil {
		c.alerts.Alert(measurement.Alert{
			Code:        code,
			Direction:   direction,
			ConfirmedAt: confirmedAt,
		})
	}
}

// Start launches the periodic sweep that evicts partial detections older
// than the correlation window.
func (c *Correlator) Start() {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-c.done:
				return
			}
		}
	}()
}

// Sweep removes buffered detections older than the correlation window and
// drops codes whose buffers emptied. Bounds memory for codes that never
// collect all four signals.
func (c *Correlator) Sweep() {
	now := c.now()
	cleaned := 0

	c.mu.Lock()
	for code, entry := range c.buffer {
		for stream, d := range entry {
			if now.Sub(d.at) >= bufferExpiration {
				delete(entry, stream)
				cleaned++
			}
		}
		if len(entry) == 0 {
			delete(c.buffer, code)
		}
	}
	c.mu.Unlock()

	if cleaned > 0 {
		c.logger.Info("swept stale detections", zap.Int("removed", cleaned))
	}
}

// Stop cancels the sweep task. Idempotent.
func (c *Correlator) Stop() {
	c.once.Do(func() { close(c.done) })
}

// Pending reports how many codes hold partial detection sets.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer)
}
