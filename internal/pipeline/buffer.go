package pipeline

import (
	"sync"
	"time"
)

// AutoFlushBuffer accumulates items and hands them to a single handler in
// batches. A flush fires when the batch reaches the size limit or when the
// flush interval elapses, whichever comes first. Empty batches are never
// delivered.
type AutoFlushBuffer[T any] struct {
	limit   int
	handler func([]T)

	mu    sync.Mutex
	items []T

	// flushMu serializes handler invocations so a slow handler never races
	// with the timer or a size-triggered flush.
	flushMu sync.Mutex

	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// NewAutoFlushBuffer starts the interval timer immediately. Stop must be
// called to release it.
func NewAutoFlushBuffer[T any](limit int, interval time.Duration, handler func([]T)) *AutoFlushBuffer[T] {
	b := &AutoFlushBuffer[T]{
		limit:   limit,
		handler: handler,
		items:   make([]T, 0, limit),
		ticker:  time.NewTicker(interval),
		done:    make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-b.ticker.C:
				b.Flush()
			case <-b.done:
				return
			}
		}
	}()

	return b
}

// Add appends an item and flushes synchronously once the size limit is hit.
func (b *AutoFlushBuffer[T]) Add(item T) {
	b.mu.Lock()
	b.items = append(b.items, item)
	full := len(b.items) >= b.limit
	b.mu.Unlock()

	if full {
		b.Flush()
	}
}

// Flush swaps the current batch for an empty one and invokes the handler
// with the swapped-out batch. Concurrent Add calls never observe a
// partially-delivered batch, and overlapping Flush calls are serialized.
func (b *AutoFlushBuffer[T]) Flush() {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	batch := b.items
	b.items = make([]T, 0, b.limit)
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	b.handler(batch)
}

// Len reports the number of buffered items awaiting flush.
func (b *AutoFlushBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Stop cancels the interval timer. It does not flush; callers flush
// explicitly as part of their teardown order.
func (b *AutoFlushBuffer[T]) Stop() {
	b.once.Do(func() {
		b.ticker.Stop()
		close(b.done)
	})
}
