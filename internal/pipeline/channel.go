package pipeline

import (
	"errors"
	"sync"
)

// ErrChannelClosed is returned by Add after Close.
var ErrChannelClosed = errors.New("pipeline: channel closed")

// Channel is a fixed-capacity multi-producer queue with a single logical
// consumer. Producers block when the queue is full (backpressure, never
// drop); after Close producers are rejected while the consumer drains the
// remaining items before Poll reports closed.
type Channel[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	items    []T
	capacity int
	closed   bool
}

func NewChannel[T any](capacity int) *Channel[T] {
	c := &Channel[T]{capacity: capacity}
	c.notFull = sync.NewCond(&c.mu)
	c.notEmpty = sync.NewCond(&c.mu)
	return c
}

// Add enqueues item, blocking while the channel is full. It returns
// ErrChannelClosed if the channel was closed before the item was accepted.
func (c *Channel[T]) Add(item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.items) == c.capacity {
		if c.closed {
			return ErrChannelClosed
		}
		c.notFull.Wait()
	}
	if c.closed {
		return ErrChannelClosed
	}

	c.items = append(c.items, item)
	c.notEmpty.Signal()
	return nil
}

// Poll returns the next item, blocking while the channel is empty. The
// second return value is false once the channel is closed and fully drained.
func (c *Channel[T]) Poll() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.items) == 0 {
		if c.closed {
			var zero T
			return zero, false
		}
		c.notEmpty.Wait()
	}

	item := c.items[0]
	c.items = c.items[1:]
	c.notFull.Signal()
	return item, true
}

// Len reports the number of queued items.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Close is idempotent. Blocked producers are released with ErrChannelClosed;
// the consumer keeps receiving until the queue is drained.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.notEmpty.Broadcast()
	c.notFull.Broadcast()
}
