package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChannelFIFO(t *testing.T) {
	ch := NewChannel[int](10)

	require.NoError(t, ch.Add(1))
	require.NoError(t, ch.Add(2))
	require.NoError(t, ch.Add(3))

	for want := 1; want <= 3; want++ {
		got, ok := ch.Poll()
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

func TestChannelBackpressure(t *testing.T) {
	ch := NewChannel[int](1)
	require.NoError(t, ch.Add(1))

	unblocked := make(chan struct{})
	go func() {
		_ = ch.Add(2) // blocks until the consumer frees a slot
		close(unblocked)
	}()

	select {
	case <-unblocked:
		t.Fatal("Add returned while channel was full")
	case <-time.After(50 * time.Millisecond):
	}

	got, ok := ch.Poll()
	require.True(t, ok)
	require.Equal(t, 1, got)

	select {
	case <-unblocked:
	case <-time.After(time.Second):
		t.Fatal("Add did not unblock after Poll freed a slot")
	}
}

func TestChannelCloseRejectsProducersAndDrains(t *testing.T) {
	ch := NewChannel[int](10)
	require.NoError(t, ch.Add(1))
	require.NoError(t, ch.Add(2))

	ch.Close()
	ch.Close() // idempotent

	require.ErrorIs(t, ch.Add(3), ErrChannelClosed)

	got, ok := ch.Poll()
	require.True(t, ok)
	require.Equal(t, 1, got)

	got, ok = ch.Poll()
	require.True(t, ok)
	require.Equal(t, 2, got)

	_, ok = ch.Poll()
	require.False(t, ok, "drained closed channel must report closed")
}

func TestChannelCloseReleasesBlockedProducer(t *testing.T) {
	ch := NewChannel[int](1)
	require.NoError(t, ch.Add(1))

	var wg sync.WaitGroup
	wg.Add(1)
	var err error
	go func() {
		defer wg.Done()
		err = ch.Add(2)
	}()

	time.Sleep(20 * time.Millisecond)
	ch.Close()
	wg.Wait()

	require.ErrorIs(t, err, ErrChannelClosed)
}
