package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Property: every fast subscriber receives every published update.
func TestProperty_AllSubscribersReceiveUpdates(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("all fast subscribers receive all updates", prop.ForAll(
		func(subscriberCount int, updateCount int) bool {
			hub := NewHubWithConfig(HubConfig{BufferSize: 100, SubscriberBufferSize: 100})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			hub.Start(ctx)
			defer hub.Stop()

			var wg sync.WaitGroup
			counts := make([]int64, subscriberCount)
			for i := 0; i < subscriberCount; i++ {
				ch, unsubscribe := hub.Subscribe()
				defer unsubscribe()

				wg.Add(1)
				go func(idx int, ch <-chan Update) {
					defer wg.Done()
					timeout := time.After(5 * time.Second)
					for {
						select {
						case _, ok := <-ch:
							if !ok {
								return
							}
							if atomic.AddInt64(&counts[idx], 1) >= int64(updateCount) {
								return
							}
						case <-timeout:
							return
						}
					}
				}(i, ch)
			}

			for i := 0; i < updateCount; i++ {
				hub.Publish(Update{Seq: uint64(i + 1)})
			}
			wg.Wait()

			for i := range counts {
				if atomic.LoadInt64(&counts[i]) != int64(updateCount) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 5),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}

func TestHub_SlowSubscriberDoesNotBlockFast(t *testing.T) {
	hub := NewHubWithConfig(HubConfig{BufferSize: 100, SubscriberBufferSize: 2})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)
	defer hub.Stop()

	fast, cancelFast := hub.Subscribe()
	defer cancelFast()
	_, cancelSlow := hub.Subscribe() // never read
	defer cancelSlow()

	var received atomic.Int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range fast {
			if received.Add(1) == 10 {
				return
			}
		}
	}()

	for i := 0; i < 10; i++ {
		hub.Publish(Update{Seq: uint64(i + 1)})
		time.Sleep(time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fast subscriber starved")
	}
	assert.Equal(t, int64(10), received.Load())
	assert.Eventually(t, func() bool { return hub.GetMetrics().Dropped >= 8 }, time.Second, 5*time.Millisecond)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	hub.Start(context.Background())
	defer hub.Stop()

	ch, unsubscribe := hub.Subscribe()
	require.Equal(t, 1, hub.SubscriberCount())

	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.SubscriberCount())
}

func TestHub_StopClosesSubscribers(t *testing.T) {
	hub := NewHub()
	hub.Start(context.Background())
	require.True(t, hub.IsStarted())

	a, cancelA := hub.Subscribe()
	b, _ := hub.Subscribe()

	hub.Stop()
	assert.False(t, hub.IsStarted())

	_, okA := <-a
	_, okB := <-b
	assert.False(t, okA)
	assert.False(t, okB)

	// Cancelling after Stop is a no-op.
	cancelA()
	hub.Stop()
}

func TestHub_PublishWithoutStartDropsWhenFull(t *testing.T) {
	hub := NewHubWithConfig(HubConfig{BufferSize: 1, SubscriberBufferSize: 1})
	hub.Publish(Update{Seq: 1})
	hub.Publish(Update{Seq: 2})
	assert.Equal(t, uint64(1), hub.GetMetrics().Dropped)
}
