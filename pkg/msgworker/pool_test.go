package msgworker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolDispatchNonBlocking(t *testing.T) {
	pool := NewPool(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	start := time.Now()
	pool.Dispatch(Job{
		SenderKey: "59170000001",
		MessageID: "m1",
		Handler: func(ctx context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 10*time.Millisecond, "Dispatch debe ser no bloqueante")
}

func TestPoolSameSenderKeepsOrder(t *testing.T) {
	pool := NewPool(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var mu sync.Mutex
	var results []int

	for i := 1; i <= 5; i++ {
		val := i
		pool.Dispatch(Job{
			SenderKey: "59170000001",
			MessageID: "m",
			Handler: func(ctx context.Context) error {
				time.Sleep(10 * time.Millisecond)
				mu.Lock()
				results = append(results, val)
				mu.Unlock()
				return nil
			},
		})
	}

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3, 4, 5}, results, "mensajes del mismo remitente conservan el orden")
}

func TestPoolDropsWhenQueueFull(t *testing.T) {
	pool := NewPool(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	release := make(chan struct{})
	blocker := Job{
		SenderKey: "a",
		Handler: func(ctx context.Context) error {
			<-release
			return nil
		},
	}
	filler := Job{SenderKey: "a", Handler: func(ctx context.Context) error { return nil }}

	require.True(t, pool.TryDispatch(blocker))
	time.Sleep(20 * time.Millisecond) // el worker toma el blocker
	require.True(t, pool.TryDispatch(filler))

	dropped := false
	for i := 0; i < 3; i++ {
		if !pool.TryDispatch(filler) {
			dropped = true
			break
		}
	}
	close(release)

	assert.True(t, dropped, "con la cola llena el dispatch debe descartar")
	assert.Positive(t, pool.Stats().TotalDropped)
}

func TestPoolSurvivesPanicHandler(t *testing.T) {
	pool := NewPool(1, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var processed atomic.Int32

	pool.Dispatch(Job{SenderKey: "x", Handler: func(ctx context.Context) error {
		panic("boom")
	}})
	pool.Dispatch(Job{SenderKey: "x", Handler: func(ctx context.Context) error {
		processed.Add(1)
		return nil
	}})

	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int32(1), processed.Load(), "el worker sobrevive al panic anterior")
	stats := pool.Stats()
	assert.Positive(t, stats.TotalErrors)
	assert.GreaterOrEqual(t, stats.TotalProcessed, int64(2))
}

func TestPoolStopDrainsQueue(t *testing.T) {
	pool := NewPool(2, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)

	var processed atomic.Int32
	for i := 0; i < 20; i++ {
		pool.Dispatch(Job{SenderKey: "s", Handler: func(ctx context.Context) error {
			processed.Add(1)
			return nil
		}})
	}

	pool.Stop()

	assert.Equal(t, int32(20), processed.Load(), "Stop procesa lo ya encolado")
}

func TestPoolRejectsAfterStop(t *testing.T) {
	pool := NewPool(1, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	pool.Stop()

	assert.False(t, pool.TryDispatch(Job{SenderKey: "x", Handler: func(ctx context.Context) error { return nil }}))
}
