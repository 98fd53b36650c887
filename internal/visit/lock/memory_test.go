package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "visitflow/pkg/domain"
)

func TestMemory_SerialisesSameVisitor(t *testing.T) {
	m := NewMemory()
	visitor := id.NewVisitorID()

	var (
		wg      sync.WaitGroup
		inside  atomic.Int32
		maxSeen atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(context.Background(), visitor)
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := inside.Add(1)
			for {
				cur := maxSeen.Load()
				if n <= cur || maxSeen.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Zero(t, m.active(), "entries are dropped once released")
}

func TestMemory_DifferentVisitorsDoNotContend(t *testing.T) {
	m := NewMemory()
	unlockA, err := m.Lock(context.Background(), id.NewVisitorID())
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	unlockB, err := m.Lock(ctx, id.NewVisitorID())
	require.NoError(t, err)
	unlockB()
}

func TestMemory_ContextCancelledWhileWaiting(t *testing.T) {
	m := NewMemory()
	visitor := id.NewVisitorID()
	unlock, err := m.Lock(context.Background(), visitor)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, visitor)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // second call is a no-op
	assert.Zero(t, m.active())

	again, err := m.Lock(context.Background(), visitor)
	require.NoError(t, err)
	again()
}
