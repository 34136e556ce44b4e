package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func TestFixedClock_DoesNotMove(t *testing.T) {
	clock := NewFixedClock(epoch)

	assert.Equal(t, epoch, clock.Now())
	time.Sleep(time.Millisecond)
	assert.Equal(t, epoch, clock.Now())
}

func TestFixedClock_AdvanceAndSet(t *testing.T) {
	clock := NewFixedClock(epoch)

	clock.Advance(36 * time.Hour)
	assert.Equal(t, epoch.Add(36*time.Hour), clock.Now())

	clock.Advance(-time.Hour)
	assert.Equal(t, epoch.Add(35*time.Hour), clock.Now())

	clock.Set(epoch)
	assert.Equal(t, epoch, clock.Now())
}

func TestFixedClock_ThreadSafe(t *testing.T) {
	clock := NewFixedClock(epoch)
	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			clock.Advance(time.Second)
			_ = clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, epoch.Add(numGoroutines*time.Second), clock.Now())
}

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs()

	assert.Equal(t, uuid.MustParse("00000000-0000-4000-8000-000000000001"), ids.Next())
	assert.Equal(t, uuid.MustParse("00000000-0000-4000-8000-000000000002"), ids.Next())

	id := ids.Next()
	assert.Equal(t, uuid.Version(4), id.Version())
	assert.Equal(t, uuid.RFC4122, id.Variant())
}

func TestSequentialIDs_Deterministic(t *testing.T) {
	a, b := NewSequentialIDs(), NewSequentialIDs()
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestSequentialIDs_ThreadSafe(t *testing.T) {
	ids := NewSequentialIDs()
	const numGoroutines = 20
	const callsPerGoroutine = 50

	var mu sync.Mutex
	seen := make(map[uuid.UUID]bool)

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				id := ids.Next()
				mu.Lock()
				assert.False(t, seen[id], "duplicate id %s", id)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, numGoroutines*callsPerGoroutine)
}
