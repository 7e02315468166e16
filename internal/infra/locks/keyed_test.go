package locks

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerializesSameRoom(t *testing.T) {
	km := NewKeyedMutex()
	ctx := context.Background()

	var held int
	var max int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := km.LockRoom(ctx, 1)
			require.NoError(t, err)
			mu.Lock()
			held++
			if held > max {
				max = held
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			held--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()
	require.Equal(t, 1, max)
}

func TestKeyedMutexDistinctRoomsDoNotContend(t *testing.T) {
	km := NewKeyedMutex()
	ctx := context.Background()

	releaseA, err := km.LockRoom(ctx, 1)
	require.NoError(t, err)
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB, err := km.LockRoom(ctx, 2)
		if err == nil {
			releaseB()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different room blocked")
	}
}

func TestKeyedMutexHonorsContextCancellation(t *testing.T) {
	km := NewKeyedMutex()

	release, err := km.LockRoom(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = km.LockRoom(ctx, 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestKeyedMutexReleaseIsIdempotent(t *testing.T) {
	km := NewKeyedMutex()
	ctx := context.Background()

	release, err := km.LockRoom(ctx, 1)
	require.NoError(t, err)
	release()
	release()

	again, err := km.LockRoom(ctx, 1)
	require.NoError(t, err)
	again()
}
