package locks

import (
	"context"
	"sync"

	"stayflow/internal/domain/reservation"
)

// KeyedMutex grants per-room mutual exclusion inside one process. Each room
// gets its own slot, so commits against different rooms never contend.
// Correct on its own only while a single process writes a room's rows; use
// the redis backend when the inventory service runs replicated over a store
// without row locks.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[int64]chan struct{}
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[int64]chan struct{})}
}

func (k *KeyedMutex) LockRoom(ctx context.Context, roomID int64) (func(), error) {
	k.mu.Lock()
	slot, ok := k.slots[roomID]
	if !ok {
		slot = make(chan struct{}, 1)
		k.slots[roomID] = slot
	}
	k.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var _ reservation.RoomLocker = (*KeyedMutex)(nil)
