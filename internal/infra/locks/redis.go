package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"stayflow/internal/domain/reservation"
)

const lockKeyPrefix = "stayflow:roomlock:"

// releaseScript deletes the lock only when the caller still owns it, so a
// lock that expired and was re-acquired elsewhere is never released by the
// stale owner.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisRoomLocker serializes room commits across processes with a SET NX
// lease. The TTL bounds how long a crashed holder can block a room.
type RedisRoomLocker struct {
	Client    *redis.Client
	TTL       time.Duration
	RetryWait time.Duration
}

func (l *RedisRoomLocker) LockRoom(ctx context.Context, roomID int64) (func(), error) {
	key := fmt.Sprintf("%s%d", lockKeyPrefix, roomID)
	owner := uuid.NewString()
	wait := l.retryWait()

	for {
		ok, err := l.Client.SetNX(ctx, key, owner, l.ttl()).Result()
		if err != nil {
			return nil, fmt.Errorf("locks: redis acquire: %w", err)
		}
		if ok {
			release := func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_, _ = releaseScript.Run(releaseCtx, l.Client, []string{key}, owner).Result()
			}
			return release, nil
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *RedisRoomLocker) ttl() time.Duration {
	if l.TTL > 0 {
		return l.TTL
	}
	return 10 * time.Second
}

func (l *RedisRoomLocker) retryWait() time.Duration {
	if l.RetryWait > 0 {
		return l.RetryWait
	}
	return 20 * time.Millisecond
}

var _ reservation.RoomLocker = (*RedisRoomLocker)(nil)
