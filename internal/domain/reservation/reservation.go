package reservation

import (
	"context"
	"errors"
	"time"

	"stayflow/internal/domain/shared/daterange"
)

var (
	ErrNotFound = errors.New("reservation: not found")
	// ErrDuplicateKey means another reservation already owns the request key.
	// Stores must enforce key uniqueness and surface violations as this error.
	ErrDuplicateKey = errors.New("reservation: duplicate request key")
)

type Status string

const (
	// StatusHeld is declared for a future two-phase hold/commit flow and is
	// never produced by the current commit path.
	StatusHeld      Status = "HELD"
	StatusCommitted Status = "COMMITTED"
	StatusReleased  Status = "RELEASED"
)

// Reservation is one room's claim on a date range, owned by a single saga
// attempt identified by its request key. Reservations are never deleted;
// release flips the status.
type Reservation struct {
	ID         int64
	RoomID     int64
	RequestKey string
	Range      daterange.DateRange
	Status     Status
	CreatedAt  time.Time
}

// Active reservations participate in the overlap invariant.
func (r *Reservation) Active() bool {
	return r.Status != StatusReleased
}

// Store is the durable reservation table. FindOverlapping only returns
// non-released rows; on the commit path it must run while the caller holds
// the room's exclusive lock.
type Store interface {
	ByRequestKey(ctx context.Context, key string) (*Reservation, error)
	FindOverlapping(ctx context.Context, roomID int64, dr daterange.DateRange) ([]Reservation, error)
	Save(ctx context.Context, r *Reservation) error
	// Transact runs fn against a store view whose operations share one
	// atomic scope. Row locks taken by FindOverlapping inside fn must hold
	// until fn returns, so the overlap check and the insert of the commit
	// path cannot be interleaved by another process.
	Transact(ctx context.Context, fn func(Store) error) error
	// UpdateStatus flips the status of the reservation matching both key and
	// room, returning the number of rows affected.
	UpdateStatus(ctx context.Context, key string, roomID int64, status Status) (int64, error)
}

// RoomLocker grants mutual exclusion per room identity. Two concurrent
// commit attempts for the same room must serialize their overlap check
// through it; attempts for different rooms must not contend.
type RoomLocker interface {
	LockRoom(ctx context.Context, roomID int64) (release func(), err error)
}
