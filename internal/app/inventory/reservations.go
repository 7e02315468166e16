package inventory

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stayflow/internal/domain/hotel"
	"stayflow/internal/domain/reservation"
	"stayflow/internal/domain/shared/daterange"
)

// ErrRoomUnavailable is the only business failure Confirm can produce.
var ErrRoomUnavailable = errors.New("inventory: room not available for these dates")

// ReservationService enforces the commit/release state machine for room
// reservations. Confirm is the single mutation that must serialize across
// concurrent callers contending on one room.
type ReservationService struct {
	Reservations reservation.Store
	Rooms        hotel.RoomRepository
	Locks        reservation.RoomLocker
	Logger       *slog.Logger
	Now          func() time.Time
}

// Confirm commits a reservation for the room and range, or replays the
// reservation already owned by the request key.
//
// The replay lookup deliberately runs before the lock: a retried request
// must see its earlier result without contending on the room. The overlap
// check and insert then run under the room-scoped exclusive lock and inside
// one store transaction, otherwise two concurrent calls could both observe
// "no conflict" and double-book. The transaction matters across processes:
// the room lock only covers callers sharing the same locker, while the
// store's row locks hold from the overlap check to the insert for everyone.
func (s *ReservationService) Confirm(ctx context.Context, roomID int64, requestKey string, dr daterange.DateRange) (*reservation.Reservation, error) {
	if requestKey == "" {
		return nil, errors.New("inventory: request key required")
	}
	if existing, err := s.Reservations.ByRequestKey(ctx, requestKey); err == nil {
		return existing, nil
	} else if !errors.Is(err, reservation.ErrNotFound) {
		return nil, err
	}

	release, err := s.Locks.LockRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	defer release()

	res := &reservation.Reservation{
		RoomID:     roomID,
		RequestKey: requestKey,
		Range:      dr,
		Status:     reservation.StatusCommitted,
		CreatedAt:  s.now(),
	}
	err = s.Reservations.Transact(ctx, func(tx reservation.Store) error {
		overlapping, err := tx.FindOverlapping(ctx, roomID, dr)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return ErrRoomUnavailable
		}
		return tx.Save(ctx, res)
	})
	if err != nil {
		if errors.Is(err, reservation.ErrDuplicateKey) {
			// Lost the race against a concurrent retry of the same key;
			// its reservation is the canonical one.
			return s.Reservations.ByRequestKey(ctx, requestKey)
		}
		return nil, err
	}

	// Usage bookkeeping only; a failed increment never undoes the commit.
	if err := s.Rooms.IncrementTimesBooked(ctx, roomID); err != nil {
		s.log().Warn("times_booked increment failed", "room_id", roomID, "error", err)
	}
	return res, nil
}

// Release flips the reservation owned by the key to Released. Unknown keys,
// already-released reservations and room mismatches are all quiet no-ops so
// compensating calls can be retried freely.
func (s *ReservationService) Release(ctx context.Context, roomID int64, requestKey string) error {
	existing, err := s.Reservations.ByRequestKey(ctx, requestKey)
	if errors.Is(err, reservation.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.Status == reservation.StatusReleased {
		return nil
	}
	affected, err := s.Reservations.UpdateStatus(ctx, requestKey, roomID, reservation.StatusReleased)
	if err != nil {
		return err
	}
	if affected == 0 {
		s.log().Debug("release matched no rows", "room_id", roomID, "request_key", requestKey)
	}
	return nil
}

func (s *ReservationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *ReservationService) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
