package inventory

import (
	"context"
	"sort"

	"stayflow/internal/domain/hotel"
	"stayflow/internal/domain/reservation"
	"stayflow/internal/domain/shared/daterange"
)

// AvailabilityChecker answers the lock-free overlap question used for
// recommendation filtering. The answer is advisory: only Confirm, under the
// room lock, establishes availability for real.
type AvailabilityChecker struct {
	Reservations reservation.Store
}

func (c *AvailabilityChecker) IsAvailable(ctx context.Context, roomID int64, dr daterange.DateRange) (bool, error) {
	overlapping, err := c.Reservations.FindOverlapping(ctx, roomID, dr)
	if err != nil {
		return false, err
	}
	return len(overlapping) == 0, nil
}

// Recommender picks candidate rooms for a hotel and date range: available
// rooms without conflicting reservations, least-used first, ids ascending on
// ties so results stay deterministic.
type Recommender struct {
	Rooms        hotel.RoomRepository
	Availability *AvailabilityChecker
}

func (r *Recommender) Recommend(ctx context.Context, hotelID int64, dr daterange.DateRange, limit int) ([]hotel.Room, error) {
	rooms, err := r.Rooms.ByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	candidates := make([]hotel.Room, 0, len(rooms))
	for _, room := range rooms {
		if !room.Available {
			continue
		}
		free, err := r.Availability.IsAvailable(ctx, room.ID, dr)
		if err != nil {
			return nil, err
		}
		if free {
			candidates = append(candidates, room)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].TimesBooked != candidates[j].TimesBooked {
			return candidates[i].TimesBooked < candidates[j].TimesBooked
		}
		return candidates[i].ID < candidates[j].ID
	})

	if limit < 1 {
		limit = 1
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
