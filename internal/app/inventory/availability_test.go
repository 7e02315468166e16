package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	domainhotel "stayflow/internal/domain/hotel"
	"stayflow/internal/infra/locks"
	"stayflow/internal/infra/storage/memory"
)

func TestRecommendOrdersLeastUsedFirst(t *testing.T) {
	inv := memory.NewInventoryStore()
	rooms := inv.Rooms()
	ctx := context.Background()

	seed := []domainhotel.Room{
		{HotelID: 1, Number: "101", Available: true, TimesBooked: 3},
		{HotelID: 1, Number: "102", Available: true, TimesBooked: 0},
		{HotelID: 1, Number: "103", Available: true, TimesBooked: 3},
		{HotelID: 1, Number: "104", Available: false, TimesBooked: 0},
		{HotelID: 2, Number: "201", Available: true, TimesBooked: 0},
	}
	for i := range seed {
		require.NoError(t, rooms.Save(ctx, &seed[i]))
	}

	r := &Recommender{Rooms: rooms, Availability: &AvailabilityChecker{Reservations: inv.Reservations()}}

	got, err := r.Recommend(ctx, 1, stay(t, "2026-09-01", "2026-09-05"), 10)
	require.NoError(t, err)
	require.Len(t, got, 3, "unavailable rooms and other hotels are excluded")
	require.Equal(t, "102", got[0].Number)
	// Ties on usage break by id ascending.
	require.Equal(t, seed[0].ID, got[1].ID)
	require.Equal(t, seed[2].ID, got[2].ID)
}

func TestRecommendExcludesConflictingRooms(t *testing.T) {
	inv := memory.NewInventoryStore()
	rooms := inv.Rooms()
	ctx := context.Background()

	a := &domainhotel.Room{HotelID: 1, Number: "101", Available: true}
	b := &domainhotel.Room{HotelID: 1, Number: "102", Available: true}
	require.NoError(t, rooms.Save(ctx, a))
	require.NoError(t, rooms.Save(ctx, b))

	svc := &ReservationService{Reservations: inv.Reservations(), Rooms: rooms, Locks: locks.NewKeyedMutex()}
	_, err := svc.Confirm(ctx, a.ID, "key-1", stay(t, "2026-09-01", "2026-09-05"))
	require.NoError(t, err)

	r := &Recommender{Rooms: rooms, Availability: &AvailabilityChecker{Reservations: inv.Reservations()}}

	got, err := r.Recommend(ctx, 1, stay(t, "2026-09-03", "2026-09-07"), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, b.ID, got[0].ID)

	// Released reservations stop blocking.
	require.NoError(t, svc.Release(ctx, a.ID, "key-1"))
	got, err = r.Recommend(ctx, 1, stay(t, "2026-09-03", "2026-09-07"), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestRecommendClampsLimit(t *testing.T) {
	inv := memory.NewInventoryStore()
	rooms := inv.Rooms()
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.NoError(t, rooms.Save(ctx, &domainhotel.Room{HotelID: 1, Number: "r", Available: true}))
	}

	r := &Recommender{Rooms: rooms, Availability: &AvailabilityChecker{Reservations: inv.Reservations()}}
	dr := stay(t, "2026-09-01", "2026-09-05")

	got, err := r.Recommend(ctx, 1, dr, 0)
	require.NoError(t, err)
	require.Len(t, got, 1, "limit below 1 clamps to 1")

	got, err = r.Recommend(ctx, 1, dr, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
}
