package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	domainhotel "stayflow/internal/domain/hotel"
	domainreservation "stayflow/internal/domain/reservation"
	"stayflow/internal/domain/shared/daterange"
)

func span(t *testing.T, start, end string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(start, end)
	require.NoError(t, err)
	return dr
}

func TestReservationStoreEnforcesKeyUniqueness(t *testing.T) {
	store := NewInventoryStore().Reservations()
	ctx := context.Background()

	first := &domainreservation.Reservation{RoomID: 1, RequestKey: "key-1", Range: span(t, "2026-09-01", "2026-09-05"), Status: domainreservation.StatusCommitted}
	require.NoError(t, store.Save(ctx, first))
	require.NotZero(t, first.ID)

	dup := &domainreservation.Reservation{RoomID: 2, RequestKey: "key-1", Range: span(t, "2026-10-01", "2026-10-05"), Status: domainreservation.StatusCommitted}
	require.ErrorIs(t, store.Save(ctx, dup), domainreservation.ErrDuplicateKey)

	// Re-saving the owning reservation is an update, not a violation.
	first.Status = domainreservation.StatusReleased
	require.NoError(t, store.Save(ctx, first))
}

func TestFindOverlappingSkipsReleasedRows(t *testing.T) {
	store := NewInventoryStore().Reservations()
	ctx := context.Background()
	dr := span(t, "2026-09-01", "2026-09-05")

	committed := &domainreservation.Reservation{RoomID: 1, RequestKey: "key-1", Range: dr, Status: domainreservation.StatusCommitted}
	released := &domainreservation.Reservation{RoomID: 1, RequestKey: "key-2", Range: dr, Status: domainreservation.StatusReleased}
	otherRoom := &domainreservation.Reservation{RoomID: 2, RequestKey: "key-3", Range: dr, Status: domainreservation.StatusCommitted}
	for _, res := range []*domainreservation.Reservation{committed, released, otherRoom} {
		require.NoError(t, store.Save(ctx, res))
	}

	got, err := store.FindOverlapping(ctx, 1, span(t, "2026-09-05", "2026-09-09"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "key-1", got[0].RequestKey)

	got, err = store.FindOverlapping(ctx, 1, span(t, "2026-09-06", "2026-09-09"))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestUpdateStatusMatchesKeyAndRoom(t *testing.T) {
	store := NewInventoryStore().Reservations()
	ctx := context.Background()

	res := &domainreservation.Reservation{RoomID: 1, RequestKey: "key-1", Range: span(t, "2026-09-01", "2026-09-05"), Status: domainreservation.StatusCommitted}
	require.NoError(t, store.Save(ctx, res))

	affected, err := store.UpdateStatus(ctx, "key-1", 99, domainreservation.StatusReleased)
	require.NoError(t, err)
	require.Zero(t, affected)

	affected, err = store.UpdateStatus(ctx, "no-such-key", 1, domainreservation.StatusReleased)
	require.NoError(t, err)
	require.Zero(t, affected)

	affected, err = store.UpdateStatus(ctx, "key-1", 1, domainreservation.StatusReleased)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	got, err := store.ByRequestKey(ctx, "key-1")
	require.NoError(t, err)
	require.Equal(t, domainreservation.StatusReleased, got.Status)
}

func TestInventoryStoreAssignsSequentialIDs(t *testing.T) {
	inv := NewInventoryStore()
	ctx := context.Background()

	h := &domainhotel.Hotel{Name: "Grand", City: "Riga"}
	require.NoError(t, inv.Save(ctx, h))
	require.Equal(t, int64(1), h.ID)

	dup := &domainhotel.Hotel{Name: "Grand", City: "Oslo"}
	require.ErrorIs(t, inv.Save(ctx, dup), domainhotel.ErrNameTaken)

	rooms := inv.Rooms()
	a := &domainhotel.Room{HotelID: h.ID, Number: "101", Available: true}
	b := &domainhotel.Room{HotelID: h.ID, Number: "102", Available: true}
	require.NoError(t, rooms.Save(ctx, a))
	require.NoError(t, rooms.Save(ctx, b))
	require.Equal(t, int64(1), a.ID)
	require.Equal(t, int64(2), b.ID)

	require.NoError(t, rooms.IncrementTimesBooked(ctx, a.ID))
	require.ErrorIs(t, rooms.IncrementTimesBooked(ctx, 99), domainhotel.ErrRoomNotFound)

	got, err := rooms.ByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.TimesBooked)
}
