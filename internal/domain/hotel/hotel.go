package hotel

import (
	"context"
	"errors"
)

var (
	ErrHotelNotFound = errors.New("hotel: not found")
	ErrRoomNotFound  = errors.New("hotel: room not found")
	ErrNameTaken     = errors.New("hotel: name already exists")
)

type Hotel struct {
	ID   int64
	Name string
	City string
}

// Room belongs to one hotel. TimesBooked is a usage counter bumped once per
// committed reservation; it drives recommendation ordering only, never
// capacity. Capacity correctness lives entirely in the reservation overlap
// invariant.
type Room struct {
	ID          int64
	HotelID     int64
	Number      string
	Available   bool
	TimesBooked int
}

type HotelRepository interface {
	ByID(ctx context.Context, id int64) (*Hotel, error)
	List(ctx context.Context) ([]Hotel, error)
	Save(ctx context.Context, h *Hotel) error
}

type RoomRepository interface {
	ByID(ctx context.Context, id int64) (*Room, error)
	ByHotel(ctx context.Context, hotelID int64) ([]Room, error)
	List(ctx context.Context) ([]Room, error)
	Save(ctx context.Context, r *Room) error
	// IncrementTimesBooked bumps the usage counter. Best-effort bookkeeping
	// on the commit path; failures there must not fail the reservation.
	IncrementTimesBooked(ctx context.Context, id int64) error
}
