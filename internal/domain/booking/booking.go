package booking

import (
	"context"
	"errors"
	"time"

	"stayflow/internal/domain/shared/daterange"
	"stayflow/internal/domain/shared/events"
)

var (
	ErrNotFound     = errors.New("booking: not found")
	ErrNotOwner     = errors.New("booking: not owned by caller")
	ErrInvalidState = errors.New("booking: invalid state transition")
	ErrKeyRequired  = errors.New("booking: request key required")
	// ErrDuplicateKey means another booking already owns the request key.
	ErrDuplicateKey = errors.New("booking: duplicate request key")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// Booking records one reservation attempt on behalf of a user. The request
// key is the sole deduplication mechanism: no two bookings share one, and it
// is the only value linking a booking to the inventory-side reservation.
type Booking struct {
	ID         string
	UserID     string
	RoomID     *int64
	HotelID    int64
	Status     Status
	Range      daterange.DateRange
	RequestKey string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id string) (*Booking, error)
	ByRequestKey(ctx context.Context, key string) (*Booking, error)
	ByUser(ctx context.Context, userID string) ([]*Booking, error)
	Save(ctx context.Context, b *Booking) error
}

type CreateParams struct {
	ID         string
	UserID     string
	HotelID    int64
	RoomID     *int64
	Range      daterange.DateRange
	RequestKey string
	CreatedAt  time.Time
}

// New creates a booking in the Pending state. The room stays unset until the
// saga resolves one.
func New(params CreateParams) (*Booking, error) {
	if params.RequestKey == "" {
		return nil, ErrKeyRequired
	}
	if params.UserID == "" {
		return nil, errors.New("booking: user id required")
	}
	now := params.CreatedAt.UTC()
	return &Booking{
		ID:         params.ID,
		UserID:     params.UserID,
		HotelID:    params.HotelID,
		RoomID:     params.RoomID,
		Status:     StatusPending,
		Range:      params.Range,
		RequestKey: params.RequestKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Confirm moves a pending booking to its terminal Confirmed state and pins
// the room the inventory side committed.
func (b *Booking) Confirm(roomID int64, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.RoomID = &roomID
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(Confirmed{BookingID: b.ID, UserID: b.UserID, RoomID: roomID, Range: b.Range, At: b.UpdatedAt})
	return nil
}

// Cancel is idempotent: cancelling an already-cancelled booking is a no-op
// success and records no event.
func (b *Booking) Cancel(now time.Time) {
	if b.Status == StatusCancelled {
		return
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(Cancelled{BookingID: b.ID, UserID: b.UserID, RoomID: b.RoomID, At: b.UpdatedAt})
}

func (b *Booking) OwnedBy(userID string) bool {
	return b.UserID == userID
}
