package booking

import (
	"time"

	"stayflow/internal/domain/shared/daterange"
)

type Confirmed struct {
	BookingID string
	UserID    string
	RoomID    int64
	Range     daterange.DateRange
	At        time.Time
}

func (e Confirmed) EventName() string     { return "booking.confirmed" }
func (e Confirmed) AggregateID() string   { return e.BookingID }
func (e Confirmed) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	BookingID string
	UserID    string
	RoomID    *int64
	At        time.Time
}

func (e Cancelled) EventName() string     { return "booking.cancelled" }
func (e Cancelled) AggregateID() string   { return e.BookingID }
func (e Cancelled) OccurredAt() time.Time { return e.At }
