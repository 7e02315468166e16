package booking

import (
	"context"
	"errors"
	"time"

	"stayflow/internal/domain/shared/daterange"
	"stayflow/internal/domain/shared/events"
)

// ErrRoomConflict is the inventory side's definitive "cannot book" answer.
// The transport adapter maps its conflict response to this; it is never
// retried and never treated as infrastructure failure.
var ErrRoomConflict = errors.New("inventory: room conflict")

type RoomCandidate struct {
	ID          int64  `json:"id"`
	HotelID     int64  `json:"hotelId"`
	Number      string `json:"number"`
	Available   bool   `json:"available"`
	TimesBooked int    `json:"timesBooked"`
}

// InventoryPort is the outbound surface the saga drives. Implementations own
// per-call timeouts; Confirm additionally retries transient failures with
// bounded backoff but must surface ErrRoomConflict immediately.
type InventoryPort interface {
	Recommend(ctx context.Context, token string, hotelID int64, dr daterange.DateRange, limit int) ([]RoomCandidate, error)
	Confirm(ctx context.Context, token string, roomID int64, requestKey string, dr daterange.DateRange) error
	Release(ctx context.Context, token string, roomID int64, requestKey string) error
}

// TokenSource mints short-lived elevated credentials for server-to-server
// calls against the inventory service's internal surface.
type TokenSource interface {
	ServiceToken(ttl time.Duration) (string, error)
}

// EventPublisher fans booking lifecycle events out to interested consumers.
// Publication is best-effort relative to the saga outcome.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}
