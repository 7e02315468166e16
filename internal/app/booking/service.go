package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainbooking "stayflow/internal/domain/booking"
	"stayflow/internal/domain/shared/daterange"
)

const serviceTokenTTL = 5 * time.Minute

var (
	ErrNoRecommendation = errors.New("booking: no room recommendation found")
	ErrRoomIDRequired   = errors.New("booking: room id required without auto-select")
)

// Service is the saga controller for cross-service reservations. No
// distributed transaction spans the two stores; consistency comes from the
// request-key idempotency gate plus the compensating release call.
type Service struct {
	Bookings  domainbooking.Repository
	Inventory InventoryPort
	Tokens    TokenSource
	Events    EventPublisher
	Logger    *slog.Logger
	Now       func() time.Time
}

type CreateParams struct {
	UserID      string
	RequestKey  string
	CallerToken string
	HotelID     int64
	RoomID      *int64
	Range       daterange.DateRange
	AutoSelect  bool
}

// Create runs the booking saga to a terminal state. On any failure after a
// room id was resolved it attempts a compensating release, swallows that
// call's outcome, marks the booking Cancelled and returns both the cancelled
// booking and the failure. A replayed request key short-circuits to the
// stored booking with no further side effects.
func (s *Service) Create(ctx context.Context, p CreateParams) (*domainbooking.Booking, error) {
	if existing, err := s.Bookings.ByRequestKey(ctx, p.RequestKey); err == nil {
		return existing, nil
	} else if !errors.Is(err, domainbooking.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         uuid.NewString(),
		UserID:     p.UserID,
		HotelID:    p.HotelID,
		RoomID:     p.RoomID,
		Range:      p.Range,
		RequestKey: p.RequestKey,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		if errors.Is(err, domainbooking.ErrDuplicateKey) {
			// Lost the race against a concurrent request with the same key;
			// its booking is the canonical outcome.
			return s.Bookings.ByRequestKey(ctx, p.RequestKey)
		}
		return nil, err
	}

	roomID, err := s.resolveRoom(ctx, p)
	if err != nil {
		return s.abort(ctx, b, nil, err)
	}

	token, err := s.Tokens.ServiceToken(serviceTokenTTL)
	if err != nil {
		return s.abort(ctx, b, &roomID, err)
	}
	if err := s.Inventory.Confirm(ctx, token, roomID, p.RequestKey, p.Range); err != nil {
		return s.abort(ctx, b, &roomID, err)
	}

	if err := b.Confirm(roomID, s.now()); err != nil {
		return s.abort(ctx, b, &roomID, err)
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return s.abort(ctx, b, &roomID, err)
	}
	s.publish(ctx, b)
	return b, nil
}

func (s *Service) resolveRoom(ctx context.Context, p CreateParams) (int64, error) {
	if p.AutoSelect {
		candidates, err := s.Inventory.Recommend(ctx, p.CallerToken, p.HotelID, p.Range, 1)
		if err != nil {
			return 0, err
		}
		if len(candidates) == 0 {
			return 0, ErrNoRecommendation
		}
		return candidates[0].ID, nil
	}
	if p.RoomID == nil {
		return 0, ErrRoomIDRequired
	}
	return *p.RoomID, nil
}

// abort compensates and drives the booking to Cancelled. The release call's
// own failure is logged and discarded: compensation is best-effort and must
// never mask or change the saga's outcome.
func (s *Service) abort(ctx context.Context, b *domainbooking.Booking, roomID *int64, cause error) (*domainbooking.Booking, error) {
	if roomID != nil {
		s.compensate(ctx, *roomID, b.RequestKey)
	}
	b.Cancel(s.now())
	if err := s.Bookings.Save(ctx, b); err != nil {
		s.log().Error("cancelled booking save failed", "booking_id", b.ID, "error", err)
	}
	s.publish(ctx, b)
	s.log().Warn("booking saga failed",
		"booking_id", b.ID,
		"request_key", b.RequestKey,
		"error", cause,
	)
	return b, cause
}

func (s *Service) compensate(ctx context.Context, roomID int64, requestKey string) {
	token, err := s.Tokens.ServiceToken(serviceTokenTTL)
	if err != nil {
		s.log().Error("compensation token mint failed", "request_key", requestKey, "error", err)
		return
	}
	if err := s.Inventory.Release(ctx, token, roomID, requestKey); err != nil {
		s.log().Error("compensating release failed", "room_id", roomID, "request_key", requestKey, "error", err)
	}
}

// Cancel transitions a booking to Cancelled on behalf of its owner,
// releasing the committed room first when there is one. Cancelling an
// already-cancelled booking succeeds without side effects.
func (s *Service) Cancel(ctx context.Context, bookingID, userID string) (*domainbooking.Booking, error) {
	b, err := s.Bookings.ByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.OwnedBy(userID) {
		return nil, domainbooking.ErrNotOwner
	}
	if b.Status == domainbooking.StatusConfirmed && b.RoomID != nil {
		s.compensate(ctx, *b.RoomID, b.RequestKey)
	}
	b.Cancel(s.now())
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, b)
	return b, nil
}

// Get returns a booking by id. A wrong owner gets ErrNotOwner rather than
// not-found, so existence of other users' bookings is what leaks, not their
// contents; a genuinely missing id is reported as such.
func (s *Service) Get(ctx context.Context, bookingID, userID string) (*domainbooking.Booking, error) {
	b, err := s.Bookings.ByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.OwnedBy(userID) {
		return nil, domainbooking.ErrNotOwner
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return s.Bookings.ByUser(ctx, userID)
}

func (s *Service) publish(ctx context.Context, b *domainbooking.Booking) {
	if s.Events == nil {
		b.ClearEvents()
		return
	}
	for _, ev := range b.PendingEvents() {
		if err := s.Events.Publish(ctx, ev); err != nil {
			s.log().Warn("event publish failed", "event", ev.EventName(), "booking_id", b.ID, "error", err)
		}
	}
	b.ClearEvents()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
