package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "stayflow/internal/domain/booking"
)

// BookingRepository is an in-memory implementation used in tests and for
// running the service without external infrastructure.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[string]*domainbooking.Booking
	byKey map[string]string
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items: make(map[string]*domainbooking.Booking),
		byKey: make(map[string]string),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id string) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) ByRequestKey(ctx context.Context, key string) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byKey[key]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(r.items[id]), nil
}

func (r *BookingRepository) ByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.UserID == userID {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existingID, ok := r.byKey[b.RequestKey]; ok && existingID != b.ID {
		return domainbooking.ErrDuplicateKey
	}
	r.items[b.ID] = cloneBooking(b)
	r.byKey[b.RequestKey] = b.ID
	return nil
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	if b == nil {
		return nil
	}
	out := *b
	if b.RoomID != nil {
		room := *b.RoomID
		out.RoomID = &room
	}
	out.ClearEvents()
	return &out
}
