package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	domainhotel "stayflow/internal/domain/hotel"
	domainreservation "stayflow/internal/domain/reservation"
	"stayflow/internal/domain/shared/daterange"
)

// InventoryStore backs the hotel service in memory: hotels, rooms and the
// reservation table live behind one RWMutex. The mutex makes individual
// operations atomic; the commit path's check-then-insert window is still
// covered by the room-scoped locker, exactly as a database's statement
// atomicity would not by itself prevent double-booking.
type InventoryStore struct {
	mu           sync.RWMutex
	hotels       map[int64]*domainhotel.Hotel
	rooms        map[int64]*domainhotel.Room
	reservations map[int64]*domainreservation.Reservation
	byKey        map[string]int64

	hotelSeq int64
	roomSeq  int64
	resSeq   int64
}

func NewInventoryStore() *InventoryStore {
	return &InventoryStore{
		hotels:       make(map[int64]*domainhotel.Hotel),
		rooms:        make(map[int64]*domainhotel.Room),
		reservations: make(map[int64]*domainreservation.Reservation),
		byKey:        make(map[string]int64),
	}
}

// --- hotel.HotelRepository ---

func (s *InventoryStore) ByID(ctx context.Context, id int64) (*domainhotel.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return nil, domainhotel.ErrHotelNotFound
	}
	out := *h
	return &out, nil
}

func (s *InventoryStore) List(ctx context.Context) ([]domainhotel.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domainhotel.Hotel, 0, len(s.hotels))
	for _, h := range s.hotels {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InventoryStore) Save(ctx context.Context, h *domainhotel.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.hotels {
		if other.Name == h.Name && other.ID != h.ID {
			return domainhotel.ErrNameTaken
		}
	}
	if h.ID == 0 {
		h.ID = atomic.AddInt64(&s.hotelSeq, 1)
	}
	out := *h
	s.hotels[h.ID] = &out
	return nil
}

// Rooms exposes the room repository view of the store.
func (s *InventoryStore) Rooms() *RoomRepository { return &RoomRepository{store: s} }

// Reservations exposes the reservation store view.
func (s *InventoryStore) Reservations() *ReservationStore { return &ReservationStore{store: s} }

type RoomRepository struct {
	store *InventoryStore
}

func (r *RoomRepository) ByID(ctx context.Context, id int64) (*domainhotel.Room, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	room, ok := r.store.rooms[id]
	if !ok {
		return nil, domainhotel.ErrRoomNotFound
	}
	out := *room
	return &out, nil
}

func (r *RoomRepository) ByHotel(ctx context.Context, hotelID int64) ([]domainhotel.Room, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domainhotel.Room
	for _, room := range r.store.rooms {
		if room.HotelID == hotelID {
			out = append(out, *room)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RoomRepository) List(ctx context.Context) ([]domainhotel.Room, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domainhotel.Room, 0, len(r.store.rooms))
	for _, room := range r.store.rooms {
		out = append(out, *room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RoomRepository) Save(ctx context.Context, room *domainhotel.Room) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if room.ID == 0 {
		room.ID = atomic.AddInt64(&r.store.roomSeq, 1)
	}
	out := *room
	r.store.rooms[room.ID] = &out
	return nil
}

func (r *RoomRepository) IncrementTimesBooked(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	room, ok := r.store.rooms[id]
	if !ok {
		return domainhotel.ErrRoomNotFound
	}
	room.TimesBooked++
	return nil
}

type ReservationStore struct {
	store *InventoryStore
}

func (s *ReservationStore) ByRequestKey(ctx context.Context, key string) (*domainreservation.Reservation, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	id, ok := s.store.byKey[key]
	if !ok {
		return nil, domainreservation.ErrNotFound
	}
	out := *s.store.reservations[id]
	return &out, nil
}

func (s *ReservationStore) FindOverlapping(ctx context.Context, roomID int64, dr daterange.DateRange) ([]domainreservation.Reservation, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	var out []domainreservation.Reservation
	for _, res := range s.store.reservations {
		if res.RoomID != roomID || !res.Active() {
			continue
		}
		if res.Range.Overlaps(dr) {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (s *ReservationStore) Save(ctx context.Context, res *domainreservation.Reservation) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if existingID, ok := s.store.byKey[res.RequestKey]; ok && existingID != res.ID {
		return domainreservation.ErrDuplicateKey
	}
	if res.ID == 0 {
		res.ID = atomic.AddInt64(&s.store.resSeq, 1)
	}
	out := *res
	s.store.reservations[res.ID] = &out
	s.store.byKey[res.RequestKey] = res.ID
	return nil
}

// Transact runs fn directly; the room lock held by the caller already
// serializes the commit path within a single process.
func (s *ReservationStore) Transact(ctx context.Context, fn func(domainreservation.Store) error) error {
	return fn(s)
}

func (s *ReservationStore) UpdateStatus(ctx context.Context, key string, roomID int64, status domainreservation.Status) (int64, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	id, ok := s.store.byKey[key]
	if !ok {
		return 0, nil
	}
	res := s.store.reservations[id]
	if res.RoomID != roomID {
		return 0, nil
	}
	res.Status = status
	return 1, nil
}

var (
	_ domainhotel.HotelRepository = (*InventoryStore)(nil)
	_ domainhotel.RoomRepository  = (*RoomRepository)(nil)
	_ domainreservation.Store     = (*ReservationStore)(nil)
)
