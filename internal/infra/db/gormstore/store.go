package gormstore

import (
	"context"
	"errors"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	domainhotel "stayflow/internal/domain/hotel"
	domainres "stayflow/internal/domain/reservation"
	"stayflow/internal/domain/shared/daterange"
)

// Open connects to MySQL and migrates the inventory schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&hotelModel{}, &roomModel{}, &reservationModel{}); err != nil {
		return nil, err
	}
	return db, nil
}

type HotelRepository struct {
	db *gorm.DB
}

func NewHotelRepository(db *gorm.DB) *HotelRepository {
	return &HotelRepository{db: db}
}

var _ domainhotel.HotelRepository = (*HotelRepository)(nil)

func (r *HotelRepository) ByID(ctx context.Context, id int64) (*domainhotel.Hotel, error) {
	var m hotelModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainhotel.ErrHotelNotFound
		}
		return nil, err
	}
	h := m.toAggregate()
	return &h, nil
}

func (r *HotelRepository) List(ctx context.Context) ([]domainhotel.Hotel, error) {
	var models []hotelModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domainhotel.Hotel, 0, len(models))
	for _, m := range models {
		out = append(out, m.toAggregate())
	}
	return out, nil
}

func (r *HotelRepository) Save(ctx context.Context, h *domainhotel.Hotel) error {
	m := hotelModel{ID: h.ID, Name: h.Name, City: h.City}
	err := r.db.WithContext(ctx).Save(&m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainhotel.ErrNameTaken
	}
	if err != nil {
		return err
	}
	h.ID = m.ID
	return nil
}

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

var _ domainhotel.RoomRepository = (*RoomRepository)(nil)

func (r *RoomRepository) ByID(ctx context.Context, id int64) (*domainhotel.Room, error) {
	var m roomModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainhotel.ErrRoomNotFound
		}
		return nil, err
	}
	room := m.toAggregate()
	return &room, nil
}

func (r *RoomRepository) ByHotel(ctx context.Context, hotelID int64) ([]domainhotel.Room, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("hotel_id = ?", hotelID))
}

func (r *RoomRepository) List(ctx context.Context) ([]domainhotel.Room, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *RoomRepository) list(_ context.Context, tx *gorm.DB) ([]domainhotel.Room, error) {
	var models []roomModel
	if err := tx.Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domainhotel.Room, 0, len(models))
	for _, m := range models {
		out = append(out, m.toAggregate())
	}
	return out, nil
}

func (r *RoomRepository) Save(ctx context.Context, room *domainhotel.Room) error {
	m := roomModel{
		ID:          room.ID,
		HotelID:     room.HotelID,
		Number:      room.Number,
		Available:   room.Available,
		TimesBooked: room.TimesBooked,
	}
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return err
	}
	room.ID = m.ID
	return nil
}

func (r *RoomRepository) IncrementTimesBooked(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&roomModel{}).
		Where("id = ?", id).
		UpdateColumn("times_booked", gorm.Expr("times_booked + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainhotel.ErrRoomNotFound
	}
	return nil
}

type ReservationStore struct {
	db *gorm.DB
}

func NewReservationStore(db *gorm.DB) *ReservationStore {
	return &ReservationStore{db: db}
}

var _ domainres.Store = (*ReservationStore)(nil)

func (s *ReservationStore) ByRequestKey(ctx context.Context, key string) (*domainres.Reservation, error) {
	var m reservationModel
	err := s.db.WithContext(ctx).Where("request_key = ?", key).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainres.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	res, err := m.toAggregate()
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FindOverlapping takes FOR UPDATE locks on the matching index range. The
// locks hold only for the enclosing transaction, so callers that need them
// to cover a subsequent insert must run both inside Transact; in autocommit
// they are gone as soon as the statement returns.
func (s *ReservationStore) FindOverlapping(ctx context.Context, roomID int64, dr daterange.DateRange) ([]domainres.Reservation, error) {
	var models []reservationModel
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("room_id = ? AND status <> ? AND start_date <= ? AND end_date >= ?",
			roomID, string(domainres.StatusReleased), dr.EndString(), dr.StartString()).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domainres.Reservation, 0, len(models))
	for _, m := range models {
		res, err := m.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *ReservationStore) Save(ctx context.Context, r *domainres.Reservation) error {
	m := newReservationModel(r)
	err := s.db.WithContext(ctx).Create(&m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainres.ErrDuplicateKey
	}
	if err != nil {
		return err
	}
	r.ID = m.ID
	return nil
}

// Transact opens a database transaction and hands fn a store bound to it.
// When fn returns an error the transaction rolls back; conflicting inserts
// racing across processes then resolve through the locks FindOverlapping
// acquired, with the loser surfacing its error instead of double-booking.
func (s *ReservationStore) Transact(ctx context.Context, fn func(domainres.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ReservationStore{db: tx})
	})
}

func (s *ReservationStore) UpdateStatus(ctx context.Context, key string, roomID int64, status domainres.Status) (int64, error) {
	res := s.db.WithContext(ctx).Model(&reservationModel{}).
		Where("request_key = ? AND room_id = ?", key, roomID).
		UpdateColumn("status", string(status))
	return res.RowsAffected, res.Error
}
