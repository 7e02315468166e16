package gormstore

import (
	"time"

	domainhotel "stayflow/internal/domain/hotel"
	domainres "stayflow/internal/domain/reservation"
	"stayflow/internal/domain/shared/daterange"
)

type hotelModel struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:255;uniqueIndex"`
	City string `gorm:"size:255"`
}

func (hotelModel) TableName() string { return "hotels" }

type roomModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	HotelID     int64  `gorm:"index"`
	Number      string `gorm:"size:64"`
	Available   bool
	TimesBooked int
}

func (roomModel) TableName() string { return "rooms" }

type reservationModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	RoomID     int64  `gorm:"index:idx_room_dates"`
	RequestKey string `gorm:"size:128;uniqueIndex"`
	StartDate  string `gorm:"size:10;index:idx_room_dates"`
	EndDate    string `gorm:"size:10"`
	Status     string `gorm:"size:16"`
	CreatedAt  time.Time
}

func (reservationModel) TableName() string { return "room_reservations" }

func (m hotelModel) toAggregate() domainhotel.Hotel {
	return domainhotel.Hotel{ID: m.ID, Name: m.Name, City: m.City}
}

func (m roomModel) toAggregate() domainhotel.Room {
	return domainhotel.Room{
		ID:          m.ID,
		HotelID:     m.HotelID,
		Number:      m.Number,
		Available:   m.Available,
		TimesBooked: m.TimesBooked,
	}
}

func (m reservationModel) toAggregate() (domainres.Reservation, error) {
	dr, err := daterange.Parse(m.StartDate, m.EndDate)
	if err != nil {
		return domainres.Reservation{}, err
	}
	return domainres.Reservation{
		ID:         m.ID,
		RoomID:     m.RoomID,
		RequestKey: m.RequestKey,
		Range:      dr,
		Status:     domainres.Status(m.Status),
		CreatedAt:  m.CreatedAt.UTC(),
	}, nil
}

func newReservationModel(r *domainres.Reservation) reservationModel {
	return reservationModel{
		ID:         r.ID,
		RoomID:     r.RoomID,
		RequestKey: r.RequestKey,
		StartDate:  r.Range.StartString(),
		EndDate:    r.Range.EndString(),
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
	}
}
