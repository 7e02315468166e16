package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "stayflow/internal/domain/booking"
	domainrange "stayflow/internal/domain/shared/daterange"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("bookings")}
}

// EnsureIndexes creates the unique request-key index the idempotency gate
// relies on.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "request_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *BookingRepository) ByID(ctx context.Context, id string) (*domainbooking.Booking, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *BookingRepository) ByRequestKey(ctx context.Context, key string) (*domainbooking.Booking, error) {
	return r.findOne(ctx, bson.M{"request_key": key})
}

func (r *BookingRepository) findOne(ctx context.Context, filter bson.M) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) ByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	if mongo.IsDuplicateKeyError(err) {
		return domainbooking.ErrDuplicateKey
	}
	return err
}

type bookingDocument struct {
	ID         string `bson:"_id"`
	UserID     string `bson:"user_id"`
	RoomID     *int64 `bson:"room_id"`
	HotelID    int64  `bson:"hotel_id"`
	Status     string `bson:"status"`
	StartDate  string `bson:"start_date"`
	EndDate    string `bson:"end_date"`
	RequestKey string `bson:"request_key"`
	CreatedAt  int64  `bson:"created_at"`
	UpdatedAt  int64  `bson:"updated_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:         b.ID,
		UserID:     b.UserID,
		RoomID:     b.RoomID,
		HotelID:    b.HotelID,
		Status:     string(b.Status),
		StartDate:  b.Range.StartString(),
		EndDate:    b.Range.EndString(),
		RequestKey: b.RequestKey,
		CreatedAt:  b.CreatedAt.UnixMilli(),
		UpdatedAt:  b.UpdatedAt.UnixMilli(),
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	dr, _ := domainrange.Parse(d.StartDate, d.EndDate)
	return &domainbooking.Booking{
		ID:         d.ID,
		UserID:     d.UserID,
		RoomID:     d.RoomID,
		HotelID:    d.HotelID,
		Status:     domainbooking.Status(d.Status),
		Range:      dr,
		RequestKey: d.RequestKey,
		CreatedAt:  time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt:  time.UnixMilli(d.UpdatedAt).UTC(),
	}
}
