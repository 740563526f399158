package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const BookingColName = "bookings"

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusReturned  BookingStatus = "returned"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CarID           primitive.ObjectID `bson:"car_id" json:"car_id"`
	CustomerID      primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	StartDate       time.Time          `bson:"start_date" json:"start_date"`
	EndDate         time.Time          `bson:"end_date" json:"end_date"`
	TotalCost       float64            `bson:"total_cost" json:"total_cost"`
	Status          BookingStatus      `bson:"status" json:"status"`
	CurrentMileage  float64            `bson:"current_mileage,omitempty" json:"current_mileage,omitempty"`
	GasLevel        string             `bson:"gas_level,omitempty" json:"gas_level,omitempty"`
	PickupLocation  string             `bson:"pickup_location,omitempty" json:"pickup_location,omitempty"`
	DropoffLocation string             `bson:"dropoff_location,omitempty" json:"dropoff_location,omitempty"`
	Penalty         float64            `bson:"penalty,omitempty" json:"penalty,omitempty"`
	CreatedAt       time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt       time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

func (b *Booking) BeforeCreate() error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.Status == "" {
		b.Status = BookingStatusActive
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return nil
}

// BookingReturn carries the fields an owner records when handling a return.
type BookingReturn struct {
	CurrentMileage  float64
	GasLevel        string
	PickupLocation  string
	DropoffLocation string
	Penalty         float64
}

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	ListBookings(ctx context.Context) ([]*Booking, error)
	GetBookingsByCarIDs(ctx context.Context, carIds []primitive.ObjectID) ([]*Booking, error)
	GetBookingsByCustomerID(ctx context.Context, customerId primitive.ObjectID) ([]*Booking, error)
	RecordBookingReturn(ctx context.Context, id primitive.ObjectID, ret *BookingReturn, checkout bool) error
	CancelBooking(ctx context.Context, id, customerId primitive.ObjectID) error
	CountBookings(ctx context.Context) (int64, error)
	CountBookingsByStatus(ctx context.Context, status BookingStatus) (int64, error)
}

func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	if err := booking.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare booking for creation: %v", err)
	}

	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.InsertOne(ctx, booking); err != nil {
		return nil, fmt.Errorf("error inserting booking: %v", err)
	}
	return booking, nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var booking Booking
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("booking %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("error finding booking: %v", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) ListBookings(ctx context.Context) ([]*Booking, error) {
	return mdb.findBookings(ctx, bson.M{})
}

func (mdb *MongodbRepo) GetBookingsByCarIDs(ctx context.Context, carIds []primitive.ObjectID) ([]*Booking, error) {
	if len(carIds) == 0 {
		return []*Booking{}, nil
	}
	return mdb.findBookings(ctx, bson.M{"car_id": bson.M{"$in": carIds}})
}

func (mdb *MongodbRepo) GetBookingsByCustomerID(ctx context.Context, customerId primitive.ObjectID) ([]*Booking, error) {
	return mdb.findBookings(ctx, bson.M{"customer_id": customerId})
}

func (mdb *MongodbRepo) findBookings(ctx context.Context, filter bson.M) ([]*Booking, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %v", err)
	}
	defer cursor.Close(ctx)

	var bookings []*Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %v", err)
	}
	return bookings, nil
}

// RecordBookingReturn writes the return details onto a booking. When checkout
// is true the booking also transitions to "returned"; the filter excludes
// already-returned bookings so a double checkout is rejected rather than
// applied twice.
func (mdb *MongodbRepo) RecordBookingReturn(ctx context.Context, id primitive.ObjectID, ret *BookingReturn, checkout bool) error {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	set := bson.M{
		"current_mileage":  ret.CurrentMileage,
		"gas_level":        ret.GasLevel,
		"pickup_location":  ret.PickupLocation,
		"dropoff_location": ret.DropoffLocation,
		"penalty":          ret.Penalty,
		"updated_at":       time.Now(),
	}
	filter := bson.M{"_id": id}
	if checkout {
		set["status"] = BookingStatusReturned
		filter["status"] = bson.M{"$ne": BookingStatusReturned}
	}

	res, err := col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("error updating booking: %v", err)
	}
	if res.MatchedCount == 0 {
		count, countErr := col.CountDocuments(ctx, bson.M{"_id": id})
		if countErr == nil && count == 0 {
			return fmt.Errorf("booking %s: %w", id.Hex(), ErrNotFound)
		}
		return fmt.Errorf("booking %s already returned: %w", id.Hex(), ErrConflict)
	}
	return nil
}

// CancelBooking is scoped to the booking's customer and only moves an active
// booking to "cancelled". Bookings are never hard-deleted.
func (mdb *MongodbRepo) CancelBooking(ctx context.Context, id, customerId primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": id, "customer_id": customerId, "status": BookingStatusActive}
	update := bson.M{"$set": bson.M{"status": BookingStatusCancelled, "updated_at": time.Now()}}

	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error cancelling booking: %v", err)
	}
	if res.MatchedCount == 0 {
		count, countErr := col.CountDocuments(ctx, bson.M{"_id": id, "customer_id": customerId})
		if countErr == nil && count == 0 {
			return fmt.Errorf("booking %s: %w", id.Hex(), ErrNotFound)
		}
		return fmt.Errorf("booking %s is not active: %w", id.Hex(), ErrConflict)
	}
	return nil
}

func (mdb *MongodbRepo) CountBookings(ctx context.Context) (int64, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}

	count, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error counting bookings: %v", err)
	}
	return count, nil
}

func (mdb *MongodbRepo) CountBookingsByStatus(ctx context.Context, status BookingStatus) (int64, error) {
	col, err := mdb.GetCollection(ctx, DbName, BookingColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}

	count, err := col.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("error counting bookings by status: %v", err)
	}
	return count, nil
}
