package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const CarColName = "cars"

type CarStatus string

const (
	CarStatusAvailable   CarStatus = "available"
	CarStatusRented      CarStatus = "rented"
	CarStatusUnavailable CarStatus = "unavailable"
)

type Car struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID            primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Make               string             `bson:"make" json:"make" validate:"required"`
	Model              string             `bson:"model" json:"model" validate:"required"`
	Type               string             `bson:"type" json:"type" validate:"required"`
	LicensePlate       string             `bson:"license_plate" json:"license_plate" validate:"required"`
	CurrentOdometer    float64            `bson:"current_odometer" json:"current_odometer" validate:"gte=0"`
	RentalPricePerDay  float64            `bson:"rental_price_per_day" json:"rental_price_per_day" validate:"gt=0"`
	AvailabilityStatus string             `bson:"availability_status" json:"availability_status"`
	InsuranceAvailable bool               `bson:"insurance_available" json:"insurance_available"`
	InsuranceCost      float64            `bson:"insurance_cost" json:"insurance_cost" validate:"gte=0"`
	State              string             `bson:"state" json:"state"`
	Status             CarStatus          `bson:"status" json:"status"`
	ImageURL           string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt          time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt          time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

func (c *Car) BeforeCreate() error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Status == "" {
		c.Status = CarStatusAvailable
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	return nil
}

// CarUpdate carries the editable subset of a car. Only non-nil fields are
// written, so an edit form never clobbers fields it did not submit.
type CarUpdate struct {
	Make               *string  `json:"make,omitempty"`
	Model              *string  `json:"model,omitempty"`
	Type               *string  `json:"type,omitempty"`
	LicensePlate       *string  `json:"license_plate,omitempty"`
	CurrentOdometer    *float64 `json:"current_odometer,omitempty"`
	RentalPricePerDay  *float64 `json:"rental_price_per_day,omitempty"`
	AvailabilityStatus *string  `json:"availability_status,omitempty"`
	InsuranceAvailable *bool    `json:"insurance_available,omitempty"`
	InsuranceCost      *float64 `json:"insurance_cost,omitempty"`
	ImageURL           *string  `json:"image_url,omitempty"`
}

func (u *CarUpdate) toSet() bson.M {
	set := bson.M{"updated_at": time.Now()}
	if u.Make != nil {
		set["make"] = *u.Make
	}
	if u.Model != nil {
		set["model"] = *u.Model
	}
	if u.Type != nil {
		set["type"] = *u.Type
	}
	if u.LicensePlate != nil {
		set["license_plate"] = *u.LicensePlate
	}
	if u.CurrentOdometer != nil {
		set["current_odometer"] = *u.CurrentOdometer
	}
	if u.RentalPricePerDay != nil {
		set["rental_price_per_day"] = *u.RentalPricePerDay
	}
	if u.AvailabilityStatus != nil {
		set["availability_status"] = *u.AvailabilityStatus
	}
	if u.InsuranceAvailable != nil {
		set["insurance_available"] = *u.InsuranceAvailable
	}
	if u.InsuranceCost != nil {
		set["insurance_cost"] = *u.InsuranceCost
	}
	if u.ImageURL != nil {
		set["image_url"] = *u.ImageURL
	}
	return set
}

type CarRepo interface {
	CreateCar(ctx context.Context, car *Car) (*Car, error)
	GetCarByID(ctx context.Context, id primitive.ObjectID) (*Car, error)
	GetCarsByOwnerID(ctx context.Context, ownerId primitive.ObjectID) ([]*Car, error)
	ListCars(ctx context.Context) ([]*Car, error)
	ListAvailableCars(ctx context.Context) ([]*Car, error)
	UpdateCar(ctx context.Context, id, ownerId primitive.ObjectID, update *CarUpdate) error
	DeleteCar(ctx context.Context, id, ownerId primitive.ObjectID) error
	UpdateCarOdometer(ctx context.Context, id primitive.ObjectID, expected, odometer float64) error
	SetCarStatus(ctx context.Context, id primitive.ObjectID, from, to CarStatus) error
}

func (mdb *MongodbRepo) CreateCar(ctx context.Context, car *Car) (*Car, error) {
	if err := Validate.Struct(car); err != nil {
		return nil, fmt.Errorf("invalid car data: %w", ErrInvalidInput)
	}
	if err := car.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare car for creation: %v", err)
	}

	col, err := mdb.GetCollection(ctx, DbName, CarColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.InsertOne(ctx, car); err != nil {
		return nil, fmt.Errorf("error inserting car: %v", err)
	}
	return car, nil
}

func (mdb *MongodbRepo) GetCarByID(ctx context.Context, id primitive.ObjectID) (*Car, error) {
	col, err := mdb.GetCollection(ctx, DbName, CarColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var car Car
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&car); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("car %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("error finding car: %v", err)
	}
	return &car, nil
}

func (mdb *MongodbRepo) GetCarsByOwnerID(ctx context.Context, ownerId primitive.ObjectID) ([]*Car, error) {
	return mdb.findCars(ctx, bson.M{"owner_id": ownerId})
}

func (mdb *MongodbRepo) ListCars(ctx context.Context) ([]*Car, error) {
	return mdb.findCars(ctx, bson.M{})
}

func (mdb *MongodbRepo) ListAvailableCars(ctx context.Context) ([]*Car, error) {
	return mdb.findCars(ctx, bson.M{"status": CarStatusAvailable})
}

func (mdb *MongodbRepo) findCars(ctx context.Context, filter bson.M) ([]*Car, error) {
	col, err := mdb.GetCollection(ctx, DbName, CarColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding cars: %v", err)
	}
	defer cursor.Close(ctx)

	var cars []*Car
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, fmt.Errorf("error decoding cars: %v", err)
	}
	return cars, nil
}

// UpdateCar is scoped to the owning account: the filter carries the owner id
// so one owner can never edit another owner's car.
func (mdb *MongodbRepo) UpdateCar(ctx context.Context, id, ownerId primitive.ObjectID, update *CarUpdate) error {
	col, err := mdb.GetCollection(ctx, DbName, CarColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.UpdateOne(ctx, bson.M{"_id": id, "owner_id": ownerId}, bson.M{"$set": update.toSet()})
	if err != nil {
		return fmt.Errorf("error updating car: %v", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("car %s for owner %s: %w", id.Hex(), ownerId.Hex(), ErrNotFound)
	}
	return nil
}

func (mdb *MongodbRepo) DeleteCar(ctx context.Context, id, ownerId primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, CarColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerId})
	if err != nil {
		return fmt.Errorf("error deleting car: %v", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("car %s for owner %s: %w", id.Hex(), ownerId.Hex(), ErrNotFound)
	}
	return nil
}

// UpdateCarOdometer writes the checkout mileage with an optimistic guard on
// the previously read odometer value, so two simultaneous checkouts cannot
// silently overwrite each other.
func (mdb *MongodbRepo) UpdateCarOdometer(ctx context.Context, id primitive.ObjectID, expected, odometer float64) error {
	col, err := mdb.GetCollection(ctx, DbName, CarColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": id, "current_odometer": expected}
	update := bson.M{"$set": bson.M{"current_odometer": odometer, "updated_at": time.Now()}}

	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating car odometer: %v", err)
	}
	if res.MatchedCount == 0 {
		count, countErr := col.CountDocuments(ctx, bson.M{"_id": id})
		if countErr == nil && count == 0 {
			return fmt.Errorf("car %s: %w", id.Hex(), ErrNotFound)
		}
		return fmt.Errorf("car %s odometer changed underneath us: %w", id.Hex(), ErrConflict)
	}
	return nil
}

// SetCarStatus transitions a car between rental states, conditional on the
// expected current state so a car cannot be double booked.
func (mdb *MongodbRepo) SetCarStatus(ctx context.Context, id primitive.ObjectID, from, to CarStatus) error {
	col, err := mdb.GetCollection(ctx, DbName, CarColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}

	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating car status: %v", err)
	}
	if res.MatchedCount == 0 {
		count, countErr := col.CountDocuments(ctx, bson.M{"_id": id})
		if countErr == nil && count == 0 {
			return fmt.Errorf("car %s: %w", id.Hex(), ErrNotFound)
		}
		return fmt.Errorf("car %s is not %s: %w", id.Hex(), from, ErrConflict)
	}
	return nil
}
