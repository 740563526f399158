package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const CustomerColName = "customers"

type Customer struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName      string             `bson:"firstname" json:"firstname" validate:"required"`
	LastName       string             `bson:"lastname" json:"lastname" validate:"required"`
	Username       string             `bson:"username" json:"username" validate:"required,min=3"`
	Email          string             `bson:"email" json:"email" validate:"required,email"`
	Password       string             `bson:"password" json:"-" validate:"required"`
	PhoneNumber    string             `bson:"phone_number" json:"phone_number"`
	DrivingLicense string             `bson:"driving_license" json:"driving_license"`
	CreatedAt      time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt      time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

func (c *Customer) BeforeCreate() error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	return nil
}

type CustomerRepo interface {
	CreateCustomer(ctx context.Context, customer *Customer) (*Customer, error)
	CustomerExistsByUsername(ctx context.Context, username string) (bool, error)
	GetCustomerByUsername(ctx context.Context, username string) (*Customer, error)
	GetCustomerByID(ctx context.Context, id primitive.ObjectID) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
}

func (mdb *MongodbRepo) CreateCustomer(ctx context.Context, customer *Customer) (*Customer, error) {
	if err := Validate.Struct(customer); err != nil {
		return nil, fmt.Errorf("invalid customer data: %w", ErrInvalidInput)
	}
	if err := customer.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare customer for creation: %v", err)
	}

	col, err := mdb.GetCollection(ctx, DbName, CustomerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	exists, err := mdb.CustomerExistsByUsername(ctx, customer.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("username %q is taken: %w", customer.Username, ErrDuplicate)
	}

	if _, err := col.InsertOne(ctx, customer); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("username %q is taken: %w", customer.Username, ErrDuplicate)
		}
		return nil, fmt.Errorf("error inserting customer: %v", err)
	}

	return customer, nil
}

func (mdb *MongodbRepo) CustomerExistsByUsername(ctx context.Context, username string) (bool, error) {
	col, err := mdb.GetCollection(ctx, DbName, CustomerColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %v", err)
	}

	count, err := col.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return false, fmt.Errorf("error counting customers by username: %v", err)
	}
	return count > 0, nil
}

func (mdb *MongodbRepo) GetCustomerByUsername(ctx context.Context, username string) (*Customer, error) {
	col, err := mdb.GetCollection(ctx, DbName, CustomerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var customer Customer
	if err := col.FindOne(ctx, bson.M{"username": username}).Decode(&customer); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("customer %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("error finding customer: %v", err)
	}
	return &customer, nil
}

func (mdb *MongodbRepo) GetCustomerByID(ctx context.Context, id primitive.ObjectID) (*Customer, error) {
	col, err := mdb.GetCollection(ctx, DbName, CustomerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var customer Customer
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&customer); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("customer %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("error finding customer: %v", err)
	}
	return &customer, nil
}

func (mdb *MongodbRepo) ListCustomers(ctx context.Context) ([]*Customer, error) {
	col, err := mdb.GetCollection(ctx, DbName, CustomerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error finding customers: %v", err)
	}
	defer cursor.Close(ctx)

	var customers []*Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("error decoding customers: %v", err)
	}
	return customers, nil
}
