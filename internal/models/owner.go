package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const OwnerColName = "owners"

type OwnerStatus string

const (
	OwnerStatusPending     OwnerStatus = "pending"
	OwnerStatusApproved    OwnerStatus = "approved"
	OwnerStatusDisapproved OwnerStatus = "disapproved"
)

type Owner struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName      string             `bson:"firstname" json:"firstname" validate:"required"`
	LastName       string             `bson:"lastname" json:"lastname" validate:"required"`
	Username       string             `bson:"username" json:"username" validate:"required,min=3"`
	Email          string             `bson:"email" json:"email" validate:"required,email"`
	Password       string             `bson:"password" json:"-" validate:"required"`
	PhoneNumber    string             `bson:"phone_number" json:"phone_number" validate:"required"`
	Address        string             `bson:"address" json:"address"`
	City           string             `bson:"city" json:"city"`
	State          string             `bson:"state" json:"state"`
	Zipcode        string             `bson:"zipcode" json:"zipcode"`
	DOB            string             `bson:"dob" json:"dob"`
	SSN            string             `bson:"ssn" json:"-"`
	DrivingLicense string             `bson:"driving_license" json:"driving_license" validate:"required"`
	Status         OwnerStatus        `bson:"status" json:"status"`
	Balance        float64            `bson:"balance" json:"balance"`
	CreatedAt      time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt      time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

func (o *Owner) BeforeCreate() error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	return nil
}

type OwnerRepo interface {
	CreateOwner(ctx context.Context, owner *Owner) (*Owner, error)
	OwnerExistsByUsername(ctx context.Context, username string) (bool, error)
	GetOwnerByUsername(ctx context.Context, username string) (*Owner, error)
	GetOwnerByID(ctx context.Context, id primitive.ObjectID) (*Owner, error)
	ListOwners(ctx context.Context) ([]*Owner, error)
	UpdateOwnerStatus(ctx context.Context, id primitive.ObjectID, status OwnerStatus) error
	CreditOwnerBalance(ctx context.Context, id primitive.ObjectID, amount float64) error
}

func (mdb *MongodbRepo) CreateOwner(ctx context.Context, owner *Owner) (*Owner, error) {
	if err := Validate.Struct(owner); err != nil {
		return nil, fmt.Errorf("invalid owner data: %w", ErrInvalidInput)
	}
	if err := owner.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare owner for creation: %v", err)
	}

	col, err := mdb.GetCollection(ctx, DbName, OwnerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	exists, err := mdb.OwnerExistsByUsername(ctx, owner.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("username %q is taken: %w", owner.Username, ErrDuplicate)
	}

	if _, err := col.InsertOne(ctx, owner); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("username %q is taken: %w", owner.Username, ErrDuplicate)
		}
		return nil, fmt.Errorf("error inserting owner: %v", err)
	}

	return owner, nil
}

func (mdb *MongodbRepo) OwnerExistsByUsername(ctx context.Context, username string) (bool, error) {
	col, err := mdb.GetCollection(ctx, DbName, OwnerColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %v", err)
	}

	count, err := col.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return false, fmt.Errorf("error counting owners by username: %v", err)
	}
	return count > 0, nil
}

func (mdb *MongodbRepo) GetOwnerByUsername(ctx context.Context, username string) (*Owner, error) {
	col, err := mdb.GetCollection(ctx, DbName, OwnerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var owner Owner
	if err := col.FindOne(ctx, bson.M{"username": username}).Decode(&owner); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("owner %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("error finding owner: %v", err)
	}
	return &owner, nil
}

func (mdb *MongodbRepo) GetOwnerByID(ctx context.Context, id primitive.ObjectID) (*Owner, error) {
	col, err := mdb.GetCollection(ctx, DbName, OwnerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var owner Owner
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&owner); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("owner %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("error finding owner: %v", err)
	}
	return &owner, nil
}

func (mdb *MongodbRepo) ListOwners(ctx context.Context) ([]*Owner, error) {
	col, err := mdb.GetCollection(ctx, DbName, OwnerColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error finding owners: %v", err)
	}
	defer cursor.Close(ctx)

	var owners []*Owner
	if err := cursor.All(ctx, &owners); err != nil {
		return nil, fmt.Errorf("error decoding owners: %v", err)
	}
	return owners, nil
}

// UpdateOwnerStatus performs the pending -> approved/disapproved transition.
// The filter includes the current "pending" status so that a concurrent
// transition loses cleanly instead of overwriting a terminal state.
func (mdb *MongodbRepo) UpdateOwnerStatus(ctx context.Context, id primitive.ObjectID, status OwnerStatus) error {
	if status != OwnerStatusApproved && status != OwnerStatusDisapproved {
		return fmt.Errorf("unsupported owner status %q: %w", status, ErrInvalidInput)
	}

	col, err := mdb.GetCollection(ctx, DbName, OwnerColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"_id": id, "status": OwnerStatusPending}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}

	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating owner status: %v", err)
	}
	if res.MatchedCount == 0 {
		// Either the owner does not exist or the status already left "pending".
		count, countErr := col.CountDocuments(ctx, bson.M{"_id": id})
		if countErr == nil && count == 0 {
			return fmt.Errorf("owner %s: %w", id.Hex(), ErrNotFound)
		}
		return fmt.Errorf("owner %s is no longer pending: %w", id.Hex(), ErrConflict)
	}
	return nil
}

func (mdb *MongodbRepo) CreditOwnerBalance(ctx context.Context, id primitive.ObjectID, amount float64) error {
	col, err := mdb.GetCollection(ctx, DbName, OwnerColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{
		"$inc": bson.M{"balance": amount},
		"$set": bson.M{"updated_at": time.Now()},
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("error crediting owner balance: %v", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("owner %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}
