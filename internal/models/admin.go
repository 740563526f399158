package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const AdminColName = "admins"

// Admin is a singleton: registration is rejected once one record exists.
type Admin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username" validate:"required,min=3"`
	Password  string             `bson:"password" json:"-" validate:"required"`
	Balance   float64            `bson:"balance" json:"balance"`
	CreatedAt time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

func (a *Admin) BeforeCreate() error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}

type AdminRepo interface {
	CreateAdmin(ctx context.Context, admin *Admin) (*Admin, error)
	CountAdmins(ctx context.Context) (int64, error)
	AdminExistsByUsername(ctx context.Context, username string) (bool, error)
	GetAdminByUsername(ctx context.Context, username string) (*Admin, error)
}

func (mdb *MongodbRepo) CreateAdmin(ctx context.Context, admin *Admin) (*Admin, error) {
	if err := Validate.Struct(admin); err != nil {
		return nil, fmt.Errorf("invalid admin data: %w", ErrInvalidInput)
	}
	if err := admin.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare admin for creation: %v", err)
	}

	col, err := mdb.GetCollection(ctx, DbName, AdminColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	// Only one admin record may ever exist. The guard is a single upsert
	// against the whole collection: with no record the insert wins, with any
	// record present the update matches it and inserts nothing, so two
	// concurrent first registrations cannot both create an admin.
	res, err := col.UpdateOne(ctx,
		bson.M{},
		bson.M{"$setOnInsert": admin},
		options.Update().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("error inserting admin: %v", err)
	}
	if res.UpsertedCount == 0 {
		return nil, fmt.Errorf("admin already exists: %w", ErrDuplicate)
	}

	return admin, nil
}

func (mdb *MongodbRepo) CountAdmins(ctx context.Context) (int64, error) {
	col, err := mdb.GetCollection(ctx, DbName, AdminColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}

	count, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error counting admins: %v", err)
	}
	return count, nil
}

func (mdb *MongodbRepo) AdminExistsByUsername(ctx context.Context, username string) (bool, error) {
	col, err := mdb.GetCollection(ctx, DbName, AdminColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %v", err)
	}

	count, err := col.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return false, fmt.Errorf("error counting admins by username: %v", err)
	}
	return count > 0, nil
}

func (mdb *MongodbRepo) GetAdminByUsername(ctx context.Context, username string) (*Admin, error) {
	col, err := mdb.GetCollection(ctx, DbName, AdminColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var admin Admin
	if err := col.FindOne(ctx, bson.M{"username": username}).Decode(&admin); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("admin %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("error finding admin: %v", err)
	}
	return &admin, nil
}
