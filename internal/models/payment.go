package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const PaymentColName = "payments"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

type Payment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookingID primitive.ObjectID `bson:"booking_id" json:"booking_id"`
	Amount    float64            `bson:"amount" json:"amount" validate:"gte=0"`
	Status    PaymentStatus      `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

func (p *Payment) BeforeCreate() error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Status == "" {
		p.Status = PaymentStatusPending
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	return nil
}

type PaymentRepo interface {
	CreatePayment(ctx context.Context, payment *Payment) (*Payment, error)
	ListPayments(ctx context.Context) ([]*Payment, error)
	SumPaymentsByStatus(ctx context.Context, status PaymentStatus) (float64, error)
	CompletePaymentsForBooking(ctx context.Context, bookingId primitive.ObjectID) (float64, error)
}

func (mdb *MongodbRepo) CreatePayment(ctx context.Context, payment *Payment) (*Payment, error) {
	if err := Validate.Struct(payment); err != nil {
		return nil, fmt.Errorf("invalid payment data: %w", ErrInvalidInput)
	}
	if err := payment.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare payment for creation: %v", err)
	}

	col, err := mdb.GetCollection(ctx, DbName, PaymentColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if _, err := col.InsertOne(ctx, payment); err != nil {
		return nil, fmt.Errorf("error inserting payment: %v", err)
	}
	return payment, nil
}

func (mdb *MongodbRepo) ListPayments(ctx context.Context) ([]*Payment, error) {
	col, err := mdb.GetCollection(ctx, DbName, PaymentColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error finding payments: %v", err)
	}
	defer cursor.Close(ctx)

	var payments []*Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("error decoding payments: %v", err)
	}
	return payments, nil
}

// CompletePaymentsForBooking moves a booking's pending payments to
// "completed" and returns the amount settled.
func (mdb *MongodbRepo) CompletePaymentsForBooking(ctx context.Context, bookingId primitive.ObjectID) (float64, error) {
	col, err := mdb.GetCollection(ctx, DbName, PaymentColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"booking_id": bookingId, "status": PaymentStatusPending}

	cursor, err := col.Find(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("error finding pending payments: %v", err)
	}
	defer cursor.Close(ctx)

	var pending []*Payment
	if err := cursor.All(ctx, &pending); err != nil {
		return 0, fmt.Errorf("error decoding pending payments: %v", err)
	}

	var settled float64
	for _, payment := range pending {
		res, err := col.UpdateOne(ctx,
			bson.M{"_id": payment.ID, "status": PaymentStatusPending},
			bson.M{"$set": bson.M{"status": PaymentStatusCompleted}})
		if err != nil {
			return settled, fmt.Errorf("error completing payment: %v", err)
		}
		if res.ModifiedCount > 0 {
			settled += payment.Amount
		}
	}
	return settled, nil
}

// SumPaymentsByStatus totals payment amounts for one status. Recomputed on
// every call; the dashboard never caches these.
func (mdb *MongodbRepo) SumPaymentsByStatus(ctx context.Context, status PaymentStatus) (float64, error) {
	col, err := mdb.GetCollection(ctx, DbName, PaymentColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": status}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("error aggregating payments: %v", err)
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("error decoding payment totals: %v", err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	switch total := results[0]["total"].(type) {
	case float64:
		return total, nil
	case int32:
		return float64(total), nil
	case int64:
		return float64(total), nil
	default:
		return 0, fmt.Errorf("unexpected payment total type %T", results[0]["total"])
	}
}
