package repositories

import (
	"context"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PaymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{
		collection: db.Collection(PaymentsCollection),
	}
}

// FindPayment returns the newest payment matching appointment, method and status, or nil
func (r *PaymentRepository) FindPayment(ctx context.Context, appointmentID int64, method, status string) (*models.Payment, error) {
	filter := bson.M{"appointmentId": appointmentID, "status": status}
	if method != "" {
		filter["method"] = method
	}
	return r.findOne(ctx, filter)
}

// FindCompletedPayment returns the completed payment for an appointment, or nil
func (r *PaymentRepository) FindCompletedPayment(ctx context.Context, appointmentID int64) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"appointmentId": appointmentID, "status": models.PaymentCompleted})
}

func (r *PaymentRepository) findOne(ctx context.Context, filter bson.M) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var payment models.Payment
	err := r.collection.FindOne(ctx, filter, opts).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, payment)
	return translateWriteError(err)
}

func (r *PaymentRepository) UpdatePayment(ctx context.Context, id primitive.ObjectID, update models.PaymentUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if update.Amount != nil {
		set["amount"] = *update.Amount
	}
	if update.TotalAmount != nil {
		set["totalAmount"] = *update.TotalAmount
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.TransactionID != nil {
		set["transactionId"] = *update.TransactionID
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return translateWriteError(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CompletePayment moves a pending payment to completed. It reports false when
// the payment was no longer pending.
func (r *PaymentRepository) CompletePayment(ctx context.Context, id primitive.ObjectID, amount float64, transactionID string) (bool, error) {
	now := time.Now()
	set := bson.M{
		"status":      models.PaymentCompleted,
		"amount":      amount,
		"totalAmount": amount,
		"completedAt": now,
		"updatedAt":   now,
	}
	if transactionID != "" {
		set["transactionId"] = transactionID
	}
	return r.transition(ctx, id, set)
}

// FailPayment moves a pending payment to failed
func (r *PaymentRepository) FailPayment(ctx context.Context, id primitive.ObjectID, reason string) (bool, error) {
	return r.transition(ctx, id, bson.M{
		"status":        models.PaymentFailed,
		"failureReason": reason,
		"updatedAt":     time.Now(),
	})
}

func (r *PaymentRepository) transition(ctx context.Context, id primitive.ObjectID, set bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": models.PaymentPending}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, translateWriteError(err)
	}
	return result.ModifiedCount == 1, nil
}
