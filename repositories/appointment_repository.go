package repositories

import (
	"context"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type AppointmentRepository struct {
	collection *mongo.Collection
}

func NewAppointmentRepository(db *mongo.Database) *AppointmentRepository {
	return &AppointmentRepository{
		collection: db.Collection(AppointmentsCollection),
	}
}

func (r *AppointmentRepository) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var appointment models.Appointment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&appointment)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *AppointmentRepository) UpdateAppointment(ctx context.Context, id int64, update models.AppointmentUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": appointmentUpdateDoc(update, time.Now())})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// appointmentUpdateDoc builds the $set document; nil fields are omitted
func appointmentUpdateDoc(update models.AppointmentUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.PaymentStatus != nil {
		set["paymentStatus"] = *update.PaymentStatus
	}
	if update.TotalAmount != nil {
		set["totalAmount"] = *update.TotalAmount
	}
	return set
}
