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

type EarningsRepository struct {
	collection *mongo.Collection
}

func NewEarningsRepository(db *mongo.Database) *EarningsRepository {
	return &EarningsRepository{
		collection: db.Collection(StaffEarningsCollection),
	}
}

// CreateStaffEarnings inserts a record; a second record for the same
// appointment and payment is rejected with ErrDuplicate.
func (r *EarningsRepository) CreateStaffEarnings(ctx context.Context, earnings *models.StaffEarnings) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if earnings.ID.IsZero() {
		earnings.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, earnings)
	return translateWriteError(err)
}

// GetStaffEarnings lists earnings for a staff member, optionally bounded by earnings date (inclusive)
func (r *EarningsRepository) GetStaffEarnings(ctx context.Context, staffID int64, periodStart, periodEnd *time.Time) ([]models.StaffEarnings, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, earningsFilter(staffID, periodStart, periodEnd),
		options.Find().SetSort(bson.D{{Key: "earningsDate", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	earnings := []models.StaffEarnings{}
	if err := cursor.All(ctx, &earnings); err != nil {
		return nil, err
	}
	return earnings, nil
}

func earningsFilter(staffID int64, periodStart, periodEnd *time.Time) bson.M {
	filter := bson.M{"staffId": staffID}
	dateRange := bson.M{}
	if periodStart != nil {
		dateRange["$gte"] = *periodStart
	}
	if periodEnd != nil {
		dateRange["$lte"] = *periodEnd
	}
	if len(dateRange) > 0 {
		filter["earningsDate"] = dateRange
	}
	return filter
}
