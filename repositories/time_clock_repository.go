package repositories

import (
	"context"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TimeClockRepository struct {
	collection *mongo.Collection
}

func NewTimeClockRepository(db *mongo.Database) *TimeClockRepository {
	return &TimeClockRepository{
		collection: db.Collection(TimeClockCollection),
	}
}

// GetTimeClockEntriesByStaffID returns shifts clocked in within [start, end]
func (r *TimeClockRepository) GetTimeClockEntriesByStaffID(ctx context.Context, staffID int64, start, end time.Time) ([]models.TimeClockEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"staffId": staffID,
		"clockIn": bson.M{"$gte": start, "$lte": end},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "clockIn", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.TimeClockEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
