package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type OperatorRepository struct {
	collection *mongo.Collection
}

func NewOperatorRepository(db *mongo.Database) *OperatorRepository {
	return &OperatorRepository{
		collection: db.Collection(OperatorsCollection),
	}
}

func (r *OperatorRepository) FindOperatorByEmail(ctx context.Context, email string) (*models.Operator, error) {
	var op models.Operator
	if err := findByFilter(ctx, r.collection, bson.M{"email": strings.ToLower(email)}, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *OperatorRepository) CountOperators(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *OperatorRepository) CreateOperator(ctx context.Context, op *models.Operator) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if op.ID.IsZero() {
		op.ID = primitive.NewObjectID()
	}
	op.Email = strings.ToLower(op.Email)
	_, err := r.collection.InsertOne(ctx, op)
	return translateWriteError(err)
}

func (r *OperatorRepository) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLoginAt": at}})
	return err
}
