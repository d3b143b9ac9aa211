package repositories

import (
	"context"

	"github.com/HSouheill/salon_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AutomationRepository struct {
	collection *mongo.Collection
}

func NewAutomationRepository(db *mongo.Database) *AutomationRepository {
	return &AutomationRepository{
		collection: db.Collection(AutomationRulesCollection),
	}
}

// ListActiveRules loads the rules handed to the notifier at startup
func (r *AutomationRepository) ListActiveRules(ctx context.Context) ([]models.AutomationRule, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rules := []models.AutomationRule{}
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *AutomationRepository) IncrementRuleActivation(ctx context.Context, ruleID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": ruleID}, bson.M{"$inc": bson.M{"activationCount": 1}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
