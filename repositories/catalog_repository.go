package repositories

import (
	"context"

	"github.com/HSouheill/salon_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogRepository reads staff, services, per-service rates and clients
type CatalogRepository struct {
	staff    *mongo.Collection
	services *mongo.Collection
	rates    *mongo.Collection
	clients  *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{
		staff:    db.Collection(StaffCollection),
		services: db.Collection(ServicesCollection),
		rates:    db.Collection(StaffServiceRatesCollection),
		clients:  db.Collection(ClientsCollection),
	}
}

func (r *CatalogRepository) GetService(ctx context.Context, id int64) (*models.Service, error) {
	var service models.Service
	if err := findByFilter(ctx, r.services, bson.M{"_id": id}, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *CatalogRepository) GetStaff(ctx context.Context, id int64) (*models.Staff, error) {
	var staff models.Staff
	if err := findByFilter(ctx, r.staff, bson.M{"_id": id}, &staff); err != nil {
		return nil, err
	}
	return &staff, nil
}

// GetStaffServiceRate returns ErrNotFound when the staff member has no override for the service
func (r *CatalogRepository) GetStaffServiceRate(ctx context.Context, staffID, serviceID int64) (*models.StaffServiceRate, error) {
	var rate models.StaffServiceRate
	if err := findByFilter(ctx, r.rates, bson.M{"staffId": staffID, "serviceId": serviceID}, &rate); err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *CatalogRepository) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	var client models.Client
	if err := findByFilter(ctx, r.clients, bson.M{"_id": id}, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *CatalogRepository) ListActiveStaff(ctx context.Context) ([]models.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.staff.Find(ctx, bson.M{"isActive": true}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	staff := []models.Staff{}
	if err := cursor.All(ctx, &staff); err != nil {
		return nil, err
	}
	return staff, nil
}

func findByFilter(ctx context.Context, coll *mongo.Collection, filter bson.M, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := coll.FindOne(ctx, filter).Decode(out)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}
