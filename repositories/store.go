package repositories

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// Store bundles every repository the settlement subsystem reads and writes
type Store struct {
	*AppointmentRepository
	*PaymentRepository
	*CatalogRepository
	*EarningsRepository
	*TimeClockRepository
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		AppointmentRepository: NewAppointmentRepository(db),
		PaymentRepository:     NewPaymentRepository(db),
		CatalogRepository:     NewCatalogRepository(db),
		EarningsRepository:    NewEarningsRepository(db),
		TimeClockRepository:   NewTimeClockRepository(db),
	}
}
