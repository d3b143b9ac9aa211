package services

import (
	"context"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppointmentStore reads and updates appointments
type AppointmentStore interface {
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, id int64, update models.AppointmentUpdate) error
}

// PaymentStore persists payments. CompletePayment and FailPayment are
// compare-and-set operations: they only move a payment out of "pending" and
// report false when the payment was no longer pending.
type PaymentStore interface {
	FindPayment(ctx context.Context, appointmentID int64, method, status string) (*models.Payment, error)
	FindCompletedPayment(ctx context.Context, appointmentID int64) (*models.Payment, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	UpdatePayment(ctx context.Context, id primitive.ObjectID, update models.PaymentUpdate) error
	CompletePayment(ctx context.Context, id primitive.ObjectID, amount float64, transactionID string) (bool, error)
	FailPayment(ctx context.Context, id primitive.ObjectID, reason string) (bool, error)
}

// CatalogStore resolves services, staff and clients
type CatalogStore interface {
	GetService(ctx context.Context, id int64) (*models.Service, error)
	GetStaff(ctx context.Context, id int64) (*models.Staff, error)
	GetStaffServiceRate(ctx context.Context, staffID, serviceID int64) (*models.StaffServiceRate, error)
	GetClient(ctx context.Context, id int64) (*models.Client, error)
	ListActiveStaff(ctx context.Context) ([]models.Staff, error)
}

// EarningsStore persists staff earnings
type EarningsStore interface {
	CreateStaffEarnings(ctx context.Context, earnings *models.StaffEarnings) error
	GetStaffEarnings(ctx context.Context, staffID int64, periodStart, periodEnd *time.Time) ([]models.StaffEarnings, error)
}

// TimeClockStore reads time-tracking entries
type TimeClockStore interface {
	GetTimeClockEntriesByStaffID(ctx context.Context, staffID int64, start, end time.Time) ([]models.TimeClockEntry, error)
}

// AutomationStore persists rule activation counters
type AutomationStore interface {
	IncrementRuleActivation(ctx context.Context, ruleID primitive.ObjectID) error
}

// Store is the full collaborator store used by the settlement subsystem
type Store interface {
	AppointmentStore
	PaymentStore
	CatalogStore
	EarningsStore
	TimeClockStore
}
