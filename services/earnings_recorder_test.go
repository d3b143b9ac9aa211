package services

import (
	"context"
	"testing"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func completedPayment(appointmentID int64, amount float64) *models.Payment {
	now := time.Date(2026, 3, 5, 15, 0, 0, 0, time.UTC)
	id := appointmentID
	return &models.Payment{
		ID:            primitive.NewObjectID(),
		AppointmentID: &id,
		Amount:        amount,
		Method:        models.PaymentMethodTerminal,
		Status:        models.PaymentCompleted,
		CompletedAt:   &now,
	}
}

func TestRecordEarningsCommission(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	obs := &recordingObserver{}
	rec := NewEarningsRecorder(store, obs)

	appt := store.appointment(42)
	payment := completedPayment(42, 100)
	got := rec.RecordEarnings(context.Background(), &appt, payment)
	if got == nil {
		t.Fatal("expected an earnings record")
	}
	if !approxEqual(got.EarningsAmount, 40) || got.RateType != "commission" || got.IsCustomRate {
		t.Errorf("earnings = %+v", got)
	}
	if got.PaymentID != payment.ID || got.ServicePrice != 100 {
		t.Errorf("references not set: %+v", got)
	}
	if !got.EarningsDate.Equal(*payment.CompletedAt) {
		t.Errorf("EarningsDate = %v, want payment completion time", got.EarningsDate)
	}
	if n := len(store.earningsFor(42)); n != 1 {
		t.Fatalf("stored %d records, want 1", n)
	}
	if len(obs.earnings) != 1 {
		t.Errorf("observer notified %d times, want 1", len(obs.earnings))
	}
}

func TestRecordEarningsUsesOverride(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	store.rates[[2]int64{7, 3}] = &models.StaffServiceRate{StaffID: 7, ServiceID: 3, CustomCommissionRate: f64(0.5)}
	rec := NewEarningsRecorder(store, nil)

	appt := store.appointment(42)
	got := rec.RecordEarnings(context.Background(), &appt, completedPayment(42, 100))
	if got == nil || !approxEqual(got.EarningsAmount, 50) || !got.IsCustomRate {
		t.Fatalf("earnings = %+v, want 50 with custom rate", got)
	}
}

func TestRecordEarningsSkips(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*memStore)
	}{
		{"service missing", func(m *memStore) { delete(m.services, 3) }},
		{"staff missing", func(m *memStore) { delete(m.staff, 7) }},
		{"zero amount", func(m *memStore) { m.staff[7].CommissionType = "" }},
		{"store write fails", func(m *memStore) { m.failCreateEarnings = errBoom }},
		{"service lookup fails", func(m *memStore) { m.failGetService = errBoom }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			seedSalon(store)
			tt.setup(store)
			obs := &recordingObserver{}
			rec := NewEarningsRecorder(store, obs)

			appt := store.appointment(42)
			if got := rec.RecordEarnings(context.Background(), &appt, completedPayment(42, 100)); got != nil {
				t.Errorf("expected skip, got %+v", got)
			}
			if n := len(store.earningsFor(42)); n != 0 {
				t.Errorf("stored %d records, want 0", n)
			}
			if len(obs.earnings) != 0 {
				t.Errorf("observer should not be notified")
			}
		})
	}
}

func TestRecordEarningsDuplicateIsSkipped(t *testing.T) {
	store := newMemStore()
	seedSalon(store)
	rec := NewEarningsRecorder(store, nil)

	appt := store.appointment(42)
	payment := completedPayment(42, 100)
	if rec.RecordEarnings(context.Background(), &appt, payment) == nil {
		t.Fatal("first record should be written")
	}
	if rec.RecordEarnings(context.Background(), &appt, payment) != nil {
		t.Fatal("second record for the same payment should be skipped")
	}
	if n := len(store.earningsFor(42)); n != 1 {
		t.Errorf("stored %d records, want 1", n)
	}
}
