package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"github.com/HSouheill/salon_backend/repositories"
)

// EarningsStoreReader is what the recorder needs from the store
type EarningsStoreReader interface {
	CatalogStore
	EarningsStore
}

// EarningsRecorder turns a settled payment into one staff earnings record.
// It never returns an error: bookkeeping failures must not affect settlement.
type EarningsRecorder struct {
	store    EarningsStoreReader
	observer SettlementObserver
	now      func() time.Time
}

// NewEarningsRecorder creates a recorder. observer may be nil.
func NewEarningsRecorder(store EarningsStoreReader, observer SettlementObserver) *EarningsRecorder {
	return &EarningsRecorder{
		store:    store,
		observer: observer,
		now:      time.Now,
	}
}

// RecordEarnings computes and persists earnings for a completed payment.
// It returns nil when the record was skipped.
func (r *EarningsRecorder) RecordEarnings(ctx context.Context, appointment *models.Appointment, payment *models.Payment) *models.StaffEarnings {
	if appointment == nil || payment == nil {
		log.Printf("earnings skipped reason=missing_input")
		return nil
	}

	service, err := r.store.GetService(ctx, appointment.ServiceID)
	if err != nil {
		log.Printf("earnings skipped appointmentId=%d serviceId=%d reason=service_unresolved err=%v",
			appointment.ID, appointment.ServiceID, err)
		return nil
	}

	staff, err := r.store.GetStaff(ctx, appointment.StaffID)
	if err != nil {
		log.Printf("earnings skipped appointmentId=%d staffId=%d reason=staff_unresolved err=%v",
			appointment.ID, appointment.StaffID, err)
		return nil
	}

	override, err := r.store.GetStaffServiceRate(ctx, staff.ID, service.ID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		log.Printf("Warning: custom rate lookup failed staffId=%d serviceId=%d err=%v, using staff defaults",
			staff.ID, service.ID, err)
		override = nil
	}

	model := ParseCompensationModel(staff.CommissionType)
	params, isCustom := ResolveRateParams(model, staff, override)

	duration := DefaultServiceDurationMinutes
	if service.Duration != nil && *service.Duration > 0 {
		duration = *service.Duration
	}

	result := ComputeEarnings(model, service.Price, duration, params)
	if result.Amount <= 0 {
		log.Printf("earnings skipped appointmentId=%d staffId=%d commissionType=%q reason=zero_amount",
			appointment.ID, staff.ID, staff.CommissionType)
		return nil
	}

	earningsDate := r.now()
	if payment.CompletedAt != nil {
		earningsDate = *payment.CompletedAt
	}

	earnings := &models.StaffEarnings{
		StaffID:        staff.ID,
		AppointmentID:  appointment.ID,
		ServiceID:      service.ID,
		PaymentID:      payment.ID,
		EarningsAmount: result.Amount,
		RateType:       result.RateType,
		RateUsed:       result.RateUsed,
		IsCustomRate:   isCustom,
		ServicePrice:   service.Price,
		Breakdown:      result.Breakdown,
		EarningsDate:   earningsDate,
		CreatedAt:      r.now(),
	}

	if err := r.store.CreateStaffEarnings(ctx, earnings); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			log.Printf("earnings skipped appointmentId=%d paymentId=%s reason=already_recorded",
				appointment.ID, payment.ID.Hex())
			return nil
		}
		log.Printf("❌ earnings write failed appointmentId=%d paymentId=%s staffId=%d amount=%.2f err=%v",
			appointment.ID, payment.ID.Hex(), staff.ID, result.Amount, err)
		return nil
	}

	log.Printf("✅ earnings recorded appointmentId=%d staffId=%d rateType=%s amount=%.2f",
		appointment.ID, staff.ID, result.RateType, result.Amount)

	if r.observer != nil {
		r.observer.EarningsRecorded(ctx, staff, earnings)
	}
	return earnings
}
