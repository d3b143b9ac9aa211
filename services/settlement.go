package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"github.com/HSouheill/salon_backend/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Settlement sources
const (
	SourceWebhook = "webhook"
	SourceManual  = "manual"
	SourceSync    = "sync"
	SourceInstant = "instant"
)

const lockWaitTimeout = 15 * time.Second

// errRaceLost means another caller settled the appointment between our read and write
var errRaceLost = errors.New("settlement race lost")

// SettlementObserver receives best-effort notifications after state changes
type SettlementObserver interface {
	PaymentSettled(ctx context.Context, result *SettlementResult)
	EarningsRecorded(ctx context.Context, staff *models.Staff, earnings *models.StaffEarnings)
}

// SettleRequest asks to move an appointment to paid
type SettleRequest struct {
	AppointmentID int64
	Amount        float64
	Method        string
	TransactionID string
	Source        string
	Description   string
}

// SettlementResult describes the end state after a Settle call
type SettlementResult struct {
	AppointmentID  int64                 `json:"appointmentId"`
	PaymentID      primitive.ObjectID    `json:"paymentId"`
	Amount         float64               `json:"amount"`
	Method         string                `json:"method"`
	Source         string                `json:"source"`
	AlreadySettled bool                  `json:"alreadySettled"`
	Appointment    *models.Appointment   `json:"appointment,omitempty"`
	Payment        *models.Payment       `json:"payment,omitempty"`
	Earnings       *models.StaffEarnings `json:"earnings,omitempty"`
}

// SettlementService drives the Unsettled -> Settled transition.
// Every transition for one appointment runs under that appointment's lock and
// re-reads state from the store before writing.
type SettlementService struct {
	store    Store
	recorder *EarningsRecorder
	locker   Locker
	observer SettlementObserver
	now      func() time.Time
}

// NewSettlementService creates the state machine. observer may be nil.
func NewSettlementService(store Store, recorder *EarningsRecorder, locker Locker, observer SettlementObserver) *SettlementService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &SettlementService{
		store:    store,
		recorder: recorder,
		locker:   locker,
		observer: observer,
		now:      time.Now,
	}
}

// Settle completes the payment for an appointment, marks the appointment paid
// and records earnings. Calling it again for a settled appointment is a no-op
// that reports AlreadySettled.
func (s *SettlementService) Settle(ctx context.Context, req SettleRequest) (*SettlementResult, error) {
	if req.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	if req.Method == "" {
		req.Method = models.PaymentMethodTerminal
	}

	unlock, err := s.lock(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	appointment, err := s.getAppointment(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindCompletedPayment(ctx, appointment.ID)
	if err != nil {
		return nil, fmt.Errorf("find completed payment: %w", err)
	}

	var payment *models.Payment
	switch {
	case existing != nil && appointment.IsPaid():
		return s.alreadySettled(appointment, existing, req), nil
	case existing == nil && appointment.IsPaid():
		log.Printf("settlement no-op appointmentId=%d source=%s reason=appointment_already_paid_without_payment_record",
			appointment.ID, req.Source)
		return &SettlementResult{
			AppointmentID:  appointment.ID,
			Amount:         deref(appointment.TotalAmount),
			Method:         req.Method,
			Source:         req.Source,
			AlreadySettled: true,
			Appointment:    appointment,
		}, nil
	case existing != nil:
		// An earlier attempt completed the payment but failed to update the appointment.
		log.Printf("settlement resuming appointmentId=%d paymentId=%s source=%s",
			appointment.ID, existing.ID.Hex(), req.Source)
		payment = existing
	default:
		payment, err = s.completePayment(ctx, appointment, req)
		if errors.Is(err, errRaceLost) {
			current, findErr := s.store.FindCompletedPayment(ctx, appointment.ID)
			if findErr != nil || current == nil {
				return nil, fmt.Errorf("payment changed concurrently: %w", err)
			}
			return s.alreadySettled(appointment, current, req), nil
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.markAppointmentPaid(ctx, appointment, payment.Amount); err != nil {
		return nil, err
	}

	result := &SettlementResult{
		AppointmentID: appointment.ID,
		PaymentID:     payment.ID,
		Amount:        payment.Amount,
		Method:        payment.Method,
		Source:        req.Source,
		Appointment:   appointment,
		Payment:       payment,
	}
	if s.recorder != nil {
		result.Earnings = s.recorder.RecordEarnings(ctx, appointment, payment)
	}

	log.Printf("✅ appointment settled appointmentId=%d paymentId=%s amount=%.2f method=%s source=%s",
		appointment.ID, payment.ID.Hex(), payment.Amount, payment.Method, req.Source)

	if s.observer != nil {
		s.observer.PaymentSettled(ctx, result)
	}
	return result, nil
}

// Fail moves the pending payment for an appointment to failed.
// It returns false when there was no pending payment to fail.
func (s *SettlementService) Fail(ctx context.Context, appointmentID int64, method, reason string) (bool, error) {
	if method == "" {
		method = models.PaymentMethodTerminal
	}
	unlock, err := s.lock(ctx, appointmentID)
	if err != nil {
		return false, err
	}
	defer unlock()

	pending, err := s.store.FindPayment(ctx, appointmentID, method, models.PaymentPending)
	if err != nil {
		return false, fmt.Errorf("find pending payment: %w", err)
	}
	if pending == nil {
		return false, nil
	}
	ok, err := s.store.FailPayment(ctx, pending.ID, reason)
	if err != nil {
		return false, fmt.Errorf("fail payment: %w", err)
	}
	if ok {
		log.Printf("payment failed appointmentId=%d paymentId=%s reason=%q", appointmentID, pending.ID.Hex(), reason)
	}
	return ok, nil
}

// OpenTerminalPayment creates the single pending terminal payment for an appointment
func (s *SettlementService) OpenTerminalPayment(ctx context.Context, appointmentID int64, amount float64, deviceCode, invoiceNumber string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, ErrAmountRequired
	}
	unlock, err := s.lock(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	appointment, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.IsPaid() {
		return nil, ErrAlreadySettled
	}
	completed, err := s.store.FindCompletedPayment(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("find completed payment: %w", err)
	}
	if completed != nil {
		return nil, ErrAlreadySettled
	}
	pending, err := s.store.FindPayment(ctx, appointmentID, models.PaymentMethodTerminal, models.PaymentPending)
	if err != nil {
		return nil, fmt.Errorf("find pending payment: %w", err)
	}
	if pending != nil {
		return nil, ErrPaymentInProgress
	}

	now := s.now()
	id := appointment.ID
	payment := &models.Payment{
		ID:            primitive.NewObjectID(),
		AppointmentID: &id,
		ClientID:      appointment.ClientID,
		Amount:        amount,
		TotalAmount:   amount,
		Method:        models.PaymentMethodTerminal,
		Status:        models.PaymentPending,
		Description:   fmt.Sprintf("Terminal charge for appointment %d", appointment.ID),
		InvoiceNumber: invoiceNumber,
		DeviceCode:    deviceCode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrPaymentInProgress
		}
		return nil, fmt.Errorf("create pending payment: %w", err)
	}
	return payment, nil
}

// completePayment promotes the pending payment or creates a completed one.
// Both writes are conditional, so a concurrent winner surfaces as errRaceLost.
func (s *SettlementService) completePayment(ctx context.Context, appointment *models.Appointment, req SettleRequest) (*models.Payment, error) {
	now := s.now()

	pending, err := s.store.FindPayment(ctx, appointment.ID, req.Method, models.PaymentPending)
	if err != nil {
		return nil, fmt.Errorf("find pending payment: %w", err)
	}

	if pending != nil {
		ok, err := s.store.CompletePayment(ctx, pending.ID, req.Amount, req.TransactionID)
		if err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return nil, errRaceLost
			}
			return nil, fmt.Errorf("complete payment: %w", err)
		}
		if !ok {
			return nil, errRaceLost
		}
		pending.Status = models.PaymentCompleted
		pending.Amount = req.Amount
		pending.TotalAmount = req.Amount
		if req.TransactionID != "" {
			pending.TransactionID = req.TransactionID
		}
		pending.UpdatedAt = now
		pending.CompletedAt = &now
		return pending, nil
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Payment for appointment %d via %s", appointment.ID, req.Source)
	}
	id := appointment.ID
	payment := &models.Payment{
		ID:            primitive.NewObjectID(),
		AppointmentID: &id,
		ClientID:      appointment.ClientID,
		Amount:        req.Amount,
		TotalAmount:   req.Amount,
		Method:        req.Method,
		Status:        models.PaymentCompleted,
		Description:   description,
		TransactionID: req.TransactionID,
		CreatedAt:     now,
		UpdatedAt:     now,
		CompletedAt:   &now,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, errRaceLost
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return payment, nil
}

func (s *SettlementService) markAppointmentPaid(ctx context.Context, appointment *models.Appointment, amount float64) error {
	paid := models.PaymentStatusPaid
	total := amount
	update := models.AppointmentUpdate{
		PaymentStatus: &paid,
		TotalAmount:   &total,
	}
	if appointment.Status == models.AppointmentStatusPending {
		confirmed := models.AppointmentStatusConfirmed
		update.Status = &confirmed
	}
	if err := s.store.UpdateAppointment(ctx, appointment.ID, update); err != nil {
		return fmt.Errorf("update appointment %d: %w", appointment.ID, err)
	}

	appointment.PaymentStatus = paid
	appointment.TotalAmount = &total
	if update.Status != nil {
		appointment.Status = *update.Status
	}
	return nil
}

func (s *SettlementService) getAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	appointment, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrAppointmentNotFound, id)
		}
		return nil, fmt.Errorf("get appointment %d: %w", id, err)
	}
	return appointment, nil
}

func (s *SettlementService) lock(ctx context.Context, appointmentID int64) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, lockWaitTimeout)
	defer cancel()
	return s.locker.Lock(lockCtx, appointmentLockKey(appointmentID))
}

func (s *SettlementService) alreadySettled(appointment *models.Appointment, payment *models.Payment, req SettleRequest) *SettlementResult {
	log.Printf("settlement no-op appointmentId=%d paymentId=%s source=%s reason=already_settled",
		appointment.ID, payment.ID.Hex(), req.Source)
	return &SettlementResult{
		AppointmentID:  appointment.ID,
		PaymentID:      payment.ID,
		Amount:         payment.Amount,
		Method:         payment.Method,
		Source:         req.Source,
		AlreadySettled: true,
		Appointment:    appointment,
		Payment:        payment,
	}
}
