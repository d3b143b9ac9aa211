package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"github.com/HSouheill/salon_backend/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory Store that enforces the same uniqueness rules as
// the Mongo indexes: one pending payment per (appointment, method), one
// completed payment per appointment, one earnings record per (appointment, payment).
type memStore struct {
	mu sync.Mutex

	appointments map[int64]*models.Appointment
	payments     []*models.Payment
	services     map[int64]*models.Service
	staff        map[int64]*models.Staff
	rates        map[[2]int64]*models.StaffServiceRate
	clients      map[int64]*models.Client
	earnings     []*models.StaffEarnings
	timeClock    []models.TimeClockEntry
	activations  map[primitive.ObjectID]int

	failUpdateAppointment error
	failCreateEarnings    error
	failGetService        error
}

func newMemStore() *memStore {
	return &memStore{
		appointments: map[int64]*models.Appointment{},
		services:     map[int64]*models.Service{},
		staff:        map[int64]*models.Staff{},
		rates:        map[[2]int64]*models.StaffServiceRate{},
		clients:      map[int64]*models.Client{},
		activations:  map[primitive.ObjectID]int{},
	}
}

func (m *memStore) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) UpdateAppointment(ctx context.Context, id int64, update models.AppointmentUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdateAppointment != nil {
		return m.failUpdateAppointment
	}
	a, ok := m.appointments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if update.Status != nil {
		a.Status = *update.Status
	}
	if update.PaymentStatus != nil {
		a.PaymentStatus = *update.PaymentStatus
	}
	if update.TotalAmount != nil {
		v := *update.TotalAmount
		a.TotalAmount = &v
	}
	return nil
}

func (m *memStore) FindPayment(ctx context.Context, appointmentID int64, method, status string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.payments) - 1; i >= 0; i-- {
		p := m.payments[i]
		if p.AppointmentID != nil && *p.AppointmentID == appointmentID && p.Status == status && (method == "" || p.Method == method) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindCompletedPayment(ctx context.Context, appointmentID int64) (*models.Payment, error) {
	return m.FindPayment(ctx, appointmentID, "", models.PaymentCompleted)
}

func (m *memStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if payment.AppointmentID != nil {
		for _, p := range m.payments {
			if p.AppointmentID == nil || *p.AppointmentID != *payment.AppointmentID {
				continue
			}
			if payment.Status == models.PaymentCompleted && p.Status == models.PaymentCompleted {
				return repositories.ErrDuplicate
			}
			if payment.Status == models.PaymentPending && p.Status == models.PaymentPending && p.Method == payment.Method {
				return repositories.ErrDuplicate
			}
		}
	}
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	cp := *payment
	m.payments = append(m.payments, &cp)
	return nil
}

func (m *memStore) UpdatePayment(ctx context.Context, id primitive.ObjectID, update models.PaymentUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.paymentByID(id)
	if p == nil {
		return repositories.ErrNotFound
	}
	if update.Amount != nil {
		p.Amount = *update.Amount
	}
	if update.TotalAmount != nil {
		p.TotalAmount = *update.TotalAmount
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.TransactionID != nil {
		p.TransactionID = *update.TransactionID
	}
	return nil
}

func (m *memStore) CompletePayment(ctx context.Context, id primitive.ObjectID, amount float64, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.paymentByID(id)
	if p == nil || p.Status != models.PaymentPending {
		return false, nil
	}
	for _, other := range m.payments {
		if other != p && other.Status == models.PaymentCompleted && other.AppointmentID != nil &&
			p.AppointmentID != nil && *other.AppointmentID == *p.AppointmentID {
			return false, repositories.ErrDuplicate
		}
	}
	now := time.Now()
	p.Status = models.PaymentCompleted
	p.Amount = amount
	p.TotalAmount = amount
	p.CompletedAt = &now
	if transactionID != "" {
		p.TransactionID = transactionID
	}
	return true, nil
}

func (m *memStore) FailPayment(ctx context.Context, id primitive.ObjectID, reason string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.paymentByID(id)
	if p == nil || p.Status != models.PaymentPending {
		return false, nil
	}
	p.Status = models.PaymentFailed
	p.FailureReason = reason
	return true, nil
}

func (m *memStore) paymentByID(id primitive.ObjectID) *models.Payment {
	for _, p := range m.payments {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (m *memStore) GetService(ctx context.Context, id int64) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGetService != nil {
		return nil, m.failGetService
	}
	s, ok := m.services[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return s, nil
}

func (m *memStore) GetStaff(ctx context.Context, id int64) (*models.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return s, nil
}

func (m *memStore) GetStaffServiceRate(ctx context.Context, staffID, serviceID int64) (*models.StaffServiceRate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rates[[2]int64{staffID, serviceID}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r, nil
}

func (m *memStore) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return c, nil
}

func (m *memStore) ListActiveStaff(ctx context.Context) ([]models.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Staff
	for _, s := range m.staff {
		if s.IsActive {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CreateStaffEarnings(ctx context.Context, earnings *models.StaffEarnings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateEarnings != nil {
		return m.failCreateEarnings
	}
	for _, e := range m.earnings {
		if e.AppointmentID == earnings.AppointmentID && e.PaymentID == earnings.PaymentID {
			return repositories.ErrDuplicate
		}
	}
	if earnings.ID.IsZero() {
		earnings.ID = primitive.NewObjectID()
	}
	cp := *earnings
	m.earnings = append(m.earnings, &cp)
	return nil
}

func (m *memStore) GetStaffEarnings(ctx context.Context, staffID int64, periodStart, periodEnd *time.Time) ([]models.StaffEarnings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StaffEarnings
	for _, e := range m.earnings {
		if e.StaffID != staffID {
			continue
		}
		if periodStart != nil && e.EarningsDate.Before(*periodStart) {
			continue
		}
		if periodEnd != nil && e.EarningsDate.After(*periodEnd) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (m *memStore) GetTimeClockEntriesByStaffID(ctx context.Context, staffID int64, start, end time.Time) ([]models.TimeClockEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TimeClockEntry
	for _, e := range m.timeClock {
		if e.StaffID == staffID && !e.ClockIn.Before(start) && !e.ClockIn.After(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) IncrementRuleActivation(ctx context.Context, ruleID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activations[ruleID]++
	return nil
}

// helpers

func (m *memStore) paymentsFor(appointmentID int64) []models.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Payment
	for _, p := range m.payments {
		if p.AppointmentID != nil && *p.AppointmentID == appointmentID {
			out = append(out, *p)
		}
	}
	return out
}

func (m *memStore) earningsFor(appointmentID int64) []models.StaffEarnings {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StaffEarnings
	for _, e := range m.earnings {
		if e.AppointmentID == appointmentID {
			out = append(out, *e)
		}
	}
	return out
}

func (m *memStore) appointment(id int64) models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.appointments[id]
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

// seedSalon adds one commission stylist, a $100 60-minute service, a client
// and an unpaid pending appointment 42.
func seedSalon(m *memStore) {
	m.staff[7] = &models.Staff{ID: 7, FirstName: "Dana", CommissionType: models.CommissionTypeCommission,
		CommissionRate: f64(0.4), IsActive: true, FCMToken: "tok-7"}
	m.services[3] = &models.Service{ID: 3, Name: "Cut", Price: 100, Duration: intp(60)}
	m.clients[9] = &models.Client{ID: 9, FirstName: "Sam", Email: "sam@example.com", Phone: "+15550001111"}
	m.appointments[42] = &models.Appointment{ID: 42, ClientID: 9, StaffID: 7, ServiceID: 3,
		Status: models.AppointmentStatusPending, PaymentStatus: models.PaymentStatusUnpaid}
}

var errBoom = errors.New("boom")

// recordingObserver captures observer callbacks
type recordingObserver struct {
	mu       sync.Mutex
	settled  []*SettlementResult
	earnings []*models.StaffEarnings
	payroll  []*models.PayrollSyncResult
}

func (o *recordingObserver) PaymentSettled(ctx context.Context, r *SettlementResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.settled = append(o.settled, r)
}

func (o *recordingObserver) EarningsRecorded(ctx context.Context, s *models.Staff, e *models.StaffEarnings) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.earnings = append(o.earnings, e)
}

func (o *recordingObserver) PayrollSyncFailed(ctx context.Context, p *models.PayrollSyncPayload, r *models.PayrollSyncResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.payroll = append(o.payroll, r)
}
