package models

import (
	"time"
)

// PayrollStaff identifies the staff member in a payroll payload
type PayrollStaff struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	CommissionType string `json:"commissionType,omitempty"`
}

// PayrollEarningsItem is one itemised earnings line
type PayrollEarningsItem struct {
	AppointmentID  int64     `json:"appointmentId"`
	ServiceID      int64     `json:"serviceId"`
	PaymentID      string    `json:"paymentId"`
	EarningsAmount float64   `json:"earningsAmount"`
	RateType       string    `json:"rateType"`
	RateUsed       float64   `json:"rateUsed"`
	ServicePrice   float64   `json:"servicePrice"`
	EarningsDate   time.Time `json:"earningsDate"`
}

// PayrollTimeEntry is one itemised shift
type PayrollTimeEntry struct {
	ID       int64      `json:"id"`
	ClockIn  time.Time  `json:"clockIn"`
	ClockOut *time.Time `json:"clockOut,omitempty"`
	Hours    float64    `json:"hours"`
}

// PayrollSyncPayload is posted to each configured payroll URL
type PayrollSyncPayload struct {
	SyncID           string                `json:"syncId"`
	Staff            PayrollStaff          `json:"staff"`
	PeriodStart      time.Time             `json:"periodStart"`
	PeriodEnd        time.Time             `json:"periodEnd"`
	TotalEarnings    float64               `json:"totalEarnings"`
	TotalHours       float64               `json:"totalHours"`
	AppointmentCount int                   `json:"appointmentCount"`
	Earnings         []PayrollEarningsItem `json:"earnings"`
	TimeEntries      []PayrollTimeEntry    `json:"timeEntries"`
	GeneratedAt      time.Time             `json:"generatedAt"`
}

// PayrollSyncResult reports the outcome of one sync
type PayrollSyncResult struct {
	SyncID        string  `json:"syncId"`
	StaffID       int64   `json:"staffId"`
	Delivered     bool    `json:"delivered"`
	DeliveredTo   string  `json:"deliveredTo,omitempty"`
	Attempts      int     `json:"attempts"`
	TotalEarnings float64 `json:"totalEarnings"`
	TotalHours    float64 `json:"totalHours"`
	LastError     string  `json:"lastError,omitempty"`
}

// PayrollSyncRequest triggers a sync for one staff member
type PayrollSyncRequest struct {
	StaffID     int64  `json:"staffId" validate:"required,gt=0"`
	PeriodStart string `json:"periodStart" validate:"required"` // YYYY-MM-DD
	PeriodEnd   string `json:"periodEnd" validate:"required"`   // YYYY-MM-DD, inclusive
}
