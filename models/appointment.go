package models

import (
	"time"
)

// Appointment status values
const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment payment status values
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Appointment is a scheduled service instance
type Appointment struct {
	ID            int64     `json:"id" bson:"_id"`
	ClientID      int64     `json:"clientId" bson:"clientId"`
	StaffID       int64     `json:"staffId" bson:"staffId"`
	ServiceID     int64     `json:"serviceId" bson:"serviceId"`
	StartTime     time.Time `json:"startTime" bson:"startTime"`
	EndTime       time.Time `json:"endTime" bson:"endTime"`
	Status        string    `json:"status" bson:"status"`               // "pending", "confirmed", "completed", "cancelled"
	PaymentStatus string    `json:"paymentStatus" bson:"paymentStatus"` // "unpaid", "paid", "refunded"
	TotalAmount   *float64  `json:"totalAmount,omitempty" bson:"totalAmount,omitempty"`
	Notes         string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// IsPaid reports whether the appointment has been settled
func (a *Appointment) IsPaid() bool {
	return a != nil && a.PaymentStatus == PaymentStatusPaid
}

// AppointmentUpdate is a partial update; nil fields are left untouched
type AppointmentUpdate struct {
	Status        *string
	PaymentStatus *string
	TotalAmount   *float64
}
